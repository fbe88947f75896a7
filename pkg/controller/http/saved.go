package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

type savedHandler struct {
	saved interfaces.SavedUseCase
}

func requireUser(r *http.Request) (string, error) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return "", goerr.New("authentication required", goerr.T(model.ErrTagUnauthorized))
	}
	return user, nil
}

// List handles GET /api/saved
func (h *savedHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	state, err := bindViewParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.saved.View(r.Context(), user, state)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, view)
}

// Put handles PUT /api/saved/{id}
func (h *savedHandler) Put(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := wildcardID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.saved.Save(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, saved)
}

// Delete handles DELETE /api/saved/{id}
func (h *savedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := wildcardID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.saved.Remove(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
