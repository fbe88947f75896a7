package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oapi-codegen/runtime"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

type datasetHandler struct {
	catalog interfaces.CatalogUseCase
}

// viewParams mirrors the query parameters of the dataset list endpoints
type viewParams struct {
	Q     string
	Tags  []string
	Sort  string
	Order string
	Page  int
}

func bindViewParams(r *http.Request) (model.FilterState, error) {
	query := r.URL.Query()
	var p viewParams

	binds := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{"tags", &p.Tags},
		{"sort", &p.Sort},
		{"order", &p.Order},
		{"page", &p.Page},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return model.FilterState{}, goerr.Wrap(err, "invalid query parameter",
				goerr.V("name", b.name),
				goerr.T(model.ErrTagInvalidInput))
		}
	}

	key, err := model.ParseSortKey(p.Sort)
	if err != nil {
		return model.FilterState{}, err
	}
	order, err := model.ParseSortOrder(p.Order)
	if err != nil {
		return model.FilterState{}, err
	}

	state := model.NewFilterState()
	state.SetSearchTerm(strings.TrimSpace(p.Q))
	state.SelectTags(p.Tags...)
	state.SetSort(key, order)
	state.SetPage(p.Page)
	return state.Normalize(), nil
}

// wildcardID extracts a dataset ID, which may contain slashes, from the route wildcard
func wildcardID(r *http.Request) (string, error) {
	id := strings.Trim(chi.URLParam(r, "*"), "/")
	if id == "" {
		return "", goerr.New("dataset ID is required", goerr.T(model.ErrTagInvalidInput))
	}
	return id, nil
}

// List handles GET /api/datasets
func (h *datasetHandler) List(w http.ResponseWriter, r *http.Request) {
	state, err := bindViewParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.catalog.Datasets(r.Context(), state)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, view)
}

// Facets handles GET /api/datasets/facets
func (h *datasetHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.catalog.Facets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"categories": facets,
	})
}

// Get handles GET /api/datasets/{id}
func (h *datasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := wildcardID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.catalog.Dataset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, record)
}

// Related handles GET /api/related/{id}
func (h *datasetHandler) Related(w http.ResponseWriter, r *http.Request) {
	id, err := wildcardID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	related, err := h.catalog.Related(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"items": related,
	})
}
