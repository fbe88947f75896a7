package http

import (
	"net/http"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
	"github.com/m-mizutani/datamart/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(catalogUC interfaces.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "datamart",
			Version: types.Version,
		}

		// All loads the catalog on first use, so read RefreshedAt after it
		if all, err := catalogUC.All(r.Context()); err == nil {
			status.Datasets = len(all)
		}
		status.RefreshedAt = catalogUC.RefreshedAt()

		writeJSON(w, r, http.StatusOK, status)
	}
}
