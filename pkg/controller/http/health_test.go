package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	controller "github.com/m-mizutani/datamart/pkg/controller/http"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, newTestCatalog(), controller.WithWebhookSecret("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := serve(server, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	var status model.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status.Status != "healthy" {
		t.Errorf("Status = %v, want healthy", status.Status)
	}

	if status.Service != "datamart" {
		t.Errorf("Service = %v, want datamart", status.Service)
	}

	if status.Version == "" {
		t.Error("Version should not be empty")
	}

	if status.Datasets != 4 {
		t.Errorf("Datasets = %v, want 4", status.Datasets)
	}

	if status.RefreshedAt.IsZero() {
		t.Error("RefreshedAt should be set after the catalog is loaded")
	}
}
