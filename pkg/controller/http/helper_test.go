package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/datamart/pkg/controller/http"
	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
	"github.com/m-mizutani/datamart/pkg/usecase"
)

const testPayload = `[
	{"id":"org/wiki","cardData":{"pretty_name":"Wiki Corpus","size_categories":["1M<n<10M"]},"tags":["language:en","license:mit"],"downloads":300,"lastModified":"2024-05-01T10:00:00.000Z","usedStorage":2048},
	{"id":"org/news","cardData":{"pretty_name":"News Articles"},"tags":["language:en","task_categories:summarization"],"downloads":100,"usedStorage":512},
	{"id":"lab/speech","cardData":{"pretty_name":"Speech Clips"},"tags":["modality:audio","license:cc-by-4.0"],"downloads":200},
	{"id":"solo"}
]`

// MockCatalogSource is a mock implementation of CatalogSource
type MockCatalogSource struct {
	fetchFunc func(ctx context.Context) ([]byte, error)
}

func (m *MockCatalogSource) Fetch(ctx context.Context) ([]byte, error) {
	return m.fetchFunc(ctx)
}

// MockWebhookUseCase is a mock implementation of WebhookUseCase
type MockWebhookUseCase struct {
	processEventFunc func(ctx context.Context, event *model.RegistryEvent) error
}

func (m *MockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.RegistryEvent) error {
	if m.processEventFunc != nil {
		return m.processEventFunc(ctx, event)
	}
	return nil
}

func newTestCatalog() interfaces.CatalogUseCase {
	return usecase.NewCatalog(&MockCatalogSource{
		fetchFunc: func(ctx context.Context) ([]byte, error) {
			return []byte(testPayload), nil
		},
	})
}

func newTestServer(t *testing.T, catalogUC interfaces.CatalogUseCase, opts ...controller.Option) *controller.Server {
	t.Helper()
	server, err := controller.NewServer(
		context.Background(),
		catalogUC,
		&MockWebhookUseCase{},
		append([]controller.Option{controller.WithAddr("localhost:0")}, opts...)...,
	)
	gt.NoError(t, err)
	return server
}

func serve(server *controller.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	return w
}
