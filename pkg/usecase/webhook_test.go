package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/datamart/pkg/domain/model"
	"github.com/m-mizutani/datamart/pkg/usecase"
)

func TestWebhookUseCase_ProcessEvent(t *testing.T) {
	tests := []struct {
		name        string
		event       *model.RegistryEvent
		wantRefresh bool
	}{
		{
			name: "Dataset update triggers refresh",
			event: &model.RegistryEvent{
				ID:         "test-delivery-1",
				Action:     model.ActionUpdate,
				Scope:      "repo.content",
				RepoType:   "dataset",
				RepoName:   "org/wiki",
				ReceivedAt: time.Now(),
				RawPayload: []byte(`{}`),
			},
			wantRefresh: true,
		},
		{
			name: "Dataset creation triggers refresh",
			event: &model.RegistryEvent{
				ID:       "test-delivery-2",
				Action:   model.ActionCreate,
				Scope:    "repo",
				RepoType: "dataset",
				RepoName: "org/new",
			},
			wantRefresh: true,
		},
		{
			name: "Model update is ignored",
			event: &model.RegistryEvent{
				ID:       "test-delivery-3",
				Action:   model.ActionUpdate,
				RepoType: "model",
				RepoName: "org/bert",
			},
			wantRefresh: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refreshed := make(chan struct{}, 1)
			src := &MockCatalogSource{
				fetchFunc: func(ctx context.Context) ([]byte, error) {
					refreshed <- struct{}{}
					return []byte(`[]`), nil
				},
			}
			uc := usecase.NewWebhook(usecase.NewCatalog(src))

			err := uc.ProcessEvent(context.Background(), tt.event)
			gt.NoError(t, err)

			select {
			case <-refreshed:
				gt.True(t, tt.wantRefresh)
			case <-time.After(200 * time.Millisecond):
				gt.False(t, tt.wantRefresh)
			}
		})
	}
}

func TestWebhookUseCase_RateLimited(t *testing.T) {
	src := staticSource(`[]`)
	uc := usecase.NewWebhook(usecase.NewCatalog(src), usecase.WithRefreshInterval(time.Hour, 1))
	event := &model.RegistryEvent{ID: "d", Action: model.ActionUpdate, RepoType: "dataset"}

	gt.NoError(t, uc.ProcessEvent(context.Background(), event))

	err := uc.ProcessEvent(context.Background(), event)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagRateLimited))
}
