package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
	"github.com/m-mizutani/datamart/pkg/utils/async"
)

type webhookUseCase struct {
	catalog interfaces.CatalogUseCase
	limiter *rate.Limiter
}

// WebhookOption configures the webhook use case
type WebhookOption func(*webhookUseCase)

// WithRefreshInterval limits webhook triggered refreshes to one per interval, with the given burst
func WithRefreshInterval(interval time.Duration, burst int) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.limiter = rate.NewLimiter(rate.Every(interval), burst)
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(catalogUC interfaces.CatalogUseCase, opts ...WebhookOption) interfaces.WebhookUseCase {
	uc := &webhookUseCase{
		catalog: catalogUC,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent schedules a catalog refresh for events that change datasets
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.RegistryEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing registry event",
		"id", event.ID,
		"action", event.Action,
		"scope", event.Scope,
		"repo_type", event.RepoType,
		"repo_name", event.RepoName,
		"triggers_refresh", event.TriggersRefresh(),
	)

	if !event.TriggersRefresh() {
		logger.Debug("Ignoring registry event",
			"action", event.Action,
			"repo_type", event.RepoType,
		)
		return nil
	}

	if !uc.limiter.Allow() {
		return goerr.New("catalog refresh rate limited",
			goerr.V("event_id", event.ID),
			goerr.T(model.ErrTagRateLimited))
	}

	// The source changed after any fetch already in flight began, so do not join it
	if err := async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.catalog.Reload(ctx)
	}); err != nil {
		return goerr.Wrap(err, "failed to schedule catalog reload", goerr.V("event_id", event.ID))
	}

	return nil
}
