package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/datamart/pkg/domain/catalog"
	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

type savedUseCase struct {
	repo    interfaces.SavedRepository
	catalog interfaces.CatalogUseCase
	engine  *catalog.Engine
	now     func() time.Time
}

// NewSaved creates a new instance of SavedUseCase
func NewSaved(repo interfaces.SavedRepository, catalogUC interfaces.CatalogUseCase) interfaces.SavedUseCase {
	return &savedUseCase{
		repo:    repo,
		catalog: catalogUC,
		engine:  catalog.NewEngine(),
		now:     time.Now,
	}
}

// NormalizeUser lower-cases wallet addresses so checksummed and plain forms match
func NormalizeUser(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}

func (uc *savedUseCase) Save(ctx context.Context, user, datasetID string) (*model.SavedDataset, error) {
	user = NormalizeUser(user)
	if user == "" {
		return nil, goerr.New("user is required", goerr.T(model.ErrTagUnauthorized))
	}

	if _, err := uc.catalog.Dataset(ctx, datasetID); err != nil {
		return nil, goerr.Wrap(err, "cannot save unknown dataset", goerr.V("dataset_id", datasetID))
	}

	saved := &model.SavedDataset{
		ID:        uuid.NewString(),
		User:      user,
		DatasetID: datasetID,
		SavedAt:   uc.now().UTC(),
	}
	if err := uc.repo.Put(ctx, saved); err != nil {
		return nil, goerr.Wrap(err, "failed to save dataset")
	}

	ctxlog.From(ctx).Info("Dataset saved", "user", user, "dataset_id", datasetID)
	return saved, nil
}

func (uc *savedUseCase) Remove(ctx context.Context, user, datasetID string) error {
	user = NormalizeUser(user)
	if user == "" {
		return goerr.New("user is required", goerr.T(model.ErrTagUnauthorized))
	}

	if err := uc.repo.Delete(ctx, user, datasetID); err != nil {
		return goerr.Wrap(err, "failed to remove saved dataset")
	}

	ctxlog.From(ctx).Info("Saved dataset removed", "user", user, "dataset_id", datasetID)
	return nil
}

// View filters the saved subset with the same engine as the catalog. Bookmarks of
// datasets that left the catalog are skipped.
func (uc *savedUseCase) View(ctx context.Context, user string, state model.FilterState) (*model.View, error) {
	user = NormalizeUser(user)
	if user == "" {
		return nil, goerr.New("user is required", goerr.T(model.ErrTagUnauthorized))
	}

	saved, err := uc.repo.List(ctx, user)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list saved datasets")
	}

	records := make([]*model.DatasetRecord, 0, len(saved))
	for _, s := range saved {
		r, err := uc.catalog.Dataset(ctx, s.DatasetID)
		if err != nil {
			if goerr.HasTag(err, model.ErrTagNotFound) {
				ctxlog.From(ctx).Debug("Saved dataset no longer in catalog", "dataset_id", s.DatasetID)
				continue
			}
			return nil, goerr.Wrap(err, "failed to resolve saved dataset")
		}
		records = append(records, r)
	}

	return uc.engine.View(records, state), nil
}
