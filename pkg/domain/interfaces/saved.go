package interfaces

import (
	"context"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

// SavedRepository persists per-user dataset bookmarks
type SavedRepository interface {
	// List returns every saved dataset of user, most recent first
	List(ctx context.Context, user string) ([]*model.SavedDataset, error)

	// Put stores a bookmark. Saving an existing bookmark overwrites it.
	Put(ctx context.Context, saved *model.SavedDataset) error

	// Delete removes a bookmark. Missing bookmarks are reported with model.ErrTagNotFound.
	Delete(ctx context.Context, user, datasetID string) error
}
