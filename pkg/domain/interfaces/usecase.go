package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

// CatalogUseCase serves views over the current dataset collection
type CatalogUseCase interface {
	// Refresh re-fetches the collection from its source
	Refresh(ctx context.Context) error

	// Reload re-fetches without joining a refresh already in flight
	Reload(ctx context.Context) error

	// Datasets builds the view for a filter state
	Datasets(ctx context.Context, state model.FilterState) (*model.View, error)

	// Facets lists the facet categories of the collection
	Facets(ctx context.Context) ([]model.FacetCategory, error)

	// Dataset looks up a single record by ID
	Dataset(ctx context.Context, id string) (*model.DatasetRecord, error)

	// Related lists datasets sharing a tag with the given dataset
	Related(ctx context.Context, id string) ([]*model.DatasetRecord, error)

	// All returns every record of the collection
	All(ctx context.Context) ([]*model.DatasetRecord, error)

	// RefreshedAt reports when the collection was last installed
	RefreshedAt() time.Time
}

// SavedUseCase manages the saved datasets of a user
type SavedUseCase interface {
	// Save bookmarks a dataset that exists in the catalog
	Save(ctx context.Context, user, datasetID string) (*model.SavedDataset, error)

	// Remove deletes a bookmark
	Remove(ctx context.Context, user, datasetID string) error

	// View builds a view over the saved datasets of user
	View(ctx context.Context, user string, state model.FilterState) (*model.View, error)
}

// WebhookUseCase defines the interface for registry webhook processing
type WebhookUseCase interface {
	// ProcessEvent processes a registry webhook event
	ProcessEvent(ctx context.Context, event *model.RegistryEvent) error
}
