package interfaces

import "context"

// CatalogSource fetches the raw dataset collection as a JSON array
type CatalogSource interface {
	// Fetch returns the raw payload of the whole collection
	Fetch(ctx context.Context) ([]byte, error)
}

// SnapshotCache keeps the last known good catalog payload
type SnapshotCache interface {
	// Load returns the cached payload, or nil when nothing is cached
	Load(ctx context.Context, key string) ([]byte, error)

	// Store replaces the cached payload
	Store(ctx context.Context, key string, data []byte) error
}
