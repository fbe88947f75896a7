package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

// SavedRepository keeps bookmarks in process memory
type SavedRepository struct {
	mu    sync.RWMutex
	saved map[string]map[string]*model.SavedDataset
}

// NewSavedRepository creates an empty repository
func NewSavedRepository() *SavedRepository {
	return &SavedRepository{
		saved: make(map[string]map[string]*model.SavedDataset),
	}
}

func (r *SavedRepository) List(_ context.Context, user string) ([]*model.SavedDataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.SavedDataset, 0, len(r.saved[user]))
	for _, s := range r.saved[user] {
		copied := *s
		out = append(out, &copied)
	}
	slices.SortFunc(out, func(a, b *model.SavedDataset) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.DatasetID, b.DatasetID)
	})
	return out, nil
}

func (r *SavedRepository) Put(_ context.Context, saved *model.SavedDataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.saved[saved.User]
	if !ok {
		byUser = make(map[string]*model.SavedDataset)
		r.saved[saved.User] = byUser
	}
	copied := *saved
	byUser[saved.DatasetID] = &copied
	return nil
}

func (r *SavedRepository) Delete(_ context.Context, user, datasetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.saved[user][datasetID]; !ok {
		return goerr.New("saved dataset not found",
			goerr.V("user", user),
			goerr.V("dataset_id", datasetID),
			goerr.T(model.ErrTagNotFound))
	}
	delete(r.saved[user], datasetID)
	return nil
}
