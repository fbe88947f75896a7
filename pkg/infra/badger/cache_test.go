package badger_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/datamart/pkg/infra/badger"
)

func TestCache_InMemory(t *testing.T) {
	ctx := context.Background()
	cache, err := badger.New("")
	gt.NoError(t, err)
	defer func() {
		_ = cache.Close()
	}()

	data, err := cache.Load(ctx, "catalog")
	gt.NoError(t, err)
	gt.V(t, data).Nil()

	gt.NoError(t, cache.Store(ctx, "catalog", []byte(`[{"id":"a"}]`)))
	gt.NoError(t, cache.Store(ctx, "catalog", []byte(`[{"id":"b"}]`)))

	data, err = cache.Load(ctx, "catalog")
	gt.NoError(t, err)
	gt.Equal(t, string(data), `[{"id":"b"}]`)
}

func TestCache_OnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cache, err := badger.New(dir)
	gt.NoError(t, err)
	gt.NoError(t, cache.Store(ctx, "catalog", []byte(`[]`)))
	gt.NoError(t, cache.Close())

	reopened, err := badger.New(dir)
	gt.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()

	data, err := reopened.Load(ctx, "catalog")
	gt.NoError(t, err)
	gt.Equal(t, string(data), `[]`)
}
