package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"
)

// Cache stores catalog snapshots in a badger database
type Cache struct {
	db *badger.DB
}

// New opens a cache at path. An empty path keeps the cache in memory.
func New(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open badger", goerr.V("path", path))
	}

	return &Cache{db: db}, nil
}

// Load returns the payload stored under key, or nil when absent
func (c *Cache) Load(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load snapshot", goerr.V("key", key))
	}
	return data, nil
}

// Store replaces the payload under key
func (c *Cache) Store(_ context.Context, key string, data []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to store snapshot", goerr.V("key", key), goerr.V("size", len(data)))
	}
	return nil
}

// Close releases the database
func (c *Cache) Close() error {
	return c.db.Close()
}
