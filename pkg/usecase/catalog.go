package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/singleflight"

	"github.com/m-mizutani/datamart/pkg/domain/catalog"
	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

const (
	// DefaultCacheKey is the snapshot cache key of the catalog payload
	DefaultCacheKey = "catalog:latest"

	// DefaultFetchTimeout bounds one fetch of the source
	DefaultFetchTimeout = 2 * time.Minute

	// DefaultRetryInterval is the minimum wait before a read retries a failed first load
	DefaultRetryInterval = 10 * time.Second

	refreshKey = "refresh"
	reloadKey  = "reload"
)

type catalogUseCase struct {
	source        interfaces.CatalogSource
	cache         interfaces.SnapshotCache
	cacheKey      string
	accessor      catalog.Accessor
	engine        *catalog.Engine
	now           func() time.Time
	fetchTimeout  time.Duration
	retryInterval time.Duration

	group singleflight.Group

	mu          sync.RWMutex
	loaded      bool
	nextAttempt time.Time
	started     uint64
	installed   uint64
	records     []*model.DatasetRecord
	byID        map[string]*model.DatasetRecord
	facets      []model.FacetCategory
	refreshedAt time.Time
}

// CatalogOption configures the catalog use case
type CatalogOption func(*catalogUseCase)

// WithSnapshotCache keeps the last good payload for fetch failures
func WithSnapshotCache(cache interfaces.SnapshotCache) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.cache = cache
	}
}

// WithCacheKey overrides DefaultCacheKey
func WithCacheKey(key string) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.cacheKey = key
	}
}

// WithAccessor sets how source JSON maps onto records
func WithAccessor(a catalog.Accessor) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.accessor = a
	}
}

// WithEngine replaces the default view engine
func WithEngine(e *catalog.Engine) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.engine = e
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.now = now
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout
func WithFetchTimeout(d time.Duration) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.fetchTimeout = d
	}
}

// WithRetryInterval overrides DefaultRetryInterval
func WithRetryInterval(d time.Duration) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.retryInterval = d
	}
}

// NewCatalog creates a new instance of CatalogUseCase
func NewCatalog(source interfaces.CatalogSource, opts ...CatalogOption) interfaces.CatalogUseCase {
	uc := &catalogUseCase{
		source:   source,
		cacheKey: DefaultCacheKey,
		accessor: catalog.RegistryAccessor,
		engine:   catalog.NewEngine(),
		now:      time.Now,
		records:  []*model.DatasetRecord{},
		byID:     map[string]*model.DatasetRecord{},
		facets:   []model.FacetCategory{},

		fetchTimeout:  DefaultFetchTimeout,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Refresh fetches and installs a new collection. Concurrent calls share one fetch.
// When the source fails before any collection was loaded, the cached snapshot is
// installed if there is one and the fetch error is still returned.
func (uc *catalogUseCase) Refresh(ctx context.Context) error {
	return uc.run(ctx, refreshKey)
}

// Reload starts a fetch that does not join a refresh already in flight, so the
// result reflects the source as of this call. Whichever fetch started last wins.
func (uc *catalogUseCase) Reload(ctx context.Context) error {
	return uc.run(ctx, reloadKey)
}

// run shares one fetch per key. The fetch is detached from the caller so a
// cancelled request does not fail it for every other reader.
func (uc *catalogUseCase) run(ctx context.Context, key string) error {
	ch := uc.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.fetchTimeout)
		defer cancel()
		return nil, uc.refresh(fetchCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "stopped waiting for catalog refresh")
	}
}

func (uc *catalogUseCase) refresh(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	uc.mu.Lock()
	uc.started++
	gen := uc.started
	uc.mu.Unlock()

	records, data, err := uc.fetch(ctx)
	if err != nil {
		logger.Error("Failed to refresh catalog", "error", err, "generation", gen)
		sentry.CaptureException(err)

		if uc.isLoaded() {
			return err
		}

		uc.mu.Lock()
		uc.nextAttempt = uc.now().Add(uc.retryInterval)
		uc.mu.Unlock()

		if cached := uc.fallback(ctx); cached != nil {
			uc.install(ctx, gen, cached, false)
		}
		return err
	}

	if uc.cache != nil {
		if err := uc.cache.Store(ctx, uc.cacheKey, data); err != nil {
			logger.Warn("Failed to store catalog snapshot", "error", err)
		}
	}

	uc.install(ctx, gen, records, true)
	return nil
}

func (uc *catalogUseCase) fetch(ctx context.Context) ([]*model.DatasetRecord, []byte, error) {
	data, err := uc.source.Fetch(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to fetch catalog")
	}

	records, err := catalog.Decode(data, uc.accessor)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to decode catalog")
	}
	return records, data, nil
}

// fallback decodes the cached snapshot. It returns nil when there is none.
func (uc *catalogUseCase) fallback(ctx context.Context) []*model.DatasetRecord {
	logger := ctxlog.From(ctx)

	if uc.cache == nil {
		return nil
	}

	data, err := uc.cache.Load(ctx, uc.cacheKey)
	if err != nil {
		logger.Warn("Failed to load catalog snapshot", "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	records, err := catalog.Decode(data, uc.accessor)
	if err != nil {
		logger.Warn("Cached catalog snapshot is broken", "error", err)
		return nil
	}

	logger.Info("Serving cached catalog snapshot", "datasets", len(records))
	return records
}

// install swaps in a new collection unless a later started fetch already installed one.
// fresh marks a collection read from the source rather than from the cache. A fresh
// collection always replaces a cached one.
func (uc *catalogUseCase) install(ctx context.Context, gen uint64, records []*model.DatasetRecord, fresh bool) {
	byID := make(map[string]*model.DatasetRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	facets := catalog.BuildFacets(records)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if gen < uc.installed && (uc.loaded || !fresh) {
		ctxlog.From(ctx).Info("Discarding stale catalog", "generation", gen, "installed", uc.installed)
		return
	}

	uc.records = records
	uc.byID = byID
	uc.facets = facets
	uc.installed = gen
	uc.loaded = uc.loaded || fresh
	uc.refreshedAt = uc.now()

	ctxlog.From(ctx).Info("Catalog installed",
		"datasets", len(records),
		"facets", len(facets),
		"generation", gen,
		"fresh", fresh,
	)
}

func (uc *catalogUseCase) isLoaded() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.loaded
}

// needsLoad reports whether a read should fetch: nothing was loaded from the
// source yet and the retry wait after the last failure has passed
func (uc *catalogUseCase) needsLoad() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return !uc.loaded && !uc.now().Before(uc.nextAttempt)
}

// snapshot returns the installed collection, loading it on first use
func (uc *catalogUseCase) snapshot(ctx context.Context) ([]*model.DatasetRecord, map[string]*model.DatasetRecord, []model.FacetCategory) {
	if uc.needsLoad() {
		// Errors are logged by refresh. Readers get whatever is installed.
		_ = uc.Refresh(ctx)
	}

	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.records, uc.byID, uc.facets
}

func (uc *catalogUseCase) Datasets(ctx context.Context, state model.FilterState) (*model.View, error) {
	records, _, _ := uc.snapshot(ctx)
	return uc.engine.View(records, state), nil
}

func (uc *catalogUseCase) Facets(ctx context.Context) ([]model.FacetCategory, error) {
	_, _, facets := uc.snapshot(ctx)
	return facets, nil
}

func (uc *catalogUseCase) Dataset(ctx context.Context, id string) (*model.DatasetRecord, error) {
	_, byID, _ := uc.snapshot(ctx)

	r, ok := byID[id]
	if !ok {
		return nil, goerr.New("dataset not found", goerr.V("id", id), goerr.T(model.ErrTagNotFound))
	}
	return r, nil
}

func (uc *catalogUseCase) Related(ctx context.Context, id string) ([]*model.DatasetRecord, error) {
	records, byID, _ := uc.snapshot(ctx)

	target, ok := byID[id]
	if !ok {
		return nil, goerr.New("dataset not found", goerr.V("id", id), goerr.T(model.ErrTagNotFound))
	}
	return catalog.Related(records, target, catalog.RelatedLimit), nil
}

func (uc *catalogUseCase) All(ctx context.Context) ([]*model.DatasetRecord, error) {
	records, _, _ := uc.snapshot(ctx)
	return records, nil
}

func (uc *catalogUseCase) RefreshedAt() time.Time {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.refreshedAt
}
