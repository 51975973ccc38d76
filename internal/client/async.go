package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
	"github.com/couchcryptid/dwd-pollen/internal/observability"
)

// AsyncClient is the suspension-capable variant. Construction may launch the
// first update as a detached goroutine; readers join that pending update
// exactly once through a one-shot completion signal before touching the
// store. There is no cache layer and no retry loop: each update is a single
// fetch attempt bounded by the transport timeout.
type AsyncClient struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	store   *domain.Store
	initial chan struct{} // closed when the launch-time update finishes; nil once joined
	initErr error
}

// NewAsync creates a suspension-mode client. With autoUpdate the first
// update starts immediately in the background.
func NewAsync(fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics, autoUpdate bool) *AsyncClient {
	c := &AsyncClient{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
	if autoUpdate {
		done := make(chan struct{})
		c.initial = done
		go func() {
			err := c.Update(context.Background())
			c.mu.Lock()
			c.initErr = err
			c.mu.Unlock()
			close(done)
		}()
	}
	return c
}

// Update fetches the report once and rebuilds the store all-or-nothing.
func (c *AsyncClient) Update(ctx context.Context) error {
	start := time.Now()

	payload, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.metrics.Updates.WithLabelValues("network", "failure").Inc()
		return err
	}

	store, err := domain.BuildStore(payload)
	if err != nil {
		c.metrics.Updates.WithLabelValues("network", "failure").Inc()
		return fmt.Errorf("rebuild store: %w", err)
	}

	c.mu.Lock()
	c.store = store
	c.mu.Unlock()

	c.metrics.RegionsLoaded.Set(float64(len(store.Regions)))
	c.metrics.LastUpdateTime.Set(float64(store.LastUpdate.Unix()))
	c.metrics.Updates.WithLabelValues("network", "success").Inc()
	c.metrics.UpdateDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("pollen data updated",
		"regions", len(store.Regions), "last_update", store.LastUpdate)
	return nil
}

// awaitInit joins the launch-time update if one is still pending. The
// pending handle is cleared after the first join; later calls are no-ops,
// so an initialization failure surfaces to exactly one reader.
func (c *AsyncClient) awaitInit(ctx context.Context) error {
	c.mu.Lock()
	done := c.initial
	c.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initial == nil {
		return nil
	}
	c.initial = nil
	err := c.initErr
	c.initErr = nil
	return err
}

// Get returns the forecast for one (part)region, joining a pending
// initialization first. An absent key triggers one more update attempt
// before a not-found condition is reported.
func (c *AsyncClient) Get(ctx context.Context, regionID, partregionID int) (domain.RegionForecast, error) {
	if err := c.awaitInit(ctx); err != nil {
		return domain.RegionForecast{}, err
	}

	key := domain.RegionKey(regionID, partregionID)
	if region, ok := lookupRegion(c.snapshotStore(), key); ok {
		return region, nil
	}

	if err := c.Update(ctx); err != nil {
		c.logger.Warn("update after miss failed", "key", key, "error", err)
	}
	if region, ok := lookupRegion(c.snapshotStore(), key); ok {
		return region, nil
	}
	return domain.RegionForecast{}, fmt.Errorf("%w: %s", domain.ErrRegionNotFound, key)
}

// Regions lists all (part)regions currently in the store, sorted.
func (c *AsyncClient) Regions(ctx context.Context) ([]domain.RegionInfo, error) {
	if err := c.awaitInit(ctx); err != nil {
		return nil, err
	}
	return storeRegions(c.snapshotStore()), nil
}

// AllergenNames returns the sorted union of allergen names in the store.
func (c *AsyncClient) AllergenNames(ctx context.Context) ([]string, error) {
	if err := c.awaitInit(ctx); err != nil {
		return nil, err
	}
	return storeAllergens(c.snapshotStore()), nil
}

// Allergen returns one allergen's forecast for a region.
func (c *AsyncClient) Allergen(ctx context.Context, regionID, partregionID int, allergen string) (domain.AllergenForecast, error) {
	region, err := c.Get(ctx, regionID, partregionID)
	if err != nil {
		return nil, err
	}
	forecast, ok := region.Pollen[allergen]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", domain.ErrAllergenNotFound, allergen,
			domain.RegionKey(regionID, partregionID))
	}
	return forecast, nil
}

// Summary maps each forecast date of a region to per-allergen descriptions.
func (c *AsyncClient) Summary(ctx context.Context, regionID, partregionID int) (map[string]map[string]string, error) {
	region, err := c.Get(ctx, regionID, partregionID)
	if err != nil {
		return nil, err
	}
	return regionSummary(region), nil
}

// LastUpdate returns the publisher timestamp of the current store, or the
// zero time when no data is loaded. It does not join a pending init.
func (c *AsyncClient) LastUpdate() time.Time {
	if store := c.snapshotStore(); store != nil {
		return store.LastUpdate
	}
	return time.Time{}
}

// NextUpdate returns the publisher's announced next update time, or the
// zero time when no data is loaded.
func (c *AsyncClient) NextUpdate() time.Time {
	if store := c.snapshotStore(); store != nil {
		return store.NextUpdate
	}
	return time.Time{}
}

// RegionCount reports how many region forecasts the current store holds.
func (c *AsyncClient) RegionCount() int {
	if store := c.snapshotStore(); store != nil {
		return len(store.Regions)
	}
	return 0
}

func (c *AsyncClient) snapshotStore() *domain.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}
