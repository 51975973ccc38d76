// Package client implements the update orchestrator and query façade over
// the pollen forecast store, in a blocking and a suspension-capable variant.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
	"github.com/couchcryptid/dwd-pollen/internal/observability"
)

// Fetcher performs a single transport attempt against the pollen report.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.APIPayload, error)
}

// SnapshotStore persists and restores the engine's single snapshot slot.
// Both operations are best-effort; Load reports usability, never an error.
type SnapshotStore interface {
	Load() (domain.Snapshot, bool)
	Save(domain.Snapshot)
}

// Client is the blocking variant: every operation runs on the caller's
// goroutine and Update blocks through the full retry schedule. The client
// owns its store exclusively; it is not safe for concurrent use.
type Client struct {
	fetcher    Fetcher
	cache      SnapshotStore
	logger     *slog.Logger
	metrics    *observability.Metrics
	retryCount int
	retryDelay time.Duration

	store *domain.Store
}

// New creates a blocking client. retryCount is the total number of fetch
// attempts per update; retryDelay is the fixed pause between them.
func New(fetcher Fetcher, cache SnapshotStore, logger *slog.Logger, metrics *observability.Metrics, retryCount int, retryDelay time.Duration) *Client {
	return &Client{
		fetcher:    fetcher,
		cache:      cache,
		logger:     logger,
		metrics:    metrics,
		retryCount: retryCount,
		retryDelay: retryDelay,
	}
}

// Update refreshes the store. Without force, a usable cache snapshot is
// adopted and no network call happens. Otherwise the report is fetched with
// retries and rebuilt all-or-nothing; any failure leaves the prior store
// untouched. A successful rebuild is persisted to the cache best-effort.
func (c *Client) Update(ctx context.Context, force bool) error {
	start := time.Now()

	if !force {
		if snap, ok := c.cache.Load(); ok {
			c.metrics.CacheLookups.WithLabelValues("hit").Inc()
			c.adopt(domain.FromSnapshot(snap))
			c.metrics.Updates.WithLabelValues("cache", "success").Inc()
			c.logger.Debug("adopted cached snapshot", "last_update", c.store.LastUpdate)
			return nil
		}
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	payload, err := c.fetchWithRetry(ctx)
	if err != nil {
		c.metrics.Updates.WithLabelValues("network", "failure").Inc()
		return err
	}

	store, err := domain.BuildStore(payload)
	if err != nil {
		c.metrics.Updates.WithLabelValues("network", "failure").Inc()
		return fmt.Errorf("rebuild store: %w", err)
	}

	c.adopt(store)
	c.cache.Save(store.ToSnapshot())
	c.metrics.Updates.WithLabelValues("network", "success").Inc()
	c.metrics.UpdateDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("pollen data updated",
		"regions", len(store.Regions), "last_update", store.LastUpdate, "next_update", store.NextUpdate)
	return nil
}

// fetchWithRetry runs up to retryCount attempts with a fixed delay between
// them. The last attempt's error is surfaced once all attempts are spent.
func (c *Client) fetchWithRetry(ctx context.Context) (domain.APIPayload, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryCount; attempt++ {
		payload, err := c.fetcher.Fetch(ctx)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		c.logger.Warn("fetch attempt failed", "attempt", attempt, "of", c.retryCount, "error", err)

		if attempt < c.retryCount {
			if !sleepWithContext(ctx, c.retryDelay) {
				return domain.APIPayload{}, ctx.Err()
			}
		}
	}
	return domain.APIPayload{}, fmt.Errorf("fetch failed after %d attempts: %w", c.retryCount, lastErr)
}

func (c *Client) adopt(store *domain.Store) {
	c.store = store
	c.metrics.RegionsLoaded.Set(float64(len(store.Regions)))
	c.metrics.LastUpdateTime.Set(float64(store.LastUpdate.Unix()))
}

// Get returns the forecast for one (part)region. An absent key triggers
// exactly one forced update before the lookup is retried; a key still
// absent afterwards is a not-found condition, never an empty result.
func (c *Client) Get(ctx context.Context, regionID, partregionID int) (domain.RegionForecast, error) {
	key := domain.RegionKey(regionID, partregionID)
	if region, ok := lookupRegion(c.store, key); ok {
		return region, nil
	}

	if err := c.Update(ctx, true); err != nil {
		c.logger.Warn("forced update after miss failed", "key", key, "error", err)
	}
	if region, ok := lookupRegion(c.store, key); ok {
		return region, nil
	}
	return domain.RegionForecast{}, fmt.Errorf("%w: %s", domain.ErrRegionNotFound, key)
}

// Regions lists all (part)regions currently in the store, sorted by region
// ID, partregion ID, then names.
func (c *Client) Regions() []domain.RegionInfo {
	return storeRegions(c.store)
}

// AllergenNames returns the sorted union of allergen names across all
// regions in the store.
func (c *Client) AllergenNames() []string {
	return storeAllergens(c.store)
}

// Allergen returns one allergen's forecast for a region, using the same
// refetch-on-miss behavior as Get.
func (c *Client) Allergen(ctx context.Context, regionID, partregionID int, allergen string) (domain.AllergenForecast, error) {
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

// Summary maps each forecast date of a region to the human description per
// allergen. Allergens without an entry for a date are omitted from that
// date's map.
func (c *Client) Summary(ctx context.Context, regionID, partregionID int) (map[string]map[string]string, error) {
	region, err := c.Get(ctx, regionID, partregionID)
	if err != nil {
		return nil, err
	}
	return regionSummary(region), nil
}

// LastUpdate returns the publisher timestamp of the current store, or the
// zero time when no data is loaded.
func (c *Client) LastUpdate() time.Time {
	if c.store == nil {
		return time.Time{}
	}
	return c.store.LastUpdate
}

// NextUpdate returns the publisher's announced next update time, or the
// zero time when no data is loaded.
func (c *Client) NextUpdate() time.Time {
	if c.store == nil {
		return time.Time{}
	}
	return c.store.NextUpdate
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
