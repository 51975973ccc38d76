package client

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
	"github.com/couchcryptid/dwd-pollen/internal/observability"
)

// blockingFetcher parks every Fetch call until released.
type blockingFetcher struct {
	payload domain.APIPayload
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (f *blockingFetcher) Fetch(ctx context.Context) (domain.APIPayload, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	select {
	case <-ctx.Done():
		return domain.APIPayload{}, ctx.Err()
	case <-f.release:
		return f.payload, nil
	}
}

func (f *blockingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestAsync(fetcher Fetcher, autoUpdate bool) *AsyncClient {
	return NewAsync(fetcher, testLogger(), observability.NewMetricsForTesting(), autoUpdate)
}

func TestAsync_Update_SingleAttempt(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: down", domain.ErrFetchFailed)}
	c := newTestAsync(fetcher, false)

	err := c.Update(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Equal(t, 1, fetcher.calls, "suspension mode never retries internally")
}

func TestAsync_AutoUpdate_ReaderJoinsPendingInit(t *testing.T) {
	freezeFriday(t)
	fetcher := &blockingFetcher{payload: testPayload(), release: make(chan struct{})}
	c := newTestAsync(fetcher, true)

	got := make(chan []domain.RegionInfo)
	go func() {
		regions, err := c.Regions(context.Background())
		require.NoError(t, err)
		got <- regions
	}()

	// The reader must be parked on the pending initialization.
	select {
	case <-got:
		t.Fatal("reader returned before the initial update finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(fetcher.release)

	select {
	case regions := <-got:
		assert.Len(t, regions, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("reader never unparked")
	}
}

func TestAsync_InitJoinedExactlyOnce(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	c := newTestAsync(fetcher, true)

	_, err := c.Regions(context.Background())
	require.NoError(t, err)
	assert.Nil(t, c.initial, "pending handle cleared after first join")

	// Re-awaiting after completion is a no-op, not an error.
	_, err = c.Regions(context.Background())
	require.NoError(t, err)
}

func TestAsync_InitFailureSurfacesToFirstReaderOnly(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: down", domain.ErrFetchFailed)}
	c := newTestAsync(fetcher, true)

	_, err := c.AllergenNames(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)

	// Second reader sees an empty store, not the stale init error.
	names, err := c.AllergenNames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestAsync_AwaitInitHonorsContext(t *testing.T) {
	fetcher := &blockingFetcher{release: make(chan struct{})}
	c := newTestAsync(fetcher, true)
	defer close(fetcher.release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Regions(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotNil(t, c.initial, "handle stays pending for the next reader")
}

func TestAsync_Get_MissTriggersOneUpdate(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	c := newTestAsync(fetcher, false)

	region, err := c.Get(context.Background(), 50, -1)
	require.NoError(t, err)
	assert.Equal(t, "Brandenburg und Berlin", region.RegionName)
	assert.Equal(t, 1, fetcher.calls)

	_, err = c.Get(context.Background(), 120, 121)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegionNotFound)
	assert.Equal(t, 2, fetcher.calls, "one more update for the miss, no retries")
}

func TestAsync_QueryFacade(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	c := newTestAsync(fetcher, false)
	require.NoError(t, c.Update(context.Background()))

	names, err := c.AllergenNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Birke", "Gräser", "Hasel"}, names)

	forecast, err := c.Allergen(context.Background(), 50, -1, "Birke")
	require.NoError(t, err)
	assert.Len(t, forecast, 2)

	summary, err := c.Summary(context.Background(), 50, -1)
	require.NoError(t, err)
	assert.Contains(t, summary, "2025-06-06")

	_, err = c.Allergen(context.Background(), 50, -1, "Roggen")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllergenNotFound)
}
