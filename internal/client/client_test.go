package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
	"github.com/couchcryptid/dwd-pollen/internal/observability"
)

// --- test doubles ---

type fakeFetcher struct {
	payload domain.APIPayload
	err     error
	calls   int
	// errsBefore makes the first n calls fail before succeeding.
	errsBefore int
}

func (f *fakeFetcher) Fetch(_ context.Context) (domain.APIPayload, error) {
	f.calls++
	if f.err != nil {
		return domain.APIPayload{}, f.err
	}
	if f.calls <= f.errsBefore {
		return domain.APIPayload{}, fmt.Errorf("%w: transient", domain.ErrFetchFailed)
	}
	return f.payload, nil
}

type fakeCache struct {
	snap   domain.Snapshot
	usable bool
	loads  int
	saved  []domain.Snapshot
}

func (f *fakeCache) Load() (domain.Snapshot, bool) {
	f.loads++
	return f.snap, f.usable
}

func (f *fakeCache) Save(snap domain.Snapshot) {
	f.saved = append(f.saved, snap)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPayload() domain.APIPayload {
	return domain.APIPayload{
		LastUpdate: "2025-06-06 11:00 Uhr",
		NextUpdate: "2025-06-07 11:00 Uhr",
		Legend: map[string]string{
			"id1": "0", "id1_desc": "keine Belastung",
			"id2": "1", "id2_desc": "geringe Belastung",
			"id3": "2", "id3_desc": "mittlere Belastung",
			"id4": "3", "id4_desc": "hohe Belastung",
		},
		Content: []domain.APIRegion{
			{
				RegionID: 50, RegionName: "Brandenburg und Berlin", PartregionID: -1,
				Pollen: map[string]domain.DayBucket{
					"Birke":  {Today: "2", Tomorrow: "1", DayAfterTo: "-1"},
					"Gräser": {Today: "3", Tomorrow: "3", DayAfterTo: "2"},
				},
			},
			{
				RegionID: 90, RegionName: "Hessen", PartregionID: 92, PartregionName: "Rhein-Main",
				Pollen: map[string]domain.DayBucket{
					"Hasel": {Today: "0", Tomorrow: "0", DayAfterTo: "-1"},
				},
			},
		},
	}
}

func newTestClient(fetcher Fetcher, cache SnapshotStore) *Client {
	return New(fetcher, cache, testLogger(), observability.NewMetricsForTesting(), 3, 0)
}

func freezeFriday(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.June, 6, 12, 0, 0, 0, domain.Berlin)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

// --- Update ---

func TestClient_Update_AdoptsUsableCache(t *testing.T) {
	freezeFriday(t)
	store, err := domain.BuildStore(testPayload())
	require.NoError(t, err)

	fetcher := &fakeFetcher{payload: testPayload()}
	cache := &fakeCache{snap: store.ToSnapshot(), usable: true}
	c := newTestClient(fetcher, cache)

	require.NoError(t, c.Update(context.Background(), false))

	assert.Equal(t, 0, fetcher.calls, "usable cache must prevent any transport call")
	assert.Equal(t, store.LastUpdate, c.LastUpdate())
}

func TestClient_Update_ForceBypassesCache(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	cache := &fakeCache{usable: true}
	c := newTestClient(fetcher, cache)

	require.NoError(t, c.Update(context.Background(), true))

	assert.Equal(t, 0, cache.loads)
	assert.Equal(t, 1, fetcher.calls)
}

func TestClient_Update_FetchesAndSaves(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	cache := &fakeCache{}
	c := newTestClient(fetcher, cache)

	require.NoError(t, c.Update(context.Background(), false))

	assert.Equal(t, 1, fetcher.calls)
	require.Len(t, cache.saved, 1)
	assert.Len(t, cache.saved[0].Data, 2)
	assert.Equal(t, c.LastUpdate(), cache.saved[0].LastUpdate)
	assert.Equal(t, time.Date(2025, time.June, 7, 11, 0, 0, 0, domain.Berlin), c.NextUpdate())
}

func TestClient_Update_RetryExhaustion(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: connection refused", domain.ErrFetchFailed)}
	c := newTestClient(fetcher, &fakeCache{})

	err := c.Update(context.Background(), true)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, fetcher.calls, "exactly retryCount attempts")
}

func TestClient_Update_RetrySucceedsMidway(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload(), errsBefore: 2}
	c := newTestClient(fetcher, &fakeCache{})

	require.NoError(t, c.Update(context.Background(), true))
	assert.Equal(t, 3, fetcher.calls)
}

func TestClient_Update_CancelledBetweenRetries(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: down", domain.ErrFetchFailed)}
	c := New(fetcher, &fakeCache{}, testLogger(), observability.NewMetricsForTesting(), 3, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Update(ctx, true)

	require.Error(t, err)
	assert.Less(t, fetcher.calls, 3)
}

func TestClient_Update_AllOrNothing(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	c := newTestClient(fetcher, &fakeCache{})
	require.NoError(t, c.Update(context.Background(), true))
	before := c.LastUpdate()

	// Second pass delivers a payload whose legend is missing a used code,
	// failing the rebuild halfway through the regions.
	bad := testPayload()
	bad.LastUpdate = "2025-06-07 11:00 Uhr"
	delete(bad.Legend, "id4")
	delete(bad.Legend, "id4_desc")
	fetcher.payload = bad

	err := c.Update(context.Background(), true)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLegendEntryMissing)
	assert.Equal(t, before, c.LastUpdate(), "failed update must leave the prior store")

	region, err := c.Get(context.Background(), 50, -1)
	require.NoError(t, err)
	assert.Equal(t, before, region.LastUpdate)
}

// --- Query façade ---

func TestClient_Get_MissTriggersOneForcedUpdate(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	cache := &fakeCache{usable: true} // usable but empty; force must bypass it
	c := newTestClient(fetcher, cache)

	region, err := c.Get(context.Background(), 90, 92)
	require.NoError(t, err)

	assert.Equal(t, "Rhein-Main", region.PartregionName)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 0, cache.loads)
}

func TestClient_Get_NotFoundAfterForcedUpdate(t *testing.T) {
	freezeFriday(t)
	fetcher := &fakeFetcher{payload: testPayload()}
	c := newTestClient(fetcher, &fakeCache{})

	_, err := c.Get(context.Background(), 120, 121)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegionNotFound)
	assert.Equal(t, 1, fetcher.calls, "exactly one forced update per miss")
}

func TestClient_Get_TransportDownStillNotFound(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: down", domain.ErrFetchFailed)}
	c := newTestClient(fetcher, &fakeCache{})

	_, err := c.Get(context.Background(), 50, -1)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegionNotFound)
}

func TestClient_Regions_Sorted(t *testing.T) {
	freezeFriday(t)
	c := newTestClient(&fakeFetcher{payload: testPayload()}, &fakeCache{})
	require.NoError(t, c.Update(context.Background(), true))

	regions := c.Regions()

	require.Len(t, regions, 2)
	assert.Equal(t, 50, regions[0].RegionID)
	assert.Equal(t, 90, regions[1].RegionID)
}

func TestClient_Regions_EmptyBeforeUpdate(t *testing.T) {
	c := newTestClient(&fakeFetcher{}, &fakeCache{})
	assert.Empty(t, c.Regions())
	assert.Empty(t, c.AllergenNames())
}

func TestClient_AllergenNames_SortedUnion(t *testing.T) {
	freezeFriday(t)
	c := newTestClient(&fakeFetcher{payload: testPayload()}, &fakeCache{})
	require.NoError(t, c.Update(context.Background(), true))

	assert.Equal(t, []string{"Birke", "Gräser", "Hasel"}, c.AllergenNames())
}

func TestClient_Allergen(t *testing.T) {
	freezeFriday(t)
	c := newTestClient(&fakeFetcher{payload: testPayload()}, &fakeCache{})
	require.NoError(t, c.Update(context.Background(), true))

	forecast, err := c.Allergen(context.Background(), 50, -1, "Gräser")
	require.NoError(t, err)
	assert.Len(t, forecast, 3, "Friday with committed day-after has three dates")

	_, err = c.Allergen(context.Background(), 50, -1, "Ambrosia")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllergenNotFound)
}

func TestClient_Summary(t *testing.T) {
	freezeFriday(t)
	c := newTestClient(&fakeFetcher{payload: testPayload()}, &fakeCache{})
	require.NoError(t, c.Update(context.Background(), true))

	summary, err := c.Summary(context.Background(), 50, -1)
	require.NoError(t, err)

	// Birke covers Fri+Sat, Gräser covers Fri+Sat+Sun.
	require.Len(t, summary, 3)
	assert.Equal(t, map[string]string{
		"Birke":  "mittlere Belastung",
		"Gräser": "hohe Belastung",
	}, summary["2025-06-06"])
	assert.Equal(t, map[string]string{
		"Gräser": "mittlere Belastung",
	}, summary["2025-06-08"], "Birke has no Sunday entry and is omitted")
}

func TestClient_Update_PlainErrorStillSurfaces(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	c := newTestClient(fetcher, &fakeCache{})

	err := c.Update(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, 3, fetcher.calls)
}
