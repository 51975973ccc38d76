package domain

import "time"

// APIPayload is the raw JSON document published by the DWD open-data server.
// Timestamps arrive as "YYYY-MM-DD HH:MM Uhr" strings and stay unparsed here.
type APIPayload struct {
	LastUpdate string            `json:"last_update"`
	NextUpdate string            `json:"next_update"`
	Legend     map[string]string `json:"legend"`
	Content    []APIRegion       `json:"content"`
}

// APIRegion is one region entry of the raw payload. The "Pollen" key is
// capitalized in the source data.
type APIRegion struct {
	RegionID       int                  `json:"region_id"`
	RegionName     string               `json:"region_name"`
	PartregionID   int                  `json:"partregion_id"`
	PartregionName string               `json:"partregion_name"`
	Pollen         map[string]DayBucket `json:"Pollen"`
}

// DayBucket holds the three relative-day raw severity codes for one allergen.
// DayAfterTo is "-1" when the source has not committed that day yet.
type DayBucket struct {
	Today      string `json:"today"`
	Tomorrow   string `json:"tomorrow"`
	DayAfterTo string `json:"dayafter_to"`
}

// Legend maps a raw severity code (e.g. "1-2") to its human description.
type Legend map[string]string

// ForecastEntry is the decoded forecast for one allergen on one calendar date.
type ForecastEntry struct {
	Value float64 `json:"value"`
	Raw   string  `json:"raw"`
	Human string  `json:"human"`
	Color string  `json:"color"`
}

// AllergenForecast maps ISO calendar dates ("2006-01-02") to decoded entries.
// ISO dates sort lexicographically in calendar order, so JSON output is
// already chronological.
type AllergenForecast map[string]ForecastEntry

// RegionForecast is the fully decoded forecast for one (part)region.
type RegionForecast struct {
	RegionID       int                         `json:"region_id"`
	RegionName     string                      `json:"region_name"`
	PartregionID   int                         `json:"partregion_id"`
	PartregionName string                      `json:"partregion_name"`
	LastUpdate     time.Time                   `json:"last_update"`
	NextUpdate     time.Time                   `json:"next_update"`
	Pollen         map[string]AllergenForecast `json:"pollen"`
}

// Store holds one complete update pass: every region forecast keyed by
// "{region_id}-{partregion_id}", the legend it was decoded with, and the
// publisher's global update timestamps. A Store is built whole and swapped
// in whole; it is never patched incrementally.
type Store struct {
	Regions    map[string]RegionForecast
	Legend     Legend
	LastUpdate time.Time
	NextUpdate time.Time
}

// RegionInfo identifies one (part)region for listing surfaces.
type RegionInfo struct {
	RegionID       int    `json:"region_id"`
	RegionName     string `json:"region_name"`
	PartregionID   int    `json:"partregion_id"`
	PartregionName string `json:"partregion_name"`
}

// Snapshot is the on-disk cache representation of a Store. Timestamps
// marshal as RFC 3339; staleness is judged by the file's mtime, not by
// these fields.
type Snapshot struct {
	Data       map[string]RegionForecast `json:"data"`
	Legend     Legend                    `json:"legend"`
	LastUpdate time.Time                 `json:"last_update"`
	NextUpdate time.Time                 `json:"next_update"`
}

// ToSnapshot converts the Store into its serializable cache form.
func (s *Store) ToSnapshot() Snapshot {
	return Snapshot{
		Data:       s.Regions,
		Legend:     s.Legend,
		LastUpdate: s.LastUpdate,
		NextUpdate: s.NextUpdate,
	}
}

// FromSnapshot rebuilds a Store from a cache snapshot.
func FromSnapshot(snap Snapshot) *Store {
	return &Store{
		Regions:    snap.Data,
		Legend:     snap.Legend,
		LastUpdate: snap.LastUpdate,
		NextUpdate: snap.NextUpdate,
	}
}
