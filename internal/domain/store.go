package domain

import (
	"fmt"
	"time"
)

// updateTimeFormat is the publisher's timestamp layout, e.g.
// "2025-06-06 11:00 Uhr". Parsed as Europe/Berlin local time.
const updateTimeFormat = "2006-01-02 15:04 Uhr"

// ParseUpdateTime parses a publisher update timestamp.
func ParseUpdateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(updateTimeFormat, s, Berlin)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse update time %q: %w", s, err)
	}
	return t, nil
}

// BuildStore runs one full update pass over a raw payload: it parses the
// global timestamps, decodes the legend once, and builds every region
// forecast, keyed by "{region_id}-{partregion_id}". The reference instant
// for day-slot assignment comes from the package clock.
//
// The pass is all-or-nothing: any failure returns a nil Store and the caller
// keeps whatever it held before.
func BuildStore(payload APIPayload) (*Store, error) {
	lastUpdate, err := ParseUpdateTime(payload.LastUpdate)
	if err != nil {
		return nil, err
	}
	nextUpdate, err := ParseUpdateTime(payload.NextUpdate)
	if err != nil {
		return nil, err
	}
	legend, err := BuildLegend(payload.Legend)
	if err != nil {
		return nil, err
	}

	ref := clock.Now()
	store := &Store{
		Regions:    make(map[string]RegionForecast, len(payload.Content)),
		Legend:     legend,
		LastUpdate: lastUpdate,
		NextUpdate: nextUpdate,
	}
	for _, region := range payload.Content {
		pollen := make(map[string]AllergenForecast, len(region.Pollen))
		for allergen, bucket := range region.Pollen {
			forecast, err := BuildAllergenForecast(ref, legend, bucket)
			if err != nil {
				return nil, fmt.Errorf("region %s allergen %s: %w",
					RegionKey(region.RegionID, region.PartregionID), allergen, err)
			}
			pollen[allergen] = forecast
		}
		store.Regions[RegionKey(region.RegionID, region.PartregionID)] = RegionForecast{
			RegionID:       region.RegionID,
			RegionName:     region.RegionName,
			PartregionID:   region.PartregionID,
			PartregionName: region.PartregionName,
			LastUpdate:     lastUpdate,
			NextUpdate:     nextUpdate,
			Pollen:         pollen,
		}
	}
	return store, nil
}
