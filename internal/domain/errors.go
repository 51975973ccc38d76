package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed wraps transport-level failures: network errors,
	// non-2xx responses, and malformed bodies.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrRegionNotFound is returned when a composite region key is absent
	// even after a forced update. It signals a normal miss, not corruption.
	ErrRegionNotFound = errors.New("region not found")

	// ErrAllergenNotFound is returned when a region has no forecast for the
	// requested allergen.
	ErrAllergenNotFound = errors.New("allergen not found")

	// ErrLegendEntryMissing indicates a forecast value code with no legend
	// entry. There is no safe default description, so the update aborts.
	ErrLegendEntryMissing = errors.New("legend entry missing")
)

// RegionKey builds the composite store key for a (part)region.
func RegionKey(regionID, partregionID int) string {
	return fmt.Sprintf("%d-%d", regionID, partregionID)
}
