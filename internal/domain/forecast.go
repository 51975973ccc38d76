package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

// Berlin is the publisher's civil time zone. All forecast dates and update
// timestamps are anchored here regardless of the host's local zone.
var Berlin = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic("load Europe/Berlin: " + err.Error())
	}
	return loc
}()

// notAvailable is the publisher's sentinel for a day-after value that has
// not been committed yet.
const notAvailable = "-1"

// CodeValue decodes a raw severity code into its numeric value: the
// arithmetic mean of the hyphen-split integer parts, so "3" -> 3.0 and
// "1-2" -> 1.5.
func CodeValue(raw string) (float64, error) {
	parts := strings.Split(raw, "-")
	sum := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("decode severity code %q: %w", raw, err)
		}
		sum += n
	}
	return float64(sum) / float64(len(parts)), nil
}

// ColorForValue maps a numeric severity onto the five-band color scale.
// Boundaries are inclusive on the low side of each band.
func ColorForValue(value float64) string {
	switch {
	case value <= 0.0:
		return "#00FF00" // green, no load
	case value <= 1.0:
		return "#ADFF2F" // green-yellow, low load
	case value <= 2.0:
		return "#FFFF00" // yellow, medium load
	case value <= 2.5:
		return "#FFA500" // orange, medium-high load
	default:
		return "#FF0000" // red, high load
	}
}

// assignDaySlots maps the bucket's relative-day codes onto calendar dates
// for the given reference instant, applying the publisher's weekend slot
// shifts. Stateless on purpose so the weekday rules are testable without a
// client. See the package documentation for the full slot semantics.
func assignDaySlots(ref time.Time, bucket DayBucket) map[string]string {
	ref = ref.In(Berlin)
	today := ref.Format(dateFormat)
	tomorrow := ref.AddDate(0, 0, 1).Format(dateFormat)
	dayAfter := ref.AddDate(0, 0, 2).Format(dateFormat)

	slots := make(map[string]string, 3)
	switch ref.Weekday() {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		slots[today] = bucket.Today
		slots[tomorrow] = bucket.Tomorrow
	case time.Friday:
		slots[today] = bucket.Today
		slots[tomorrow] = bucket.Tomorrow
		if bucket.DayAfterTo != notAvailable {
			slots[dayAfter] = bucket.DayAfterTo
		}
	case time.Saturday:
		// The source pre-shifts weekend data: the "tomorrow" slot already
		// describes the computed today, and the bucket's "today" value is
		// not committed at all.
		slots[today] = bucket.Tomorrow
		if bucket.DayAfterTo != notAvailable {
			slots[dayAfter] = bucket.DayAfterTo
		}
	case time.Sunday:
		if bucket.DayAfterTo != notAvailable {
			slots[dayAfter] = bucket.DayAfterTo
		}
	}
	return slots
}

// BuildAllergenForecast transforms one allergen's day bucket into a
// date-keyed forecast anchored at ref. The legend must already contain every
// code the bucket commits; a missing entry aborts the whole update because
// no safe default description exists.
func BuildAllergenForecast(ref time.Time, legend Legend, bucket DayBucket) (AllergenForecast, error) {
	forecast := make(AllergenForecast, 3)
	for date, code := range assignDaySlots(ref, bucket) {
		entry, err := decodeEntry(legend, code)
		if err != nil {
			return nil, err
		}
		forecast[date] = entry
	}
	return forecast, nil
}

func decodeEntry(legend Legend, code string) (ForecastEntry, error) {
	value, err := CodeValue(code)
	if err != nil {
		return ForecastEntry{}, err
	}
	human, ok := legend[code]
	if !ok {
		return ForecastEntry{}, fmt.Errorf("%w: code %q", ErrLegendEntryMissing, code)
	}
	return ForecastEntry{
		Value: value,
		Raw:   code,
		Human: human,
		Color: ColorForValue(value),
	}, nil
}
