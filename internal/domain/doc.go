// Package domain models the Deutscher Wetterdienst (DWD) pollen-load report
// and the pure transformations that turn it into a calendar-dated forecast.
//
// # Data Source
//
// The DWD publishes one JSON document per day at
// https://opendata.dwd.de/climate_environment/health/alerts/s31fg.json,
// covering all German forecast regions. Each region carries, per allergen,
// a bucket of three relative-day severity codes:
//
//	{"today": "2", "tomorrow": "1-2", "dayafter_to": "-1"}
//
// Codes are single integers ("3") or hyphenated ranges ("1-2"). The value
// "-1" in dayafter_to is the publisher's sentinel for "not yet available".
// A legend object maps each code to a German description via paired keys:
//
//	{"id1": "0", "id1_desc": "keine Belastung", "id2": "0-1", ...}
//
// # Day-Slot Semantics
//
// The three buckets form a rolling window whose slots are reinterpreted near
// the weekend, following the publisher's own reporting cadence:
//
//	Mon-Thu: today -> today's date, tomorrow -> tomorrow's date.
//	Fri:     as above, plus dayafter_to -> the day after tomorrow
//	         (unless "-1").
//	Sat:     the "tomorrow" slot is pre-shifted onto today's date; no
//	         separate tomorrow entry. dayafter_to as on Friday.
//	Sun:     only dayafter_to (unless "-1"); no today or tomorrow entries.
//
// The shifted Saturday mapping drops the bucket's "today" value entirely.
// That asymmetry is observed source behavior and is preserved, not corrected.
//
// All date arithmetic happens in Europe/Berlin, matching the publisher's day
// boundaries. The resulting forecast only ever contains dates the source has
// actually committed data for: zero entries (Sunday with "-1") up to three
// (Friday with a committed day-after value).
//
// # Severity Values
//
// A code's numeric value is the arithmetic mean of its hyphen-split integer
// parts: "3" -> 3.0, "1-2" -> 1.5. Values map onto a five-band color scale
// with inclusive-low boundaries:
//
//	<= 0.0  #00FF00 (green, no load)
//	<= 1.0  #ADFF2F (green-yellow, low)
//	<= 2.0  #FFFF00 (yellow, medium)
//	<= 2.5  #FFA500 (orange, medium-high)
//	otherwise #FF0000 (red, high)
//
// The publisher's update timestamps use the format "2006-01-02 15:04 Uhr"
// and are parsed as Europe/Berlin local time.
package domain
