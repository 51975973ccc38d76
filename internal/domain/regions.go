package domain

import "sort"

// KnownRegion is one entry of the static DWD region table. Partregion -1
// with an empty name means the region has no subdivision.
type KnownRegion struct {
	RegionID       int
	RegionName     string
	PartregionID   int
	PartregionName string
}

// knownRegions enumerates every valid region/partregion pair the DWD
// publishes. Used only by listing surfaces, never consulted by the forecast
// engine itself.
var knownRegions = []KnownRegion{
	{10, "Schleswig-Holstein und Hamburg", 11, "Inseln und Marschen"},
	{10, "Schleswig-Holstein und Hamburg", 12, "Geest, Schleswig-Holstein und Hamburg"},
	{20, "Mecklenburg-Vorpommern", -1, ""},
	{30, "Niedersachsen und Bremen", 31, "Westl. Niedersachsen/Bremen"},
	{30, "Niedersachsen und Bremen", 32, "Östl. Niedersachsen"},
	{40, "Nordrhein-Westfalen", 41, "Rhein.-Westfäl. Tiefland"},
	{40, "Nordrhein-Westfalen", 42, "Ostwestfalen"},
	{40, "Nordrhein-Westfalen", 43, "Mittelgebirge NRW"},
	{50, "Brandenburg und Berlin", -1, ""},
	{60, "Sachsen-Anhalt", 61, "Tiefland Sachsen-Anhalt"},
	{60, "Sachsen-Anhalt", 62, "Harz"},
	{70, "Thüringen", 71, "Tiefland Thüringen"},
	{70, "Thüringen", 72, "Mittelgebirge Thüringen"},
	{80, "Sachsen", 81, "Tiefland Sachsen"},
	{80, "Sachsen", 82, "Mittelgebirge Sachsen"},
	{90, "Hessen", 91, "Nordhessen und hess. Mittelgebirge"},
	{90, "Hessen", 92, "Rhein-Main"},
	{100, "Rheinland-Pfalz und Saarland", 101, "Rhein, Pfalz, Nahe und Mosel"},
	{100, "Rheinland-Pfalz und Saarland", 102, "Mittelgebirgsbereich Rheinland-Pfalz"},
	{100, "Rheinland-Pfalz und Saarland", 103, "Saarland"},
	{110, "Baden-Württemberg", 111, "Oberrhein und unteres Neckartal"},
	{110, "Baden-Württemberg", 112, "Hohenlohe/mittlerer Neckar/Oberschwaben"},
	{110, "Baden-Württemberg", 113, "Mittelgebirge Baden-Württemberg"},
	{120, "Bayern", 121, "Allgäu/Oberbayern/Bay. Wald"},
	{120, "Bayern", 122, "Donauniederungen"},
	{120, "Bayern", 123, "Bayern n. der Donau, o. Bayr. Wald, o. Mainfranken"},
	{120, "Bayern", 124, "Mainfranken"},
}

// KnownRegions returns the static region table, ordered by region and
// partregion ID.
func KnownRegions() []KnownRegion {
	out := make([]KnownRegion, len(knownRegions))
	copy(out, knownRegions)
	return out
}

// DisplayName joins region and partregion names the way the DWD presents
// them, e.g. "Hessen - Rhein-Main".
func (r KnownRegion) DisplayName() string {
	if r.PartregionName == "" {
		return r.RegionName
	}
	return r.RegionName + " - " + r.PartregionName
}

// Allergens lists the allergen names the DWD reports, sorted.
var Allergens = []string{
	"Ambrosia",
	"Beifuss",
	"Birke",
	"Erle",
	"Esche",
	"Gräser",
	"Hasel",
	"Roggen",
}

// botanicalNames maps DWD allergen names to their botanical names.
var botanicalNames = map[string]string{
	"Ambrosia": "Ambrosia artemisiifolia",
	"Beifuss":  "Artemisia vulgaris",
	"Birke":    "Betula",
	"Erle":     "Alnus",
	"Esche":    "Fraxinus excelsior",
	"Gräser":   "Poaceae",
	"Hasel":    "Corylus",
	"Roggen":   "Secale cereale",
}

// allergenSeasons holds the months (1-12) in which each allergen is
// typically airborne in Germany.
var allergenSeasons = map[string][]int{
	"Ambrosia": {7, 8, 9, 10},
	"Beifuss":  {7, 8, 9},
	"Birke":    {3, 4, 5},
	"Erle":     {1, 2, 3, 4},
	"Esche":    {3, 4, 5},
	"Gräser":   {5, 6, 7, 8, 9},
	"Hasel":    {1, 2, 3, 4},
	"Roggen":   {5, 6, 7},
}

// BotanicalName returns the botanical name for a DWD allergen, or "" if
// unknown.
func BotanicalName(allergen string) string {
	return botanicalNames[allergen]
}

// SeasonMonths returns the typical season months for an allergen, sorted
// ascending, or nil if unknown.
func SeasonMonths(allergen string) []int {
	months, ok := allergenSeasons[allergen]
	if !ok {
		return nil
	}
	out := make([]int, len(months))
	copy(out, months)
	sort.Ints(out)
	return out
}
