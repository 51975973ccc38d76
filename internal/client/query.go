package client

import (
	"sort"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
)

// Read helpers shared by the blocking and suspension clients. All of them
// tolerate a nil store (no update has succeeded yet) by returning empty
// results.

func lookupRegion(store *domain.Store, key string) (domain.RegionForecast, bool) {
	if store == nil {
		return domain.RegionForecast{}, false
	}
	region, ok := store.Regions[key]
	return region, ok
}

func storeRegions(store *domain.Store) []domain.RegionInfo {
	if store == nil {
		return nil
	}
	infos := make([]domain.RegionInfo, 0, len(store.Regions))
	for _, region := range store.Regions {
		infos = append(infos, domain.RegionInfo{
			RegionID:       region.RegionID,
			RegionName:     region.RegionName,
			PartregionID:   region.PartregionID,
			PartregionName: region.PartregionName,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if a.RegionID != b.RegionID {
			return a.RegionID < b.RegionID
		}
		if a.PartregionID != b.PartregionID {
			return a.PartregionID < b.PartregionID
		}
		if a.RegionName != b.RegionName {
			return a.RegionName < b.RegionName
		}
		return a.PartregionName < b.PartregionName
	})
	return infos
}

func storeAllergens(store *domain.Store) []string {
	if store == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, region := range store.Regions {
		for allergen := range region.Pollen {
			seen[allergen] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func regionSummary(region domain.RegionForecast) map[string]map[string]string {
	summary := make(map[string]map[string]string)
	for allergen, forecast := range region.Pollen {
		for date, entry := range forecast {
			if summary[date] == nil {
				summary[date] = make(map[string]string)
			}
			summary[date][allergen] = entry.Human
		}
	}
	return summary
}
