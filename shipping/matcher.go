package shipping

import "sort"

// Match selects the zone covering the given distance. Zones are ordered
// ascending by MaxDistanceKm before scanning, so when bands overlap the
// tightest one wins deterministically regardless of input order. Returns
// nil when no zone covers the distance; the caller falls back to the
// distance fee table.
func Match(distanceKm float64, zones []Zone) *Zone {
	if len(zones) == 0 {
		return nil
	}

	sorted := make([]Zone, len(zones))
	copy(sorted, zones)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxDistanceKm < sorted[j].MaxDistanceKm
	})

	for i := range sorted {
		if sorted[i].Contains(distanceKm) {
			return &sorted[i]
		}
	}
	return nil
}

// DefaultZone returns the zone marked default, or the first zone when
// none is marked. Returns nil for an empty list.
func DefaultZone(zones []Zone) *Zone {
	for i := range zones {
		if zones[i].Default {
			return &zones[i]
		}
	}
	if len(zones) > 0 {
		return &zones[0]
	}
	return nil
}
