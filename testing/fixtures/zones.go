// Package fixtures provides sample domain data for tests.
package fixtures

import "github.com/platterhq/delivery-shared/shipping"

// SampleZones returns a typical three-ring zone configuration for a branch.
// The inner zone is the flagged default and offers free shipping above 50.
func SampleZones() []shipping.Zone {
	threshold := 50.0
	return []shipping.Zone{
		{
			ID:                    "zone-inner",
			Name:                  "Inner City",
			MinDistanceKm:         0,
			MaxDistanceKm:         5,
			BaseFee:               3.00,
			FreeShippingThreshold: &threshold,
			Default:               true,
		},
		{
			ID:            "zone-mid",
			Name:          "Metro",
			MinDistanceKm: 5,
			MaxDistanceKm: 15,
			BaseFee:       5.00,
		},
		{
			ID:            "zone-outer",
			Name:          "Outskirts",
			MinDistanceKm: 15,
			MaxDistanceKm: 25,
			BaseFee:       7.00,
		},
	}
}

// OverlappingZones returns zones with overlapping ranges, useful for
// exercising the tighter-zone-wins tie break.
func OverlappingZones() []shipping.Zone {
	return []shipping.Zone{
		{ID: "zone-wide", Name: "Wide", MinDistanceKm: 0, MaxDistanceKm: 20, BaseFee: 6.00},
		{ID: "zone-tight", Name: "Tight", MinDistanceKm: 0, MaxDistanceKm: 8, BaseFee: 4.00},
	}
}

// UncoveredZones returns zones that leave a gap so distances between
// 10 and 20 km fall through to the fallback fee table.
func UncoveredZones() []shipping.Zone {
	return []shipping.Zone{
		{ID: "zone-near", Name: "Near", MinDistanceKm: 0, MaxDistanceKm: 10, BaseFee: 4.00},
		{ID: "zone-far", Name: "Far", MinDistanceKm: 20, MaxDistanceKm: 30, BaseFee: 8.00},
	}
}
