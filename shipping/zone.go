// Package shipping implements delivery zone matching and fee policy.
package shipping

// Zone is a branch delivery zone expressed as a distance band from the
// branch. Zones come from the zone service and may overlap or leave
// gaps; the matcher resolves both.
type Zone struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`

	// MinDistanceKm and MaxDistanceKm bound the band, inclusive.
	MinDistanceKm float64 `json:"min_distance_km" validate:"gte=0"`
	MaxDistanceKm float64 `json:"max_distance_km" validate:"zone_range=MinDistanceKm"`

	// BaseFee is the delivery fee inside this band.
	BaseFee float64 `json:"base_fee" validate:"gte=0"`

	// FreeShippingThreshold waives the fee for orders at or above this
	// amount. Nil means the zone never offers free shipping.
	FreeShippingThreshold *float64 `json:"free_shipping_threshold,omitempty"`

	// Default marks the zone used for distance-less estimates.
	Default bool `json:"default"`
}

// Contains reports whether the distance falls inside the band, bounds
// inclusive.
func (z *Zone) Contains(distanceKm float64) bool {
	return distanceKm >= z.MinDistanceKm && distanceKm <= z.MaxDistanceKm
}

// OffersFreeShipping reports whether the order amount qualifies for free
// shipping in this zone.
func (z *Zone) OffersFreeShipping(orderAmount float64) bool {
	return z.FreeShippingThreshold != nil && orderAmount >= *z.FreeShippingThreshold
}
