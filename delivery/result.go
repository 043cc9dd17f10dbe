// Package delivery resolves delivery fees for orders. It orchestrates
// geocoding, distance calculation, zone matching, and fee policy, and
// degrades through progressively coarser estimates when upstream
// services fail.
package delivery

import (
	"time"

	"github.com/platterhq/delivery-shared/shipping"
)

// CalculationMethod records which tier of the pipeline produced a fee.
// The UI and audit trail use it to explain the number shown to an
// operator and to flag estimates that deserve a second look.
type CalculationMethod string

const (
	// MethodDistanceZoneMatch means a real driving distance matched a
	// configured zone.
	MethodDistanceZoneMatch CalculationMethod = "distance_zone_match"

	// MethodDistanceFallbackTable means a real distance was available
	// but no zone covered it, so the fixed fee table applied.
	MethodDistanceFallbackTable CalculationMethod = "distance_fallback_table"

	// MethodZoneFallback means distance calculation failed and the fee
	// is a zone-only estimate from the branch's default zone.
	MethodZoneFallback CalculationMethod = "zone_fallback"

	// MethodStaticDefault means nothing upstream worked and the fee is
	// the configured static default.
	MethodStaticDefault CalculationMethod = "static_default"
)

// Estimated reports whether the fee is a degraded estimate rather than
// a distance-backed computation.
func (m CalculationMethod) Estimated() bool {
	return m == MethodZoneFallback || m == MethodStaticDefault
}

// Valid reports whether the value is one of the defined methods.
func (m CalculationMethod) Valid() bool {
	switch m {
	case MethodDistanceZoneMatch, MethodDistanceFallbackTable, MethodZoneFallback, MethodStaticDefault:
		return true
	}
	return false
}

// Result is the authoritative output of a fee resolution.
type Result struct {
	// DistanceKm is the driving distance, nil when it could not be
	// computed.
	DistanceKm *float64 `json:"distance_km,omitempty"`

	// DurationMinutes is the driving time, nil when unknown.
	DurationMinutes *int `json:"duration_minutes,omitempty"`

	// MatchedZone is the zone that produced the fee, nil when the fee
	// came from the fallback table or the static default.
	MatchedZone *shipping.Zone `json:"matched_zone,omitempty"`

	BaseFee             float64 `json:"base_fee"`
	Surcharge           float64 `json:"surcharge"`
	FinalFee            float64 `json:"final_fee"`
	FreeShippingApplied bool    `json:"free_shipping_applied"`

	CalculationMethod CalculationMethod `json:"calculation_method"`
	ComputedAt        time.Time         `json:"computed_at"`
}
