package shipping

import "math"

// Surcharge parameters for long-distance deliveries.
const (
	surchargeFreeKm   = 25.0
	surchargeStepKm   = 5.0
	surchargeStepFee  = 1.00
	fallbackFarBase   = 8.00
	fallbackFarBandKm = 25.0
)

// Fee is the result of a fee computation.
type Fee struct {
	// BaseFee is the fee before surcharge, after any free-shipping
	// zeroing.
	BaseFee float64 `json:"base_fee"`

	// Surcharge is the long-distance surcharge.
	Surcharge float64 `json:"surcharge"`

	// FinalFee is BaseFee plus Surcharge.
	FinalFee float64 `json:"final_fee"`

	// FreeShippingApplied reports whether the zone's free-shipping
	// threshold zeroed the base fee.
	FreeShippingApplied bool `json:"free_shipping_applied"`
}

// fallbackTable is the distance-banded fee used when no zone covers the
// distance. Bands are upper bounds, inclusive.
var fallbackTable = []struct {
	maxKm float64
	fee   float64
}{
	{5, 3.00},
	{10, 4.00},
	{15, 5.00},
	{20, 6.00},
	{25, 7.00},
}

// FallbackTableFee returns the distance-banded fee for distances not
// covered by any zone.
func FallbackTableFee(distanceKm float64) float64 {
	for _, band := range fallbackTable {
		if distanceKm <= band.maxKm {
			return band.fee
		}
	}
	return fallbackFarBase + math.Ceil((distanceKm-fallbackFarBandKm)/surchargeStepKm)*surchargeStepFee
}

// DistanceSurcharge returns the long-distance surcharge for the given
// distance, zero for distances within the free band.
func DistanceSurcharge(distanceKm float64) float64 {
	if distanceKm <= surchargeFreeKm {
		return 0
	}
	return math.Ceil((distanceKm-surchargeFreeKm)/surchargeStepKm) * surchargeStepFee
}

// ComputeFee converts a distance, a matched zone (nil when no zone
// covers the distance), and the order amount into a fee.
//
// Free shipping zeroes the base fee before the surcharge is added, so a
// qualifying order over the surcharge distance still pays the surcharge.
// This mirrors the production pricing behavior exactly; whether it is
// intended policy is tracked as an open product question.
func ComputeFee(distanceKm float64, zone *Zone, orderAmount float64) Fee {
	var fee Fee

	if zone != nil {
		fee.BaseFee = zone.BaseFee
		if zone.OffersFreeShipping(orderAmount) {
			fee.BaseFee = 0
			fee.FreeShippingApplied = true
		}
	} else {
		fee.BaseFee = FallbackTableFee(distanceKm)
	}

	fee.Surcharge = DistanceSurcharge(distanceKm)
	fee.FinalFee = fee.BaseFee + fee.Surcharge

	return fee
}

// ZoneOnlyFee computes a distance-less estimate from a zone. The
// free-shipping threshold still applies but no surcharge can, since the
// distance is unknown.
func ZoneOnlyFee(zone *Zone, orderAmount float64) Fee {
	fee := Fee{BaseFee: zone.BaseFee}
	if zone.OffersFreeShipping(orderAmount) {
		fee.BaseFee = 0
		fee.FreeShippingApplied = true
	}
	fee.FinalFee = fee.BaseFee
	return fee
}
