package fixtures

import (
	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/maps"
)

// CustomerPoint returns a customer location inside the inner zone of
// SampleZones when measured from DowntownBranch.
func CustomerPoint() geo.Point {
	return geo.Point{Lat: 47.6205, Lng: -122.3493}
}

// CustomerAddress returns the free-text address paired with CustomerPoint.
func CustomerAddress() string {
	return "400 Broad St, Seattle, WA 98109"
}

// GeocodedAddress returns the structured result a geocoder would produce
// for CustomerAddress.
func GeocodedAddress() *maps.AddressResult {
	return &maps.AddressResult{
		FullAddress:   "400 Broad St, Seattle, WA 98109, USA",
		StreetAddress: "400 Broad St",
		City:          "Seattle",
		State:         "WA",
		Country:       "US",
		PostalCode:    "98109",
		SourcePoint:   CustomerPoint(),
	}
}
