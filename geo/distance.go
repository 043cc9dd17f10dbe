// Package geo provides geospatial utilities.
package geo

import (
	"math"
)

const (
	// EarthRadiusKm is the Earth's radius in kilometers.
	EarthRadiusKm = 6371.0
	// MetersPerKm converts kilometers to meters.
	MetersPerKm = 1000.0
)

// HaversineDistance calculates the great-circle distance between two points
// using the Haversine formula. Returns distance in kilometers.
func HaversineDistance(p1, p2 Point) float64 {
	lat1 := degreesToRadians(p1.Lat)
	lat2 := degreesToRadians(p2.Lat)
	deltaLat := degreesToRadians(p2.Lat - p1.Lat)
	deltaLng := degreesToRadians(p2.Lng - p1.Lng)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// HaversineDistanceMeters returns distance in meters.
func HaversineDistanceMeters(p1, p2 Point) float64 {
	return HaversineDistance(p1, p2) * MetersPerKm
}

// RoundKm rounds a kilometer distance to two-decimal precision, the
// precision surfaced to operators and used by the zone matcher.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// BoundingBox is an axis-aligned latitude/longitude box.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Contains checks if a point is within the bounding box.
func (bb BoundingBox) Contains(p Point) bool {
	return p.Lat >= bb.MinLat && p.Lat <= bb.MaxLat &&
		p.Lng >= bb.MinLng && p.Lng <= bb.MaxLng
}

// Center returns the center point of the bounding box.
func (bb BoundingBox) Center() Point {
	return Point{
		Lat: (bb.MinLat + bb.MaxLat) / 2,
		Lng: (bb.MinLng + bb.MaxLng) / 2,
	}
}

// Helper functions

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
