// Package geo provides geospatial utilities.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/platterhq/delivery-shared/errors"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint creates a new Point.
func NewPoint(lat, lng float64) Point {
	return Point{Lat: lat, Lng: lng}
}

// IsValid checks if the point has valid coordinates.
func (p Point) IsValid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Normalize validates a raw latitude/longitude pair and returns a canonical
// Point. NaN, infinite, or out-of-range values are rejected.
func Normalize(lat, lng float64) (Point, error) {
	p := Point{Lat: lat, Lng: lng}
	if !p.IsValid() {
		return Point{}, errors.InvalidCoordinates("")
	}
	return p, nil
}

// ParsePoint coerces numeric-looking strings into a canonical Point.
// Upstream records store coordinates as strings more often than they should.
func ParsePoint(latStr, lngStr string) (Point, error) {
	latStr = strings.TrimSpace(latStr)
	lngStr = strings.TrimSpace(lngStr)
	if latStr == "" || lngStr == "" {
		return Point{}, errors.InvalidCoordinates("latitude or longitude is empty")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Point{}, errors.InvalidCoordinates("latitude is not numeric")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return Point{}, errors.InvalidCoordinates("longitude is not numeric")
	}

	return Normalize(lat, lng)
}

// IsZero reports whether the point is the zero value. A (0,0) point is
// treated as absent rather than a real location in the Gulf of Guinea.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}
