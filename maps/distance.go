package maps

import (
	"context"
	"fmt"
	"math"

	"github.com/platterhq/delivery-shared/errors"
	"github.com/platterhq/delivery-shared/geo"
)

// RouteEstimate is a point-to-point travel estimate.
type RouteEstimate struct {
	// DistanceKm is the driving distance, two-decimal precision.
	DistanceKm float64 `json:"distance_km"`

	// DurationMinutes is the travel time in whole minutes.
	DurationMinutes int `json:"duration_minutes"`
}

// DistanceCalculator computes driving distance and duration between two
// points. Only the primary provider offers routing; when it is unreachable
// or unconfigured the call fails with DISTANCE_UNAVAILABLE and the caller
// decides how to degrade.
type DistanceCalculator struct {
	primary *Client
}

// NewDistanceCalculator creates a distance calculator.
func NewDistanceCalculator(primary *Client) *DistanceCalculator {
	return &DistanceCalculator{primary: primary}
}

// Calculate returns the driving distance and duration between origin and
// destination.
func (d *DistanceCalculator) Calculate(ctx context.Context, origin, destination geo.Point) (*RouteEstimate, error) {
	if !origin.IsValid() || !destination.IsValid() {
		return nil, errors.InvalidCoordinates("")
	}

	if d.primary == nil || !d.primary.HasCredentials() {
		return nil, errors.DistanceUnavailable(fmt.Errorf("no routing provider configured"))
	}

	route, err := d.primary.ComputeRoutes(ctx, &ComputeRoutesRequest{
		Origin:      origin,
		Destination: destination,
		TravelMode:  TravelModeDrive,
	})
	if err != nil {
		return nil, errors.DistanceUnavailable(err)
	}

	return &RouteEstimate{
		DistanceKm:      geo.RoundKm(float64(route.DistanceMeters) / 1000.0),
		DurationMinutes: int(math.Round(float64(route.DurationSeconds) / 60.0)),
	}, nil
}
