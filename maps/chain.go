package maps

import (
	"context"
	"fmt"
	"time"

	"github.com/platterhq/delivery-shared/errors"
	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/logging"
	"github.com/platterhq/delivery-shared/telemetry"
)

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, query string) (*AddressResult, error)
	ReverseGeocode(ctx context.Context, point geo.Point) (*AddressResult, error)
}

// GeocoderChain tries the primary provider first and falls through to the
// secondary on any primary error. Each provider gets exactly one attempt;
// a single failure is enough to fall through. When the secondary also
// fails, the call fails with a GEOCODING_UNAVAILABLE error.
type GeocoderChain struct {
	primary   *Client
	secondary *NominatimClient
	logger    *logging.Logger
	metrics   *telemetry.GeocodeMetrics
}

// NewGeocoderChain creates a geocoder chain. metrics may be nil.
func NewGeocoderChain(primary *Client, secondary *NominatimClient, logger *logging.Logger, metrics *telemetry.GeocodeMetrics) *GeocoderChain {
	if logger == nil {
		logger = logging.NewLogger("error")
	}
	return &GeocoderChain{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		metrics:   metrics,
	}
}

// ForwardGeocode converts an address string to a structured address with
// coordinates.
func (g *GeocoderChain) ForwardGeocode(ctx context.Context, query string) (*AddressResult, error) {
	if g.primary != nil && g.primary.HasCredentials() {
		start := time.Now()
		result, err := g.primary.Geocode(ctx, query)
		g.recordRequest(ctx, "google", "forward_geocode", start, err)
		if err == nil {
			return addressFromPrimary(result), nil
		}

		g.logger.Warn("primary geocoder failed, falling back",
			"operation", "forward_geocode",
			"error", err)
		g.recordFallback(ctx, "forward_geocode")
	}

	if g.secondary == nil {
		return nil, errors.GeocodingUnavailable(fmt.Errorf("no secondary geocoder configured"))
	}

	start := time.Now()
	results, err := g.secondary.Search(ctx, query)
	g.recordRequest(ctx, "nominatim", "forward_geocode", start, err)
	if err != nil {
		return nil, errors.GeocodingUnavailable(err)
	}
	if len(results) == 0 {
		return nil, errors.GeocodingUnavailable(nil)
	}

	point, err := results[0].Location()
	if err != nil {
		return nil, errors.GeocodingUnavailable(err)
	}

	return AddressFromNominatim(&results[0], point), nil
}

// ReverseGeocode converts coordinates to a structured address.
func (g *GeocoderChain) ReverseGeocode(ctx context.Context, point geo.Point) (*AddressResult, error) {
	if !point.IsValid() {
		return nil, errors.InvalidCoordinates("")
	}

	if g.primary != nil && g.primary.HasCredentials() {
		start := time.Now()
		result, err := g.primary.ReverseGeocode(ctx, point)
		g.recordRequest(ctx, "google", "reverse_geocode", start, err)
		if err == nil {
			return addressFromPrimary(result), nil
		}

		g.logger.Warn("primary geocoder failed, falling back",
			"operation", "reverse_geocode",
			"error", err)
		g.recordFallback(ctx, "reverse_geocode")
	}

	if g.secondary == nil {
		return nil, errors.GeocodingUnavailable(fmt.Errorf("no secondary geocoder configured"))
	}

	start := time.Now()
	result, err := g.secondary.Reverse(ctx, point)
	g.recordRequest(ctx, "nominatim", "reverse_geocode", start, err)
	if err != nil {
		return nil, errors.GeocodingUnavailable(err)
	}

	// The secondary echoes its own snapped coordinates; prefer the caller's
	// point so the result round-trips exactly.
	return AddressFromNominatim(result, point), nil
}

func (g *GeocoderChain) recordRequest(ctx context.Context, provider, operation string, start time.Time, err error) {
	if g.metrics != nil {
		g.metrics.RecordRequest(ctx, provider, operation, time.Since(start), err)
	}
}

func (g *GeocoderChain) recordFallback(ctx context.Context, operation string) {
	if g.metrics != nil {
		g.metrics.RecordFallback(ctx, operation)
	}
}
