package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/platterhq/delivery-shared/clients"
	"github.com/platterhq/delivery-shared/errors"
	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/logging"
	"github.com/platterhq/delivery-shared/maps"
	"github.com/platterhq/delivery-shared/shipping"
	"github.com/platterhq/delivery-shared/telemetry"
)

// DistanceProvider computes driving distance between two points.
type DistanceProvider interface {
	Calculate(ctx context.Context, origin, destination geo.Point) (*maps.RouteEstimate, error)
}

// ZoneProvider fetches the shipping zones for a branch.
type ZoneProvider interface {
	GetZones(ctx context.Context, branchID string) ([]shipping.Zone, error)
}

// BranchProvider fetches branch records.
type BranchProvider interface {
	GetBranch(ctx context.Context, branchID string) (*clients.Branch, error)
}

// Request is a fee resolution request. Either Location or Address must
// be set; Location wins when both are.
type Request struct {
	// Location is the customer's stored coordinates, if any.
	Location *geo.Point `json:"location,omitempty"`

	// Address is the customer's raw address text, geocoded when no
	// stored coordinates exist.
	Address string `json:"address,omitempty"`

	BranchID    string  `json:"branch_id" validate:"required"`
	OrderAmount float64 `json:"order_amount" validate:"gte=0"`
}

// ResolverConfig holds the orchestrator's fallback parameters.
type ResolverConfig struct {
	// DefaultBranchLocation substitutes for the branch's coordinates
	// when the branch service is unreachable.
	DefaultBranchLocation geo.Point

	// StaticDefaultFee is the last-resort fee when every tier failed.
	StaticDefaultFee float64
}

// Resolver orchestrates the fee pipeline. Every upstream failure below
// the top level degrades into a coarser calculation method; the only
// error a caller ever sees is NO_RESOLVABLE_LOCATION, which means no
// fee can even be estimated and an operator must enter one manually.
type Resolver struct {
	geocoder maps.Geocoder
	distance DistanceProvider
	zones    ZoneProvider
	branches BranchProvider
	config   ResolverConfig
	logger   *logging.Logger
	audit    *logging.AuditLogger
	metrics  *telemetry.FeeMetrics
}

// NewResolver creates a fee resolver. audit and metrics may be nil.
func NewResolver(
	geocoder maps.Geocoder,
	distance DistanceProvider,
	zones ZoneProvider,
	branches BranchProvider,
	config ResolverConfig,
	logger *logging.Logger,
	audit *logging.AuditLogger,
	metrics *telemetry.FeeMetrics,
) *Resolver {
	if logger == nil {
		logger = logging.NewLogger("error")
	}
	return &Resolver{
		geocoder: geocoder,
		distance: distance,
		zones:    zones,
		branches: branches,
		config:   config,
		logger:   logger,
		audit:    audit,
		metrics:  metrics,
	}
}

// ResolveFee resolves the delivery fee for an order.
func (r *Resolver) ResolveFee(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := r.logger.WithBranchID(req.BranchID)

	customer, err := r.resolveCustomerPoint(ctx, req)
	if err != nil {
		log.Error("customer location unresolvable", "error", err)
		if r.audit != nil {
			r.audit.LogFeeManualRequired(ctx, req.BranchID, "no resolvable customer location")
		}
		if r.metrics != nil {
			r.metrics.RecordManualRequired(ctx, "no_resolvable_location")
		}
		return nil, err
	}

	branchPoint := r.resolveBranchPoint(ctx, req.BranchID, log)
	zones := r.fetchZones(ctx, req.BranchID, log)

	result := r.computeResult(ctx, req, customer, branchPoint, zones, log)
	result.ComputedAt = time.Now().UTC()

	if r.metrics != nil {
		distanceKm := 0.0
		if result.DistanceKm != nil {
			distanceKm = *result.DistanceKm
		}
		r.metrics.RecordResolution(ctx, string(result.CalculationMethod), result.FinalFee, distanceKm, time.Since(start))
	}
	if r.audit != nil {
		r.audit.LogFeeResolved(ctx, req.BranchID, string(result.CalculationMethod), result.FinalFee)
	}

	log.Info("delivery fee resolved",
		"method", result.CalculationMethod,
		"final_fee", result.FinalFee,
		"free_shipping", result.FreeShippingApplied)

	return result, nil
}

// resolveCustomerPoint turns the request into customer coordinates.
// Stored coordinates win; a raw address is forward geocoded; with
// neither the resolution fails hard.
func (r *Resolver) resolveCustomerPoint(ctx context.Context, req Request) (geo.Point, error) {
	if req.Location != nil {
		point, err := geo.Normalize(req.Location.Lat, req.Location.Lng)
		if err == nil {
			return point, nil
		}
		r.logger.Warn("stored coordinates invalid, trying address",
			"lat", req.Location.Lat,
			"lng", req.Location.Lng)
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return geo.Point{}, errors.NoResolvableLocation(fmt.Errorf("no coordinates and no address"))
	}

	addr, err := r.geocodeAddress(ctx, address)
	if err != nil {
		return geo.Point{}, errors.NoResolvableLocation(err)
	}
	return addr.SourcePoint, nil
}

func (r *Resolver) geocodeAddress(ctx context.Context, address string) (*maps.AddressResult, error) {
	if r.geocoder == nil {
		return nil, fmt.Errorf("no geocoder configured")
	}
	return r.geocoder.ForwardGeocode(ctx, address)
}

// resolveBranchPoint fetches the branch's coordinates, substituting the
// configured default location on any failure.
func (r *Resolver) resolveBranchPoint(ctx context.Context, branchID string, log *logging.Logger) geo.Point {
	if r.branches != nil {
		branch, err := r.branches.GetBranch(ctx, branchID)
		if err == nil && branch.Location.IsValid() && !branch.Location.IsZero() {
			return branch.Location
		}
		if err != nil {
			log.Warn("branch lookup failed, using default location", "error", err)
		}
	}
	return r.config.DefaultBranchLocation
}

// fetchZones fetches the branch's zones; a failure degrades to an empty
// list rather than failing the resolution.
func (r *Resolver) fetchZones(ctx context.Context, branchID string, log *logging.Logger) []shipping.Zone {
	if r.zones == nil {
		return nil
	}
	zones, err := r.zones.GetZones(ctx, branchID)
	if err != nil {
		log.Warn("zone fetch failed, continuing without zones", "error", err)
		return nil
	}
	return zones
}

// computeResult walks the degradation ladder: distance-based fee, then
// zone-only estimate, then static default.
func (r *Resolver) computeResult(ctx context.Context, req Request, customer, branch geo.Point, zones []shipping.Zone, log *logging.Logger) *Result {
	if r.distance != nil && branch.IsValid() && !branch.IsZero() {
		estimate, err := r.distance.Calculate(ctx, branch, customer)
		if err == nil {
			return r.distanceResult(estimate, zones, req.OrderAmount)
		}
		log.Warn("distance calculation failed, degrading to zone estimate", "error", err)
	}

	if zone := shipping.DefaultZone(zones); zone != nil {
		if r.audit != nil {
			r.audit.LogFeeDegraded(ctx, req.BranchID, string(MethodZoneFallback), "distance unavailable")
		}
		fee := shipping.ZoneOnlyFee(zone, req.OrderAmount)
		return &Result{
			MatchedZone:         zone,
			BaseFee:             fee.BaseFee,
			Surcharge:           fee.Surcharge,
			FinalFee:            fee.FinalFee,
			FreeShippingApplied: fee.FreeShippingApplied,
			CalculationMethod:   MethodZoneFallback,
		}
	}

	if r.audit != nil {
		r.audit.LogFeeDegraded(ctx, req.BranchID, string(MethodStaticDefault), "no distance and no zones")
	}
	return &Result{
		BaseFee:           r.config.StaticDefaultFee,
		FinalFee:          r.config.StaticDefaultFee,
		CalculationMethod: MethodStaticDefault,
	}
}

func (r *Resolver) distanceResult(estimate *maps.RouteEstimate, zones []shipping.Zone, orderAmount float64) *Result {
	distanceKm := estimate.DistanceKm
	duration := estimate.DurationMinutes

	zone := shipping.Match(distanceKm, zones)
	fee := shipping.ComputeFee(distanceKm, zone, orderAmount)

	method := MethodDistanceZoneMatch
	if zone == nil {
		method = MethodDistanceFallbackTable
	}

	return &Result{
		DistanceKm:          &distanceKm,
		DurationMinutes:     &duration,
		MatchedZone:         zone,
		BaseFee:             fee.BaseFee,
		Surcharge:           fee.Surcharge,
		FinalFee:            fee.FinalFee,
		FreeShippingApplied: fee.FreeShippingApplied,
		CalculationMethod:   method,
	}
}
