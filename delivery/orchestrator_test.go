package delivery

import (
	"context"
	"fmt"
	"testing"

	"github.com/platterhq/delivery-shared/clients"
	"github.com/platterhq/delivery-shared/errors"
	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/maps"
	"github.com/platterhq/delivery-shared/shipping"
)

var (
	branchPoint   = geo.Point{Lat: 47.6062, Lng: -122.3321}
	customerPoint = geo.Point{Lat: 47.6205, Lng: -122.3493}
	defaultPoint  = geo.Point{Lat: 47.0, Lng: -122.0}
)

type fakeGeocoder struct {
	result *maps.AddressResult
	err    error
	calls  int
}

func (f *fakeGeocoder) ForwardGeocode(ctx context.Context, query string) (*maps.AddressResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, point geo.Point) (*maps.AddressResult, error) {
	return f.result, f.err
}

type fakeDistance struct {
	estimate *maps.RouteEstimate
	err      error
	origin   geo.Point
}

func (f *fakeDistance) Calculate(ctx context.Context, origin, destination geo.Point) (*maps.RouteEstimate, error) {
	f.origin = origin
	if f.err != nil {
		return nil, f.err
	}
	return f.estimate, nil
}

type fakeZones struct {
	zones []shipping.Zone
	err   error
}

func (f *fakeZones) GetZones(ctx context.Context, branchID string) ([]shipping.Zone, error) {
	return f.zones, f.err
}

type fakeBranches struct {
	branch *clients.Branch
	err    error
}

func (f *fakeBranches) GetBranch(ctx context.Context, branchID string) (*clients.Branch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.branch, nil
}

func floatPtr(v float64) *float64 { return &v }

func testZones() []shipping.Zone {
	return []shipping.Zone{
		{ID: "inner", MinDistanceKm: 0, MaxDistanceKm: 10, BaseFee: 5, FreeShippingThreshold: floatPtr(50), Default: true},
		{ID: "outer", MinDistanceKm: 10, MaxDistanceKm: 25, BaseFee: 7},
	}
}

func newResolver(g *fakeGeocoder, d *fakeDistance, z *fakeZones, b *fakeBranches) *Resolver {
	config := ResolverConfig{
		DefaultBranchLocation: defaultPoint,
		StaticDefaultFee:      5.00,
	}
	return NewResolver(g, d, z, b, config, nil, nil, nil)
}

func healthyBranches() *fakeBranches {
	return &fakeBranches{branch: &clients.Branch{ID: "branch-1", Location: branchPoint, Active: true}}
}

func TestResolveFeeDistanceZoneMatch(t *testing.T) {
	resolver := newResolver(
		&fakeGeocoder{},
		&fakeDistance{estimate: &maps.RouteEstimate{DistanceKm: 8, DurationMinutes: 12}},
		&fakeZones{zones: testZones()},
		healthyBranches(),
	)

	result, err := resolver.ResolveFee(context.Background(), Request{
		Location:    &customerPoint,
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CalculationMethod != MethodDistanceZoneMatch {
		t.Errorf("method = %s, want %s", result.CalculationMethod, MethodDistanceZoneMatch)
	}
	if result.MatchedZone == nil || result.MatchedZone.ID != "inner" {
		t.Errorf("unexpected matched zone: %+v", result.MatchedZone)
	}
	if result.FinalFee != 5 {
		t.Errorf("FinalFee = %v, want 5", result.FinalFee)
	}
	if result.DistanceKm == nil || *result.DistanceKm != 8 {
		t.Errorf("unexpected distance: %v", result.DistanceKm)
	}
	if result.DurationMinutes == nil || *result.DurationMinutes != 12 {
		t.Errorf("unexpected duration: %v", result.DurationMinutes)
	}
	if result.CalculationMethod.Estimated() {
		t.Error("distance-backed result must not be flagged as estimated")
	}
	if result.ComputedAt.IsZero() {
		t.Error("ComputedAt must be set")
	}
}

func TestResolveFeeFreeShipping(t *testing.T) {
	resolver := newResolver(
		&fakeGeocoder{},
		&fakeDistance{estimate: &maps.RouteEstimate{DistanceKm: 8, DurationMinutes: 12}},
		&fakeZones{zones: testZones()},
		healthyBranches(),
	)

	result, err := resolver.ResolveFee(context.Background(), Request{
		Location:    &customerPoint,
		BranchID:    "branch-1",
		OrderAmount: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalFee != 0 || !result.FreeShippingApplied {
		t.Errorf("expected free shipping, got %+v", result)
	}
}

func TestResolveFeeDistanceFallbackTable(t *testing.T) {
	resolver := newResolver(
		&fakeGeocoder{},
		&fakeDistance{estimate: &maps.RouteEstimate{DistanceKm: 30, DurationMinutes: 40}},
		&fakeZones{zones: nil},
		healthyBranches(),
	)

	result, err := resolver.ResolveFee(context.Background(), Request{
		Location:    &customerPoint,
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CalculationMethod != MethodDistanceFallbackTable {
		t.Errorf("method = %s, want %s", result.CalculationMethod, MethodDistanceFallbackTable)
	}
	if result.BaseFee != 9.00 {
		t.Errorf("BaseFee = %v, want 9.00", result.BaseFee)
	}
	if result.Surcharge != 1.00 {
		t.Errorf("Surcharge = %v, want 1.00", result.Surcharge)
	}
	if result.FinalFee != 10.00 {
		t.Errorf("FinalFee = %v, want 10.00", result.FinalFee)
	}
	if result.MatchedZone != nil {
		t.Errorf("expected no matched zone, got %+v", result.MatchedZone)
	}
}

func TestResolveFeeZoneFallback(t *testing.T) {
	resolver := newResolver(
		&fakeGeocoder{},
		&fakeDistance{err: errors.DistanceUnavailable(fmt.Errorf("routes api down"))},
		&fakeZones{zones: testZones()},
		healthyBranches(),
	)

	result, err := resolver.ResolveFee(context.Background(), Request{
		Location:    &customerPoint,
		BranchID:    "branch-1",
		OrderAmount: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CalculationMethod != MethodZoneFallback {
		t.Errorf("method = %s, want %s", result.CalculationMethod, MethodZoneFallback)
	}
	if result.MatchedZone == nil || result.MatchedZone.ID != "inner" {
		t.Errorf("expected default zone, got %+v", result.MatchedZone)
	}
	// Threshold still applies, surcharge cannot without a distance
	if result.FinalFee != 0 || !result.FreeShippingApplied {
		t.Errorf("expected free shipping in zone fallback, got %+v", result)
	}
	if result.Surcharge != 0 {
		t.Errorf("zone fallback must not carry a surcharge, got %v", result.Surcharge)
	}
	if result.DistanceKm != nil {
		t.Error("zone fallback must not report a distance")
	}
	if !result.CalculationMethod.Estimated() {
		t.Error("zone fallback must be flagged as estimated")
	}
}

func TestResolveFeeTotalDegradation(t *testing.T) {
	resolver := newResolver(
		&fakeGeocoder{err: errors.GeocodingUnavailable(fmt.Errorf("both providers down"))},
		&fakeDistance{err: errors.DistanceUnavailable(fmt.Errorf("routes api down"))},
		&fakeZones{err: errors.ZonesUnavailable(fmt.Errorf("zone service down"))},
		&fakeBranches{err: fmt.Errorf("branch service down")},
	)

	// Stored coordinates keep step one alive; everything after degrades
	result, err := resolver.ResolveFee(context.Background(), Request{
		Location:    &customerPoint,
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if err != nil {
		t.Fatalf("total degradation must not fail, got %v", err)
	}

	if result.CalculationMethod != MethodStaticDefault {
		t.Errorf("method = %s, want %s", result.CalculationMethod, MethodStaticDefault)
	}
	if result.FinalFee != 5.00 {
		t.Errorf("FinalFee = %v, want the static default 5.00", result.FinalFee)
	}
	if !result.CalculationMethod.Estimated() {
		t.Error("static default must be flagged as estimated")
	}
}

func TestResolveFeeNoResolvableLocation(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.GeocodingUnavailable(fmt.Errorf("both providers down"))}
	resolver := newResolver(geocoder, &fakeDistance{}, &fakeZones{}, healthyBranches())

	_, err := resolver.ResolveFee(context.Background(), Request{
		Address:     "somewhere unreachable",
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if !errors.IsNoResolvableLocation(err) {
		t.Errorf("expected NO_RESOLVABLE_LOCATION, got %v", err)
	}

	// No address and no coordinates fails without a provider call
	geocoder.calls = 0
	_, err = resolver.ResolveFee(context.Background(), Request{
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if !errors.IsNoResolvableLocation(err) {
		t.Errorf("expected NO_RESOLVABLE_LOCATION, got %v", err)
	}
	if geocoder.calls != 0 {
		t.Errorf("expected no geocoder calls, got %d", geocoder.calls)
	}
}

func TestResolveFeeGeocodesAddress(t *testing.T) {
	geocoder := &fakeGeocoder{result: &maps.AddressResult{
		FullAddress: "400 Broad St, Seattle",
		SourcePoint: customerPoint,
	}}
	distance := &fakeDistance{estimate: &maps.RouteEstimate{DistanceKm: 3, DurationMinutes: 7}}
	resolver := newResolver(geocoder, distance, &fakeZones{zones: testZones()}, healthyBranches())

	result, err := resolver.ResolveFee(context.Background(), Request{
		Address:     "400 Broad St, Seattle",
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if geocoder.calls != 1 {
		t.Errorf("expected 1 geocoder call, got %d", geocoder.calls)
	}
	if result.CalculationMethod != MethodDistanceZoneMatch {
		t.Errorf("method = %s, want %s", result.CalculationMethod, MethodDistanceZoneMatch)
	}
}

func TestResolveFeeInvalidStoredCoordinatesFallToAddress(t *testing.T) {
	geocoder := &fakeGeocoder{result: &maps.AddressResult{SourcePoint: customerPoint}}
	distance := &fakeDistance{estimate: &maps.RouteEstimate{DistanceKm: 3, DurationMinutes: 7}}
	resolver := newResolver(geocoder, distance, &fakeZones{zones: testZones()}, healthyBranches())

	bad := geo.Point{Lat: 95, Lng: 200}
	_, err := resolver.ResolveFee(context.Background(), Request{
		Location:    &bad,
		Address:     "400 Broad St, Seattle",
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if geocoder.calls != 1 {
		t.Errorf("expected geocoder fallback, got %d calls", geocoder.calls)
	}
}

func TestResolveFeeBranchFailureUsesDefaultLocation(t *testing.T) {
	distance := &fakeDistance{estimate: &maps.RouteEstimate{DistanceKm: 3, DurationMinutes: 7}}
	resolver := newResolver(
		&fakeGeocoder{},
		distance,
		&fakeZones{zones: testZones()},
		&fakeBranches{err: fmt.Errorf("branch service down")},
	)

	_, err := resolver.ResolveFee(context.Background(), Request{
		Location:    &customerPoint,
		BranchID:    "branch-1",
		OrderAmount: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if distance.origin != defaultPoint {
		t.Errorf("distance origin = %+v, want the default branch location %+v", distance.origin, defaultPoint)
	}
}

func TestCalculationMethodValid(t *testing.T) {
	for _, m := range []CalculationMethod{MethodDistanceZoneMatch, MethodDistanceFallbackTable, MethodZoneFallback, MethodStaticDefault} {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if CalculationMethod("guesswork").Valid() {
		t.Error("unknown method should be invalid")
	}
}
