package testing

import (
	stderrors "errors"
	"net/http"
	"testing"

	apperrors "github.com/platterhq/delivery-shared/errors"
	pkghttp "github.com/platterhq/delivery-shared/http"
	"github.com/platterhq/delivery-shared/shipping"
	"github.com/platterhq/delivery-shared/testing/fixtures"
)

func TestRequestBuilderAndEnvelopeDecode(t *testing.T) {
	router := TestRouter()
	router.Get("/zones", func(w http.ResponseWriter, r *http.Request) {
		pkghttp.OK(w, fixtures.SampleZones())
	})

	req := NewHTTPTestRequest(http.MethodGet, "/zones").
		WithHeader("X-Request-Id", "fixture-test").
		Build(t)

	var zones []shipping.Zone
	ExecuteRequest(t, router, req).
		AssertOK().
		DecodeData(&zones)

	if len(zones) != 3 {
		t.Fatalf("expected 3 zones, got %d", len(zones))
	}
	if !zones[0].Default {
		t.Errorf("expected first sample zone to be the default")
	}
	if !zones[0].OffersFreeShipping(60) {
		t.Errorf("expected inner zone to offer free shipping above its threshold")
	}
}

func TestRequestBuilderMarshalsBody(t *testing.T) {
	router := TestRouter()
	router.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		pkghttp.OK(w, map[string]string{"status": "received"})
	})

	req := NewHTTPTestRequest(http.MethodPost, "/echo").
		WithBody(map[string]string{"address": fixtures.CustomerAddress()}).
		Build(t)

	var body map[string]string
	ExecuteRequest(t, router, req).AssertOK().DecodeData(&body)
	if body["status"] != "received" {
		t.Errorf("unexpected echo body: %v", body)
	}
}

func TestErrorCodeAssertion(t *testing.T) {
	router := TestRouter()
	router.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, apperrors.NoResolvableLocation(stderrors.New("no coordinates or address")), "")
	})

	req := NewHTTPTestRequest(http.MethodGet, "/fail").Build(t)
	ExecuteRequest(t, router, req).
		AssertUnprocessable().
		AssertErrorCode("NO_RESOLVABLE_LOCATION")
}

func TestFixtureGeometry(t *testing.T) {
	branch := fixtures.DowntownBranch()
	if !branch.Location.IsValid() {
		t.Fatalf("branch fixture has invalid coordinates")
	}

	geocoded := fixtures.GeocodedAddress()
	if geocoded.SourcePoint != fixtures.CustomerPoint() {
		t.Errorf("geocoded fixture should carry the customer point")
	}

	zone := shipping.Match(3.2, fixtures.SampleZones())
	if zone == nil || zone.ID != "zone-inner" {
		t.Fatalf("expected customer distance to land in the inner zone, got %+v", zone)
	}
}
