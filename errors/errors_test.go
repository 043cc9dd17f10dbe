package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := New(CodeInvalidCoordinates, "latitude out of range")
	want := "INVALID_COORDINATES: latitude out of range"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(fmt.Errorf("dial tcp: refused"), CodeGeocodingUnavailable, "all geocoding providers failed")
	want = "GEOCODING_UNAVAILABLE: all geocoding providers failed: dial tcp: refused"
	if wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
}

func TestAppErrorIs(t *testing.T) {
	err := GeocodingUnavailable(errors.New("both providers down"))

	if !errors.Is(err, New(CodeGeocodingUnavailable, "anything")) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, New(CodeDistanceUnavailable, "anything")) {
		t.Error("expected errors.Is not to match a different code")
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := DistanceUnavailable(inner)

	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to unwrap to inner error")
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid coordinates", InvalidCoordinates(""), CodeInvalidCoordinates},
		{"no resolvable location", NoResolvableLocation(nil), CodeNoResolvableLocation},
		{"zones unavailable", ZonesUnavailable(errors.New("503")), CodeZonesUnavailable},
		{"plain error", errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	if !IsInvalidCoordinates(InvalidCoordinates("bad lat")) {
		t.Error("IsInvalidCoordinates should match")
	}
	if !IsGeocodingUnavailable(GeocodingUnavailable(nil)) {
		t.Error("IsGeocodingUnavailable should match")
	}
	if !IsDistanceUnavailable(DistanceUnavailable(nil)) {
		t.Error("IsDistanceUnavailable should match")
	}
	if !IsNoResolvableLocation(NoResolvableLocation(nil)) {
		t.Error("IsNoResolvableLocation should match")
	}
	if IsNoResolvableLocation(DistanceUnavailable(nil)) {
		t.Error("IsNoResolvableLocation should not match a distance error")
	}
}

func TestInvalidCoordinatesDefaultMessage(t *testing.T) {
	err := InvalidCoordinates("")
	if err.Message != "coordinates are missing or out of range" {
		t.Errorf("unexpected default message: %q", err.Message)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidCoordinates(""), http.StatusBadRequest},
		{GeocodingUnavailable(nil), http.StatusBadGateway},
		{DistanceUnavailable(nil), http.StatusBadGateway},
		{NoResolvableLocation(nil), http.StatusUnprocessableEntity},
		{Validation("bad input"), http.StatusBadRequest},
		{Timeout("upstream"), http.StatusGatewayTimeout},
		{errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWithDetails(t *testing.T) {
	err := ValidationWithDetails("invalid request", map[string]string{
		"latitude": "must be between -90 and 90",
	})

	if err.Details["latitude"] != "must be between -90 and 90" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}
