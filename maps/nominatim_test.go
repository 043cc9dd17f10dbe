package maps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/platterhq/delivery-shared/geo"
)

func nominatimServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != nominatimUserAgent {
			t.Errorf("missing User-Agent header, got %q", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("addressdetails") != "1" {
				t.Error("expected addressdetails=1")
			}
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{
				{
					"place_id":     int64(240109189),
					"display_name": "400 Broad Street, Seattle, Washington, 98109, United States",
					"lat":          "47.6205",
					"lon":          "-122.3493",
					"address": map[string]string{
						"house_number": "400",
						"road":         "Broad Street",
						"city":         "Seattle",
						"state":        "Washington",
						"postcode":     "98109",
						"country":      "United States",
						"country_code": "us",
					},
				},
			})
		case "/reverse":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"place_id":     int64(240109189),
				"display_name": "400 Broad Street, Seattle, Washington, 98109, United States",
				"lat":          "47.6205",
				"lon":          "-122.3493",
				"address": map[string]string{
					"road":         "Broad Street",
					"town":         "Queen Anne",
					"state":        "Washington",
					"country_code": "us",
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNominatimSearch(t *testing.T) {
	server := nominatimServer(t)
	defer server.Close()

	client := NewNominatimClient(&NominatimConfig{BaseURL: server.URL}, nil)

	results, err := client.Search(context.Background(), "400 Broad Street Seattle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.DisplayName == "" {
		t.Error("expected display name")
	}
	if r.Address.Locality() != "Seattle" {
		t.Errorf("Locality() = %q, want Seattle", r.Address.Locality())
	}

	point, err := r.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if point.Lat != 47.6205 || point.Lng != -122.3493 {
		t.Errorf("unexpected location: %+v", point)
	}
}

func TestNominatimReverse(t *testing.T) {
	server := nominatimServer(t)
	defer server.Close()

	client := NewNominatimClient(&NominatimConfig{BaseURL: server.URL}, nil)

	result, err := client.Reverse(context.Background(), geo.Point{Lat: 47.6205, Lng: -122.3493})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Address.Road != "Broad Street" {
		t.Errorf("Road = %q, want 'Broad Street'", result.Address.Road)
	}
	// No city in this response, town wins the locality fallback
	if result.Address.Locality() != "Queen Anne" {
		t.Errorf("Locality() = %q, want 'Queen Anne'", result.Address.Locality())
	}
}

func TestNominatimReverseNoAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Unable to geocode",
		})
	}))
	defer server.Close()

	client := NewNominatimClient(&NominatimConfig{BaseURL: server.URL}, nil)

	_, err := client.Reverse(context.Background(), geo.Point{Lat: 0.1, Lng: 0.1})
	if err == nil {
		t.Fatal("expected error for empty reverse result")
	}
}

func TestNominatimServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewNominatimClient(&NominatimConfig{BaseURL: server.URL}, nil)

	_, err := client.Search(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestNominatimLocationParseError(t *testing.T) {
	r := NominatimResult{Lat: "not-a-number", Lon: "-122.3"}
	if _, err := r.Location(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLocalityFallback(t *testing.T) {
	tests := []struct {
		name     string
		addr     NominatimAddress
		expected string
	}{
		{"city wins", NominatimAddress{City: "Seattle", Town: "X", Village: "Y"}, "Seattle"},
		{"town second", NominatimAddress{Town: "Issaquah", Village: "Y"}, "Issaquah"},
		{"village last", NominatimAddress{Village: "Roslyn"}, "Roslyn"},
		{"empty", NominatimAddress{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.Locality(); got != tt.expected {
				t.Errorf("Locality() = %q, want %q", got, tt.expected)
			}
		})
	}
}
