package maps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/platterhq/delivery-shared/geo"
)

func testConfig(apiKey string) *Config {
	c := DefaultConfig(apiKey)
	c.MaxRetries = 0
	c.RetryDelay = time.Millisecond
	return c
}

func geocodePayload() map[string]interface{} {
	return map[string]interface{}{
		"status": "OK",
		"results": []map[string]interface{}{
			{
				"place_id":          "ChIJ123456",
				"formatted_address": "123 Main St, Seattle, WA 98101, USA",
				"geometry": map[string]interface{}{
					"location": map[string]interface{}{
						"lat": 47.6062,
						"lng": -122.3321,
					},
				},
				"address_components": []map[string]interface{}{
					{"long_name": "123", "short_name": "123", "types": []string{"street_number"}},
					{"long_name": "Main St", "short_name": "Main St", "types": []string{"route"}},
					{"long_name": "Seattle", "short_name": "Seattle", "types": []string{"locality"}},
					{"long_name": "Washington", "short_name": "WA", "types": []string{"administrative_area_level_1"}},
					{"long_name": "United States", "short_name": "US", "types": []string{"country"}},
					{"long_name": "98101", "short_name": "98101", "types": []string{"postal_code"}},
				},
			},
		},
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"123s", 123},
		{"0s", 0},
		{"3600s", 3600},
		{"", 0},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseDuration(tt.input)
			if result != tt.expected {
				t.Errorf("parseDuration(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "123 Main St Seattle" {
			t.Errorf("unexpected address param: %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-api-key" {
			t.Errorf("unexpected key param: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geocodePayload())
	}))
	defer server.Close()

	config := testConfig("test-api-key")
	config.GeocodeURL = server.URL
	client := NewClient(config, nil, nil, nil, NewNoopRateLimiter())

	result, err := client.Geocode(context.Background(), "123 Main St Seattle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.City != "Seattle" {
		t.Errorf("City = %q, want Seattle", result.City)
	}
	if result.State != "WA" {
		t.Errorf("State = %q, want WA", result.State)
	}
	if result.StreetAddress != "123 Main St" {
		t.Errorf("StreetAddress = %q, want '123 Main St'", result.StreetAddress)
	}
	if result.Location.Lat != 47.6062 || result.Location.Lng != -122.3321 {
		t.Errorf("unexpected location: %+v", result.Location)
	}
}

func TestGeocodeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ZERO_RESULTS",
			"results": []interface{}{},
		})
	}))
	defer server.Close()

	config := testConfig("test-api-key")
	config.GeocodeURL = server.URL
	client := NewClient(config, nil, nil, nil, NewNoopRateLimiter())

	_, err := client.Geocode(context.Background(), "nowhere at all")
	if err == nil {
		t.Fatal("expected error for zero results")
	}
}

func TestReverseGeocodeCaching(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geocodePayload())
	}))
	defer server.Close()

	config := testConfig("test-api-key")
	config.GeocodeURL = server.URL
	client := NewClient(config, nil, nil, NewInMemoryCache(), NewNoopRateLimiter())

	point := geo.Point{Lat: 47.6062, Lng: -122.3321}

	first, err := client.ReverseGeocode(context.Background(), point)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A nearby point falls in the same geohash cell and is served from cache
	nearby := geo.Point{Lat: 47.60625, Lng: -122.33215}
	second, err := client.ReverseGeocode(context.Background(), nearby)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
	if first.FormattedAddress != second.FormattedAddress {
		t.Error("expected cached result to match")
	}
}

func TestComputeRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("X-Goog-Api-Key") != "test-api-key" {
			t.Error("missing API key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"routes": []map[string]interface{}{
				{
					"distanceMeters": 15000,
					"duration":       "900s",
					"staticDuration": "800s",
					"polyline": map[string]interface{}{
						"encodedPolyline": "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
					},
				},
			},
		})
	}))
	defer server.Close()

	config := testConfig("test-api-key")
	config.RoutesURL = server.URL
	client := NewClient(config, nil, nil, nil, NewNoopRateLimiter())

	result, err := client.ComputeRoutes(context.Background(), &ComputeRoutesRequest{
		Origin:      geo.Point{Lat: 47.6062, Lng: -122.3321},
		Destination: geo.Point{Lat: 47.5951, Lng: -122.3326},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DistanceMeters != 15000 {
		t.Errorf("DistanceMeters = %d, want 15000", result.DistanceMeters)
	}
	if result.DurationSeconds != 900 {
		t.Errorf("DurationSeconds = %d, want 900", result.DurationSeconds)
	}
	if result.TrafficDelay != 100 {
		t.Errorf("TrafficDelay = %d, want 100", result.TrafficDelay)
	}
}

func TestAutocomplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"suggestions": []map[string]interface{}{
				{
					"placePrediction": map[string]interface{}{
						"placeId": "ChIJ123456",
						"text": map[string]interface{}{
							"text": "123 Main St, Seattle, WA, USA",
						},
						"structuredFormat": map[string]interface{}{
							"mainText":      map[string]interface{}{"text": "123 Main St"},
							"secondaryText": map[string]interface{}{"text": "Seattle, WA, USA"},
						},
						"types": []string{"street_address"},
					},
				},
			},
		})
	}))
	defer server.Close()

	config := testConfig("test-api-key")
	config.AutocompleteURL = server.URL
	client := NewClient(config, nil, nil, nil, NewNoopRateLimiter())

	results, err := client.Autocomplete(context.Background(), &AutocompleteRequest{Input: "123 Main"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].PlaceID != "ChIJ123456" {
		t.Errorf("PlaceID = %q, want ChIJ123456", results[0].PlaceID)
	}
	if results[0].MainText != "123 Main St" {
		t.Errorf("MainText = %q, want '123 Main St'", results[0].MainText)
	}
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache()

	// Test set and get
	err := cache.Set(ctx, "test-key", []byte("test-value"), time.Hour)
	if err != nil {
		t.Errorf("Set error: %v", err)
	}

	val, err := cache.Get(ctx, "test-key")
	if err != nil {
		t.Errorf("Get error: %v", err)
	}
	if string(val) != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", string(val))
	}

	// Test expiration
	err = cache.Set(ctx, "expired-key", []byte("expired-value"), -time.Second)
	if err != nil {
		t.Errorf("Set error: %v", err)
	}

	val, err = cache.Get(ctx, "expired-key")
	if err != nil {
		t.Errorf("Get error: %v", err)
	}
	if val != nil {
		t.Errorf("Expected nil for expired key, got '%s'", string(val))
	}

	// Test missing key
	val, err = cache.Get(ctx, "missing-key")
	if err != nil {
		t.Errorf("Get error: %v", err)
	}
	if val != nil {
		t.Errorf("Expected nil for missing key, got '%s'", string(val))
	}
}

func TestNoopRateLimiter(t *testing.T) {
	ctx := context.Background()
	limiter := NewNoopRateLimiter()

	// Should always allow
	for i := 0; i < 100; i++ {
		if !limiter.Allow(ctx, "test-key") {
			t.Errorf("NoopRateLimiter should always allow")
		}
	}

	// Wait should return immediately
	start := time.Now()
	err := limiter.Wait(ctx, "test-key")
	if err != nil {
		t.Errorf("Wait error: %v", err)
	}
	if time.Since(start) > time.Millisecond {
		t.Errorf("Wait should return immediately")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("my-api-key")

	if config.APIKey != "my-api-key" {
		t.Errorf("Expected API key 'my-api-key', got '%s'", config.APIKey)
	}
	if config.Timeout != defaultTimeout {
		t.Errorf("Expected timeout %v, got %v", defaultTimeout, config.Timeout)
	}
	if config.MaxRetries != defaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", defaultMaxRetries, config.MaxRetries)
	}
	if !config.HasCredentials() {
		t.Error("expected HasCredentials to be true")
	}
	if DefaultConfig("").HasCredentials() {
		t.Error("expected HasCredentials to be false without key")
	}
}
