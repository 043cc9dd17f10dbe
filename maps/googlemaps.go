// Package maps provides geocoding, routing, and place search adapters for the
// delivery pipeline. The Google Maps Platform client is the primary provider;
// it is designed to be used server-side only via BFF endpoints. Client keys
// should never be exposed in server code - use the web/mobile SDKs directly.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/logging"
)

const (
	// Google Maps Platform API endpoints
	defaultPlacesAutocompleteURL = "https://places.googleapis.com/v1/places:autocomplete"
	defaultPlaceDetailsURL       = "https://places.googleapis.com/v1/places"
	defaultComputeRoutesURL      = "https://routes.googleapis.com/directions/v2:computeRoutes"
	defaultGeocodeURL            = "https://maps.googleapis.com/maps/api/geocode/json"

	// Default configuration
	defaultTimeout         = 10 * time.Second
	defaultMaxRetries      = 3
	defaultRetryDelay      = 100 * time.Millisecond
	defaultCacheTTL        = 30 * 24 * time.Hour // 30 days (Google ToS max)
	defaultRateLimitPerSec = 50                  // Conservative default
)

// TravelMode specifies the travel mode for routing.
type TravelMode string

const (
	TravelModeDrive      TravelMode = "DRIVE"
	TravelModeWalk       TravelMode = "WALK"
	TravelModeBicycle    TravelMode = "BICYCLE"
	TravelModeTwoWheeler TravelMode = "TWO_WHEELER"
)

// RoutingPreference specifies the routing preference.
type RoutingPreference string

const (
	RoutingPreferenceTrafficUnaware      RoutingPreference = "TRAFFIC_UNAWARE"
	RoutingPreferenceTrafficAware        RoutingPreference = "TRAFFIC_AWARE"
	RoutingPreferenceTrafficAwareOptimal RoutingPreference = "TRAFFIC_AWARE_OPTIMAL"
)

// Config holds Google Maps adapter configuration.
type Config struct {
	// APIKey is the server-side API key (IP-restricted to NAT Gateway IPs)
	APIKey string

	// Timeout for HTTP requests
	Timeout time.Duration

	// MaxRetries for failed requests
	MaxRetries int

	// RetryDelay between retries
	RetryDelay time.Duration

	// CacheTTL for caching results (max 30 days per Google ToS)
	CacheTTL time.Duration

	// RateLimitPerSecond for throttling
	RateLimitPerSecond int

	// DefaultCountry for autocomplete bias (ISO 3166-1 alpha-2)
	DefaultCountry string

	// Endpoint overrides, used in tests. Empty means the public endpoints.
	AutocompleteURL string
	PlaceDetailsURL string
	RoutesURL       string
	GeocodeURL      string
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:             apiKey,
		Timeout:            defaultTimeout,
		MaxRetries:         defaultMaxRetries,
		RetryDelay:         defaultRetryDelay,
		CacheTTL:           defaultCacheTTL,
		RateLimitPerSecond: defaultRateLimitPerSec,
		DefaultCountry:     "US",
	}
}

// HasCredentials reports whether the client has an API key configured.
func (c *Config) HasCredentials() bool {
	return c.APIKey != ""
}

// Client is the Google Maps Platform client.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logging.Logger
	tracer     *Tracer
	cache      Cache
	limiter    RateLimiter
}

// Cache interface for caching maps responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RateLimiter interface for rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
	Wait(ctx context.Context, key string) error
}

// NewClient creates a new Google Maps client.
func NewClient(config *Config, logger *logging.Logger, tracer *Tracer, cache Cache, limiter RateLimiter) *Client {
	if config == nil {
		config = DefaultConfig("")
	}
	if logger == nil {
		logger = logging.NewLogger("error")
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  logger,
		tracer:  tracer,
		cache:   cache,
		limiter: limiter,
	}
}

// HasCredentials reports whether the client can reach the primary provider.
func (c *Client) HasCredentials() bool {
	return c.config.HasCredentials()
}

func (c *Client) autocompleteURL() string {
	if c.config.AutocompleteURL != "" {
		return c.config.AutocompleteURL
	}
	return defaultPlacesAutocompleteURL
}

func (c *Client) placeDetailsURL(placeID string) string {
	base := c.config.PlaceDetailsURL
	if base == "" {
		base = defaultPlaceDetailsURL
	}
	return fmt.Sprintf("%s/%s", base, placeID)
}

func (c *Client) routesURL() string {
	if c.config.RoutesURL != "" {
		return c.config.RoutesURL
	}
	return defaultComputeRoutesURL
}

func (c *Client) geocodeURL() string {
	if c.config.GeocodeURL != "" {
		return c.config.GeocodeURL
	}
	return defaultGeocodeURL
}

// === Places Autocomplete ===

// AutocompleteRequest represents a places autocomplete request.
type AutocompleteRequest struct {
	Input        string    // The search text
	SessionToken string    // Session token for billing (group autocomplete + place details)
	Country      string    // ISO 3166-1 alpha-2 country code
	Location     geo.Point // Location bias
	RadiusMeters float64   // Bias radius in meters
	Types        []string  // Place type filter (e.g., "address", "establishment")
}

// AutocompleteResult represents an autocomplete prediction.
type AutocompleteResult struct {
	PlaceID       string   `json:"place_id"`
	Description   string   `json:"description"`
	MainText      string   `json:"main_text"`
	SecondaryText string   `json:"secondary_text"`
	Types         []string `json:"types"`
}

// Autocomplete performs a places autocomplete search.
func (c *Client) Autocomplete(ctx context.Context, req *AutocompleteRequest) ([]AutocompleteResult, error) {
	ctx, span := c.startSpan(ctx, "maps.Autocomplete")
	defer span.End()

	// Rate limiting
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "maps:autocomplete"); err != nil {
			return nil, fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	// Build request body for new Places API
	body := map[string]interface{}{
		"input": req.Input,
	}

	// Add session token if provided
	if req.SessionToken != "" {
		body["sessionToken"] = req.SessionToken
	}

	// Location bias
	if !req.Location.IsZero() {
		body["locationBias"] = map[string]interface{}{
			"circle": map[string]interface{}{
				"center": map[string]interface{}{
					"latitude":  req.Location.Lat,
					"longitude": req.Location.Lng,
				},
				"radius": req.RadiusMeters,
			},
		}
	}

	// Country restriction
	country := req.Country
	if country == "" {
		country = c.config.DefaultCountry
	}
	if country != "" {
		body["includedRegionCodes"] = []string{country}
	}

	// Types filter
	if len(req.Types) > 0 {
		body["includedPrimaryTypes"] = req.Types
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.autocompleteURL(), strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.config.APIKey)
	httpReq.Header.Set("X-Goog-FieldMask", "suggestions.placePrediction.placeId,suggestions.placePrediction.text,suggestions.placePrediction.structuredFormat,suggestions.placePrediction.types")

	resp, err := c.doRequest(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp struct {
		Suggestions []struct {
			PlacePrediction struct {
				PlaceID string `json:"placeId"`
				Text    struct {
					Text string `json:"text"`
				} `json:"text"`
				StructuredFormat struct {
					MainText      struct{ Text string } `json:"mainText"`
					SecondaryText struct{ Text string } `json:"secondaryText"`
				} `json:"structuredFormat"`
				Types []string `json:"types"`
			} `json:"placePrediction"`
		} `json:"suggestions"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]AutocompleteResult, 0, len(apiResp.Suggestions))
	for _, s := range apiResp.Suggestions {
		p := s.PlacePrediction
		results = append(results, AutocompleteResult{
			PlaceID:       p.PlaceID,
			Description:   p.Text.Text,
			MainText:      p.StructuredFormat.MainText.Text,
			SecondaryText: p.StructuredFormat.SecondaryText.Text,
			Types:         p.Types,
		})
	}

	c.logger.Debug("autocomplete completed",
		"input", req.Input,
		"results", len(results))

	return results, nil
}

// === Place Details ===

// PlaceDetailsRequest represents a place details request.
type PlaceDetailsRequest struct {
	PlaceID      string
	SessionToken string // Same session token used in autocomplete
	Fields       []string
}

// PlaceDetails represents place details.
type PlaceDetails struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formatted_address"`
	Location          geo.Point          `json:"location"`
	Types             []string           `json:"types"`
	AddressComponents []AddressComponent `json:"address_components"`
}

// AddressComponent represents an address component.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// GetPlaceDetails retrieves details for a place.
func (c *Client) GetPlaceDetails(ctx context.Context, req *PlaceDetailsRequest) (*PlaceDetails, error) {
	ctx, span := c.startSpan(ctx, "maps.GetPlaceDetails")
	defer span.End()

	// Check cache first
	cacheKey := fmt.Sprintf("place:%s", req.PlaceID)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var details PlaceDetails
			if err := json.Unmarshal(cached, &details); err == nil {
				c.logger.Debug("place details cache hit", "placeID", req.PlaceID)
				return &details, nil
			}
		}
	}

	// Rate limiting
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "maps:place_details"); err != nil {
			return nil, fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.placeDetailsURL(req.PlaceID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Field mask for what data to return
	fields := req.Fields
	if len(fields) == 0 {
		fields = []string{"id", "displayName", "formattedAddress", "location", "types", "addressComponents"}
	}
	httpReq.Header.Set("X-Goog-Api-Key", c.config.APIKey)
	httpReq.Header.Set("X-Goog-FieldMask", strings.Join(fields, ","))

	// Add session token if provided
	if req.SessionToken != "" {
		q := httpReq.URL.Query()
		q.Set("sessionToken", req.SessionToken)
		httpReq.URL.RawQuery = q.Encode()
	}

	resp, err := c.doRequest(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp struct {
		ID               string                `json:"id"`
		DisplayName      struct{ Text string } `json:"displayName"`
		FormattedAddress string                `json:"formattedAddress"`
		Location         struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		Types             []string `json:"types"`
		AddressComponents []struct {
			LongText  string   `json:"longText"`
			ShortText string   `json:"shortText"`
			Types     []string `json:"types"`
		} `json:"addressComponents"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	details := &PlaceDetails{
		PlaceID:          apiResp.ID,
		Name:             apiResp.DisplayName.Text,
		FormattedAddress: apiResp.FormattedAddress,
		Location: geo.Point{
			Lat: apiResp.Location.Latitude,
			Lng: apiResp.Location.Longitude,
		},
		Types: apiResp.Types,
	}

	for _, comp := range apiResp.AddressComponents {
		details.AddressComponents = append(details.AddressComponents, AddressComponent{
			LongName:  comp.LongText,
			ShortName: comp.ShortText,
			Types:     comp.Types,
		})
	}

	// Cache the result
	if c.cache != nil {
		if cached, err := json.Marshal(details); err == nil {
			_ = c.cache.Set(ctx, cacheKey, cached, c.config.CacheTTL)
		}
	}

	c.logger.Debug("place details retrieved", "placeID", req.PlaceID)

	return details, nil
}

// === Routes ===

// ComputeRoutesRequest represents a route computation request.
type ComputeRoutesRequest struct {
	Origin            geo.Point
	Destination       geo.Point
	TravelMode        TravelMode
	RoutingPreference RoutingPreference
	DepartureTime     *time.Time
	AvoidTolls        bool
	AvoidHighways     bool
	AvoidFerries      bool
}

// RouteResult represents a computed route.
type RouteResult struct {
	DistanceMeters  int        `json:"distance_meters"`
	DurationSeconds int        `json:"duration_seconds"`
	EncodedPolyline string     `json:"encoded_polyline"`
	StaticDuration  int        `json:"static_duration_seconds"`
	TrafficDelay    int        `json:"traffic_delay_seconds,omitempty"`
	Legs            []RouteLeg `json:"legs,omitempty"`
}

// RouteLeg represents a leg of a route.
type RouteLeg struct {
	DistanceMeters  int       `json:"distance_meters"`
	DurationSeconds int       `json:"duration_seconds"`
	StartLocation   geo.Point `json:"start_location"`
	EndLocation     geo.Point `json:"end_location"`
}

// ComputeRoutes computes a route between origin and destination.
func (c *Client) ComputeRoutes(ctx context.Context, req *ComputeRoutesRequest) (*RouteResult, error) {
	ctx, span := c.startSpan(ctx, "maps.ComputeRoutes")
	defer span.End()

	// Rate limiting
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "maps:compute_routes"); err != nil {
			return nil, fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	travelMode := req.TravelMode
	if travelMode == "" {
		travelMode = TravelModeDrive
	}

	// Build request body
	body := map[string]interface{}{
		"origin": map[string]interface{}{
			"location": map[string]interface{}{
				"latLng": map[string]interface{}{
					"latitude":  req.Origin.Lat,
					"longitude": req.Origin.Lng,
				},
			},
		},
		"destination": map[string]interface{}{
			"location": map[string]interface{}{
				"latLng": map[string]interface{}{
					"latitude":  req.Destination.Lat,
					"longitude": req.Destination.Lng,
				},
			},
		},
		"travelMode": travelMode,
	}

	// Routing preference
	preference := req.RoutingPreference
	if preference == "" {
		preference = RoutingPreferenceTrafficUnaware
	}
	body["routingPreference"] = preference

	// Departure time
	if req.DepartureTime != nil {
		body["departureTime"] = req.DepartureTime.Format(time.RFC3339)
	}

	// Route modifiers
	modifiers := make(map[string]interface{})
	if req.AvoidTolls {
		modifiers["avoidTolls"] = true
	}
	if req.AvoidHighways {
		modifiers["avoidHighways"] = true
	}
	if req.AvoidFerries {
		modifiers["avoidFerries"] = true
	}
	if len(modifiers) > 0 {
		body["routeModifiers"] = modifiers
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.routesURL(), strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.config.APIKey)
	httpReq.Header.Set("X-Goog-FieldMask", "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline,routes.legs,routes.staticDuration")

	resp, err := c.doRequest(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp struct {
		Routes []struct {
			DistanceMeters int    `json:"distanceMeters"`
			Duration       string `json:"duration"`
			StaticDuration string `json:"staticDuration"`
			Polyline       struct {
				EncodedPolyline string `json:"encodedPolyline"`
			} `json:"polyline"`
			Legs []struct {
				DistanceMeters int    `json:"distanceMeters"`
				Duration       string `json:"duration"`
				StartLocation  struct {
					LatLng struct {
						Latitude  float64 `json:"latitude"`
						Longitude float64 `json:"longitude"`
					} `json:"latLng"`
				} `json:"startLocation"`
				EndLocation struct {
					LatLng struct {
						Latitude  float64 `json:"latitude"`
						Longitude float64 `json:"longitude"`
					} `json:"latLng"`
				} `json:"endLocation"`
			} `json:"legs"`
		} `json:"routes"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Routes) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	route := apiResp.Routes[0]
	durationSec := parseDuration(route.Duration)
	staticDurationSec := parseDuration(route.StaticDuration)

	result := &RouteResult{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: durationSec,
		StaticDuration:  staticDurationSec,
		TrafficDelay:    durationSec - staticDurationSec,
		EncodedPolyline: route.Polyline.EncodedPolyline,
	}

	for _, leg := range route.Legs {
		result.Legs = append(result.Legs, RouteLeg{
			DistanceMeters:  leg.DistanceMeters,
			DurationSeconds: parseDuration(leg.Duration),
			StartLocation: geo.Point{
				Lat: leg.StartLocation.LatLng.Latitude,
				Lng: leg.StartLocation.LatLng.Longitude,
			},
			EndLocation: geo.Point{
				Lat: leg.EndLocation.LatLng.Latitude,
				Lng: leg.EndLocation.LatLng.Longitude,
			},
		})
	}

	c.logger.Debug("route computed",
		"distance_m", result.DistanceMeters,
		"duration_s", result.DurationSeconds)

	return result, nil
}

// === Geocoding ===

// GeocodeResult represents a forward or reverse geocode result.
type GeocodeResult struct {
	PlaceID           string             `json:"place_id"`
	FormattedAddress  string             `json:"formatted_address"`
	Location          geo.Point          `json:"location"`
	AddressComponents []AddressComponent `json:"address_components"`
	StreetAddress     string             `json:"street_address"`
	City              string             `json:"city"`
	State             string             `json:"state"`
	Country           string             `json:"country"`
	PostalCode        string             `json:"postal_code"`
}

// Geocode converts an address string to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	ctx, span := c.startSpan(ctx, "maps.Geocode")
	defer span.End()

	// Check cache first
	cacheKey := fmt.Sprintf("geo:%s", strings.ToLower(strings.TrimSpace(address)))
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var result GeocodeResult
			if err := json.Unmarshal(cached, &result); err == nil {
				c.logger.Debug("geocode cache hit", "address", address)
				return &result, nil
			}
		}
	}

	// Rate limiting
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "maps:geocode"); err != nil {
			return nil, fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.config.APIKey)

	result, err := c.fetchGeocode(ctx, params)
	if err != nil {
		return nil, err
	}

	// Cache the result
	if c.cache != nil {
		if cached, err := json.Marshal(result); err == nil {
			_ = c.cache.Set(ctx, cacheKey, cached, c.config.CacheTTL)
		}
	}

	c.logger.Debug("geocode completed", "address", address, "city", result.City)

	return result, nil
}

// ReverseGeocode converts coordinates to an address.
func (c *Client) ReverseGeocode(ctx context.Context, location geo.Point) (*GeocodeResult, error) {
	ctx, span := c.startSpan(ctx, "maps.ReverseGeocode")
	defer span.End()

	// Check cache first. Geohash cells at this precision are roughly 150m,
	// close enough that nearby clicks share an address.
	cacheKey := fmt.Sprintf("revgeo:%s", geo.Encode(location, geo.CacheKeyPrecision))
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var result GeocodeResult
			if err := json.Unmarshal(cached, &result); err == nil {
				c.logger.Debug("reverse geocode cache hit", "lat", location.Lat, "lng", location.Lng)
				return &result, nil
			}
		}
	}

	// Rate limiting
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "maps:reverse_geocode"); err != nil {
			return nil, fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", location.Lat, location.Lng))
	params.Set("key", c.config.APIKey)
	params.Set("result_type", "street_address|premise|sublocality|locality")

	result, err := c.fetchGeocode(ctx, params)
	if err != nil {
		return nil, err
	}

	// Cache the result
	if c.cache != nil {
		if cached, err := json.Marshal(result); err == nil {
			_ = c.cache.Set(ctx, cacheKey, cached, c.config.CacheTTL)
		}
	}

	c.logger.Debug("reverse geocode completed",
		"lat", location.Lat,
		"lng", location.Lng,
		"city", result.City)

	return result, nil
}

// fetchGeocode calls the geocode endpoint and maps the first result.
func (c *Client) fetchGeocode(ctx context.Context, params url.Values) (*GeocodeResult, error) {
	reqURL := fmt.Sprintf("%s?%s", c.geocodeURL(), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.doRequest(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID          string `json:"place_id"`
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			AddressComponents []struct {
				LongName  string   `json:"long_name"`
				ShortName string   `json:"short_name"`
				Types     []string `json:"types"`
			} `json:"address_components"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Status != "OK" || len(apiResp.Results) == 0 {
		return nil, fmt.Errorf("geocode returned no results (status %s)", apiResp.Status)
	}

	r := apiResp.Results[0]
	result := &GeocodeResult{
		PlaceID:          r.PlaceID,
		FormattedAddress: r.FormattedAddress,
		Location: geo.Point{
			Lat: r.Geometry.Location.Lat,
			Lng: r.Geometry.Location.Lng,
		},
	}

	// Parse address components
	var streetNumber, route string
	for _, comp := range r.AddressComponents {
		result.AddressComponents = append(result.AddressComponents, AddressComponent{
			LongName:  comp.LongName,
			ShortName: comp.ShortName,
			Types:     comp.Types,
		})

		// Extract specific components
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				streetNumber = comp.LongName
			case "route":
				route = comp.LongName
			case "locality":
				result.City = comp.LongName
			case "administrative_area_level_1":
				result.State = comp.ShortName
			case "country":
				result.Country = comp.ShortName
			case "postal_code":
				result.PostalCode = comp.LongName
			}
		}
	}

	if route != "" {
		result.StreetAddress = strings.TrimSpace(streetNumber + " " + route)
	}

	return result, nil
}

// === Helper Functions ===

// doRequest executes an HTTP request with retries.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	var lastErr error

	for i := 0; i <= c.config.MaxRetries; i++ {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.config.RetryDelay * time.Duration(i+1))
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		// Read error body
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Check for retryable errors
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("Google Maps API error: %d - %s", resp.StatusCode, string(body))
			time.Sleep(c.config.RetryDelay * time.Duration(i+1))
			continue
		}

		// Non-retryable error
		return nil, fmt.Errorf("Google Maps API error: %d - %s", resp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// startSpan starts a telemetry span if tracer is configured.
func (c *Client) startSpan(ctx context.Context, name string) (context.Context, *Span) {
	if c.tracer != nil {
		return c.tracer.StartSpan(ctx, name)
	}
	return ctx, &Span{}
}

// parseDuration parses a Google duration string (e.g., "123s") to seconds.
func parseDuration(d string) int {
	if d == "" {
		return 0
	}
	d = strings.TrimSuffix(d, "s")
	sec, _ := strconv.Atoi(d)
	return sec
}
