// Package maps provides geocoding, routing, and place search adapters.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/logging"
)

const (
	defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	defaultNominatimTimeout = 5 * time.Second
	nominatimUserAgent      = "delivery-shared/1.0"
)

// NominatimConfig holds configuration for the secondary geocoding provider.
type NominatimConfig struct {
	// BaseURL of the Nominatim instance.
	BaseURL string

	// Timeout for HTTP requests. The secondary provider must never be
	// allowed to hang past this bound.
	Timeout time.Duration

	// MaxResults limits search results.
	MaxResults int
}

// DefaultNominatimConfig returns the public Nominatim instance configuration.
func DefaultNominatimConfig() *NominatimConfig {
	return &NominatimConfig{
		BaseURL:    defaultNominatimBaseURL,
		Timeout:    defaultNominatimTimeout,
		MaxResults: 5,
	}
}

// NominatimClient is the secondary, keyless geocoding provider.
// It offers forward and reverse search only, with no routing capability.
type NominatimClient struct {
	config     *NominatimConfig
	httpClient *http.Client
	logger     *logging.Logger
}

// NewNominatimClient creates a new Nominatim client.
func NewNominatimClient(config *NominatimConfig, logger *logging.Logger) *NominatimClient {
	if config == nil {
		config = DefaultNominatimConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultNominatimTimeout
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 5
	}
	if logger == nil {
		logger = logging.NewLogger("error")
	}

	return &NominatimClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// NominatimResult represents a single Nominatim search or reverse result.
type NominatimResult struct {
	PlaceID     int64            `json:"place_id"`
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     NominatimAddress `json:"address"`
}

// NominatimAddress holds the structured address fields Nominatim returns.
// Field presence varies by location granularity.
type NominatimAddress struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Location parses the string lat/lon pair into a Point.
func (r *NominatimResult) Location() (geo.Point, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude %q: %w", r.Lon, err)
	}
	return geo.Point{Lat: lat, Lng: lon}, nil
}

// Locality returns the best available city-level name.
// Nominatim uses city, town, or village depending on settlement size.
func (a *NominatimAddress) Locality() string {
	if a.City != "" {
		return a.City
	}
	if a.Town != "" {
		return a.Town
	}
	return a.Village
}

// Search performs a forward geocode search.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]NominatimResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(c.config.MaxResults))

	var results []NominatimResult
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}

	c.logger.Debug("nominatim search completed", "query", query, "results", len(results))

	return results, nil
}

// Reverse performs a reverse geocode lookup.
func (c *NominatimClient) Reverse(ctx context.Context, location geo.Point) (*NominatimResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(location.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(location.Lng, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var result NominatimResult
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return nil, err
	}

	if result.DisplayName == "" {
		return nil, fmt.Errorf("no address found for coordinates")
	}

	c.logger.Debug("nominatim reverse completed",
		"lat", location.Lat,
		"lng", location.Lng)

	return &result, nil
}

// get executes a GET against the Nominatim API and decodes the response.
func (c *NominatimClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", strings.TrimSuffix(c.config.BaseURL, "/"), path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Nominatim usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", nominatimUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim API error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
