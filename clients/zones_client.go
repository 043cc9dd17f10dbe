// Package clients provides HTTP clients for service-to-service communication.
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/platterhq/delivery-shared/errors"
	pkghttp "github.com/platterhq/delivery-shared/http"
	"github.com/platterhq/delivery-shared/shipping"
)

// ZonesClient is an HTTP client for the zone configuration service.
type ZonesClient struct {
	client *pkghttp.ResilientClient
}

// ZonesClientConfig holds configuration for the zones client.
type ZonesClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultZonesClientConfig returns sensible defaults.
func DefaultZonesClientConfig(baseURL string) ZonesClientConfig {
	return ZonesClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

// NewZonesClient creates a new zone service client.
func NewZonesClient(config ZonesClientConfig) *ZonesClient {
	resilientConfig := pkghttp.DefaultResilientClientConfig("zone-service", config.BaseURL)
	if config.Timeout > 0 {
		resilientConfig.Timeout = config.Timeout
	}

	return &ZonesClient{
		client: pkghttp.NewResilientClient(resilientConfig),
	}
}

// GetZones fetches the shipping zones configured for a branch. Any
// failure is wrapped as ZONES_UNAVAILABLE; callers degrade to an empty
// zone list rather than failing the fee resolution.
func (c *ZonesClient) GetZones(ctx context.Context, branchID string) ([]shipping.Zone, error) {
	var resp struct {
		Zones []shipping.Zone `json:"zones"`
	}
	if err := c.client.GetJSON(ctx, fmt.Sprintf("/api/v1/branches/%s/zones", branchID), &resp); err != nil {
		return nil, errors.ZonesUnavailable(err)
	}
	return resp.Zones, nil
}

// Health checks if the zone service is healthy.
func (c *ZonesClient) Health(ctx context.Context) error {
	_, err := c.client.Get(ctx, "/health", nil)
	return err
}
