package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/platterhq/delivery-shared/geo"
	pkghttp "github.com/platterhq/delivery-shared/http"
)

// BranchClient is an HTTP client for the branch service.
type BranchClient struct {
	client *pkghttp.ResilientClient
}

// BranchClientConfig holds configuration for the branch client.
type BranchClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultBranchClientConfig returns sensible defaults.
func DefaultBranchClientConfig(baseURL string) BranchClientConfig {
	return BranchClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

// NewBranchClient creates a new branch service client.
func NewBranchClient(config BranchClientConfig) *BranchClient {
	resilientConfig := pkghttp.DefaultResilientClientConfig("branch-service", config.BaseURL)
	if config.Timeout > 0 {
		resilientConfig.Timeout = config.Timeout
	}

	return &BranchClient{
		client: pkghttp.NewResilientClient(resilientConfig),
	}
}

// Branch represents a fulfillment branch.
type Branch struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Location      geo.Point `json:"location"`
	DefaultZoneID string    `json:"default_zone_id,omitempty"`
	Active        bool      `json:"active"`
}

// GetBranch fetches a branch record with its coordinates. Callers fall
// back to the configured default branch location when this fails.
func (c *BranchClient) GetBranch(ctx context.Context, branchID string) (*Branch, error) {
	var branch Branch
	if err := c.client.GetJSON(ctx, fmt.Sprintf("/api/v1/branches/%s", branchID), &branch); err != nil {
		return nil, fmt.Errorf("failed to get branch %s: %w", branchID, err)
	}
	return &branch, nil
}

// Health checks if the branch service is healthy.
func (c *BranchClient) Health(ctx context.Context) error {
	_, err := c.client.Get(ctx, "/health", nil)
	return err
}
