// Package logging provides Azure Application Insights integration.
package logging

import (
	"time"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"
)

// AppInsightsClient wraps Application Insights telemetry client.
type AppInsightsClient struct {
	client appinsights.TelemetryClient
}

// NewAppInsightsClient creates a new Application Insights client.
func NewAppInsightsClient(instrumentationKey string) *AppInsightsClient {
	if instrumentationKey == "" {
		return nil
	}

	config := appinsights.NewTelemetryConfiguration(instrumentationKey)
	config.MaxBatchSize = 8192
	config.MaxBatchInterval = 2 * time.Second

	client := appinsights.NewTelemetryClientFromConfig(config)

	return &AppInsightsClient{client: client}
}

// TrackEvent tracks a custom event.
func (c *AppInsightsClient) TrackEvent(name string, properties map[string]string) {
	if c == nil || c.client == nil {
		return
	}
	event := appinsights.NewEventTelemetry(name)
	for k, v := range properties {
		event.Properties[k] = v
	}
	c.client.Track(event)
}

// TrackMetric tracks a custom metric.
func (c *AppInsightsClient) TrackMetric(name string, value float64) {
	if c == nil || c.client == nil {
		return
	}
	metric := appinsights.NewMetricTelemetry(name, value)
	c.client.Track(metric)
}

// TrackException tracks an exception.
func (c *AppInsightsClient) TrackException(err error) {
	if c == nil || c.client == nil {
		return
	}
	exception := appinsights.NewExceptionTelemetry(err)
	c.client.Track(exception)
}

// TrackProviderCall tracks a call to an upstream mapping provider.
func (c *AppInsightsClient) TrackProviderCall(provider, operation string, duration time.Duration, success bool) {
	if c == nil || c.client == nil {
		return
	}
	dependency := appinsights.NewRemoteDependencyTelemetry(operation, "HTTP", provider, success)
	dependency.Duration = duration
	c.client.Track(dependency)
}

// TrackFeeResolution tracks one delivery fee resolution and how it was computed.
func (c *AppInsightsClient) TrackFeeResolution(branchID, calculationMethod string, finalFee float64, duration time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	event := appinsights.NewEventTelemetry("delivery.fee_resolved")
	event.Properties["branch_id"] = branchID
	event.Properties["calculation_method"] = calculationMethod
	event.Measurements["final_fee"] = finalFee
	event.Measurements["duration_ms"] = float64(duration.Milliseconds())
	c.client.Track(event)
}

// Flush flushes all pending telemetry.
func (c *AppInsightsClient) Flush() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Channel().Flush()
}

// Close closes the client and flushes remaining telemetry.
func (c *AppInsightsClient) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Channel().Close()
}
