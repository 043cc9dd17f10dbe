// Package telemetry provides observability utilities.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string // OTLP endpoint
	Insecure       bool   // Use insecure connection
}

// MetricsProvider provides metrics functionality.
type MetricsProvider struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter
	config   MetricsConfig
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(ctx context.Context, config MetricsConfig) (*MetricsProvider, error) {
	// Create resource
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create meter provider with periodic reader (no-op for now, can be configured with exporters)
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)

	// Set global provider
	otel.SetMeterProvider(provider)

	// Get meter
	meter := provider.Meter(config.ServiceName)

	return &MetricsProvider{
		provider: provider,
		meter:    meter,
		config:   config,
	}, nil
}

// Meter returns the meter for creating instruments.
func (m *MetricsProvider) Meter() metric.Meter {
	return m.meter
}

// Shutdown shuts down the metrics provider.
func (m *MetricsProvider) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// HTTPMetrics provides HTTP-related metrics.
type HTTPMetrics struct {
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestSize     metric.Int64Histogram
	responseSize    metric.Int64Histogram
	activeRequests  metric.Int64UpDownCounter
}

// NewHTTPMetrics creates HTTP metrics.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	requestSize, err := meter.Int64Histogram(
		"http_request_size_bytes",
		metric.WithDescription("HTTP request size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		requestSize:     requestSize,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// RecordRequest records HTTP request metrics.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, path string, status int, duration time.Duration, reqSize, respSize int64) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status_code", status),
		attribute.String("status_class", statusClass(status)),
	}

	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestSize.Record(ctx, reqSize, metric.WithAttributes(attrs...))
	m.responseSize.Record(ctx, respSize, metric.WithAttributes(attrs...))
}

// IncrementActiveRequests increments active requests.
func (m *HTTPMetrics) IncrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, 1)
}

// DecrementActiveRequests decrements active requests.
func (m *HTTPMetrics) DecrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, -1)
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// GeocodeMetrics provides geocoding provider metrics.
type GeocodeMetrics struct {
	requestsTotal   metric.Int64Counter
	fallbacksTotal  metric.Int64Counter
	requestDuration metric.Float64Histogram
	cacheHits       metric.Int64Counter
}

// NewGeocodeMetrics creates geocoding metrics.
func NewGeocodeMetrics(meter metric.Meter) (*GeocodeMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"geocode_requests_total",
		metric.WithDescription("Total geocoding requests by provider"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacksTotal, err := meter.Int64Counter(
		"geocode_fallbacks_total",
		metric.WithDescription("Total fallbacks from primary to secondary provider"),
		metric.WithUnit("{fallbacks}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"geocode_request_duration_seconds",
		metric.WithDescription("Geocoding request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"geocode_cache_hits_total",
		metric.WithDescription("Total geocoding cache hits"),
		metric.WithUnit("{hits}"),
	)
	if err != nil {
		return nil, err
	}

	return &GeocodeMetrics{
		requestsTotal:   requestsTotal,
		fallbacksTotal:  fallbacksTotal,
		requestDuration: requestDuration,
		cacheHits:       cacheHits,
	}, nil
}

// RecordRequest records a geocoding provider request.
func (m *GeocodeMetrics) RecordRequest(ctx context.Context, provider, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordFallback records a fallback to the secondary provider.
func (m *GeocodeMetrics) RecordFallback(ctx context.Context, operation string) {
	m.fallbacksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordCacheHit records a geocoding cache hit.
func (m *GeocodeMetrics) RecordCacheHit(ctx context.Context, operation string) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// FeeMetrics provides delivery fee resolution metrics.
type FeeMetrics struct {
	resolutionsTotal   metric.Int64Counter
	resolutionDuration metric.Float64Histogram
	feeAmount          metric.Float64Histogram
	deliveryDistance   metric.Float64Histogram
	manualRequired     metric.Int64Counter
}

// NewFeeMetrics creates fee resolution metrics.
func NewFeeMetrics(meter metric.Meter) (*FeeMetrics, error) {
	resolutionsTotal, err := meter.Int64Counter(
		"fee_resolutions_total",
		metric.WithDescription("Total fee resolutions by calculation method"),
		metric.WithUnit("{resolutions}"),
	)
	if err != nil {
		return nil, err
	}

	resolutionDuration, err := meter.Float64Histogram(
		"fee_resolution_duration_seconds",
		metric.WithDescription("Fee resolution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20),
	)
	if err != nil {
		return nil, err
	}

	feeAmount, err := meter.Float64Histogram(
		"fee_amount",
		metric.WithDescription("Resolved delivery fee amount"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 15, 20),
	)
	if err != nil {
		return nil, err
	}

	deliveryDistance, err := meter.Float64Histogram(
		"delivery_distance_km",
		metric.WithDescription("Delivery distance in kilometers"),
		metric.WithUnit("km"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 15, 20, 25, 30, 50),
	)
	if err != nil {
		return nil, err
	}

	manualRequired, err := meter.Int64Counter(
		"fee_manual_required_total",
		metric.WithDescription("Total resolutions that required manual handling"),
		metric.WithUnit("{resolutions}"),
	)
	if err != nil {
		return nil, err
	}

	return &FeeMetrics{
		resolutionsTotal:   resolutionsTotal,
		resolutionDuration: resolutionDuration,
		feeAmount:          feeAmount,
		deliveryDistance:   deliveryDistance,
		manualRequired:     manualRequired,
	}, nil
}

// RecordResolution records a completed fee resolution.
func (m *FeeMetrics) RecordResolution(ctx context.Context, method string, fee, distanceKm float64, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("calculation_method", method),
	}

	m.resolutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.resolutionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.feeAmount.Record(ctx, fee, metric.WithAttributes(attrs...))
	if distanceKm > 0 {
		m.deliveryDistance.Record(ctx, distanceKm, metric.WithAttributes(attrs...))
	}
}

// RecordManualRequired records a resolution that could not be automated.
func (m *FeeMetrics) RecordManualRequired(ctx context.Context, reason string) {
	m.manualRequired.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// MetricsMiddleware creates an HTTP middleware that records metrics.
func MetricsMiddleware(metrics *HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			metrics.IncrementActiveRequests(ctx)
			defer metrics.DecrementActiveRequests(ctx)

			start := time.Now()

			// Wrap response writer to capture status and size
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			metrics.RecordRequest(
				ctx,
				r.Method,
				r.URL.Path,
				wrapped.status,
				duration,
				r.ContentLength,
				int64(wrapped.size),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
