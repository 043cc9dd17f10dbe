// Package http provides HTTP utilities including a resilient HTTP client.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const clientUserAgent = "delivery-shared/1.0"

// ResilientClientConfig holds configuration for the resilient HTTP client.
type ResilientClientConfig struct {
	// BaseURL is the base URL for all requests.
	BaseURL string
	// Timeout is the request timeout.
	Timeout time.Duration
	// CircuitBreakerConfig configures the circuit breaker.
	CircuitBreakerConfig CircuitBreakerConfig
	// RetryConfig configures retry behavior.
	RetryConfig RetryConfig
}

// RetryConfig configures retry behavior for the HTTP client.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultResilientClientConfig returns sensible production defaults.
func DefaultResilientClientConfig(serviceName, baseURL string) ResilientClientConfig {
	return ResilientClientConfig{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		CircuitBreakerConfig: CircuitBreakerConfig{
			Name:                    serviceName,
			FailureThreshold:        5,
			SuccessThreshold:        2,
			Timeout:                 30 * time.Second,
			MaxConcurrentInHalfOpen: 1,
		},
		RetryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
	}
}

// ResilientClient is an HTTP client with circuit breaker and retry capabilities.
// The zone and branch service clients are built on top of it.
type ResilientClient struct {
	config         ResilientClientConfig
	httpClient     *http.Client
	circuitBreaker *CircuitBreaker
	tracer         trace.Tracer
}

// NewResilientClient creates a new resilient HTTP client.
func NewResilientClient(config ResilientClientConfig) *ResilientClient {
	return &ResilientClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		circuitBreaker: NewCircuitBreaker(config.CircuitBreakerConfig),
		tracer:         otel.Tracer(config.CircuitBreakerConfig.Name),
	}
}

// Request represents an HTTP request to be made.
type Request struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// HTTPResponse represents an HTTP response from the resilient client.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Do executes an HTTP request with circuit breaker and retry protection.
func (c *ResilientClient) Do(ctx context.Context, req Request) (*HTTPResponse, error) {
	var response *HTTPResponse
	var lastErr error

	err := c.circuitBreaker.Execute(ctx, func() error {
		response, lastErr = c.doWithRetry(ctx, req)
		return lastErr
	})

	if err != nil {
		return nil, err
	}

	return response, nil
}

// doWithRetry runs the request until it succeeds, exhausts the retry budget,
// or hits a non-retryable failure.
func (c *ResilientClient) doWithRetry(ctx context.Context, req Request) (*HTTPResponse, error) {
	var response *HTTPResponse
	var lastErr error

	for attempt := 0; ; attempt++ {
		response, lastErr = c.doRequest(ctx, req)
		if lastErr == nil {
			return response, nil
		}

		if !c.isRetryable(lastErr, response) {
			return response, lastErr
		}

		if attempt >= c.config.RetryConfig.MaxRetries {
			return response, lastErr
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff(attempt, response)):
		}
	}
}

// doRequest executes a single HTTP request with tracing.
func (c *ResilientClient) doRequest(ctx context.Context, req Request) (*HTTPResponse, error) {
	url := c.config.BaseURL + req.Path

	spanName := fmt.Sprintf("HTTP %s %s", req.Method, req.Path)
	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", url),
			attribute.String("peer.service", c.config.CircuitBreakerConfig.Name),
		),
	)
	defer span.End()

	httpReq, err := c.buildRequest(ctx, req, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build request")
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read response body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	response := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}

	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		return response, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	span.SetStatus(codes.Ok, "")
	return response, nil
}

func (c *ResilientClient) buildRequest(ctx context.Context, req Request, url string) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", clientUserAgent)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	return httpReq, nil
}

// isRetryable determines if a request should be retried.
func (c *ResilientClient) isRetryable(err error, resp *HTTPResponse) bool {
	if err == nil {
		return false
	}

	// Network errors never produced a response.
	if resp == nil {
		return true
	}

	switch resp.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}

	return false
}

// backoff returns the delay before the next attempt: exponential with jitter,
// capped at MaxDelay. A Retry-After header from a 429 wins when it is longer.
func (c *ResilientClient) backoff(attempt int, resp *HTTPResponse) time.Duration {
	delay := c.config.RetryConfig.InitialDelay * (1 << attempt)
	if delay > c.config.RetryConfig.MaxDelay {
		delay = c.config.RetryConfig.MaxDelay
	}
	if half := int64(delay) / 2; half > 0 {
		delay += time.Duration(rand.Int63n(half))
		if delay > c.config.RetryConfig.MaxDelay {
			delay = c.config.RetryConfig.MaxDelay
		}
	}

	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if after := parseRetryAfter(resp.Headers.Get("Retry-After")); after > delay {
			if after > 30*time.Second {
				after = 30 * time.Second
			}
			return after
		}
	}

	return delay
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, string(e.Body))
}

// Get performs a GET request.
func (c *ResilientClient) Get(ctx context.Context, path string, headers map[string]string) (*HTTPResponse, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodGet,
		Path:    path,
		Headers: headers,
	})
}

// Post performs a POST request.
func (c *ResilientClient) Post(ctx context.Context, path string, body interface{}, headers map[string]string) (*HTTPResponse, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    path,
		Body:    body,
		Headers: headers,
	})
}

// GetJSON performs a GET request and unmarshals the response.
func (c *ResilientClient) GetJSON(ctx context.Context, path string, result interface{}) error {
	resp, err := c.Get(ctx, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp.Body, result)
}

// PostJSON performs a POST request and unmarshals the response.
func (c *ResilientClient) PostJSON(ctx context.Context, path string, body, result interface{}) error {
	resp, err := c.Post(ctx, path, body, nil)
	if err != nil {
		return err
	}
	if result != nil && len(resp.Body) > 0 {
		return json.Unmarshal(resp.Body, result)
	}
	return nil
}

// CircuitState returns the current state of the circuit breaker.
func (c *ResilientClient) CircuitState() CircuitState {
	return c.circuitBreaker.State()
}

// Metrics returns the circuit breaker metrics.
func (c *ResilientClient) Metrics() CircuitBreakerMetrics {
	return c.circuitBreaker.Metrics()
}
