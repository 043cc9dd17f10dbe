// Package http provides HTTP utilities including circuit breaker for resilient service calls.
package http

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// StateClosed allows requests to pass through normally.
	StateClosed CircuitState = iota
	// StateOpen rejects all requests immediately.
	StateOpen
	// StateHalfOpen allows a limited number of requests to test recovery.
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the breaker, usually the upstream service or provider name.
	Name string
	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int
	// SuccessThreshold is the number of successes in half-open state to close.
	SuccessThreshold int
	// Timeout is how long an open circuit waits before probing again.
	Timeout time.Duration
	// MaxConcurrentInHalfOpen limits concurrent probe requests.
	MaxConcurrentInHalfOpen int
	// OnStateChange is called when the circuit state changes.
	OnStateChange func(name string, from, to CircuitState)
}

// DefaultCircuitBreakerConfig returns defaults tuned for the zone and branch
// services: geocoding providers carry their own rate limiting, so the breaker
// only needs to shed load when an upstream is hard down.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:                    name,
		FailureThreshold:        5,
		SuccessThreshold:        2,
		Timeout:                 30 * time.Second,
		MaxConcurrentInHalfOpen: 1,
	}
}

// CircuitBreaker implements the circuit breaker pattern for upstream calls.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu          sync.RWMutex
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	probes      int
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Common errors.
var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Execute runs the given function with circuit breaker protection.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	release, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()
	release(err)
	return err
}

// ExecuteWithFallback runs the function, invoking fallback when the breaker
// rejects the call. Failures of fn itself are returned, not rerouted.
func (cb *CircuitBreaker) ExecuteWithFallback(ctx context.Context, fn func() error, fallback func() error) error {
	err := cb.Execute(ctx, fn)
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests) {
		return fallback()
	}
	return err
}

// admit decides whether a call may proceed and reserves a probe slot when the
// breaker is half-open. The returned release func records the outcome and
// frees the slot; admission and slot accounting share one critical section so
// a state change between them cannot unbalance the probe count.
func (cb *CircuitBreaker) admit() (func(error), error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) <= cb.config.Timeout {
			return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, cb.config.Name)
		}
		cb.transitionTo(StateHalfOpen)
		fallthrough

	case StateHalfOpen:
		if cb.probes >= cb.config.MaxConcurrentInHalfOpen {
			return nil, fmt.Errorf("%w: %s", ErrTooManyRequests, cb.config.Name)
		}
		cb.probes++
		return func(err error) {
			cb.mu.Lock()
			defer cb.mu.Unlock()
			cb.probes--
			cb.record(err)
		}, nil
	}

	return func(err error) {
		cb.mu.Lock()
		defer cb.mu.Unlock()
		cb.record(err)
	}, nil
}

// record updates counters and state for one call outcome. Caller holds mu.
func (cb *CircuitBreaker) record(err error) {
	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		cb.successes = 0

		switch cb.state {
		case StateClosed:
			if cb.failures >= cb.config.FailureThreshold {
				cb.transitionTo(StateOpen)
			}
		case StateHalfOpen:
			// One failed probe reopens the circuit.
			cb.transitionTo(StateOpen)
		}
		return
	}

	cb.successes++
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transitionTo(StateClosed)
		}
	}
}

// transitionTo changes the circuit state. Caller holds mu.
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState
	cb.failures = 0
	cb.successes = 0

	if cb.config.OnStateChange != nil {
		// Call outside of lock to prevent deadlocks
		go cb.config.OnStateChange(cb.config.Name, oldState, newState)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Metrics returns current circuit breaker metrics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return CircuitBreakerMetrics{
		Name:        cb.config.Name,
		State:       cb.state,
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
	}
}

// CircuitBreakerMetrics holds metrics for monitoring.
type CircuitBreakerMetrics struct {
	Name        string
	State       CircuitState
	Failures    int
	Successes   int
	LastFailure time.Time
}

// CircuitBreakerRegistry manages one breaker per upstream service.
type CircuitBreakerRegistry struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
	config   CircuitBreakerConfig // Default config for new breakers
}

// NewCircuitBreakerRegistry creates a new registry.
func NewCircuitBreakerRegistry() *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		breakers: make(map[string]*CircuitBreaker),
		config:   DefaultCircuitBreakerConfig(""),
	}
}

// Get returns or creates a circuit breaker for the given name.
func (r *CircuitBreakerRegistry) Get(name string) *CircuitBreaker {
	r.mu.RLock()
	cb, exists := r.breakers[name]
	r.mu.RUnlock()

	if exists {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, exists = r.breakers[name]; exists {
		return cb
	}

	config := r.config
	config.Name = name
	cb = NewCircuitBreaker(config)
	r.breakers[name] = cb

	return cb
}

// AllMetrics returns metrics for all circuit breakers.
func (r *CircuitBreakerRegistry) AllMetrics() []CircuitBreakerMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := make([]CircuitBreakerMetrics, 0, len(r.breakers))
	for _, cb := range r.breakers {
		metrics = append(metrics, cb.Metrics())
	}
	return metrics
}
