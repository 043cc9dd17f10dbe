package http

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:                    "test",
		FailureThreshold:        3,
		SuccessThreshold:        2,
		Timeout:                 50 * time.Millisecond,
		MaxConcurrentInHalfOpen: 1,
	}
}

var errTest = errors.New("test error")

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func() error { return errTest })
	}

	if cb.State() != StateOpen {
		t.Errorf("expected open state, got %s", cb.State())
	}

	err := cb.Execute(ctx, func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreakerResetsFailuresOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig())
	ctx := context.Background()

	_ = cb.Execute(ctx, func() error { return errTest })
	_ = cb.Execute(ctx, func() error { return errTest })
	_ = cb.Execute(ctx, func() error { return nil })
	_ = cb.Execute(ctx, func() error { return errTest })
	_ = cb.Execute(ctx, func() error { return errTest })

	if cb.State() != StateClosed {
		t.Errorf("expected closed state, got %s", cb.State())
	}
}

func TestCircuitBreakerRecovery(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func() error { return errTest })
	}
	if cb.State() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	// Wait for the open timeout to elapse
	time.Sleep(60 * time.Millisecond)

	// Two successes in half-open close the circuit
	if err := cb.Execute(ctx, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error in half-open: %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Errorf("expected half-open state, got %s", cb.State())
	}
	if err := cb.Execute(ctx, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error in half-open: %v", err)
	}

	if cb.State() != StateClosed {
		t.Errorf("expected closed state, got %s", cb.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func() error { return errTest })
	}
	time.Sleep(60 * time.Millisecond)

	_ = cb.Execute(ctx, func() error { return errTest })

	if cb.State() != StateOpen {
		t.Errorf("expected open state after half-open failure, got %s", cb.State())
	}
}

func TestExecuteWithFallback(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func() error { return errTest })
	}

	fallbackCalled := false
	err := cb.ExecuteWithFallback(ctx,
		func() error { return nil },
		func() error { fallbackCalled = true; return nil },
	)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !fallbackCalled {
		t.Error("expected fallback to be called when circuit is open")
	}
}

func TestCircuitBreakerRegistry(t *testing.T) {
	r := NewCircuitBreakerRegistry()

	cb1 := r.Get("zones")
	cb2 := r.Get("zones")
	if cb1 != cb2 {
		t.Error("expected same breaker instance for same name")
	}

	cb3 := r.Get("branches")
	if cb1 == cb3 {
		t.Error("expected distinct breakers for distinct names")
	}

	metrics := r.AllMetrics()
	if len(metrics) != 2 {
		t.Errorf("expected 2 metrics entries, got %d", len(metrics))
	}
}

func TestCircuitStateString(t *testing.T) {
	tests := []struct {
		state CircuitState
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{CircuitState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
