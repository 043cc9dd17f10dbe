package maps

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer for provider operations.
type Tracer struct {
	tracer   trace.Tracer
	provider string
}

// NewTracer creates a new Tracer wrapping an OpenTelemetry tracer.
// provider names the upstream service (e.g. "google", "nominatim").
func NewTracer(tracer trace.Tracer, provider string) *Tracer {
	if tracer == nil {
		return nil
	}
	if provider == "" {
		provider = "google"
	}
	return &Tracer{tracer: tracer, provider: provider}
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// End ends the span.
func (s *Span) End() {
	if s.span != nil {
		s.span.End()
	}
}

// RecordError records an error on the span.
func (s *Span) RecordError(err error) {
	if s.span != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
}

// SetAttributes sets attributes on the span.
func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	if s.span != nil {
		s.span.SetAttributes(attrs...)
	}
}

// StartSpan starts a new span for provider operations.
func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if t == nil || t.tracer == nil {
		return ctx, &Span{}
	}

	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("maps.provider", t.provider),
		),
	)

	return ctx, &Span{span: span}
}

// RouteAttributes returns attributes for route operations.
func RouteAttributes(distanceMeters, durationSeconds int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("maps.operation", "compute_routes"),
		attribute.Int("maps.distance.meters", distanceMeters),
		attribute.Int("maps.duration.seconds", durationSeconds),
	}
}

// AutocompleteAttributes returns attributes for autocomplete operations.
func AutocompleteAttributes(input string, resultsCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("maps.operation", "autocomplete"),
		attribute.Int("maps.input.length", len(input)),
		attribute.Int("maps.results.count", resultsCount),
	}
}

// GeocodeOpAttributes returns attributes for geocode operations.
func GeocodeOpAttributes(operation string, lat, lng float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("maps.operation", operation),
		attribute.Float64("maps.location.lat", lat),
		attribute.Float64("maps.location.lng", lng),
	}
}
