// Package logging provides audit logging for fee decisions.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// AuditEventType represents the type of audit event.
type AuditEventType string

const (
	// Fee resolution events
	AuditEventFeeResolved       AuditEventType = "fee.resolved"
	AuditEventFeeDegraded       AuditEventType = "fee.degraded"
	AuditEventFeeManualRequired AuditEventType = "fee.manual_required"

	// Provider events
	AuditEventProviderFallback AuditEventType = "provider.fallback"
	AuditEventProviderFailed   AuditEventType = "provider.failed"

	// Zone configuration events
	AuditEventZonesFetched     AuditEventType = "zones.fetched"
	AuditEventZonesUnavailable AuditEventType = "zones.unavailable"
)

// AuditEvent represents an audit log entry. Fee events carry enough detail
// for an operator to reconstruct why a given fee was shown.
type AuditEvent struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Type        AuditEventType         `json:"type"`
	BranchID    string                 `json:"branch_id,omitempty"`
	Outcome     string                 `json:"outcome"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Service     string                 `json:"service"`
	Environment string                 `json:"environment"`
}

// AuditLogger writes audit events as structured log lines.
type AuditLogger struct {
	logger      *slog.Logger
	service     string
	environment string
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(service, environment string) *AuditLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &AuditLogger{
		logger:      slog.New(handler).With("log_type", "audit"),
		service:     service,
		environment: environment,
	}
}

// Log writes an audit event.
func (a *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = a.service
	event.Environment = a.environment

	a.logger.InfoContext(ctx, string(event.Type),
		"audit_id", event.ID,
		"timestamp", event.Timestamp.Format(time.RFC3339Nano),
		"branch_id", event.BranchID,
		"outcome", event.Outcome,
		"details", event.Details,
	)
}

// LogFeeResolved records a successfully computed fee and its calculation method.
func (a *AuditLogger) LogFeeResolved(ctx context.Context, branchID, calculationMethod string, finalFee float64) {
	a.Log(ctx, AuditEvent{
		Type:     AuditEventFeeResolved,
		BranchID: branchID,
		Outcome:  "success",
		Details: map[string]interface{}{
			"calculation_method": calculationMethod,
			"final_fee":          finalFee,
		},
	})
}

// LogFeeDegraded records a fee produced by a lower-fidelity tier.
func (a *AuditLogger) LogFeeDegraded(ctx context.Context, branchID, calculationMethod, reason string) {
	a.Log(ctx, AuditEvent{
		Type:     AuditEventFeeDegraded,
		BranchID: branchID,
		Outcome:  "degraded",
		Details: map[string]interface{}{
			"calculation_method": calculationMethod,
			"reason":             reason,
		},
	})
}

// LogFeeManualRequired records the terminal failure where an operator must
// enter the fee by hand.
func (a *AuditLogger) LogFeeManualRequired(ctx context.Context, branchID, reason string) {
	a.Log(ctx, AuditEvent{
		Type:     AuditEventFeeManualRequired,
		BranchID: branchID,
		Outcome:  "failure",
		Details: map[string]interface{}{
			"reason": reason,
		},
	})
}

// LogProviderFallback records a primary-to-secondary provider fall-through.
func (a *AuditLogger) LogProviderFallback(ctx context.Context, operation, primaryErr string) {
	a.Log(ctx, AuditEvent{
		Type:    AuditEventProviderFallback,
		Outcome: "degraded",
		Details: map[string]interface{}{
			"operation":     operation,
			"primary_error": primaryErr,
		},
	})
}
