package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent names the subsystem that emitted the record.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable name for the event.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldCorrelationID ties together the records of one disc resolution.
	FieldCorrelationID = "correlation_id"
	// FieldDiscID is the 8-hex-digit freedb disc id.
	FieldDiscID = "disc_id"
	// FieldDevice is the optical drive path.
	FieldDevice = "device"
)

type correlationKey struct{}

// WithCorrelationID stores id on ctx for WithContext to pick up.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// correlationIDFromContext returns the id stored by WithCorrelationID.
func correlationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(correlationKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns logger augmented with fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := correlationIDFromContext(ctx); ok {
		return logger.With(String(FieldCorrelationID, id))
	}
	return logger
}
