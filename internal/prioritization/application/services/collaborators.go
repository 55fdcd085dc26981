package services

import (
	"context"

	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/google/uuid"
)

// UtilizationProvider supplies current department utilization percentages
// from the intake/CRUD layer.
type UtilizationProvider interface {
	// UtilizationPct returns the department's current utilization in
	// percent (0-100).
	UtilizationPct(ctx context.Context, departmentID uuid.UUID) (float64, error)
}

// UtilizationFunc adapts a function to UtilizationProvider.
type UtilizationFunc func(ctx context.Context, departmentID uuid.UUID) (float64, error)

// UtilizationPct implements UtilizationProvider.
func (f UtilizationFunc) UtilizationPct(ctx context.Context, departmentID uuid.UUID) (float64, error) {
	return f(ctx, departmentID)
}

// Notifier dispatches escalation notifications to the notification
// subsystem.
type Notifier interface {
	NotifyEscalation(ctx context.Context, e *escalation.PriorityEscalation) error
}

// NoopNotifier discards notifications; used when no notification endpoint
// is configured.
type NoopNotifier struct{}

// NotifyEscalation implements Notifier.
func (NoopNotifier) NotifyEscalation(context.Context, *escalation.PriorityEscalation) error {
	return nil
}
