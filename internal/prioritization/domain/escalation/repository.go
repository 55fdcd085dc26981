package escalation

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores escalation records. Append-only: no delete operation.
type Repository interface {
	// Create appends a new escalation record.
	Create(ctx context.Context, e *PriorityEscalation) error

	// GetByID retrieves one escalation.
	GetByID(ctx context.Context, id uuid.UUID) (*PriorityEscalation, error)

	// HasUnresolved reports whether the work request already has an open
	// escalation.
	HasUnresolved(ctx context.Context, workRequestID uuid.UUID) (bool, error)

	// ListPending returns unresolved escalations, optionally narrowed to
	// one business vertical (nil = all).
	ListPending(ctx context.Context, verticalID *uuid.UUID) ([]*PriorityEscalation, error)

	// MarkResolved persists a resolution performed via Resolve.
	MarkResolved(ctx context.Context, e *PriorityEscalation) error
}
