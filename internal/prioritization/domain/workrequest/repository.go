package workrequest

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads work requests and writes only their priority fields.
type Repository interface {
	// FindByID retrieves a single work request.
	FindByID(ctx context.Context, id uuid.UUID) (*WorkRequest, error)

	// FindPendingInScope retrieves all pending work requests, optionally
	// narrowed to one business vertical (nil = all).
	FindPendingInScope(ctx context.Context, verticalID *uuid.UUID) ([]*WorkRequest, error)

	// UpdateScore writes the priority fields of a single work request
	// atomically.
	UpdateScore(ctx context.Context, w *WorkRequest) error

	// ListVerticals returns the distinct business verticals that currently
	// have pending work requests.
	ListVerticals(ctx context.Context) ([]uuid.UUID, error)
}

// ScoreAuditRepository appends and reads score audit records.
type ScoreAuditRepository interface {
	Append(ctx context.Context, audit ScoreAudit) error
	ListByWorkRequest(ctx context.Context, workRequestID uuid.UUID) ([]ScoreAudit, error)
}
