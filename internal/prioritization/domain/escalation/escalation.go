// Package escalation contains the SLA breach records raised by the engine.
package escalation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors for escalations.
var (
	ErrEscalationNotFound = errors.New("escalation not found")
	ErrAlreadyResolved    = errors.New("escalation already resolved")
)

// PriorityEscalation is an immutable record of one detected SLA breach.
// It is created by the escalation engine and only ever marked resolved by a
// downstream collaborator; records are never deleted.
type PriorityEscalation struct {
	ID            uuid.UUID
	WorkRequestID uuid.UUID

	// RequestCreatedAt is the work request's creation time, kept for
	// reporting without a join.
	RequestCreatedAt time.Time
	EscalatedAt      time.Time

	Reason       string
	RuleName     string
	Action       string
	Recipients   []string
	CurrentScore float64
	AssigneeID   *uuid.UUID

	Resolved   bool
	ResolvedAt *time.Time
	ResolvedBy string
}

// New creates an escalation record for a breached work request.
func New(workRequestID uuid.UUID, requestCreatedAt time.Time, reason, ruleName, action string, recipients []string, currentScore float64, assigneeID *uuid.UUID) *PriorityEscalation {
	return &PriorityEscalation{
		ID:               uuid.New(),
		WorkRequestID:    workRequestID,
		RequestCreatedAt: requestCreatedAt,
		EscalatedAt:      time.Now().UTC(),
		Reason:           reason,
		RuleName:         ruleName,
		Action:           action,
		Recipients:       append([]string(nil), recipients...),
		CurrentScore:     currentScore,
		AssigneeID:       assigneeID,
	}
}

// Resolve marks the escalation handled. Resolving twice is an error.
func (e *PriorityEscalation) Resolve(by string) error {
	if e.Resolved {
		return ErrAlreadyResolved
	}
	now := time.Now().UTC()
	e.Resolved = true
	e.ResolvedAt = &now
	e.ResolvedBy = by
	return nil
}
