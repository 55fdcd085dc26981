// Package workrequest models the priority-bearing view of a work request.
//
// Work requests are created and owned by the intake subsystem; only the
// priority fields (score, level, score timestamp) are written here.
package workrequest

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors for work requests.
var (
	ErrWorkRequestNotFound = errors.New("work request not found")
)

// Status mirrors the intake subsystem's lifecycle; only pending items are
// scored and escalated.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// String returns the status as a string.
func (s Status) String() string {
	return string(s)
}

// WorkRequest is the scoring view of a work item. Everything except the
// priority fields is a read-only input supplied by collaborators.
type WorkRequest struct {
	ID                 uuid.UUID
	Title              string
	Category           string
	DepartmentID       uuid.UUID
	BusinessVerticalID *uuid.UUID
	Status             Status
	CreatedAt          time.Time

	// Vote-supplied inputs.
	BaseScore          float64 // businessValueScore in [0,1]
	StrategicAlignment bool
	ROIEstimate        *float64

	AssigneeID *uuid.UUID

	// Priority fields, owned by this engine.
	PriorityScore  float64
	PriorityLevel  PriorityLevel
	ScoreUpdatedAt *time.Time
}

// AgeAt returns the item's age at the given instant.
func (w *WorkRequest) AgeAt(now time.Time) time.Duration {
	return now.Sub(w.CreatedAt)
}

// AgeHoursAt returns the item's age in whole hours at the given instant.
func (w *WorkRequest) AgeHoursAt(now time.Time) int {
	return int(w.AgeAt(now).Hours())
}

// IsPending reports whether the item still awaits a decision.
func (w *WorkRequest) IsPending() bool {
	return w.Status == StatusPending
}

// ApplyScore writes the committed priority fields.
func (w *WorkRequest) ApplyScore(score float64, level PriorityLevel, at time.Time) {
	w.PriorityScore = score
	w.PriorityLevel = level
	w.ScoreUpdatedAt = &at
}
