package queries

import (
	"context"

	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/google/uuid"
)

// ListPendingEscalationsQuery lists unresolved escalations, optionally
// narrowed to one business vertical.
type ListPendingEscalationsQuery struct {
	VerticalID *uuid.UUID
}

// ListPendingEscalationsHandler handles the ListPendingEscalationsQuery.
type ListPendingEscalationsHandler struct {
	escalationRepo escalation.Repository
}

// NewListPendingEscalationsHandler creates a new handler.
func NewListPendingEscalationsHandler(escalationRepo escalation.Repository) *ListPendingEscalationsHandler {
	return &ListPendingEscalationsHandler{escalationRepo: escalationRepo}
}

// Handle executes the ListPendingEscalationsQuery.
func (h *ListPendingEscalationsHandler) Handle(ctx context.Context, query ListPendingEscalationsQuery) ([]*escalation.PriorityEscalation, error) {
	return h.escalationRepo.ListPending(ctx, query.VerticalID)
}
