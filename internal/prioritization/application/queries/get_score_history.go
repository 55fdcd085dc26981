package queries

import (
	"context"

	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
)

// GetScoreHistoryQuery lists the audit trail of one work request's score.
type GetScoreHistoryQuery struct {
	WorkRequestID uuid.UUID
}

// GetScoreHistoryHandler handles the GetScoreHistoryQuery.
type GetScoreHistoryHandler struct {
	auditRepo workrequest.ScoreAuditRepository
}

// NewGetScoreHistoryHandler creates a new handler.
func NewGetScoreHistoryHandler(auditRepo workrequest.ScoreAuditRepository) *GetScoreHistoryHandler {
	return &GetScoreHistoryHandler{auditRepo: auditRepo}
}

// Handle executes the GetScoreHistoryQuery.
func (h *GetScoreHistoryHandler) Handle(ctx context.Context, query GetScoreHistoryQuery) ([]workrequest.ScoreAudit, error) {
	return h.auditRepo.ListByWorkRequest(ctx, query.WorkRequestID)
}
