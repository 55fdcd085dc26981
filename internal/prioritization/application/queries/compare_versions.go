package queries

import (
	"context"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/google/uuid"
)

// CompareVersionsQuery diffs two stored versions of one configuration.
type CompareVersionsQuery struct {
	Key         string
	VerticalID  *uuid.UUID
	FromVersion int
	ToVersion   int
}

// CompareVersionsHandler handles the CompareVersionsQuery.
type CompareVersionsHandler struct {
	configRepo config.Repository
}

// NewCompareVersionsHandler creates a new handler.
func NewCompareVersionsHandler(configRepo config.Repository) *CompareVersionsHandler {
	return &CompareVersionsHandler{configRepo: configRepo}
}

// Handle executes the CompareVersionsQuery.
func (h *CompareVersionsHandler) Handle(ctx context.Context, query CompareVersionsQuery) (*config.Diff, error) {
	key := query.Key
	if key == "" {
		key = config.DefaultKey
	}

	from, err := h.configRepo.GetVersion(ctx, key, query.VerticalID, query.FromVersion)
	if err != nil {
		return nil, err
	}
	to, err := h.configRepo.GetVersion(ctx, key, query.VerticalID, query.ToVersion)
	if err != nil {
		return nil, err
	}

	diff := config.Compare(from, to)
	return &diff, nil
}
