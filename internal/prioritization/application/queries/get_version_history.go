package queries

import (
	"context"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/google/uuid"
)

// GetVersionHistoryQuery lists every version for a (key, vertical) pair.
type GetVersionHistoryQuery struct {
	Key        string
	VerticalID *uuid.UUID
}

// VersionSummary is one history row.
type VersionSummary struct {
	Version        int        `json:"version"`
	Description    string     `json:"description,omitempty"`
	InheritsGlobal bool       `json:"inherits_global,omitempty"`
	EffectiveDate  time.Time  `json:"effective_date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	ModifiedBy     string     `json:"modified_by"`
	ModifiedAt     time.Time  `json:"modified_at"`
	Active         bool       `json:"active"`
}

// GetVersionHistoryHandler handles the GetVersionHistoryQuery.
type GetVersionHistoryHandler struct {
	configRepo config.Repository
}

// NewGetVersionHistoryHandler creates a new handler.
func NewGetVersionHistoryHandler(configRepo config.Repository) *GetVersionHistoryHandler {
	return &GetVersionHistoryHandler{configRepo: configRepo}
}

// Handle executes the GetVersionHistoryQuery. Versions come back in
// ascending order; the currently active one is flagged.
func (h *GetVersionHistoryHandler) Handle(ctx context.Context, query GetVersionHistoryQuery) ([]VersionSummary, error) {
	key := query.Key
	if key == "" {
		key = config.DefaultKey
	}

	versions, err := h.configRepo.VersionHistory(ctx, key, query.VerticalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	activeVersion := 0
	for _, v := range versions {
		if v.IsEffectiveAt(now) && v.Version > activeVersion {
			activeVersion = v.Version
		}
	}

	summaries := make([]VersionSummary, 0, len(versions))
	for _, v := range versions {
		summaries = append(summaries, VersionSummary{
			Version:        v.Version,
			Description:    v.Description,
			InheritsGlobal: v.InheritsGlobal,
			EffectiveDate:  v.EffectiveDate,
			ExpirationDate: v.ExpirationDate,
			ModifiedBy:     v.ModifiedBy,
			ModifiedAt:     v.ModifiedAt,
			Active:         v.Version == activeVersion && activeVersion != 0,
		})
	}
	return summaries, nil
}
