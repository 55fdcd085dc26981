// Package queries contains the read-side handlers for the prioritization
// context.
package queries

import (
	"context"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/google/uuid"
)

// GetEffectiveConfigurationQuery resolves the configuration a scoring pass
// would use right now, or at an explicit instant.
type GetEffectiveConfigurationQuery struct {
	Key        string
	VerticalID *uuid.UUID
	At         time.Time // zero = now
}

// EffectiveConfiguration pairs the resolved version with how it was reached.
type EffectiveConfiguration struct {
	Config *config.PriorityConfiguration

	// Inherited reports whether a vertical query fell through to the
	// global configuration.
	Inherited bool
}

// GetEffectiveConfigurationHandler handles the GetEffectiveConfigurationQuery.
type GetEffectiveConfigurationHandler struct {
	configRepo config.Repository
}

// NewGetEffectiveConfigurationHandler creates a new handler.
func NewGetEffectiveConfigurationHandler(configRepo config.Repository) *GetEffectiveConfigurationHandler {
	return &GetEffectiveConfigurationHandler{configRepo: configRepo}
}

// Handle executes the GetEffectiveConfigurationQuery.
func (h *GetEffectiveConfigurationHandler) Handle(ctx context.Context, query GetEffectiveConfigurationQuery) (*EffectiveConfiguration, error) {
	at := query.At
	if at.IsZero() {
		at = time.Now()
	}

	cfg, err := config.ResolveEffective(ctx, h.configRepo, query.Key, query.VerticalID, at)
	if err != nil {
		return nil, err
	}

	inherited := query.VerticalID != nil && cfg.BusinessVerticalID == nil
	return &EffectiveConfiguration{Config: cfg, Inherited: inherited}, nil
}
