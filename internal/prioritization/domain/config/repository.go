package config

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository stores immutable configuration versions.
//
// Implementations must never mutate a stored version: CreateVersion appends,
// and activation is decided by effective-date resolution, not by updates.
type Repository interface {
	// CreateVersion appends a new version. It must reject a (key, vertical,
	// version) triple that already exists with ErrVersionConflict.
	CreateVersion(ctx context.Context, cfg *PriorityConfiguration) error

	// GetVersion fetches one exact version.
	GetVersion(ctx context.Context, key string, verticalID *uuid.UUID, version int) (*PriorityConfiguration, error)

	// GetActive returns the version effective at the given instant for the
	// exact (key, vertical) pair: effectiveDate <= at < expirationDate,
	// highest version among candidates. Returns ErrConfigurationNotFound
	// when none qualifies.
	GetActive(ctx context.Context, key string, verticalID *uuid.UUID, at time.Time) (*PriorityConfiguration, error)

	// VersionHistory returns all versions for a (key, vertical) pair in
	// ascending version order.
	VersionHistory(ctx context.Context, key string, verticalID *uuid.UUID) ([]*PriorityConfiguration, error)

	// LatestVersion returns the highest stored version number for a
	// (key, vertical) pair, 0 when none exist.
	LatestVersion(ctx context.Context, key string, verticalID *uuid.UUID) (int, error)
}

// ResolveEffective resolves the configuration a scoring pass should use for
// a (key, vertical) pair: the vertical-scoped active version wins unless it
// is an explicit inherit marker or absent, in which case the global active
// version applies.
func ResolveEffective(ctx context.Context, repo Repository, key string, verticalID *uuid.UUID, at time.Time) (*PriorityConfiguration, error) {
	if key == "" {
		key = DefaultKey
	}
	if verticalID != nil {
		cfg, err := repo.GetActive(ctx, key, verticalID, at)
		switch {
		case err == nil && !cfg.InheritsGlobal:
			return cfg, nil
		case err != nil && !errors.Is(err, ErrConfigurationNotFound):
			return nil, err
		}
	}
	return repo.GetActive(ctx, key, nil, at)
}
