package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthroughUOW satisfies the unit of work for in-memory tests.
type passthroughUOW struct{}

func (passthroughUOW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUOW) Commit(context.Context) error                       { return nil }
func (passthroughUOW) Rollback(context.Context) error                     { return nil }

// memConfigRepo is an append-only in-memory config.Repository.
type memConfigRepo struct {
	versions []*config.PriorityConfiguration
}

func (r *memConfigRepo) CreateVersion(_ context.Context, cfg *config.PriorityConfiguration) error {
	for _, v := range r.versions {
		if v.Key == cfg.Key && v.Scope() == cfg.Scope() && v.Version == cfg.Version {
			return config.ErrVersionConflict
		}
	}
	r.versions = append(r.versions, cfg)
	return nil
}

func (r *memConfigRepo) GetVersion(_ context.Context, key string, verticalID *uuid.UUID, version int) (*config.PriorityConfiguration, error) {
	for _, v := range r.versions {
		if v.Key == key && v.Scope() == config.ScopeLabel(verticalID) && v.Version == version {
			return v, nil
		}
	}
	return nil, config.ErrVersionNotFound
}

func (r *memConfigRepo) GetActive(_ context.Context, key string, verticalID *uuid.UUID, at time.Time) (*config.PriorityConfiguration, error) {
	var best *config.PriorityConfiguration
	for _, v := range r.versions {
		if v.Key != key || v.Scope() != config.ScopeLabel(verticalID) || !v.IsEffectiveAt(at) {
			continue
		}
		if best == nil || v.Version > best.Version {
			best = v
		}
	}
	if best == nil {
		return nil, config.ErrConfigurationNotFound
	}
	return best, nil
}

func (r *memConfigRepo) VersionHistory(_ context.Context, key string, verticalID *uuid.UUID) ([]*config.PriorityConfiguration, error) {
	var out []*config.PriorityConfiguration
	for _, v := range r.versions {
		if v.Key == key && v.Scope() == config.ScopeLabel(verticalID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memConfigRepo) LatestVersion(_ context.Context, key string, verticalID *uuid.UUID) (int, error) {
	latest := 0
	for _, v := range r.versions {
		if v.Key == key && v.Scope() == config.ScopeLabel(verticalID) && v.Version > latest {
			latest = v.Version
		}
	}
	return latest, nil
}

func noopPublisher() eventbus.Publisher {
	return eventbus.NewNoopPublisher(nil)
}

func TestCreateVersionHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("appends the next version for the pair", func(t *testing.T) {
		repo := &memConfigRepo{}
		require.NoError(t, repo.CreateVersion(ctx, config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")))

		handler := NewCreateVersionHandler(repo, noopPublisher(), passthroughUOW{})

		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")
		draft.MaxScore = 200

		result, err := handler.Handle(ctx, CreateVersionCommand{Draft: draft, RequestedBy: "editor"})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Config.Version)
		assert.Equal(t, "editor", result.Config.ModifiedBy)
		assert.True(t, result.Validation.Valid)

		stored, err := repo.GetVersion(ctx, config.DefaultKey, nil, 2)
		require.NoError(t, err)
		assert.InDelta(t, 200, stored.MaxScore, 1e-9)
	})

	t.Run("rejects an invalid draft without writing", func(t *testing.T) {
		repo := &memConfigRepo{}
		handler := NewCreateVersionHandler(repo, noopPublisher(), passthroughUOW{})

		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")
		draft.MinScore = 100
		draft.MaxScore = 0

		result, err := handler.Handle(ctx, CreateVersionCommand{Draft: draft})
		assert.True(t, errors.Is(err, config.ErrConfigurationInvalid))
		require.NotNil(t, result)
		assert.False(t, result.Validation.Valid)
		assert.Empty(t, repo.versions)
	})

	t.Run("requires a draft", func(t *testing.T) {
		handler := NewCreateVersionHandler(&memConfigRepo{}, noopPublisher(), passthroughUOW{})

		_, err := handler.Handle(ctx, CreateVersionCommand{})
		assert.True(t, errors.Is(err, config.ErrConfigurationInvalid))
	})

	t.Run("vertical drafts version independently of global", func(t *testing.T) {
		repo := &memConfigRepo{}
		global := config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")
		global.Version = 5
		require.NoError(t, repo.CreateVersion(ctx, global))

		vertical := uuid.New()
		draft := config.NewPriorityConfiguration(config.DefaultKey, &vertical, "admin")

		handler := NewCreateVersionHandler(repo, noopPublisher(), passthroughUOW{})
		result, err := handler.Handle(ctx, CreateVersionCommand{Draft: draft})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Config.Version)
	})
}

func TestRollbackConfigurationHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("restores an old version as a new one", func(t *testing.T) {
		repo := &memConfigRepo{}
		v1 := config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")
		v1.TimeDecay.DecayRate = 0.02
		require.NoError(t, repo.CreateVersion(ctx, v1))

		v2 := v1.NextVersion(2, "editor")
		v2.TimeDecay.DecayRate = 0.5
		require.NoError(t, repo.CreateVersion(ctx, v2))

		handler := NewRollbackConfigurationHandler(repo, noopPublisher(), passthroughUOW{})

		result, err := handler.Handle(ctx, RollbackConfigurationCommand{
			TargetVersion: 1,
			RequestedBy:   "operator",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, result.RolledBackTo)
		assert.Equal(t, 3, result.Config.Version)
		assert.InDelta(t, 0.02, result.Config.TimeDecay.DecayRate, 1e-9)
		assert.Equal(t, "rollback to v1", result.Config.Description)
		assert.Equal(t, "operator", result.Config.ModifiedBy)

		// the intermediate version is still there
		_, err = repo.GetVersion(ctx, config.DefaultKey, nil, 2)
		assert.NoError(t, err)
	})

	t.Run("unknown target version", func(t *testing.T) {
		repo := &memConfigRepo{}
		require.NoError(t, repo.CreateVersion(ctx, config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")))

		handler := NewRollbackConfigurationHandler(repo, noopPublisher(), passthroughUOW{})

		_, err := handler.Handle(ctx, RollbackConfigurationCommand{TargetVersion: 9})
		assert.True(t, errors.Is(err, config.ErrVersionNotFound))
	})
}

func TestSetInheritanceHandler(t *testing.T) {
	ctx := context.Background()
	vertical := uuid.New()

	t.Run("inherit appends a marker version", func(t *testing.T) {
		repo := &memConfigRepo{}
		require.NoError(t, repo.CreateVersion(ctx, config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")))

		handler := NewSetInheritanceHandler(repo, noopPublisher(), passthroughUOW{})

		result, err := handler.Handle(ctx, SetInheritanceCommand{
			VerticalID:  vertical,
			Inherit:     true,
			RequestedBy: "operator",
		})
		require.NoError(t, err)

		assert.True(t, result.Config.InheritsGlobal)
		assert.Equal(t, 1, result.Config.Version)
		require.NotNil(t, result.Config.BusinessVerticalID)
		assert.Equal(t, vertical, *result.Config.BusinessVerticalID)
	})

	t.Run("override copies the effective settings", func(t *testing.T) {
		repo := &memConfigRepo{}
		global := config.NewPriorityConfiguration(config.DefaultKey, nil, "admin")
		global.EffectiveDate = time.Now().UTC().Add(-time.Hour)
		global.TimeDecay.DecayRate = 0.03
		require.NoError(t, repo.CreateVersion(ctx, global))

		handler := NewSetInheritanceHandler(repo, noopPublisher(), passthroughUOW{})

		result, err := handler.Handle(ctx, SetInheritanceCommand{
			VerticalID: vertical,
			Inherit:    false,
		})
		require.NoError(t, err)

		assert.False(t, result.Config.InheritsGlobal)
		assert.InDelta(t, 0.03, result.Config.TimeDecay.DecayRate, 1e-9)
		require.NotNil(t, result.Config.BusinessVerticalID)
		assert.Equal(t, vertical, *result.Config.BusinessVerticalID)
	})

	t.Run("override without a global configuration fails", func(t *testing.T) {
		handler := NewSetInheritanceHandler(&memConfigRepo{}, noopPublisher(), passthroughUOW{})

		_, err := handler.Handle(ctx, SetInheritanceCommand{VerticalID: vertical})
		assert.True(t, errors.Is(err, config.ErrConfigurationNotFound))
	})
}
