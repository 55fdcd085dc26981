package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composerTestConfig() *config.PriorityConfiguration {
	cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
	cfg.TimeDecay.Function = config.DecayLinear
	cfg.Capacity.Enabled = false
	return cfg
}

func TestScoreComposerCompute(t *testing.T) {
	composer := NewScoreComposer(nil, nil)
	now := time.Now().UTC()

	t.Run("composes weighted multipliers onto the score range", func(t *testing.T) {
		cfg := composerTestConfig()

		// 27 days old with a 7 day delay and 0.01/day linear decay
		// yields a 1.2 decay multiplier.
		item := pendingItemAt(now, 0.5, 27*24*time.Hour)

		scored, err := composer.Compute(item, cfg, 80, now)
		require.NoError(t, err)

		assert.InDelta(t, 1.2, scored.DecayMultiplier, 1e-9)
		assert.InDelta(t, 1.0, scored.ValueMultiplier, 1e-9)
		assert.InDelta(t, 1.0, scored.CapacityMultiplier, 1e-9)
		assert.InDelta(t, 0.6, scored.RawScore, 1e-9)
		assert.InDelta(t, 0.6, scored.Fraction, 1e-9)
		assert.InDelta(t, 60, scored.Score, 1e-9)
		assert.Equal(t, workrequest.PriorityHigh, scored.Level)
	})

	t.Run("projects onto custom score bounds", func(t *testing.T) {
		cfg := composerTestConfig()
		cfg.MinScore = 10
		cfg.MaxScore = 20

		item := pendingItemAt(now, 0.5, 27*24*time.Hour)

		scored, err := composer.Compute(item, cfg, 80, now)
		require.NoError(t, err)
		assert.InDelta(t, 16, scored.Score, 1e-9)
	})

	t.Run("clamps the fraction to the unit interval", func(t *testing.T) {
		cfg := composerTestConfig()
		cfg.TimeDecay.MaxMultiplier = 10
		cfg.TimeDecay.DecayRate = 0.5

		item := pendingItem(0.9, 400*24*time.Hour)

		scored, err := composer.Compute(item, cfg, 80, now)
		require.NoError(t, err)
		assert.Greater(t, scored.RawScore, 1.0)
		assert.InDelta(t, 1.0, scored.Fraction, 1e-9)
		assert.InDelta(t, cfg.MaxScore, scored.Score, 1e-9)
		assert.Equal(t, workrequest.PriorityCritical, scored.Level)
	})

	t.Run("rejects a zero weight sum", func(t *testing.T) {
		cfg := composerTestConfig()
		cfg.Algorithm.BaseWeight = 0
		cfg.Algorithm.TimeDecayWeight = 0
		cfg.Algorithm.BusinessValueWeight = 0
		cfg.Algorithm.CapacityWeight = 0

		_, err := composer.Compute(pendingItem(0.5, 0), cfg, 80, now)
		assert.True(t, errors.Is(err, config.ErrConfigurationInvalid))
	})

	t.Run("rejects inverted score bounds", func(t *testing.T) {
		cfg := composerTestConfig()
		cfg.MinScore = 100
		cfg.MaxScore = 0

		_, err := composer.Compute(pendingItem(0.5, 0), cfg, 80, now)
		assert.True(t, errors.Is(err, config.ErrConfigurationInvalid))
	})

	t.Run("does not mutate the work request", func(t *testing.T) {
		cfg := composerTestConfig()
		item := pendingItem(0.5, 27*24*time.Hour)

		_, err := composer.Compute(item, cfg, 80, now)
		require.NoError(t, err)

		assert.Zero(t, item.PriorityScore)
		assert.Equal(t, workrequest.PriorityLow, item.PriorityLevel)
		assert.Nil(t, item.ScoreUpdatedAt)
	})
}

func TestLevelFor(t *testing.T) {
	bands := config.DefaultAlgorithmConfig().Bands

	t.Run("boundary scores land in the higher band", func(t *testing.T) {
		assert.Equal(t, workrequest.PriorityLow, levelFor(bands, 0))
		assert.Equal(t, workrequest.PriorityMedium, levelFor(bands, 0.25))
		assert.Equal(t, workrequest.PriorityHigh, levelFor(bands, 0.5))
		assert.Equal(t, workrequest.PriorityCritical, levelFor(bands, 0.75))
		assert.Equal(t, workrequest.PriorityCritical, levelFor(bands, 1))
	})

	t.Run("values inside a band keep its level", func(t *testing.T) {
		assert.Equal(t, workrequest.PriorityLow, levelFor(bands, 0.24))
		assert.Equal(t, workrequest.PriorityMedium, levelFor(bands, 0.49))
		assert.Equal(t, workrequest.PriorityHigh, levelFor(bands, 0.74))
	})

	t.Run("falls back to defaults when bands are empty", func(t *testing.T) {
		assert.Equal(t, workrequest.PriorityHigh, levelFor(nil, 0.6))
	})

	t.Run("skips bands with unknown levels", func(t *testing.T) {
		custom := []config.ScoreBand{
			{Level: "low", Threshold: 0},
			{Level: "urgent-ish", Threshold: 0.5},
		}
		assert.Equal(t, workrequest.PriorityLow, levelFor(custom, 0.9))
	})
}

func TestScoreComposerCommit(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("persists the score and appends an audit record", func(t *testing.T) {
		cfg := composerTestConfig()
		item := pendingItemAt(now, 0.5, 27*24*time.Hour)
		item.PriorityScore = 42
		item.PriorityLevel = workrequest.PriorityMedium

		workRepo := newMemWorkRepo(item)
		auditRepo := newMemAuditRepo()
		composer := NewScoreComposer(workRepo, auditRepo)

		scored, err := composer.Compute(item, cfg, 80, now)
		require.NoError(t, err)

		err = composer.Commit(ctx, item, scored, cfg, workrequest.TriggerInteractive)
		require.NoError(t, err)

		assert.InDelta(t, 60, item.PriorityScore, 1e-9)
		assert.Equal(t, workrequest.PriorityHigh, item.PriorityLevel)
		require.NotNil(t, item.ScoreUpdatedAt)

		audits, err := auditRepo.ListByWorkRequest(ctx, item.ID)
		require.NoError(t, err)
		require.Len(t, audits, 1)

		audit := audits[0]
		assert.InDelta(t, 42, audit.OldScore, 1e-9)
		assert.InDelta(t, 60, audit.NewScore, 1e-9)
		assert.Equal(t, workrequest.PriorityMedium, audit.OldLevel)
		assert.Equal(t, workrequest.PriorityHigh, audit.NewLevel)
		assert.Equal(t, cfg.Ref(), audit.ConfigRef)
		assert.Equal(t, workrequest.TriggerInteractive, audit.Trigger)
	})

	t.Run("surfaces a failed score update", func(t *testing.T) {
		cfg := composerTestConfig()
		item := pendingItem(0.5, 27*24*time.Hour)

		workRepo := newMemWorkRepo(item)
		workRepo.failUpdates[item.ID] = true
		auditRepo := newMemAuditRepo()
		composer := NewScoreComposer(workRepo, auditRepo)

		scored, err := composer.Compute(item, cfg, 80, now)
		require.NoError(t, err)

		err = composer.Commit(ctx, item, scored, cfg, workrequest.TriggerBulk)
		assert.Error(t, err)
		assert.Empty(t, auditRepo.audits)
	})
}
