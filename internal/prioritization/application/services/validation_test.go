package services

import (
	"testing"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationEngine(t *testing.T) {
	engine := NewValidationEngine()

	t.Run("accepts the default configuration", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		result := engine.Validate(cfg)

		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("requires a key", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Key = ""

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("rejects inverted score bounds", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.MinScore = 100
		cfg.MaxScore = 50

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("rejects an all-zero weight set", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Algorithm.BaseWeight = 0
		cfg.Algorithm.TimeDecayWeight = 0
		cfg.Algorithm.BusinessValueWeight = 0
		cfg.Algorithm.CapacityWeight = 0

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("rejects negative weights", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Algorithm.CapacityWeight = -0.5

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("warns on an unusual weight sum", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Algorithm.BaseWeight = 20

		result := engine.Validate(cfg)
		assert.True(t, result.Valid)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("rejects bands that leave a gap at zero", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Algorithm.Bands = []config.ScoreBand{
			{Level: "medium", Threshold: 0.3},
			{Level: "high", Threshold: 0.6},
		}

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("rejects overlapping bands", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Algorithm.Bands = []config.ScoreBand{
			{Level: "low", Threshold: 0},
			{Level: "medium", Threshold: 0.5},
			{Level: "high", Threshold: 0.5},
		}

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("rejects bands with unknown levels", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Algorithm.Bands = []config.ScoreBand{
			{Level: "low", Threshold: 0},
			{Level: "blocker", Threshold: 0.5},
		}

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("recommends defaults when no bands are configured", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Algorithm.Bands = nil

		result := engine.Validate(cfg)
		assert.True(t, result.Valid)
		assert.NotEmpty(t, result.Recommendations)
	})

	t.Run("rejects out-of-range decay rates", func(t *testing.T) {
		for _, rate := range []float64{0, -0.1, 1.5} {
			cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
			cfg.TimeDecay.DecayRate = rate

			result := engine.Validate(cfg)
			assert.False(t, result.Valid, "rate %.2f", rate)
		}
	})

	t.Run("skips decay checks when decay is disabled", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.TimeDecay.Enabled = false
		cfg.TimeDecay.DecayRate = -1

		result := engine.Validate(cfg)
		assert.True(t, result.Valid)
	})

	t.Run("rejects a capacity min factor above the max", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Capacity.MinAdjustmentFactor = 1.5
		cfg.Capacity.MaxAdjustmentFactor = 1.2

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("rejects optimal utilization outside the open interval", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Capacity.OptimalUtilizationPct = 100

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("rejects an unknown capacity curve", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Capacity.Curve = "parabola"

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("requires a positive max delta when auto-adjustment is on", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.AutoAdjust.Enabled = true
		cfg.AutoAdjust.TriggerInterval = 1
		cfg.AutoAdjust.MaxDelta = 0

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("requires positive escalation trigger hours", func(t *testing.T) {
		cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		cfg.Escalation.Rules = []config.EscalationRule{
			{Name: "stale", TriggerAfterHours: 0},
		}

		result := engine.Validate(cfg)
		assert.False(t, result.Valid)

		require.NotEmpty(t, result.Errors)
	})
}
