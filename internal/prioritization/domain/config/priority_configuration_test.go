package config

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriorityConfiguration(t *testing.T) {
	t.Run("version one with production defaults", func(t *testing.T) {
		cfg := NewPriorityConfiguration("default", nil, "admin")

		assert.Equal(t, 1, cfg.Version)
		assert.Equal(t, "default", cfg.Key)
		assert.Nil(t, cfg.BusinessVerticalID)
		assert.InDelta(t, 0, cfg.MinScore, 1e-9)
		assert.InDelta(t, 100, cfg.MaxScore, 1e-9)
		assert.True(t, cfg.TimeDecay.Enabled)
		assert.False(t, cfg.AutoAdjust.Enabled)
		assert.Equal(t, 72, cfg.Escalation.DefaultSLAHours)
		assert.Equal(t, "admin", cfg.CreatedBy)
	})

	t.Run("empty key falls back to the default key", func(t *testing.T) {
		cfg := NewPriorityConfiguration("", nil, "admin")
		assert.Equal(t, DefaultKey, cfg.Key)
	})
}

func TestNextVersion(t *testing.T) {
	t.Run("bumps the version with a fresh identity", func(t *testing.T) {
		base := NewPriorityConfiguration(DefaultKey, nil, "admin")

		next := base.NextVersion(2, "editor")

		assert.Equal(t, 2, next.Version)
		assert.NotEqual(t, base.ID, next.ID)
		assert.Equal(t, "editor", next.ModifiedBy)
		assert.Equal(t, "editor", next.CreatedBy)
		assert.Nil(t, next.ExpirationDate)
	})

	t.Run("the draft's collections are independent copies", func(t *testing.T) {
		base := NewPriorityConfiguration(DefaultKey, nil, "admin")
		base.BusinessValue.CategoryWeights = map[string]float64{"incident": 1.5}
		base.AutoAdjust.Rules = []AdjustmentRule{{Name: "r1"}}
		base.Escalation.Rules = []EscalationRule{{Name: "e1", TriggerAfterHours: 24, Active: true}}

		next := base.NextVersion(2, "editor")
		next.BusinessValue.CategoryWeights["incident"] = 9
		next.Algorithm.Bands[0].Threshold = 0.9
		next.AutoAdjust.Rules[0].Name = "changed"
		next.Escalation.Rules[0].TriggerAfterHours = 1

		assert.InDelta(t, 1.5, base.BusinessValue.CategoryWeights["incident"], 1e-9)
		assert.InDelta(t, 0, base.Algorithm.Bands[0].Threshold, 1e-9)
		assert.Equal(t, "r1", base.AutoAdjust.Rules[0].Name)
		assert.Equal(t, 24, base.Escalation.Rules[0].TriggerAfterHours)
	})
}

func TestIsEffectiveAt(t *testing.T) {
	now := time.Now().UTC()
	cfg := NewPriorityConfiguration(DefaultKey, nil, "admin")
	cfg.EffectiveDate = now

	t.Run("before the effective date", func(t *testing.T) {
		assert.False(t, cfg.IsEffectiveAt(now.Add(-time.Minute)))
	})

	t.Run("at and after the effective date", func(t *testing.T) {
		assert.True(t, cfg.IsEffectiveAt(now))
		assert.True(t, cfg.IsEffectiveAt(now.Add(time.Hour)))
	})

	t.Run("expiration is exclusive", func(t *testing.T) {
		exp := now.Add(time.Hour)
		expiring := *cfg
		expiring.ExpirationDate = &exp

		assert.True(t, expiring.IsEffectiveAt(now.Add(59*time.Minute)))
		assert.False(t, expiring.IsEffectiveAt(exp))
		assert.False(t, expiring.IsEffectiveAt(exp.Add(time.Minute)))
	})
}

func TestScopeAndRef(t *testing.T) {
	t.Run("global scope", func(t *testing.T) {
		cfg := NewPriorityConfiguration(DefaultKey, nil, "admin")
		assert.Equal(t, "global", cfg.Scope())
		assert.Equal(t, "default/global@v1", cfg.Ref())
	})

	t.Run("vertical scope", func(t *testing.T) {
		vertical := uuid.New()
		cfg := NewPriorityConfiguration(DefaultKey, &vertical, "admin")
		cfg.Version = 3
		assert.Equal(t, vertical.String(), cfg.Scope())
		assert.Equal(t, "default/"+vertical.String()+"@v3", cfg.Ref())
	})
}

func TestActiveRulesOrdered(t *testing.T) {
	cfg := AutoAdjustmentRulesConfig{
		Rules: []AdjustmentRule{
			{Name: "low", Active: true, Priority: 1},
			{Name: "inactive", Active: false, Priority: 100},
			{Name: "high", Active: true, Priority: 10},
			{Name: "also-high", Active: true, Priority: 10},
		},
	}

	ordered := cfg.ActiveRulesOrdered()
	require.Len(t, ordered, 3)
	assert.Equal(t, "high", ordered[0].Name)
	assert.Equal(t, "also-high", ordered[1].Name)
	assert.Equal(t, "low", ordered[2].Name)
}
