package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSLA(t *testing.T) {
	t.Run("no rules falls back to the default SLA", func(t *testing.T) {
		cfg := EscalationRulesConfig{DefaultSLAHours: 72}

		hours, rule := cfg.MatchSLA("incident")
		assert.Equal(t, 72, hours)
		assert.Nil(t, rule)
	})

	t.Run("a category match beats a catch-all", func(t *testing.T) {
		cfg := EscalationRulesConfig{
			DefaultSLAHours: 72,
			Rules: []EscalationRule{
				{Name: "catch-all", TriggerAfterHours: 12, Active: true},
				{Name: "incident", Category: "incident", TriggerAfterHours: 48, Active: true},
			},
		}

		hours, rule := cfg.MatchSLA("incident")
		require.NotNil(t, rule)
		assert.Equal(t, "incident", rule.Name)
		assert.Equal(t, 48, hours)
	})

	t.Run("the tightest SLA wins among equal specificity", func(t *testing.T) {
		cfg := EscalationRulesConfig{
			DefaultSLAHours: 72,
			Rules: []EscalationRule{
				{Name: "loose", Category: "incident", TriggerAfterHours: 48, Active: true},
				{Name: "tight", Category: "incident", TriggerAfterHours: 8, Active: true},
			},
		}

		hours, rule := cfg.MatchSLA("incident")
		require.NotNil(t, rule)
		assert.Equal(t, "tight", rule.Name)
		assert.Equal(t, 8, hours)
	})

	t.Run("inactive and malformed rules are ignored", func(t *testing.T) {
		cfg := EscalationRulesConfig{
			DefaultSLAHours: 72,
			Rules: []EscalationRule{
				{Name: "off", Category: "incident", TriggerAfterHours: 1, Active: false},
				{Name: "zero-sla", Category: "incident", TriggerAfterHours: 0, Active: true},
			},
		}

		hours, rule := cfg.MatchSLA("incident")
		assert.Nil(t, rule)
		assert.Equal(t, 72, hours)
	})

	t.Run("non-matching categories fall through to the catch-all", func(t *testing.T) {
		cfg := EscalationRulesConfig{
			DefaultSLAHours: 72,
			Rules: []EscalationRule{
				{Name: "incident", Category: "incident", TriggerAfterHours: 8, Active: true},
				{Name: "catch-all", TriggerAfterHours: 24, Active: true},
			},
		}

		hours, rule := cfg.MatchSLA("maintenance")
		require.NotNil(t, rule)
		assert.Equal(t, "catch-all", rule.Name)
		assert.Equal(t, 24, hours)
	})
}
