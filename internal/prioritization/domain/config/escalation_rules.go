package config

// EscalationRule matches aging work requests and names what should happen
// when they breach.
type EscalationRule struct {
	Name string `json:"name"`

	// Category narrows the rule to work requests of one category;
	// empty matches all.
	Category string `json:"category,omitempty"`

	// TriggerAfterHours is the SLA for matching items.
	TriggerAfterHours int `json:"trigger_after_hours"`

	// Action is the downstream instruction recorded on the escalation
	// (e.g. "notify_manager", "reassign").
	Action string `json:"action"`

	// Recipients receive the escalation notification.
	Recipients []string `json:"recipients,omitempty"`

	Active bool `json:"active"`
}

// EscalationRulesConfig holds escalation rules and the fallback SLA.
type EscalationRulesConfig struct {
	Rules []EscalationRule `json:"rules,omitempty"`

	// DefaultSLAHours applies when no rule matches an item.
	DefaultSLAHours int `json:"default_sla_hours"`
}

// DefaultEscalationRulesConfig returns a 72h default SLA with no rules.
func DefaultEscalationRulesConfig() EscalationRulesConfig {
	return EscalationRulesConfig{
		DefaultSLAHours: 72,
	}
}

// MatchSLA returns the effective SLA hours and the matching rule for a work
// request category. The most specific active rule wins: a category match
// beats a catch-all, and among equal specificity the tightest SLA wins.
func (c EscalationRulesConfig) MatchSLA(category string) (int, *EscalationRule) {
	var match *EscalationRule
	for i := range c.Rules {
		r := &c.Rules[i]
		if !r.Active || r.TriggerAfterHours <= 0 {
			continue
		}
		if r.Category != "" && r.Category != category {
			continue
		}
		if match == nil {
			match = r
			continue
		}
		matchSpecific := match.Category != ""
		rSpecific := r.Category != ""
		if rSpecific && !matchSpecific {
			match = r
		} else if rSpecific == matchSpecific && r.TriggerAfterHours < match.TriggerAfterHours {
			match = r
		}
	}
	if match != nil {
		return match.TriggerAfterHours, match
	}
	return c.DefaultSLAHours, nil
}
