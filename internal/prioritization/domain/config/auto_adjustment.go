package config

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Errors for adjustment rule evaluation.
var (
	ErrUnknownMetric    = errors.New("unknown metric in rule condition")
	ErrUnknownOperator  = errors.New("unknown operator in rule condition")
	ErrUnknownAction    = errors.New("unknown action type in rule")
	ErrUnknownParameter = errors.New("unknown adjustable parameter in rule action")
)

// MetricName identifies an aggregate metric a rule condition can reference.
type MetricName string

const (
	MetricAverageScore  MetricName = "average_score"
	MetricAverageAge    MetricName = "average_age_days"
	MetricPriorityDrift MetricName = "priority_drift"
	MetricTotalItems    MetricName = "total_items"
)

// CompareOperator is the comparison applied in a rule condition.
type CompareOperator string

const (
	OpGreaterThan    CompareOperator = "gt"
	OpGreaterOrEqual CompareOperator = "gte"
	OpLessThan       CompareOperator = "lt"
	OpLessOrEqual    CompareOperator = "lte"
	OpEquals         CompareOperator = "eq"
)

// ActionType identifies what a triggered rule does.
type ActionType string

const (
	// ActionAdjustWeight nudges one of the algorithm weight slots.
	ActionAdjustWeight ActionType = "adjust_weight"
	// ActionAdjustDecayRate nudges the time-decay rate.
	ActionAdjustDecayRate ActionType = "adjust_decay_rate"
	// ActionAdjustMaxMultiplier nudges the decay cap.
	ActionAdjustMaxMultiplier ActionType = "adjust_max_multiplier"
)

// RuleCondition is a tagged comparison against one aggregate metric,
// optionally narrowed to a single department.
type RuleCondition struct {
	Metric       MetricName      `json:"metric"`
	DepartmentID *uuid.UUID      `json:"department_id,omitempty"`
	Operator     CompareOperator `json:"operator"`
	Value        float64         `json:"value"`
}

// RuleAction is the bounded configuration change a triggered rule applies.
type RuleAction struct {
	Type ActionType `json:"type"`

	// Target names the weight slot for ActionAdjustWeight.
	Target WeightTarget `json:"target,omitempty"`

	// Delta is the signed adjustment; clamped to the rule set's MaxDelta.
	Delta float64 `json:"delta"`
}

// AdjustmentRule pairs a condition with an action.
type AdjustmentRule struct {
	Name      string        `json:"name"`
	Condition RuleCondition `json:"condition"`
	Action    RuleAction    `json:"action"`
	Active    bool          `json:"active"`

	// Priority determines evaluation order (higher = earlier).
	Priority int `json:"priority"`
}

// AutoAdjustmentRulesConfig holds the rule set evaluated on a timer.
type AutoAdjustmentRulesConfig struct {
	Enabled bool `json:"enabled"`

	// TriggerInterval is how often the rule set is evaluated.
	TriggerInterval time.Duration `json:"trigger_interval"`

	// DriftThreshold is the priority-change threshold rules typically
	// compare MetricPriorityDrift against.
	DriftThreshold float64 `json:"drift_threshold"`

	// MaxDelta bounds any single rule action's adjustment.
	MaxDelta float64 `json:"max_delta"`

	Rules []AdjustmentRule `json:"rules,omitempty"`

	LastProcessed *time.Time `json:"last_processed,omitempty"`
}

// DefaultAutoAdjustmentRulesConfig returns a disabled rule set with
// conservative bounds; rules are authored per deployment.
func DefaultAutoAdjustmentRulesConfig() AutoAdjustmentRulesConfig {
	return AutoAdjustmentRulesConfig{
		Enabled:         false,
		TriggerInterval: time.Hour,
		DriftThreshold:  0.1,
		MaxDelta:        0.25,
	}
}

// ActiveRulesOrdered returns the active rules sorted by descending execution
// priority, preserving authorship order within equal priorities.
func (c AutoAdjustmentRulesConfig) ActiveRulesOrdered() []AdjustmentRule {
	out := make([]AdjustmentRule, 0, len(c.Rules))
	for _, r := range c.Rules {
		if r.Active {
			out = append(out, r)
		}
	}
	// insertion sort keeps the ordering stable
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Priority > out[j-1].Priority; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
