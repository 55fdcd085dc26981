package services

import (
	"fmt"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
)

// RuleEvaluator interprets adjustment rule conditions against a metric
// snapshot and applies bounded actions to configuration drafts.
type RuleEvaluator struct{}

func NewRuleEvaluator() *RuleEvaluator {
	return &RuleEvaluator{}
}

// EvaluateCondition reports whether the condition holds for the snapshot.
// Unknown metrics or operators are evaluation errors, not silent falses.
func (e *RuleEvaluator) EvaluateCondition(cond config.RuleCondition, snap MetricSnapshot) (bool, error) {
	observed, err := snap.Value(cond.Metric, cond.DepartmentID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRuleEvaluation, err)
	}

	switch cond.Operator {
	case config.OpGreaterThan:
		return observed > cond.Value, nil
	case config.OpGreaterOrEqual:
		return observed >= cond.Value, nil
	case config.OpLessThan:
		return observed < cond.Value, nil
	case config.OpLessOrEqual:
		return observed <= cond.Value, nil
	case config.OpEquals:
		return observed == cond.Value, nil
	default:
		return false, fmt.Errorf("%w: %w: %s", ErrRuleEvaluation, config.ErrUnknownOperator, cond.Operator)
	}
}

// ApplyAction mutates the draft configuration in place. The delta is clamped
// to [-maxDelta, maxDelta] before it is applied, and the resulting parameter
// is kept inside its legal range.
func (e *RuleEvaluator) ApplyAction(draft *config.PriorityConfiguration, action config.RuleAction, maxDelta float64) error {
	delta := clamp(action.Delta, -maxDelta, maxDelta)

	switch action.Type {
	case config.ActionAdjustWeight:
		current := draft.Algorithm.Weight(action.Target)
		draft.Algorithm.SetWeight(action.Target, current+delta)
	case config.ActionAdjustDecayRate:
		rate := clamp(draft.TimeDecay.DecayRate+delta, 0.001, 1)
		draft.TimeDecay.DecayRate = rate
	case config.ActionAdjustMaxMultiplier:
		max := draft.TimeDecay.MaxMultiplier + delta
		if max < 1 {
			max = 1
		}
		draft.TimeDecay.MaxMultiplier = max
	default:
		return fmt.Errorf("%w: %w: %s", ErrRuleEvaluation, config.ErrUnknownAction, action.Type)
	}
	return nil
}
