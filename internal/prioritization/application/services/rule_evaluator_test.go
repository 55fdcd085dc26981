package services

import (
	"errors"
	"testing"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleEvaluatorEvaluateCondition(t *testing.T) {
	evaluator := NewRuleEvaluator()
	snap := MetricSnapshot{
		TotalItems:     40,
		AverageScore:   55,
		AverageAgeDays: 12,
		PriorityDrift:  6,
	}

	t.Run("comparison operators", func(t *testing.T) {
		cases := []struct {
			name     string
			operator config.CompareOperator
			value    float64
			want     bool
		}{
			{"gt holds", config.OpGreaterThan, 50, true},
			{"gt fails at equality", config.OpGreaterThan, 55, false},
			{"gte holds at equality", config.OpGreaterOrEqual, 55, true},
			{"lt holds", config.OpLessThan, 60, true},
			{"lte holds at equality", config.OpLessOrEqual, 55, true},
			{"eq holds", config.OpEquals, 55, true},
			{"eq fails", config.OpEquals, 54, false},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := evaluator.EvaluateCondition(config.RuleCondition{
					Metric:   config.MetricAverageScore,
					Operator: tc.operator,
					Value:    tc.value,
				}, snap)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	})

	t.Run("resolves every known metric", func(t *testing.T) {
		for metric, want := range map[config.MetricName]float64{
			config.MetricAverageScore:  55,
			config.MetricAverageAge:    12,
			config.MetricPriorityDrift: 6,
			config.MetricTotalItems:    40,
		} {
			got, err := evaluator.EvaluateCondition(config.RuleCondition{
				Metric:   metric,
				Operator: config.OpEquals,
				Value:    want,
			}, snap)
			require.NoError(t, err)
			assert.True(t, got, "metric %s", metric)
		}
	})

	t.Run("narrows to a department", func(t *testing.T) {
		dept := uuid.New()
		deptSnap := snap
		deptSnap.DepartmentAverageScore = map[uuid.UUID]float64{dept: 80}

		got, err := evaluator.EvaluateCondition(config.RuleCondition{
			Metric:       config.MetricAverageScore,
			DepartmentID: &dept,
			Operator:     config.OpGreaterThan,
			Value:        70,
		}, deptSnap)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("unknown metric is an evaluation error", func(t *testing.T) {
		_, err := evaluator.EvaluateCondition(config.RuleCondition{
			Metric:   "median_score",
			Operator: config.OpGreaterThan,
		}, snap)
		assert.True(t, errors.Is(err, ErrRuleEvaluation))
	})

	t.Run("total items per department is an evaluation error", func(t *testing.T) {
		dept := uuid.New()
		_, err := evaluator.EvaluateCondition(config.RuleCondition{
			Metric:       config.MetricTotalItems,
			DepartmentID: &dept,
			Operator:     config.OpGreaterThan,
		}, snap)
		assert.True(t, errors.Is(err, ErrRuleEvaluation))
	})

	t.Run("unknown operator is an evaluation error", func(t *testing.T) {
		_, err := evaluator.EvaluateCondition(config.RuleCondition{
			Metric:   config.MetricAverageScore,
			Operator: "between",
		}, snap)
		assert.True(t, errors.Is(err, ErrRuleEvaluation))
		assert.True(t, errors.Is(err, config.ErrUnknownOperator))
	})
}

func TestRuleEvaluatorApplyAction(t *testing.T) {
	evaluator := NewRuleEvaluator()

	t.Run("adjusts a weight slot", func(t *testing.T) {
		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")

		err := evaluator.ApplyAction(draft, config.RuleAction{
			Type:   config.ActionAdjustWeight,
			Target: config.WeightTimeDecay,
			Delta:  0.1,
		}, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, 1.1, draft.Algorithm.TimeDecayWeight, 1e-9)
	})

	t.Run("clamps the delta to the configured bound", func(t *testing.T) {
		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")

		err := evaluator.ApplyAction(draft, config.RuleAction{
			Type:   config.ActionAdjustWeight,
			Target: config.WeightBase,
			Delta:  5,
		}, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, 1.25, draft.Algorithm.BaseWeight, 1e-9)
	})

	t.Run("clamps negative deltas symmetrically", func(t *testing.T) {
		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")

		err := evaluator.ApplyAction(draft, config.RuleAction{
			Type:   config.ActionAdjustWeight,
			Target: config.WeightBase,
			Delta:  -5,
		}, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, 0.75, draft.Algorithm.BaseWeight, 1e-9)
	})

	t.Run("keeps the decay rate inside its legal range", func(t *testing.T) {
		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		draft.TimeDecay.DecayRate = 0.01

		err := evaluator.ApplyAction(draft, config.RuleAction{
			Type:  config.ActionAdjustDecayRate,
			Delta: -0.5,
		}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 0.001, draft.TimeDecay.DecayRate, 1e-9)
	})

	t.Run("keeps the decay cap at or above one", func(t *testing.T) {
		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
		draft.TimeDecay.MaxMultiplier = 1.1

		err := evaluator.ApplyAction(draft, config.RuleAction{
			Type:  config.ActionAdjustMaxMultiplier,
			Delta: -1,
		}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, draft.TimeDecay.MaxMultiplier, 1e-9)
	})

	t.Run("unknown action type is an evaluation error", func(t *testing.T) {
		draft := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")

		err := evaluator.ApplyAction(draft, config.RuleAction{Type: "swap_bands"}, 0.25)
		assert.True(t, errors.Is(err, ErrRuleEvaluation))
		assert.True(t, errors.Is(err, config.ErrUnknownAction))
	})
}

func TestBuildSnapshot(t *testing.T) {
	composer := NewScoreComposer(nil, nil)
	cfg := composerTestConfig()
	now := time.Now().UTC()

	t.Run("empty population yields a zero snapshot", func(t *testing.T) {
		snap := buildSnapshot(nil, cfg, composer, nil, now)
		assert.Zero(t, snap.TotalItems)
		assert.Zero(t, snap.AverageScore)
	})

	t.Run("aggregates stored scores and drift", func(t *testing.T) {
		a := pendingItemAt(now, 0.5, 27*24*time.Hour) // fresh score 60
		a.PriorityScore = 50
		b := pendingItemAt(now, 0.5, 27*24*time.Hour)
		b.PriorityScore = 70

		snap := buildSnapshot([]*workrequest.WorkRequest{a, b}, cfg, composer, nil, now)
		assert.Equal(t, 2, snap.TotalItems)
		assert.InDelta(t, 60, snap.AverageScore, 1e-9)
		assert.InDelta(t, 27, snap.AverageAgeDays, 0.1)
		assert.InDelta(t, 10, snap.PriorityDrift, 1e-9)

		assert.InDelta(t, 50, snap.DepartmentAverageScore[a.DepartmentID], 1e-9)
		assert.InDelta(t, 10, snap.DepartmentDrift[b.DepartmentID], 1e-9)
	})
}
