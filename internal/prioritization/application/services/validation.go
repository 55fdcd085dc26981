package services

import (
	"fmt"
	"sort"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
)

// ValidationResult reports whether a candidate configuration may be stored
// or activated.
type ValidationResult struct {
	Valid           bool     `json:"valid"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ValidationEngine checks candidate configurations for internally consistent,
// in-range parameters. Pure; never mutates state.
type ValidationEngine struct{}

// NewValidationEngine creates a new validation engine.
func NewValidationEngine() *ValidationEngine {
	return &ValidationEngine{}
}

// Validate checks the whole configuration. Hard errors block storage and
// activation; warnings and recommendations are surfaced to the caller.
func (v *ValidationEngine) Validate(cfg *config.PriorityConfiguration) ValidationResult {
	var r ValidationResult

	if cfg.Key == "" {
		r.fail("configuration key is required")
	}
	if cfg.MinScore >= cfg.MaxScore {
		r.fail(fmt.Sprintf("min score %.2f must be below max score %.2f", cfg.MinScore, cfg.MaxScore))
	}

	v.validateAlgorithm(cfg.Algorithm, &r)
	v.validateTimeDecay(cfg.TimeDecay, &r)
	v.validateBusinessValue(cfg.BusinessValue, &r)
	v.validateCapacity(cfg.Capacity, &r)
	v.validateAutoAdjust(cfg.AutoAdjust, &r)
	v.validateEscalation(cfg.Escalation, &r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (v *ValidationEngine) validateAlgorithm(a config.AlgorithmConfig, r *ValidationResult) {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"base", a.BaseWeight},
		{"time decay", a.TimeDecayWeight},
		{"business value", a.BusinessValueWeight},
		{"capacity", a.CapacityWeight},
	} {
		if w.value < 0 {
			r.fail(fmt.Sprintf("%s weight must not be negative, got %.2f", w.name, w.value))
		}
	}
	for name, value := range a.CustomWeights {
		if value < 0 {
			r.fail(fmt.Sprintf("custom weight %q must not be negative, got %.2f", name, value))
		}
	}

	sum := a.WeightSum()
	if sum == 0 {
		r.fail("weights must not all be zero")
	} else if sum < 1 || sum > 10 {
		r.warn(fmt.Sprintf("weight sum %.2f is unusual; typical configurations sum between 1 and 10", sum))
	}

	v.validateBands(a.Bands, r)
}

func (v *ValidationEngine) validateBands(bands []config.ScoreBand, r *ValidationResult) {
	if len(bands) == 0 {
		r.recommend("no score bands configured; the default four-level banding will apply")
		return
	}

	sorted := append([]config.ScoreBand(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })

	if sorted[0].Threshold != 0 {
		r.fail(fmt.Sprintf("score bands leave a gap: lowest threshold is %.2f, expected 0", sorted[0].Threshold))
	}
	for i, b := range sorted {
		if b.Threshold < 0 || b.Threshold >= 1 {
			r.fail(fmt.Sprintf("score band %q threshold %.2f is outside [0, 1)", b.Level, b.Threshold))
		}
		if !workrequest.PriorityLevel(b.Level).IsValid() {
			r.fail(fmt.Sprintf("score band references unknown priority level %q", b.Level))
		}
		if i > 0 && b.Threshold == sorted[i-1].Threshold {
			r.fail(fmt.Sprintf("score bands %q and %q overlap at threshold %.2f", sorted[i-1].Level, b.Level, b.Threshold))
		}
	}
}

func (v *ValidationEngine) validateTimeDecay(d config.TimeDecayConfig, r *ValidationResult) {
	if !d.Enabled {
		return
	}
	if d.DecayRate <= 0 || d.DecayRate > 1 {
		r.fail(fmt.Sprintf("decay rate %.4f must be within (0, 1]", d.DecayRate))
	}
	if d.MaxMultiplier < 1 {
		r.fail(fmt.Sprintf("decay max multiplier %.2f must be at least 1", d.MaxMultiplier))
	} else if d.MaxMultiplier > 5 {
		r.warn(fmt.Sprintf("decay max multiplier %.2f is unusually high; aged items will dominate", d.MaxMultiplier))
	}
	if d.StartDelayDays < 0 {
		r.fail(fmt.Sprintf("decay start delay %d must not be negative", d.StartDelayDays))
	}
	switch d.Function {
	case config.DecayLinear, config.DecayLogarithmic, config.DecayExponential:
	default:
		r.fail(fmt.Sprintf("unknown decay function %q", d.Function))
	}
}

func (v *ValidationEngine) validateBusinessValue(b config.BusinessValueWeightConfig, r *ValidationResult) {
	if b.BaseMultiplier < 0 {
		r.fail(fmt.Sprintf("business value base multiplier %.2f must not be negative", b.BaseMultiplier))
	}
	for category, w := range b.CategoryWeights {
		if w < 0 {
			r.fail(fmt.Sprintf("category weight for %q must not be negative, got %.2f", category, w))
		}
	}
	for vertical, w := range b.VerticalWeights {
		if w < 0 {
			r.fail(fmt.Sprintf("vertical weight for %s must not be negative, got %.2f", vertical, w))
		}
	}
	if b.StrategicAlignmentMultiplier < 0 {
		r.fail("strategic alignment multiplier must not be negative")
	}
	if b.ROIBonusMultiplier < 0 {
		r.fail("ROI bonus multiplier must not be negative")
	}
}

func (v *ValidationEngine) validateCapacity(c config.CapacityAdjustmentConfig, r *ValidationResult) {
	if !c.Enabled {
		return
	}
	if c.MinAdjustmentFactor > c.MaxAdjustmentFactor {
		r.fail(fmt.Sprintf("capacity min factor %.2f exceeds max factor %.2f", c.MinAdjustmentFactor, c.MaxAdjustmentFactor))
	}
	if c.MinAdjustmentFactor > 1 {
		r.fail(fmt.Sprintf("capacity min factor %.2f must not exceed 1", c.MinAdjustmentFactor))
	}
	if c.MaxAdjustmentFactor < 1 {
		r.fail(fmt.Sprintf("capacity max factor %.2f must be at least 1", c.MaxAdjustmentFactor))
	}
	if c.OptimalUtilizationPct <= 0 || c.OptimalUtilizationPct >= 100 {
		r.fail(fmt.Sprintf("optimal utilization %.1f%% must be within (0, 100)", c.OptimalUtilizationPct))
	} else if c.OptimalUtilizationPct < 50 || c.OptimalUtilizationPct > 95 {
		r.warn(fmt.Sprintf("optimal utilization %.1f%% is outside the typical [50, 95] range", c.OptimalUtilizationPct))
	}
	switch c.Curve {
	case config.CurveLinear, config.CurveSigmoid, config.CurveStep:
	default:
		r.fail(fmt.Sprintf("unknown capacity curve %q", c.Curve))
	}
}

func (v *ValidationEngine) validateAutoAdjust(a config.AutoAdjustmentRulesConfig, r *ValidationResult) {
	if !a.Enabled {
		return
	}
	if a.TriggerInterval <= 0 {
		r.fail("auto-adjustment trigger interval must be positive")
	}
	if a.MaxDelta <= 0 {
		r.fail(fmt.Sprintf("auto-adjustment max delta %.2f must be positive", a.MaxDelta))
	} else if a.MaxDelta > 1 {
		r.warn(fmt.Sprintf("auto-adjustment max delta %.2f allows large single-step changes", a.MaxDelta))
	}
	for _, rule := range a.Rules {
		if rule.Name == "" {
			r.fail("auto-adjustment rule without a name")
		}
	}
	if len(a.Rules) == 0 {
		r.recommend("auto-adjustment is enabled but no rules are defined")
	}
}

func (v *ValidationEngine) validateEscalation(e config.EscalationRulesConfig, r *ValidationResult) {
	if e.DefaultSLAHours <= 0 {
		r.fail(fmt.Sprintf("default SLA hours %d must be positive", e.DefaultSLAHours))
	}
	for _, rule := range e.Rules {
		if rule.Name == "" {
			r.fail("escalation rule without a name")
		}
		if rule.TriggerAfterHours <= 0 {
			r.fail(fmt.Sprintf("escalation rule %q trigger hours %d must be positive", rule.Name, rule.TriggerAfterHours))
		}
	}
}

func (r *ValidationResult) fail(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *ValidationResult) recommend(msg string) {
	r.Recommendations = append(r.Recommendations, msg)
}
