package config

import "github.com/google/uuid"

// CurveShape selects how utilization distance maps to an adjustment factor.
type CurveShape string

const (
	CurveLinear  CurveShape = "linear"
	CurveSigmoid CurveShape = "sigmoid"
	CurveStep    CurveShape = "step"
)

// CapacityAdjustmentConfig controls how department utilization shifts
// priority: under-used departments get a boost, saturated ones a throttle.
type CapacityAdjustmentConfig struct {
	Enabled bool `json:"enabled"`

	// MaxAdjustmentFactor and MinAdjustmentFactor bound the multiplier.
	// Invariant: MinAdjustmentFactor <= 1 <= MaxAdjustmentFactor.
	MaxAdjustmentFactor float64 `json:"max_adjustment_factor"`
	MinAdjustmentFactor float64 `json:"min_adjustment_factor"`

	// OptimalUtilizationPct is the target utilization percentage at which
	// the multiplier is exactly 1.
	OptimalUtilizationPct float64 `json:"optimal_utilization_pct"`

	Curve CurveShape `json:"curve"`

	// DepartmentOverrides replaces the computed factor outright for the
	// named departments.
	DepartmentOverrides map[uuid.UUID]float64 `json:"department_overrides,omitempty"`
}

// DefaultCapacityAdjustmentConfig returns a sigmoid curve around 80%
// utilization.
func DefaultCapacityAdjustmentConfig() CapacityAdjustmentConfig {
	return CapacityAdjustmentConfig{
		Enabled:               true,
		MaxAdjustmentFactor:   1.3,
		MinAdjustmentFactor:   0.7,
		OptimalUtilizationPct: 80,
		Curve:                 CurveSigmoid,
	}
}
