package services

import (
	"math"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/google/uuid"
)

// Step curve bands.
const (
	stepHighUtilizationPct = 90
	stepLowUtilizationPct  = 50
)

// sigmoidSteepness controls how quickly the sigmoid curve saturates as
// utilization moves away from the optimum.
const sigmoidSteepness = 4.0

// CapacityAdjustmentCalculator computes the capacity multiplier for a
// department. Pure and safe for concurrent use.
type CapacityAdjustmentCalculator struct{}

// NewCapacityAdjustmentCalculator creates a new calculator.
func NewCapacityAdjustmentCalculator() *CapacityAdjustmentCalculator {
	return &CapacityAdjustmentCalculator{}
}

// Multiplier returns the capacity adjustment for a department running at
// utilizationPct. Below-optimal utilization boosts toward the max factor,
// above-optimal throttles toward the min factor. A per-department override
// replaces the computed value outright. Result is always within
// [MinAdjustmentFactor, MaxAdjustmentFactor].
func (c *CapacityAdjustmentCalculator) Multiplier(departmentID uuid.UUID, utilizationPct float64, cfg config.CapacityAdjustmentConfig) float64 {
	if !cfg.Enabled {
		return 1
	}

	if override, ok := cfg.DepartmentOverrides[departmentID]; ok {
		return clamp(override, cfg.MinAdjustmentFactor, cfg.MaxAdjustmentFactor)
	}

	var factor float64
	switch cfg.Curve {
	case config.CurveStep:
		factor = c.step(utilizationPct, cfg)
	case config.CurveSigmoid:
		factor = c.sigmoid(utilizationPct, cfg)
	default:
		factor = c.linear(utilizationPct, cfg)
	}

	return clamp(factor, cfg.MinAdjustmentFactor, cfg.MaxAdjustmentFactor)
}

// linear interpolates proportionally to the distance from the optimum.
func (c *CapacityAdjustmentCalculator) linear(utilization float64, cfg config.CapacityAdjustmentConfig) float64 {
	d := c.normalizedDistance(utilization, cfg.OptimalUtilizationPct)
	if d >= 0 {
		return 1 + d*(cfg.MaxAdjustmentFactor-1)
	}
	return 1 + d*(1-cfg.MinAdjustmentFactor)
}

// sigmoid squashes the distance through a logistic curve: the effect is
// small near the optimum and saturates quickly past it. At the optimum the
// multiplier is exactly 1.
func (c *CapacityAdjustmentCalculator) sigmoid(utilization float64, cfg config.CapacityAdjustmentConfig) float64 {
	d := c.normalizedDistance(utilization, cfg.OptimalUtilizationPct)
	s := 2/(1+math.Exp(-sigmoidSteepness*d)) - 1 // odd function, s(0)=0
	if s >= 0 {
		return 1 + s*(cfg.MaxAdjustmentFactor-1)
	}
	return 1 + s*(1-cfg.MinAdjustmentFactor)
}

// step applies discrete bands: saturated departments get the min factor,
// idle ones the max, everything else is neutral.
func (c *CapacityAdjustmentCalculator) step(utilization float64, cfg config.CapacityAdjustmentConfig) float64 {
	switch {
	case utilization > stepHighUtilizationPct:
		return cfg.MinAdjustmentFactor
	case utilization < stepLowUtilizationPct:
		return cfg.MaxAdjustmentFactor
	default:
		return 1
	}
}

// normalizedDistance maps utilization to [-1, 1]: positive when under the
// optimum (boost), negative when over (throttle).
func (c *CapacityAdjustmentCalculator) normalizedDistance(utilization, optimal float64) float64 {
	if optimal <= 0 {
		return 0
	}
	if utilization <= optimal {
		return (optimal - utilization) / optimal
	}
	span := 100 - optimal
	if span <= 0 {
		return -1
	}
	d := (utilization - optimal) / span
	if d > 1 {
		d = 1
	}
	return -d
}
