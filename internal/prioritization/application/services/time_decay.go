// Package services contains the scoring calculators and the background
// engines that keep priority scores current.
package services

import (
	"math"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
)

// TimeDecayCalculator computes the aging multiplier for a work request.
// Pure and safe for concurrent use.
type TimeDecayCalculator struct{}

// NewTimeDecayCalculator creates a new calculator.
func NewTimeDecayCalculator() *TimeDecayCalculator {
	return &TimeDecayCalculator{}
}

// Multiplier returns the decay multiplier for an item created at createdAt,
// evaluated at now. Result is always within [1, cfg.MaxMultiplier].
//
// Config validity (rate in (0,1], max multiplier >= 1) is the validation
// engine's responsibility; it is not re-checked here.
func (c *TimeDecayCalculator) Multiplier(createdAt time.Time, cfg config.TimeDecayConfig, now time.Time) float64 {
	if !cfg.Enabled {
		return 1
	}

	daysOld := int(now.Sub(createdAt).Hours() / 24)
	if daysOld <= cfg.StartDelayDays {
		return 1
	}

	elapsed := float64(daysOld - cfg.StartDelayDays)
	x := elapsed * cfg.DecayRate

	var multiplier float64
	switch cfg.Function {
	case config.DecayLinear:
		multiplier = 1 + x
	case config.DecayExponential:
		multiplier = 1 + (math.Exp(x) - 1)
	default: // logarithmic
		multiplier = 1 + math.Log(1+x)
	}

	return clamp(multiplier, 1, cfg.MaxMultiplier)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
