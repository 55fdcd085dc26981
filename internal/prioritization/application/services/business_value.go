package services

import (
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
)

// BusinessValueCalculator computes the business-value multiplier for a work
// request. Pure and safe for concurrent use.
type BusinessValueCalculator struct{}

// NewBusinessValueCalculator creates a new calculator.
func NewBusinessValueCalculator() *BusinessValueCalculator {
	return &BusinessValueCalculator{}
}

// Multiplier returns the business-value multiplier. Missing category or
// vertical weights fall back to 1.0; the result is never negative.
func (c *BusinessValueCalculator) Multiplier(w *workrequest.WorkRequest, cfg config.BusinessValueWeightConfig) float64 {
	multiplier := cfg.BaseMultiplier

	if weight, ok := cfg.CategoryWeights[w.Category]; ok {
		multiplier *= weight
	}

	if w.BusinessVerticalID != nil {
		if weight, ok := cfg.VerticalWeights[*w.BusinessVerticalID]; ok {
			multiplier *= weight
		}
	}

	if w.StrategicAlignment {
		multiplier *= cfg.StrategicAlignmentMultiplier
	}

	if w.ROIEstimate != nil && *w.ROIEstimate >= cfg.ROIThreshold {
		multiplier *= cfg.ROIBonusMultiplier
	}

	if multiplier < 0 {
		return 0
	}
	return multiplier
}
