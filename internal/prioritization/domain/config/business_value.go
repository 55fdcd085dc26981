package config

import "github.com/google/uuid"

// BusinessValueWeightConfig controls how business attributes scale priority.
type BusinessValueWeightConfig struct {
	BaseMultiplier float64 `json:"base_multiplier"`

	// CategoryWeights maps a work request category to a weight.
	// Missing categories fall back to 1.0.
	CategoryWeights map[string]float64 `json:"category_weights,omitempty"`

	// VerticalWeights maps a business vertical to a weight.
	// Missing verticals fall back to 1.0.
	VerticalWeights map[uuid.UUID]float64 `json:"vertical_weights,omitempty"`

	// StrategicAlignmentMultiplier applies when the vote marked the item
	// as strategically aligned.
	StrategicAlignmentMultiplier float64 `json:"strategic_alignment_multiplier"`

	// ROIThreshold and ROIBonusMultiplier apply a bonus when the item's
	// ROI estimate meets the threshold.
	ROIThreshold       float64 `json:"roi_threshold"`
	ROIBonusMultiplier float64 `json:"roi_bonus_multiplier"`
}

// DefaultBusinessValueWeightConfig returns neutral weighting with a modest
// strategic and ROI bonus.
func DefaultBusinessValueWeightConfig() BusinessValueWeightConfig {
	return BusinessValueWeightConfig{
		BaseMultiplier:               1.0,
		StrategicAlignmentMultiplier: 1.25,
		ROIThreshold:                 100000,
		ROIBonusMultiplier:           1.15,
	}
}
