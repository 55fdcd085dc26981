package config

import "time"

// AlgorithmType selects the scoring formula family.
type AlgorithmType string

const (
	AlgorithmEnhanced AlgorithmType = "enhanced"
	AlgorithmSimple   AlgorithmType = "simple"
	AlgorithmCustom   AlgorithmType = "custom"
)

// WeightTarget names one of the four closed weight slots.
type WeightTarget string

const (
	WeightBase          WeightTarget = "base"
	WeightTimeDecay     WeightTarget = "time_decay"
	WeightBusinessValue WeightTarget = "business_value"
	WeightCapacity      WeightTarget = "capacity"
)

// AlgorithmConfig tunes how the multipliers combine into a final score.
type AlgorithmConfig struct {
	Type AlgorithmType `json:"type"`

	BaseWeight          float64 `json:"base_weight"`
	TimeDecayWeight     float64 `json:"time_decay_weight"`
	BusinessValueWeight float64 `json:"business_value_weight"`
	CapacityWeight      float64 `json:"capacity_weight"`

	// CustomWeights is an extension point for genuinely vertical-specific
	// factors. The four closed slots above cover the standard model.
	CustomWeights map[string]float64 `json:"custom_weights,omitempty"`

	// Bands map the normalized score fraction to a priority level. Each
	// band's threshold is an inclusive lower bound, so a score exactly on
	// a boundary lands in the higher band.
	Bands []ScoreBand `json:"bands"`

	Active       bool      `json:"active"`
	LastModified time.Time `json:"last_modified"`
}

// ScoreBand assigns a priority level to scores at or above Threshold
// (a fraction of the configured score range).
type ScoreBand struct {
	Level     string  `json:"level"`
	Threshold float64 `json:"threshold"`
}

// DefaultAlgorithmConfig returns the enhanced algorithm with equal weights
// and the standard four-level banding.
func DefaultAlgorithmConfig() AlgorithmConfig {
	return AlgorithmConfig{
		Type:                AlgorithmEnhanced,
		BaseWeight:          1.0,
		TimeDecayWeight:     1.0,
		BusinessValueWeight: 1.0,
		CapacityWeight:      1.0,
		Bands: []ScoreBand{
			{Level: "low", Threshold: 0},
			{Level: "medium", Threshold: 0.25},
			{Level: "high", Threshold: 0.5},
			{Level: "critical", Threshold: 0.75},
		},
		Active:       true,
		LastModified: time.Now().UTC(),
	}
}

// Weight returns the value of a named weight slot.
func (a AlgorithmConfig) Weight(target WeightTarget) float64 {
	switch target {
	case WeightBase:
		return a.BaseWeight
	case WeightTimeDecay:
		return a.TimeDecayWeight
	case WeightBusinessValue:
		return a.BusinessValueWeight
	case WeightCapacity:
		return a.CapacityWeight
	default:
		return a.CustomWeights[string(target)]
	}
}

// SetWeight sets a named weight slot, clamping at zero.
func (a *AlgorithmConfig) SetWeight(target WeightTarget, value float64) {
	if value < 0 {
		value = 0
	}
	switch target {
	case WeightBase:
		a.BaseWeight = value
	case WeightTimeDecay:
		a.TimeDecayWeight = value
	case WeightBusinessValue:
		a.BusinessValueWeight = value
	case WeightCapacity:
		a.CapacityWeight = value
	default:
		if a.CustomWeights == nil {
			a.CustomWeights = make(map[string]float64)
		}
		a.CustomWeights[string(target)] = value
	}
	a.LastModified = time.Now().UTC()
}

// WeightSum returns the sum of the four closed weights.
func (a AlgorithmConfig) WeightSum() float64 {
	return a.BaseWeight + a.TimeDecayWeight + a.BusinessValueWeight + a.CapacityWeight
}
