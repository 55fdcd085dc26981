package config

// DecayFunction selects the curve applied to an item's age.
type DecayFunction string

const (
	DecayLinear      DecayFunction = "linear"
	DecayLogarithmic DecayFunction = "logarithmic"
	DecayExponential DecayFunction = "exponential"
)

// TimeDecayConfig controls how priority grows as an item ages.
type TimeDecayConfig struct {
	Enabled bool `json:"enabled"`

	// MaxMultiplier caps the decay boost; always >= 1.
	MaxMultiplier float64 `json:"max_multiplier"`

	// DecayRate scales elapsed days into the curve input; in (0, 1].
	DecayRate float64 `json:"decay_rate"`

	// StartDelayDays defers decay until the item is this many days old.
	StartDelayDays int `json:"start_delay_days"`

	Function DecayFunction `json:"function"`

	// Params carries extra function parameters for custom curves.
	Params map[string]float64 `json:"params,omitempty"`
}

// DefaultTimeDecayConfig returns a gentle logarithmic decay starting after
// a week.
func DefaultTimeDecayConfig() TimeDecayConfig {
	return TimeDecayConfig{
		Enabled:        true,
		MaxMultiplier:  2.0,
		DecayRate:      0.01,
		StartDelayDays: 7,
		Function:       DecayLogarithmic,
	}
}
