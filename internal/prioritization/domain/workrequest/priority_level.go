package workrequest

// PriorityLevel is the discrete band derived from a work request's score.
type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "critical"
	PriorityHigh     PriorityLevel = "high"
	PriorityMedium   PriorityLevel = "medium"
	PriorityLow      PriorityLevel = "low"
)

// String returns the string representation.
func (p PriorityLevel) String() string {
	return string(p)
}

// IsValid reports whether the level is one of the four known bands.
func (p PriorityLevel) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Weight returns a numeric ordering for the level, higher is more urgent.
func (p PriorityLevel) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}
