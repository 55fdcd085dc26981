package config

import (
	"fmt"
	"strings"
)

// FieldChange records one differing field between two versions.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Diff is a field-by-field comparison of two configuration versions.
type Diff struct {
	Key         string        `json:"key"`
	Scope       string        `json:"scope"`
	FromVersion int           `json:"from_version"`
	ToVersion   int           `json:"to_version"`
	Changes     []FieldChange `json:"changes"`
}

// Compare produces a field-by-field diff between two versions of the same
// (key, vertical) configuration.
func Compare(from, to *PriorityConfiguration) Diff {
	d := Diff{
		Key:         from.Key,
		Scope:       from.Scope(),
		FromVersion: from.Version,
		ToVersion:   to.Version,
	}

	add := func(field string, oldV, newV any) {
		os := fmt.Sprintf("%v", oldV)
		ns := fmt.Sprintf("%v", newV)
		if os != ns {
			d.Changes = append(d.Changes, FieldChange{Field: field, Old: os, New: ns})
		}
	}

	add("min_score", from.MinScore, to.MinScore)
	add("max_score", from.MaxScore, to.MaxScore)
	add("description", from.Description, to.Description)
	add("inherits_global", from.InheritsGlobal, to.InheritsGlobal)

	add("algorithm.type", from.Algorithm.Type, to.Algorithm.Type)
	add("algorithm.base_weight", from.Algorithm.BaseWeight, to.Algorithm.BaseWeight)
	add("algorithm.time_decay_weight", from.Algorithm.TimeDecayWeight, to.Algorithm.TimeDecayWeight)
	add("algorithm.business_value_weight", from.Algorithm.BusinessValueWeight, to.Algorithm.BusinessValueWeight)
	add("algorithm.capacity_weight", from.Algorithm.CapacityWeight, to.Algorithm.CapacityWeight)
	add("algorithm.bands", from.Algorithm.Bands, to.Algorithm.Bands)

	add("time_decay.enabled", from.TimeDecay.Enabled, to.TimeDecay.Enabled)
	add("time_decay.max_multiplier", from.TimeDecay.MaxMultiplier, to.TimeDecay.MaxMultiplier)
	add("time_decay.decay_rate", from.TimeDecay.DecayRate, to.TimeDecay.DecayRate)
	add("time_decay.start_delay_days", from.TimeDecay.StartDelayDays, to.TimeDecay.StartDelayDays)
	add("time_decay.function", from.TimeDecay.Function, to.TimeDecay.Function)

	add("business_value.base_multiplier", from.BusinessValue.BaseMultiplier, to.BusinessValue.BaseMultiplier)
	add("business_value.category_weights", from.BusinessValue.CategoryWeights, to.BusinessValue.CategoryWeights)
	add("business_value.strategic_alignment_multiplier", from.BusinessValue.StrategicAlignmentMultiplier, to.BusinessValue.StrategicAlignmentMultiplier)
	add("business_value.roi_threshold", from.BusinessValue.ROIThreshold, to.BusinessValue.ROIThreshold)
	add("business_value.roi_bonus_multiplier", from.BusinessValue.ROIBonusMultiplier, to.BusinessValue.ROIBonusMultiplier)

	add("capacity.enabled", from.Capacity.Enabled, to.Capacity.Enabled)
	add("capacity.max_adjustment_factor", from.Capacity.MaxAdjustmentFactor, to.Capacity.MaxAdjustmentFactor)
	add("capacity.min_adjustment_factor", from.Capacity.MinAdjustmentFactor, to.Capacity.MinAdjustmentFactor)
	add("capacity.optimal_utilization_pct", from.Capacity.OptimalUtilizationPct, to.Capacity.OptimalUtilizationPct)
	add("capacity.curve", from.Capacity.Curve, to.Capacity.Curve)

	add("auto_adjust.enabled", from.AutoAdjust.Enabled, to.AutoAdjust.Enabled)
	add("auto_adjust.trigger_interval", from.AutoAdjust.TriggerInterval, to.AutoAdjust.TriggerInterval)
	add("auto_adjust.drift_threshold", from.AutoAdjust.DriftThreshold, to.AutoAdjust.DriftThreshold)
	add("auto_adjust.max_delta", from.AutoAdjust.MaxDelta, to.AutoAdjust.MaxDelta)
	add("auto_adjust.rules", len(from.AutoAdjust.Rules), len(to.AutoAdjust.Rules))

	add("escalation.default_sla_hours", from.Escalation.DefaultSLAHours, to.Escalation.DefaultSLAHours)
	add("escalation.rules", len(from.Escalation.Rules), len(to.Escalation.Rules))

	return d
}

// Summary renders the diff as a short human-readable report.
func (d Diff) Summary() string {
	if len(d.Changes) == 0 {
		return fmt.Sprintf("%s/%s: v%d and v%d are identical", d.Key, d.Scope, d.FromVersion, d.ToVersion)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s: %d change(s) from v%d to v%d", d.Key, d.Scope, len(d.Changes), d.FromVersion, d.ToVersion)
	for _, c := range d.Changes {
		fmt.Fprintf(&b, "\n  %s: %s -> %s", c.Field, c.Old, c.New)
	}
	return b.String()
}
