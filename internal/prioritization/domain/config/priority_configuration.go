// Package config contains the versioned priority configuration domain model.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors for priority configurations.
var (
	ErrConfigurationNotFound = errors.New("priority configuration not found")
	ErrVersionNotFound       = errors.New("configuration version not found")
	ErrVersionConflict       = errors.New("configuration version conflict")
	ErrConfigurationInvalid  = errors.New("priority configuration is invalid")
)

// DefaultKey is the configuration key used when callers do not name one.
const DefaultKey = "default"

// PriorityConfiguration is one immutable version of the scoring configuration
// for a (key, business vertical) pair. Editing never mutates an existing
// version; a new version is created and becomes active by effective date.
type PriorityConfiguration struct {
	ID                 uuid.UUID  `json:"id"`
	Key                string     `json:"key"`
	BusinessVerticalID *uuid.UUID `json:"business_vertical_id,omitempty"` // nil = global
	Version            int        `json:"version"`

	// InheritsGlobal marks a vertical-scoped version as an explicit
	// "inherit from global" marker: resolution falls through to the
	// global configuration while this version is active.
	InheritsGlobal bool `json:"inherits_global,omitempty"`

	MinScore    float64 `json:"min_score"`
	MaxScore    float64 `json:"max_score"`
	Color       string  `json:"color,omitempty"`
	Description string  `json:"description,omitempty"`

	Algorithm     AlgorithmConfig           `json:"algorithm"`
	TimeDecay     TimeDecayConfig           `json:"time_decay"`
	BusinessValue BusinessValueWeightConfig `json:"business_value"`
	Capacity      CapacityAdjustmentConfig  `json:"capacity"`
	AutoAdjust    AutoAdjustmentRulesConfig `json:"auto_adjust"`
	Escalation    EscalationRulesConfig     `json:"escalation"`

	EffectiveDate  time.Time  `json:"effective_date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedBy string    `json:"modified_by"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewPriorityConfiguration creates version 1 of a configuration with
// production defaults.
func NewPriorityConfiguration(key string, verticalID *uuid.UUID, createdBy string) *PriorityConfiguration {
	if key == "" {
		key = DefaultKey
	}
	now := time.Now().UTC()
	return &PriorityConfiguration{
		ID:                 uuid.New(),
		Key:                key,
		BusinessVerticalID: verticalID,
		Version:            1,
		MinScore:           0,
		MaxScore:           100,
		Algorithm:          DefaultAlgorithmConfig(),
		TimeDecay:          DefaultTimeDecayConfig(),
		BusinessValue:      DefaultBusinessValueWeightConfig(),
		Capacity:           DefaultCapacityAdjustmentConfig(),
		AutoAdjust:         DefaultAutoAdjustmentRulesConfig(),
		Escalation:         DefaultEscalationRulesConfig(),
		EffectiveDate:      now,
		CreatedBy:          createdBy,
		CreatedAt:          now,
		ModifiedBy:         createdBy,
		ModifiedAt:         now,
	}
}

// NextVersion returns a deep copy of c with a fresh identity and the given
// version number. The copy is the mutable draft; c itself stays untouched.
func (c *PriorityConfiguration) NextVersion(version int, modifiedBy string) *PriorityConfiguration {
	now := time.Now().UTC()
	next := *c
	next.ID = uuid.New()
	next.Version = version
	next.EffectiveDate = now
	next.ExpirationDate = nil
	next.ModifiedBy = modifiedBy
	next.ModifiedAt = now
	next.CreatedBy = modifiedBy
	next.CreatedAt = now

	next.Algorithm.CustomWeights = copyFloatMap(c.Algorithm.CustomWeights)
	next.Algorithm.Bands = append([]ScoreBand(nil), c.Algorithm.Bands...)
	next.BusinessValue.CategoryWeights = copyFloatMap(c.BusinessValue.CategoryWeights)
	next.BusinessValue.VerticalWeights = copyUUIDFloatMap(c.BusinessValue.VerticalWeights)
	next.Capacity.DepartmentOverrides = copyUUIDFloatMap(c.Capacity.DepartmentOverrides)
	next.AutoAdjust.Rules = append([]AdjustmentRule(nil), c.AutoAdjust.Rules...)
	next.Escalation.Rules = append([]EscalationRule(nil), c.Escalation.Rules...)
	return &next
}

// IsEffectiveAt reports whether this version is live at the given instant.
func (c *PriorityConfiguration) IsEffectiveAt(t time.Time) bool {
	if t.Before(c.EffectiveDate) {
		return false
	}
	if c.ExpirationDate != nil && !t.Before(*c.ExpirationDate) {
		return false
	}
	return true
}

// Scope returns a stable label for the configuration's business vertical,
// "global" when unscoped. Used as a lock key and log attribute.
func (c *PriorityConfiguration) Scope() string {
	return ScopeLabel(c.BusinessVerticalID)
}

// ScopeLabel formats a vertical id as a scope label.
func ScopeLabel(verticalID *uuid.UUID) string {
	if verticalID == nil {
		return "global"
	}
	return verticalID.String()
}

// Ref identifies the exact version a score was computed with, for audit.
func (c *PriorityConfiguration) Ref() string {
	return fmt.Sprintf("%s/%s@v%d", c.Key, c.Scope(), c.Version)
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyUUIDFloatMap(m map[uuid.UUID]float64) map[uuid.UUID]float64 {
	if m == nil {
		return nil
	}
	out := make(map[uuid.UUID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
