package config

import (
	sharedDomain "github.com/codesidh/bpts/internal/shared/domain"
)

// Routing keys for configuration events.
const (
	RoutingKeyVersionCreated = "priority.config.version_created"
	RoutingKeyAutoAdjusted   = "priority.config.auto_adjusted"
)

// VersionCreatedEvent is published when a new configuration version is stored.
type VersionCreatedEvent struct {
	sharedDomain.BaseEvent

	Key     string `json:"key"`
	Scope   string `json:"scope"`
	Version int    `json:"version"`
}

// NewVersionCreatedEvent creates a version-created event.
func NewVersionCreatedEvent(cfg *PriorityConfiguration) *VersionCreatedEvent {
	return &VersionCreatedEvent{
		BaseEvent: sharedDomain.NewBaseEvent(cfg.ID, "priority_configuration", RoutingKeyVersionCreated),
		Key:       cfg.Key,
		Scope:     cfg.Scope(),
		Version:   cfg.Version,
	}
}

// AutoAdjustedEvent is published when the rule engine commits a new version.
type AutoAdjustedEvent struct {
	sharedDomain.BaseEvent

	Key         string `json:"key"`
	Scope       string `json:"scope"`
	RuleName    string `json:"rule_name"`
	FromVersion int    `json:"from_version"`
	ToVersion   int    `json:"to_version"`
}

// NewAutoAdjustedEvent creates an auto-adjusted event.
func NewAutoAdjustedEvent(cfg *PriorityConfiguration, ruleName string, fromVersion int) *AutoAdjustedEvent {
	return &AutoAdjustedEvent{
		BaseEvent:   sharedDomain.NewBaseEvent(cfg.ID, "priority_configuration", RoutingKeyAutoAdjusted),
		Key:         cfg.Key,
		Scope:       cfg.Scope(),
		RuleName:    ruleName,
		FromVersion: fromVersion,
		ToVersion:   cfg.Version,
	}
}
