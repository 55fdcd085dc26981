package escalation

import (
	sharedDomain "github.com/codesidh/bpts/internal/shared/domain"
	"github.com/google/uuid"
)

// RoutingKeyRaised is the routing key for escalation events.
const RoutingKeyRaised = "priority.escalation.raised"

// RaisedEvent is published when a new escalation record is created.
type RaisedEvent struct {
	sharedDomain.BaseEvent

	WorkRequestID uuid.UUID `json:"work_request_id"`
	Reason        string    `json:"reason"`
	RuleName      string    `json:"rule_name,omitempty"`
	AgeHours      int       `json:"age_hours"`
	SLAHours      int       `json:"sla_hours"`
}

// NewRaisedEvent creates an escalation-raised event.
func NewRaisedEvent(e *PriorityEscalation, ageHours, slaHours int) *RaisedEvent {
	return &RaisedEvent{
		BaseEvent:     sharedDomain.NewBaseEvent(e.ID, "priority_escalation", RoutingKeyRaised),
		WorkRequestID: e.WorkRequestID,
		Reason:        e.Reason,
		RuleName:      e.RuleName,
		AgeHours:      ageHours,
		SLAHours:      slaHours,
	}
}
