// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lead_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID          uuid.UUID  `json:"leadId"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
	CampaignID      *uuid.UUID `json:"campaignId,omitempty"`
	Source          string     `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "pipeline.lead.created" }

// CallLogged is published for every successfully recorded call outcome.
type CallLogged struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	Outcome  string    `json:"outcome"`
	Attempts int       `json:"attempts"`
	Notes    string    `json:"notes,omitempty"`
}

func (e CallLogged) EventName() string { return "pipeline.lead.call_logged" }

// LeadLost is published when a lead transitions into PERSO, whether through
// a NEGATIVO outcome or the attempt ceiling.
type LeadLost struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Reason string    `json:"reason"`
}

func (e LeadLost) EventName() string { return "pipeline.lead.lost" }

// LeadRecovered is published when a lost lead is pulled back into the
// pipeline. Notes carry the operator's justification for the audit trail.
type LeadRecovered struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Notes  string    `json:"notes,omitempty"`
}

func (e LeadRecovered) EventName() string { return "pipeline.lead.recovered" }

// LeadMarkedTarget is published when the in-target flag changes.
type LeadMarkedTarget struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	IsTarget bool      `json:"isTarget"`
	Note     string    `json:"note,omitempty"`
}

func (e LeadMarkedTarget) EventName() string { return "pipeline.lead.marked_target" }

// LeadEnrolled is published when a lead enrolls.
type LeadEnrolled struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadEnrolled) EventName() string { return "pipeline.lead.enrolled" }

// LeadsAssigned is published after a bulk assignment batch is persisted.
type LeadsAssigned struct {
	BaseEvent
	LeadIDs  []uuid.UUID       `json:"leadIds"`
	PerAgent map[uuid.UUID]int `json:"perAgent"`
	Strategy string            `json:"strategy"` // "single" or "round_robin"
}

func (e LeadsAssigned) EventName() string { return "pipeline.leads.assigned" }

// CostsDistributed is published after a cost allocation batch is persisted.
type CostsDistributed struct {
	BaseEvent
	LeadIDs    []uuid.UUID `json:"leadIds"`
	TotalCents int64       `json:"totalCents"`
	Method     string      `json:"method"` // "equal" or "by_period"
}

func (e CostsDistributed) EventName() string { return "pipeline.costs.distributed" }
