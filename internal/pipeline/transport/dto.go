package transport

import (
	"time"

	"lead_crm_backend/internal/pipeline/domain"
	"lead_crm_backend/internal/pipeline/repository"
	"lead_crm_backend/internal/pipeline/service"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	FirstName       string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName        string     `json:"lastName" validate:"required,min=1,max=100"`
	Phone           string     `json:"phone" validate:"required,min=5,max=20"`
	Email           *string    `json:"email,omitempty" validate:"omitempty,email"`
	Source          *string    `json:"source,omitempty" validate:"omitempty,max=100"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
	CampaignID      *uuid.UUID `json:"campaignId,omitempty"`
	CourseID        *uuid.UUID `json:"courseId,omitempty"`
}

type RecordCallRequest struct {
	Outcome string  `json:"outcome" validate:"required,oneof=POSITIVO NEGATIVO RICHIAMARE"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type SetTargetRequest struct {
	IsTarget bool    `json:"isTarget"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type RecoverLeadRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type AssignSingleRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500,unique"`
	AgentID uuid.UUID   `json:"agentId" validate:"required"`
}

// RoundRobinRequest distributes leads across agents. An empty agentIds slice
// means the whole active roster; a nil overwrite falls back to the
// deployment default.
type RoundRobinRequest struct {
	LeadIDs   []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500,unique"`
	AgentIDs  []uuid.UUID `json:"agentIds,omitempty" validate:"max=100,unique"`
	Overwrite *bool       `json:"overwrite,omitempty"`
}

type SetCostRequest struct {
	AmountCents int64 `json:"amountCents" validate:"min=0"`
}

type DistributeEqualRequest struct {
	LeadIDs    []uuid.UUID `json:"leadIds" validate:"required,min=1,max=1000,unique"`
	TotalCents int64       `json:"totalCents" validate:"min=0"`
}

// Response DTOs

type LeadResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`

	Contacted   bool       `json:"contacted"`
	ContactedAt *time.Time `json:"contactedAt,omitempty"`

	IsTarget   bool    `json:"isTarget"`
	TargetNote *string `json:"targetNote,omitempty"`

	Enrolled   bool       `json:"enrolled"`
	EnrolledAt *time.Time `json:"enrolledAt,omitempty"`

	CallAttempts   int        `json:"callAttempts"`
	FirstAttemptAt *time.Time `json:"firstAttemptAt,omitempty"`
	LastAttemptAt  *time.Time `json:"lastAttemptAt,omitempty"`
	CallOutcome    *string    `json:"callOutcome,omitempty"`
	OutcomeNotes   *string    `json:"outcomeNotes,omitempty"`

	LostReason *string    `json:"lostReason,omitempty"`
	LostAt     *time.Time `json:"lostAt,omitempty"`

	AcquisitionCostCents *int64 `json:"acquisitionCostCents,omitempty"`

	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
	CampaignID      *uuid.UUID `json:"campaignId,omitempty"`
	CourseID        *uuid.UUID `json:"courseId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type StaleLeadResponse struct {
	Lead          LeadResponse `json:"lead"`
	DaysRemaining int          `json:"daysRemaining"`
}

type StaleListResponse struct {
	Leads []StaleLeadResponse `json:"leads"`
	Total int                 `json:"total"`
}

type AssignmentResponse struct {
	Assigned int               `json:"assigned"`
	PerAgent map[uuid.UUID]int `json:"perAgent"`
}

type AssignmentPreviewResponse struct {
	PerAgent map[uuid.UUID]int `json:"perAgent"`
}

type AllocationResponse struct {
	Allocations map[uuid.UUID]int64 `json:"allocations"`
	TotalCents  int64               `json:"totalCents"`
}

type CoverageResponse struct {
	TotalLeads        int     `json:"totalLeads"`
	LeadsWithCost     int     `json:"leadsWithCost"`
	CoveragePct       float64 `json:"coveragePct"`
	CPLEffectiveCents int64   `json:"cplEffectiveCents"`
	IsComplete        bool    `json:"isComplete"`
}

type ActivityEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ActivityListResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
	Total   int                     `json:"total"`
}

// Mapping helpers

func ToLeadResponse(lead domain.Lead) LeadResponse {
	var outcome *string
	if lead.CallOutcome != nil {
		s := string(*lead.CallOutcome)
		outcome = &s
	}
	return LeadResponse{
		ID:                   lead.ID,
		Status:               string(lead.Status),
		Contacted:            lead.Contacted,
		ContactedAt:          lead.ContactedAt,
		IsTarget:             lead.IsTarget,
		TargetNote:           lead.TargetNote,
		Enrolled:             lead.Enrolled,
		EnrolledAt:           lead.EnrolledAt,
		CallAttempts:         lead.CallAttempts,
		FirstAttemptAt:       lead.FirstAttemptAt,
		LastAttemptAt:        lead.LastAttemptAt,
		CallOutcome:          outcome,
		OutcomeNotes:         lead.OutcomeNotes,
		LostReason:           lead.LostReason,
		LostAt:               lead.LostAt,
		AcquisitionCostCents: lead.AcquisitionCostCents,
		AssignedAgentID:      lead.AssignedAgentID,
		CampaignID:           lead.CampaignID,
		CourseID:             lead.CourseID,
		CreatedAt:            lead.CreatedAt,
	}
}

func ToStaleListResponse(stale []service.StaleLead) StaleListResponse {
	out := StaleListResponse{Leads: make([]StaleLeadResponse, 0, len(stale))}
	for _, entry := range stale {
		out.Leads = append(out.Leads, StaleLeadResponse{
			Lead:          ToLeadResponse(entry.Lead),
			DaysRemaining: entry.DaysRemaining,
		})
	}
	out.Total = len(out.Leads)
	return out
}

func ToActivityListResponse(entries []repository.ActivityEntry) ActivityListResponse {
	out := ActivityListResponse{Entries: make([]ActivityEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		out.Entries = append(out.Entries, ActivityEntryResponse{
			ID:          entry.ID,
			EventType:   entry.EventType,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		})
	}
	out.Total = len(out.Entries)
	return out
}

func ToCoverageResponse(report domain.CoverageReport) CoverageResponse {
	return CoverageResponse{
		TotalLeads:        report.TotalLeads,
		LeadsWithCost:     report.LeadsWithCost,
		CoveragePct:       report.CoveragePct,
		CPLEffectiveCents: report.CPLEffectiveCents,
		IsComplete:        report.IsComplete,
	}
}
