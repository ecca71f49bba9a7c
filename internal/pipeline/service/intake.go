package service

import (
	"context"

	"lead_crm_backend/internal/events"
	"lead_crm_backend/internal/pipeline/domain"
	"lead_crm_backend/internal/pipeline/repository"
	"lead_crm_backend/platform/apperr"
	"lead_crm_backend/platform/phone"
	"lead_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// CreateLeadInput holds the intake fields for a new lead. Lead creation is
// the acquisition path in front of the engine: the record starts at NUOVO
// and is mutated only through engine operations afterwards.
type CreateLeadInput struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           *string
	Source          *string
	AssignedAgentID *uuid.UUID
	CampaignID      *uuid.UUID
	CourseID        *uuid.UUID
}

// CreateLead registers a new lead in the pipeline.
func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput) (domain.Lead, error) {
	if input.AssignedAgentID != nil {
		exists, err := s.agents.AgentExists(ctx, *input.AssignedAgentID)
		if err != nil {
			return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "storage failure", err)
		}
		if !exists {
			return domain.Lead{}, apperr.Validation("agent does not exist or is inactive").
				WithReason(apperr.ReasonUnknownAgent)
		}
	}

	lead, err := s.leads.Create(ctx, repository.CreateLeadParams{
		FirstName:       sanitize.Text(input.FirstName),
		LastName:        sanitize.Text(input.LastName),
		Phone:           phone.NormalizeE164(input.Phone),
		Email:           input.Email,
		Source:          sanitize.TextPtr(input.Source),
		AssignedAgentID: input.AssignedAgentID,
		CampaignID:      input.CampaignID,
		CourseID:        input.CourseID,
	})
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		AssignedAgentID: lead.AssignedAgentID,
		CampaignID:      lead.CampaignID,
		Source:          derefString(input.Source),
	})

	return lead, nil
}
