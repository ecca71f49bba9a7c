// Package service orchestrates the pipeline engine: it loads lead state,
// runs the pure domain operations, persists the result and publishes domain
// events. Event publication is fire-and-forget; a subscriber failure never
// rolls back a committed transition.
package service

import (
	"context"
	"errors"
	"time"

	"lead_crm_backend/internal/events"
	"lead_crm_backend/internal/pipeline/domain"
	"lead_crm_backend/internal/pipeline/repository"
	"lead_crm_backend/platform/apperr"
	"lead_crm_backend/platform/logger"
	"lead_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// LeadStore is the persistence surface the service needs for single-lead
// operations. *repository.Repository satisfies it; tests use an in-memory fake.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, []uuid.UUID, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Lead, error)
	ListStaleCandidates(ctx context.Context, cutoff time.Time) ([]domain.Lead, error)
	Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error)
	UpdateState(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	ApplyAssignments(ctx context.Context, results []domain.AssignmentResult) error
	ApplyCostAllocations(ctx context.Context, allocations map[uuid.UUID]int64) error
}

// AgentStore provides the agent roster for assignment.
type AgentStore interface {
	ListAgents(ctx context.Context) ([]repository.Agent, error)
	AgentExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// SpendStore provides campaign spend records for cost allocation.
type SpendStore interface {
	ListSpendByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.CampaignSpend, error)
}

// ActivityStore exposes the audit trail written by the event subscribers.
type ActivityStore interface {
	ListActivity(ctx context.Context, leadID uuid.UUID) ([]repository.ActivityEntry, error)
}

type Service struct {
	leads    LeadStore
	agents   AgentStore
	spends   SpendStore
	activity ActivityStore
	engine   *domain.Engine
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo *repository.Repository, engine *domain.Engine, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		leads:    repo,
		agents:   repo,
		spends:   repo,
		activity: repo,
		engine:   engine,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// logTransition records a status change in the structured log. Same-status
// operations (an unflagged target, a mid-window RICHIAMARE) stay quiet.
func (s *Service) logTransition(before, after domain.Lead, trigger string) {
	if before.Status != after.Status {
		s.log.LeadTransition(after.ID.String(), string(before.Status), string(after.Status), trigger)
	}
}

// ListActivity returns a lead's audit trail, newest first.
func (s *Service) ListActivity(ctx context.Context, leadID uuid.UUID) ([]repository.ActivityEntry, error) {
	if _, err := s.loadLead(ctx, leadID); err != nil {
		return nil, err
	}
	entries, err := s.activity.ListActivity(ctx, leadID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return entries, nil
}

// RecordCallOutcome logs a call attempt against the lead and applies the
// resulting status transition.
func (s *Service) RecordCallOutcome(ctx context.Context, leadID uuid.UUID, outcome domain.CallOutcome, notes *string) (domain.Lead, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}

	now := s.now()
	updated, err := s.engine.RecordCallOutcome(lead, outcome, sanitize.TextPtr(notes), now)
	if err != nil {
		return domain.Lead{}, err
	}

	persisted, err := s.leads.UpdateState(ctx, updated)
	if err != nil {
		return domain.Lead{}, s.mapStoreError(err)
	}

	s.bus.Publish(ctx, events.CallLogged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    persisted.ID,
		Outcome:   string(outcome),
		Attempts:  persisted.CallAttempts,
		Notes:     derefString(persisted.OutcomeNotes),
	})
	if !lead.IsLost() && persisted.IsLost() {
		s.bus.Publish(ctx, events.LeadLost{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    persisted.ID,
			Reason:    derefString(persisted.LostReason),
		})
	}
	s.logTransition(lead, persisted, "call:"+string(outcome))

	return persisted, nil
}

// SetTarget flags or unflags the lead as an in-target prospect.
func (s *Service) SetTarget(ctx context.Context, leadID uuid.UUID, value bool, note *string) (domain.Lead, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}

	updated, err := s.engine.SetTarget(lead, value, sanitize.TextPtr(note), s.now())
	if err != nil {
		return domain.Lead{}, err
	}

	persisted, err := s.leads.UpdateState(ctx, updated)
	if err != nil {
		return domain.Lead{}, s.mapStoreError(err)
	}

	s.bus.Publish(ctx, events.LeadMarkedTarget{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    persisted.ID,
		IsTarget:  value,
		Note:      derefString(persisted.TargetNote),
	})
	s.logTransition(lead, persisted, "target_flag")

	return persisted, nil
}

// SetEnrolled marks the lead as enrolled.
func (s *Service) SetEnrolled(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}

	updated, err := s.engine.SetEnrolled(lead, s.now())
	if err != nil {
		return domain.Lead{}, err
	}

	persisted, err := s.leads.UpdateState(ctx, updated)
	if err != nil {
		return domain.Lead{}, s.mapStoreError(err)
	}

	s.bus.Publish(ctx, events.LeadEnrolled{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    persisted.ID,
	})
	s.logTransition(lead, persisted, "enrollment")

	return persisted, nil
}

// RecoverLead pulls a lost lead back into the pipeline. The notes go into
// the audit trail through the LeadRecovered event.
func (s *Service) RecoverLead(ctx context.Context, leadID uuid.UUID, notes *string) (domain.Lead, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}

	updated, err := s.engine.Recover(lead, s.now())
	if err != nil {
		return domain.Lead{}, err
	}

	persisted, err := s.leads.UpdateState(ctx, updated)
	if err != nil {
		return domain.Lead{}, s.mapStoreError(err)
	}

	s.bus.Publish(ctx, events.LeadRecovered{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    persisted.ID,
		Notes:     derefString(sanitize.TextPtr(notes)),
	})
	s.logTransition(lead, persisted, "recovery")

	return persisted, nil
}

// StaleLead pairs a lead with its remaining staleness window.
type StaleLead struct {
	Lead          domain.Lead
	DaysRemaining int
}

// ListStale returns the RICHIAMARE leads whose window has run out. This is a
// read-only query: listing a lead here does not transition it, per the lazy
// staleness model.
func (s *Service) ListStale(ctx context.Context) ([]StaleLead, error) {
	now := s.now()
	cutoff := now.Add(-time.Duration(s.engine.Rules().AutoLossDays) * 24 * time.Hour)

	candidates, err := s.leads.ListStaleCandidates(ctx, cutoff)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	stale := make([]StaleLead, 0, len(candidates))
	for _, lead := range candidates {
		remaining, ok := s.engine.StaleDaysRemaining(lead, now)
		if ok && remaining <= 0 {
			stale = append(stale, StaleLead{Lead: lead, DaysRemaining: remaining})
		}
	}

	return stale, nil
}

// GetLead loads a single lead.
func (s *Service) GetLead(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	return s.loadLead(ctx, leadID)
}

// StaleDaysRemaining exposes the engine's pure staleness query for a lead.
func (s *Service) StaleDaysRemaining(ctx context.Context, leadID uuid.UUID) (int, bool, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return 0, false, err
	}
	remaining, ok := s.engine.StaleDaysRemaining(lead, s.now())
	return remaining, ok, nil
}

func (s *Service) loadLead(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return domain.Lead{}, s.mapStoreError(err)
	}
	return lead, nil
}

func (s *Service) mapStoreError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	s.log.DatabaseError("pipeline store", err)
	return apperr.Wrap(apperr.KindInternal, "storage failure", err)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
