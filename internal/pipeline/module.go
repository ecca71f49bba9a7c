// Package pipeline provides the lead pipeline bounded context module.
// This file defines the module that encapsulates all pipeline setup and
// route registration.
package pipeline

import (
	"context"
	"fmt"

	"lead_crm_backend/internal/events"
	apphttp "lead_crm_backend/internal/http"
	"lead_crm_backend/internal/pipeline/domain"
	"lead_crm_backend/internal/pipeline/handler"
	"lead_crm_backend/internal/pipeline/repository"
	"lead_crm_backend/internal/pipeline/service"
	"lead_crm_backend/platform/config"
	"lead_crm_backend/platform/logger"
	"lead_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lead pipeline bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the pipeline module with all its
// dependencies. The engine thresholds come from configuration so deployments
// can tune the attempt ceiling and staleness window without a rebuild.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg config.PipelineConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)

	engine := domain.NewEngine(domain.Rules{
		MaxCallAttempts: cfg.GetMaxCallAttempts(),
		AutoLossDays:    cfg.GetAutoLossDays(),
	})

	svc := service.New(repo, engine, bus, log)
	h := handler.New(svc, val, domain.AssignmentRules{Overwrite: cfg.GetAssignmentOverwrite()})

	m := &Module{handler: h, service: svc, repo: repo}
	m.subscribeActivityLog(bus, log)

	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// RegisterRoutes mounts the pipeline routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterCampaignRoutes(ctx.Protected.Group("/campaigns"))
}

// Service returns the pipeline service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// subscribeActivityLog wires the audit trail: every pipeline event appends a
// human-readable entry to the lead's activity log. Handlers run on the async
// bus after the state change is committed; a write failure is logged and
// never propagates back to the operation that raised the event.
func (m *Module) subscribeActivityLog(bus events.Bus, log *logger.Logger) {
	subscribe := func(name string, fn func(ctx context.Context, event events.Event) error) {
		bus.Subscribe(name, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			if err := fn(ctx, event); err != nil {
				log.Error("activity log write failed", "event", event.EventName(), "error", err)
			}
			return nil
		}))
	}

	subscribe(events.LeadCreated{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}
		desc := "lead entered the pipeline"
		if e.Source != "" {
			desc = fmt.Sprintf("lead entered the pipeline via %s", e.Source)
		}
		return m.repo.AppendActivity(ctx, e.LeadID, e.EventName(), desc)
	})

	subscribe(events.CallLogged{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.CallLogged)
		if !ok {
			return nil
		}
		desc := fmt.Sprintf("call attempt %d logged with outcome %s", e.Attempts, e.Outcome)
		if e.Notes != "" {
			desc += ": " + e.Notes
		}
		return m.repo.AppendActivity(ctx, e.LeadID, e.EventName(), desc)
	})

	subscribe(events.LeadLost{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadLost)
		if !ok {
			return nil
		}
		return m.repo.AppendActivity(ctx, e.LeadID, e.EventName(),
			fmt.Sprintf("lead lost (%s)", e.Reason))
	})

	subscribe(events.LeadRecovered{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadRecovered)
		if !ok {
			return nil
		}
		desc := "lead recovered from lost state"
		if e.Notes != "" {
			desc += ": " + e.Notes
		}
		return m.repo.AppendActivity(ctx, e.LeadID, e.EventName(), desc)
	})

	subscribe(events.LeadMarkedTarget{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadMarkedTarget)
		if !ok {
			return nil
		}
		desc := "lead flagged as in-target"
		if !e.IsTarget {
			desc = "in-target flag removed"
		}
		if e.Note != "" {
			desc += ": " + e.Note
		}
		return m.repo.AppendActivity(ctx, e.LeadID, e.EventName(), desc)
	})

	subscribe(events.LeadEnrolled{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadEnrolled)
		if !ok {
			return nil
		}
		return m.repo.AppendActivity(ctx, e.LeadID, e.EventName(), "lead enrolled")
	})

	subscribe(events.LeadsAssigned{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadsAssigned)
		if !ok {
			return nil
		}
		desc := fmt.Sprintf("assigned in a %s batch of %d leads", e.Strategy, len(e.LeadIDs))
		for _, leadID := range e.LeadIDs {
			if err := m.repo.AppendActivity(ctx, leadID, e.EventName(), desc); err != nil {
				return err
			}
		}
		return nil
	})

	subscribe(events.CostsDistributed{}.EventName(), func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.CostsDistributed)
		if !ok {
			return nil
		}
		desc := fmt.Sprintf("acquisition cost distributed (%s, %d leads, %d cents total)",
			e.Method, len(e.LeadIDs), e.TotalCents)
		for _, leadID := range e.LeadIDs {
			if err := m.repo.AppendActivity(ctx, leadID, e.EventName(), desc); err != nil {
				return err
			}
		}
		return nil
	})
}
