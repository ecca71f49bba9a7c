package service

import (
	"context"

	"lead_crm_backend/internal/events"
	"lead_crm_backend/internal/pipeline/domain"
	"lead_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// AssignSingle assigns every given lead to one agent. The whole batch is
// persisted in a single transaction; a missing lead rejects the batch.
func (s *Service) AssignSingle(ctx context.Context, leadIDs []uuid.UUID, agentID uuid.UUID) ([]domain.AssignmentResult, error) {
	if len(leadIDs) == 0 {
		return []domain.AssignmentResult{}, nil
	}

	exists, err := s.agents.AgentExists(ctx, agentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}
	if !exists {
		return nil, apperr.Validation("agent does not exist or is inactive").
			WithReason(apperr.ReasonUnknownAgent)
	}

	leads, err := s.loadBatch(ctx, leadIDs)
	if err != nil {
		return nil, err
	}

	updated, results := domain.AssignSingle(leads, agentID)
	if err := s.leads.ApplyAssignments(ctx, results); err != nil {
		return nil, s.mapStoreError(err)
	}

	s.bus.Publish(ctx, events.LeadsAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadIDs:   leadIDs,
		PerAgent:  map[uuid.UUID]int{agentID: len(updated)},
		Strategy:  "single",
	})

	return results, nil
}

// AssignRoundRobin distributes the given leads over the given agents. The
// assignment rules decide whether already-owned leads take part; filtering
// happens before distribution so preview and execution see the same set.
func (s *Service) AssignRoundRobin(ctx context.Context, leadIDs []uuid.UUID, agentIDs []uuid.UUID, rules domain.AssignmentRules) ([]domain.AssignmentResult, map[uuid.UUID]int, error) {
	agents, err := s.resolveAgents(ctx, agentIDs)
	if err != nil {
		return nil, nil, err
	}

	leads, err := s.loadBatch(ctx, leadIDs)
	if err != nil {
		return nil, nil, err
	}
	assignable := domain.Assignable(leads, rules)

	updated, results, counts, err := domain.AssignRoundRobin(assignable, agents)
	if err != nil {
		return nil, nil, err
	}

	if err := s.leads.ApplyAssignments(ctx, results); err != nil {
		return nil, nil, s.mapStoreError(err)
	}

	assignedIDs := make([]uuid.UUID, len(updated))
	for i, lead := range updated {
		assignedIDs[i] = lead.ID
	}
	s.bus.Publish(ctx, events.LeadsAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadIDs:   assignedIDs,
		PerAgent:  counts,
		Strategy:  "round_robin",
	})

	return results, counts, nil
}

// PreviewRoundRobin returns the per-agent counts AssignRoundRobin would
// produce right now, without assigning anything. It runs the same filtering
// and the same index mapping as the execution path.
func (s *Service) PreviewRoundRobin(ctx context.Context, leadIDs []uuid.UUID, agentIDs []uuid.UUID, rules domain.AssignmentRules) (map[uuid.UUID]int, error) {
	agents, err := s.resolveAgents(ctx, agentIDs)
	if err != nil {
		return nil, err
	}

	leads, err := s.loadBatch(ctx, leadIDs)
	if err != nil {
		return nil, err
	}
	assignable := domain.Assignable(leads, rules)

	return domain.PreviewRoundRobin(len(assignable), agents)
}

// resolveAgents validates the requested agent IDs against the active roster
// and returns them in request order. An empty request means "all active
// agents" in roster order.
func (s *Service) resolveAgents(ctx context.Context, agentIDs []uuid.UUID) ([]uuid.UUID, error) {
	roster, err := s.agents.ListAgents(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}

	active := make(map[uuid.UUID]bool, len(roster))
	for _, agent := range roster {
		active[agent.ID] = true
	}

	if len(agentIDs) == 0 {
		all := make([]uuid.UUID, len(roster))
		for i, agent := range roster {
			all[i] = agent.ID
		}
		return all, nil
	}

	for _, id := range agentIDs {
		if !active[id] {
			return nil, apperr.Validation("agent does not exist or is inactive").
				WithReason(apperr.ReasonUnknownAgent).
				WithDetails(id.String())
		}
	}
	return agentIDs, nil
}

// loadBatch loads the requested leads and rejects the batch when any ID is
// missing: bulk operations are applied fully or not at all.
func (s *Service) loadBatch(ctx context.Context, leadIDs []uuid.UUID) ([]domain.Lead, error) {
	leads, missing, err := s.leads.ListByIDs(ctx, leadIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}
	if len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, id := range missing {
			ids[i] = id.String()
		}
		return nil, apperr.NotFound("some leads do not exist").WithDetails(ids)
	}
	return leads, nil
}
