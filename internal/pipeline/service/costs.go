package service

import (
	"context"

	"lead_crm_backend/internal/events"
	"lead_crm_backend/internal/pipeline/domain"
	"lead_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// SetFixedCost records a manual acquisition cost on a single lead.
func (s *Service) SetFixedCost(ctx context.Context, leadID uuid.UUID, amountCents int64) (domain.Lead, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}

	updated, err := domain.SetFixedCost(lead, amountCents)
	if err != nil {
		return domain.Lead{}, err
	}

	persisted, err := s.leads.UpdateState(ctx, updated)
	if err != nil {
		return domain.Lead{}, s.mapStoreError(err)
	}

	return persisted, nil
}

// DistributeEqual splits a budget equally over the given leads and persists
// the allocation atomically. The returned map is exactly what was stored.
func (s *Service) DistributeEqual(ctx context.Context, leadIDs []uuid.UUID, totalCents int64) (map[uuid.UUID]int64, error) {
	// Verify the batch before computing: a missing lead rejects it entirely.
	if _, err := s.loadBatch(ctx, leadIDs); err != nil {
		return nil, err
	}

	allocations, err := domain.DistributeEqual(leadIDs, totalCents)
	if err != nil {
		return nil, err
	}

	if err := s.leads.ApplyCostAllocations(ctx, allocations); err != nil {
		return nil, s.mapStoreError(err)
	}

	s.bus.Publish(ctx, events.CostsDistributed{
		BaseEvent:  events.NewBaseEvent(),
		LeadIDs:    leadIDs,
		TotalCents: totalCents,
		Method:     "equal",
	})

	return allocations, nil
}

// DistributeByPeriod prorates a campaign's spend records over the campaign's
// leads by creation date and persists the allocation atomically.
func (s *Service) DistributeByPeriod(ctx context.Context, campaignID uuid.UUID) (map[uuid.UUID]int64, error) {
	leads, err := s.leads.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}
	if len(leads) == 0 {
		return nil, apperr.Validation("campaign has no leads").
			WithReason(apperr.ReasonEmptyLeadSet)
	}

	spends, err := s.spends.ListSpendByCampaign(ctx, campaignID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}

	allocations := domain.DistributeByPeriod(leads, spends, s.now())

	if err := s.leads.ApplyCostAllocations(ctx, allocations); err != nil {
		return nil, s.mapStoreError(err)
	}

	var total int64
	leadIDs := make([]uuid.UUID, 0, len(allocations))
	for id, cents := range allocations {
		leadIDs = append(leadIDs, id)
		total += cents
	}
	s.bus.Publish(ctx, events.CostsDistributed{
		BaseEvent:  events.NewBaseEvent(),
		LeadIDs:    leadIDs,
		TotalCents: total,
		Method:     "by_period",
	})

	return allocations, nil
}

// PreviewByPeriod computes the by-period allocation without persisting it.
// It runs the exact function the execution path runs.
func (s *Service) PreviewByPeriod(ctx context.Context, campaignID uuid.UUID) (map[uuid.UUID]int64, error) {
	leads, err := s.leads.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}
	spends, err := s.spends.ListSpendByCampaign(ctx, campaignID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}
	return domain.DistributeByPeriod(leads, spends, s.now()), nil
}

// CampaignCoverage reports cost coverage and effective CPL over a
// campaign's leads.
func (s *Service) CampaignCoverage(ctx context.Context, campaignID uuid.UUID) (domain.CoverageReport, error) {
	leads, err := s.leads.ListByCampaign(ctx, campaignID)
	if err != nil {
		return domain.CoverageReport{}, apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}
	return domain.ComputeCoverage(leads), nil
}
