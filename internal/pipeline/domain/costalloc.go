package domain

import (
	"math"
	"sort"
	"time"

	"lead_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// CoverageReport summarizes how much of a lead set has a recorded
// acquisition cost, and the effective cost per lead over the costed subset.
type CoverageReport struct {
	TotalLeads        int
	LeadsWithCost     int
	CoveragePct       float64
	CPLEffectiveCents int64
	IsComplete        bool
}

// SetFixedCost records a manual acquisition cost on the lead.
func SetFixedCost(lead Lead, amountCents int64) (Lead, error) {
	if amountCents < 0 {
		return lead, apperr.Validation("acquisition cost cannot be negative").
			WithReason(apperr.ReasonNegativeAmount)
	}
	lead.AcquisitionCostCents = &amountCents
	return lead, nil
}

// DistributeEqual splits a total budget equally over the given leads. Each
// share is the total divided at full precision and rounded to the cent; the
// rounding residual lands on the first lead, so the shares always sum to the
// total exactly. A duplicated lead ID is rejected: the duplicate would
// collapse into one map key and the allocation would no longer sum to the
// total.
func DistributeEqual(leadIDs []uuid.UUID, totalCents int64) (map[uuid.UUID]int64, error) {
	if len(leadIDs) == 0 {
		return nil, apperr.Validation("no leads to distribute cost over").
			WithReason(apperr.ReasonEmptyLeadSet)
	}
	if totalCents < 0 {
		return nil, apperr.Validation("budget cannot be negative").
			WithReason(apperr.ReasonNegativeAmount)
	}
	seen := make(map[uuid.UUID]struct{}, len(leadIDs))
	for _, id := range leadIDs {
		if _, dup := seen[id]; dup {
			return nil, apperr.Validation("lead appears more than once in the distribution set").
				WithDetails(id.String())
		}
		seen[id] = struct{}{}
	}

	n := int64(len(leadIDs))
	share := int64(math.Round(float64(totalCents) / float64(n)))

	allocations := make(map[uuid.UUID]int64, len(leadIDs))
	for _, id := range leadIDs {
		allocations[id] = share
	}
	allocations[leadIDs[0]] += totalCents - share*n

	return allocations, nil
}

// DistributeByPeriod prorates each spend record over the leads created
// within its date range (open-ended records run to now). A lead covered by
// multiple overlapping records accumulates the sum of the per-record shares;
// a lead covered by none gets 0. Per record, the split follows the
// DistributeEqual rounding: the residual cent goes to the earliest-created
// matched lead, which keeps the allocation deterministic for identical
// inputs.
func DistributeByPeriod(leads []Lead, spends []CampaignSpend, now time.Time) map[uuid.UUID]int64 {
	ordered := make([]Lead, len(leads))
	copy(ordered, leads)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	allocations := make(map[uuid.UUID]int64, len(leads))
	for _, lead := range leads {
		allocations[lead.ID] = 0
	}

	for _, spend := range spends {
		matched := make([]uuid.UUID, 0, len(ordered))
		for _, lead := range ordered {
			if spend.Covers(lead.CreatedAt, now) {
				matched = append(matched, lead.ID)
			}
		}
		if len(matched) == 0 {
			continue
		}

		m := int64(len(matched))
		share := int64(math.Round(float64(spend.AmountCents) / float64(m)))
		for _, id := range matched {
			allocations[id] += share
		}
		allocations[matched[0]] += spend.AmountCents - share*m
	}

	return allocations
}

// ComputeCoverage derives cost-coverage metrics over a lead set. An empty
// set yields zero coverage; a set with no costed leads yields a zero CPL.
func ComputeCoverage(leads []Lead) CoverageReport {
	var withCost int
	var totalCents int64
	for _, lead := range leads {
		if lead.AcquisitionCostCents != nil && *lead.AcquisitionCostCents > 0 {
			withCost++
			totalCents += *lead.AcquisitionCostCents
		}
	}

	report := CoverageReport{TotalLeads: len(leads), LeadsWithCost: withCost}
	if len(leads) > 0 {
		report.CoveragePct = float64(withCost) / float64(len(leads)) * 100
	}
	if withCost > 0 {
		report.CPLEffectiveCents = int64(math.Round(float64(totalCents) / float64(withCost)))
	}
	report.IsComplete = len(leads) > 0 && withCost == len(leads)

	return report
}
