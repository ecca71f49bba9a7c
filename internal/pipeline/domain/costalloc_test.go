package domain

import (
	"testing"
	"time"

	"lead_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestSetFixedCost(t *testing.T) {
	lead := newTestLead()

	updated, err := SetFixedCost(lead, 12550)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.AcquisitionCostCents == nil || *updated.AcquisitionCostCents != 12550 {
		t.Error("expected acquisition cost 125.50 stored")
	}

	_, err = SetFixedCost(lead, -1)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperr.GetReason(err) != apperr.ReasonNegativeAmount {
		t.Fatalf("expected reason %s, got %s", apperr.ReasonNegativeAmount, apperr.GetReason(err))
	}
}

func TestDistributeEqual_ExactSum(t *testing.T) {
	tests := []struct {
		name       string
		leads      int
		totalCents int64
	}{
		{"100.00 over 5", 5, 10000},
		{"100.00 over 3", 3, 10000},
		{"0.01 over 3", 3, 1},
		{"99.99 over 7", 7, 9999},
		{"zero budget", 4, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ids := make([]uuid.UUID, tc.leads)
			for i := range ids {
				ids[i] = uuid.New()
			}

			allocations, err := DistributeEqual(ids, tc.totalCents)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(allocations) != tc.leads {
				t.Fatalf("expected %d allocations, got %d", tc.leads, len(allocations))
			}

			var sum int64
			for _, amount := range allocations {
				sum += amount
			}
			if sum != tc.totalCents {
				t.Errorf("expected allocations to sum to %d, got %d", tc.totalCents, sum)
			}
		})
	}
}

func TestDistributeEqual_ResidualOnFirstLead(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	// 100.00 / 3 = 33.333... -> share 33.33, first lead absorbs +0.01
	allocations, err := DistributeEqual(ids, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allocations[ids[0]] != 3334 {
		t.Errorf("expected first lead share 3334, got %d", allocations[ids[0]])
	}
	if allocations[ids[1]] != 3333 || allocations[ids[2]] != 3333 {
		t.Error("expected remaining shares of 3333")
	}
}

func TestDistributeEqual_Errors(t *testing.T) {
	_, err := DistributeEqual(nil, 10000)
	if apperr.GetReason(err) != apperr.ReasonEmptyLeadSet {
		t.Fatalf("expected reason %s, got %v", apperr.ReasonEmptyLeadSet, err)
	}

	_, err = DistributeEqual([]uuid.UUID{uuid.New()}, -100)
	if apperr.GetReason(err) != apperr.ReasonNegativeAmount {
		t.Fatalf("expected reason %s, got %v", apperr.ReasonNegativeAmount, err)
	}
}

func TestDistributeEqual_RejectsDuplicateLeads(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// A duplicate would collapse into one map key: 3 shares of 3333 over
	// two distinct leads persists 6667 of a 10000 budget.
	allocations, err := DistributeEqual([]uuid.UUID{a, a, b}, 10000)
	if err == nil {
		var sum int64
		for _, amount := range allocations {
			sum += amount
		}
		t.Fatalf("expected duplicate lead to be rejected, got allocations summing to %d", sum)
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func spendRecord(campaignID uuid.UUID, start time.Time, end *time.Time, cents int64) CampaignSpend {
	return CampaignSpend{
		ID:          uuid.New(),
		CampaignID:  campaignID,
		StartDate:   start,
		EndDate:     end,
		AmountCents: cents,
	}
}

func TestDistributeByPeriod_LeadOutsideAllWindows(t *testing.T) {
	campaignID := uuid.New()
	start := testNow.Add(-10 * 24 * time.Hour)

	early := newTestLead()
	early.CreatedAt = start.Add(-24 * time.Hour)
	inWindow := newTestLead()
	inWindow.CreatedAt = start.Add(24 * time.Hour)

	allocations := DistributeByPeriod(
		[]Lead{early, inWindow},
		[]CampaignSpend{spendRecord(campaignID, start, nil, 5000)},
		testNow,
	)

	if allocations[early.ID] != 0 {
		t.Errorf("lead created before the window must receive 0, got %d", allocations[early.ID])
	}
	if allocations[inWindow.ID] != 5000 {
		t.Errorf("sole matching lead must receive the full amount, got %d", allocations[inWindow.ID])
	}
}

func TestDistributeByPeriod_OverlappingRecordsAccumulate(t *testing.T) {
	campaignID := uuid.New()
	start := testNow.Add(-20 * 24 * time.Hour)
	mid := testNow.Add(-10 * 24 * time.Hour)

	lead := newTestLead()
	lead.CreatedAt = testNow.Add(-5 * 24 * time.Hour)

	allocations := DistributeByPeriod(
		[]Lead{lead},
		[]CampaignSpend{
			spendRecord(campaignID, start, nil, 3000),
			spendRecord(campaignID, mid, nil, 2000),
		},
		testNow,
	)

	if allocations[lead.ID] != 5000 {
		t.Errorf("expected accumulated 5000 from both records, got %d", allocations[lead.ID])
	}
}

func TestDistributeByPeriod_ClosedWindowExcludesLaterLeads(t *testing.T) {
	campaignID := uuid.New()
	start := testNow.Add(-30 * 24 * time.Hour)
	end := testNow.Add(-20 * 24 * time.Hour)

	inside := newTestLead()
	inside.CreatedAt = testNow.Add(-25 * 24 * time.Hour)
	after := newTestLead()
	after.CreatedAt = testNow.Add(-10 * 24 * time.Hour)

	allocations := DistributeByPeriod(
		[]Lead{inside, after},
		[]CampaignSpend{spendRecord(campaignID, start, &end, 4000)},
		testNow,
	)

	if allocations[inside.ID] != 4000 {
		t.Errorf("expected 4000 for the lead inside the window, got %d", allocations[inside.ID])
	}
	if allocations[after.ID] != 0 {
		t.Errorf("expected 0 for the lead after the window, got %d", allocations[after.ID])
	}
}

func TestDistributeByPeriod_PerRecordSumIsExact(t *testing.T) {
	campaignID := uuid.New()
	start := testNow.Add(-10 * 24 * time.Hour)

	leads := make([]Lead, 3)
	for i := range leads {
		leads[i] = newTestLead()
		leads[i].CreatedAt = start.Add(time.Duration(i+1) * 24 * time.Hour)
	}

	// 100.00 over 3 matched leads: no cent may be created or lost.
	allocations := DistributeByPeriod(leads, []CampaignSpend{spendRecord(campaignID, start, nil, 10000)}, testNow)

	var sum int64
	for _, amount := range allocations {
		sum += amount
	}
	if sum != 10000 {
		t.Errorf("expected shares to sum to 10000, got %d", sum)
	}
	// Residual cent goes to the earliest-created matched lead.
	if allocations[leads[0].ID] != 3334 {
		t.Errorf("expected earliest lead to absorb the residual, got %d", allocations[leads[0].ID])
	}
}

func TestDistributeByPeriod_Deterministic(t *testing.T) {
	campaignID := uuid.New()
	start := testNow.Add(-10 * 24 * time.Hour)
	leads := make([]Lead, 4)
	for i := range leads {
		leads[i] = newTestLead()
		leads[i].CreatedAt = start.Add(time.Duration(i) * time.Hour)
	}
	spends := []CampaignSpend{
		spendRecord(campaignID, start, nil, 9999),
		spendRecord(campaignID, start.Add(2*time.Hour), nil, 101),
	}

	first := DistributeByPeriod(leads, spends, testNow)
	second := DistributeByPeriod(leads, spends, testNow)

	for id, amount := range first {
		if second[id] != amount {
			t.Errorf("allocation for %s differs between runs: %d vs %d", id, amount, second[id])
		}
	}
}

func TestComputeCoverage(t *testing.T) {
	leads := make([]Lead, 10)
	for i := range leads {
		leads[i] = newTestLead()
	}
	// 3 of 10 leads costed, totaling 150.00.
	for i, cents := range []int64{5000, 6000, 4000} {
		c := cents
		leads[i].AcquisitionCostCents = &c
	}

	report := ComputeCoverage(leads)
	if report.LeadsWithCost != 3 {
		t.Errorf("expected 3 costed leads, got %d", report.LeadsWithCost)
	}
	if report.CoveragePct != 30 {
		t.Errorf("expected 30%% coverage, got %.2f", report.CoveragePct)
	}
	if report.CPLEffectiveCents != 5000 {
		t.Errorf("expected CPL 50.00, got %d", report.CPLEffectiveCents)
	}
	if report.IsComplete {
		t.Error("expected incomplete coverage")
	}
}

func TestComputeCoverage_EdgeCases(t *testing.T) {
	empty := ComputeCoverage(nil)
	if empty.CoveragePct != 0 || empty.CPLEffectiveCents != 0 || empty.IsComplete {
		t.Error("expected zero report for empty lead set")
	}

	zero := int64(0)
	uncosted := newTestLead()
	uncosted.AcquisitionCostCents = &zero
	report := ComputeCoverage([]Lead{uncosted})
	if report.LeadsWithCost != 0 {
		t.Error("a zero cost does not count as covered")
	}

	cents := int64(2500)
	costed := newTestLead()
	costed.AcquisitionCostCents = &cents
	full := ComputeCoverage([]Lead{costed})
	if !full.IsComplete || full.CoveragePct != 100 || full.CPLEffectiveCents != 2500 {
		t.Errorf("expected complete coverage report, got %+v", full)
	}
}
