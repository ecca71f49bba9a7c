package domain

import (
	"testing"
	"time"

	"lead_crm_backend/platform/apperr"
)

func TestRecover_RejectsActiveLead(t *testing.T) {
	engine := newTestEngine()

	for _, status := range []Status{StatusNuovo, StatusContattato, StatusInTrattativa, StatusIscritto} {
		lead := newTestLead()
		lead.Status = status

		_, err := engine.Recover(lead, testNow)
		if !apperr.Is(err, apperr.KindInvalidTransition) {
			t.Errorf("status %s: expected invalid transition error, got %v", status, err)
		}
	}
}

func TestRecover_ResetsLostLead(t *testing.T) {
	engine := newTestEngine()
	richiamare := OutcomeRichiamare
	reason := LostReasonMaxAttempts
	lost := testNow.Add(-24 * time.Hour)
	first := testNow.Add(-240 * time.Hour)

	lead := newTestLead()
	lead.Status = StatusPerso
	lead.Contacted = true
	lead.CallAttempts = 8
	lead.CallOutcome = &richiamare
	lead.FirstAttemptAt = &first
	lead.LastAttemptAt = &lost
	lead.LostReason = &reason
	lead.LostAt = &lost

	recovered, err := engine.Recover(lead, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recovered.Status != StatusContattato {
		t.Errorf("expected CONTATTATO, got %s", recovered.Status)
	}
	if recovered.CallAttempts != 0 {
		t.Errorf("expected attempts reset to 0, got %d", recovered.CallAttempts)
	}
	if recovered.CallOutcome != nil {
		t.Error("expected call outcome cleared")
	}
	if recovered.LostReason != nil || recovered.LostAt != nil {
		t.Error("expected loss markers cleared")
	}
	if recovered.FirstAttemptAt != nil || recovered.LastAttemptAt != nil {
		t.Error("expected attempt timestamps cleared with the counter")
	}
}

func TestRecover_IsNotAPermanentUnlock(t *testing.T) {
	engine := newTestEngine()
	reason := LostReasonNegative
	lost := testNow.Add(-time.Hour)

	lead := newTestLead()
	lead.Status = StatusPerso
	lead.Contacted = true
	lead.LostReason = &reason
	lead.LostAt = &lost

	recovered, err := engine.Recover(lead, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relost, err := engine.RecordCallOutcome(recovered, OutcomeNegativo, nil, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relost.Status != StatusPerso {
		t.Errorf("expected recovered lead to be losable again, got %s", relost.Status)
	}
	if relost.LostReason == nil || *relost.LostReason != LostReasonNegative {
		t.Error("expected fresh loss reason NEGATIVO")
	}
}
