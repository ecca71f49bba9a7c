package domain

import (
	"testing"
	"time"

	"lead_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestLead() Lead {
	return Lead{
		ID:        uuid.New(),
		Status:    StatusNuovo,
		CreatedAt: testNow.Add(-48 * time.Hour),
	}
}

func newTestEngine() *Engine {
	return NewEngine(DefaultRules())
}

func TestRecordCallOutcome_RejectsLostLead(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()
	lead.Status = StatusPerso
	lost := testNow.Add(-time.Hour)
	lead.LostAt = &lost

	_, err := engine.RecordCallOutcome(lead, OutcomePositivo, nil, testNow)
	if !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
	if apperr.GetReason(err) != apperr.ReasonLeadLost {
		t.Fatalf("expected reason %s, got %s", apperr.ReasonLeadLost, apperr.GetReason(err))
	}
}

func TestRecordCallOutcome_RejectsEnrolledLead(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()
	lead.Enrolled = true
	lead.Status = StatusIscritto

	_, err := engine.RecordCallOutcome(lead, OutcomeRichiamare, nil, testNow)
	if !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestRecordCallOutcome_RejectsUnknownOutcome(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()

	updated, err := engine.RecordCallOutcome(lead, CallOutcome("BOH"), nil, testNow)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if updated.CallAttempts != 0 {
		t.Fatalf("failed operation must not mutate the lead, attempts = %d", updated.CallAttempts)
	}
}

func TestRecordCallOutcome_PositivoAdvancesToContattato(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()

	updated, err := engine.RecordCallOutcome(lead, OutcomePositivo, nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusContattato {
		t.Errorf("expected status CONTATTATO, got %s", updated.Status)
	}
	if !updated.Contacted {
		t.Error("expected contacted = true")
	}
	if updated.CallAttempts != 1 {
		t.Errorf("expected 1 attempt, got %d", updated.CallAttempts)
	}
	if updated.CallOutcome == nil || *updated.CallOutcome != OutcomePositivo {
		t.Error("expected call outcome POSITIVO")
	}
	if updated.FirstAttemptAt == nil || !updated.FirstAttemptAt.Equal(testNow) {
		t.Error("expected first attempt timestamp set")
	}
	if updated.ContactedAt == nil || !updated.ContactedAt.Equal(testNow) {
		t.Error("expected contacted timestamp set")
	}
}

func TestRecordCallOutcome_PositivoDoesNotRegressStatus(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()
	lead.Status = StatusInTrattativa
	lead.Contacted = true
	lead.CallAttempts = 2

	updated, err := engine.RecordCallOutcome(lead, OutcomePositivo, nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusInTrattativa {
		t.Errorf("expected status to stay IN_TRATTATIVA, got %s", updated.Status)
	}
}

func TestRecordCallOutcome_NegativoAlwaysLoses(t *testing.T) {
	engine := newTestEngine()

	for _, attempts := range []int{0, 1, 5, 20} {
		lead := newTestLead()
		lead.CallAttempts = attempts

		updated, err := engine.RecordCallOutcome(lead, OutcomeNegativo, nil, testNow)
		if err != nil {
			t.Fatalf("attempts=%d: unexpected error: %v", attempts, err)
		}
		if updated.Status != StatusPerso {
			t.Errorf("attempts=%d: expected PERSO, got %s", attempts, updated.Status)
		}
		if updated.LostReason == nil || *updated.LostReason != LostReasonNegative {
			t.Errorf("attempts=%d: expected lost reason NEGATIVO", attempts)
		}
		if updated.LostAt == nil {
			t.Errorf("attempts=%d: expected lostAt set", attempts)
		}
	}
}

func TestRecordCallOutcome_EightRichiamareForcesLoss(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()

	var err error
	for i := 0; i < 7; i++ {
		lead, err = engine.RecordCallOutcome(lead, OutcomeRichiamare, nil, testNow.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i+1, err)
		}
		if lead.Status == StatusPerso {
			t.Fatalf("attempt %d: lead lost too early", i+1)
		}
	}
	if lead.CallAttempts != 7 {
		t.Fatalf("expected 7 attempts, got %d", lead.CallAttempts)
	}

	lead, err = engine.RecordCallOutcome(lead, OutcomeRichiamare, nil, testNow.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error on final attempt: %v", err)
	}
	if lead.Status != StatusPerso {
		t.Errorf("expected PERSO after %d attempts, got %s", lead.CallAttempts, lead.Status)
	}
	if lead.CallAttempts != 8 {
		t.Errorf("expected 8 attempts, got %d", lead.CallAttempts)
	}
	if lead.LostReason == nil || *lead.LostReason != LostReasonMaxAttempts {
		t.Error("expected lost reason MAX_ATTEMPTS")
	}
}

func TestRecordCallOutcome_CustomAttemptCeiling(t *testing.T) {
	engine := NewEngine(Rules{MaxCallAttempts: 3, AutoLossDays: 15})
	lead := newTestLead()

	var err error
	for i := 0; i < 2; i++ {
		lead, err = engine.RecordCallOutcome(lead, OutcomeRichiamare, nil, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if lead.Status == StatusPerso {
		t.Fatal("lead lost before the configured ceiling")
	}

	lead, _ = engine.RecordCallOutcome(lead, OutcomeRichiamare, nil, testNow)
	if lead.Status != StatusPerso {
		t.Errorf("expected PERSO at 3 attempts, got %s", lead.Status)
	}
}

func TestSetTarget_RequiresAttempt(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()

	_, err := engine.SetTarget(lead, true, nil, testNow)
	if !apperr.Is(err, apperr.KindPreconditionFailed) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if apperr.GetReason(err) != apperr.ReasonNoAttempt {
		t.Fatalf("expected reason %s, got %s", apperr.ReasonNoAttempt, apperr.GetReason(err))
	}
}

func TestSetTarget_RejectsLostLead(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()
	lead.Status = StatusPerso
	lead.CallAttempts = 3

	_, err := engine.SetTarget(lead, true, nil, testNow)
	if !apperr.Is(err, apperr.KindPreconditionFailed) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if apperr.GetReason(err) != apperr.ReasonLeadLost {
		t.Fatalf("expected reason %s, got %s", apperr.ReasonLeadLost, apperr.GetReason(err))
	}
}

func TestSetTarget_AdvancesContactedLead(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()
	lead.Status = StatusContattato
	lead.Contacted = true
	lead.CallAttempts = 1
	note := "interessata al corso serale"

	updated, err := engine.SetTarget(lead, true, &note, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsTarget {
		t.Error("expected isTarget = true")
	}
	if updated.Status != StatusInTrattativa {
		t.Errorf("expected IN_TRATTATIVA, got %s", updated.Status)
	}
	if updated.TargetNote == nil || *updated.TargetNote != note {
		t.Error("expected target note stored")
	}
}

func TestSetTarget_ClearWithoutAttempts(t *testing.T) {
	engine := newTestEngine()
	lead := newTestLead()
	lead.IsTarget = true

	updated, err := engine.SetTarget(lead, false, nil, testNow)
	if err != nil {
		t.Fatalf("clearing the flag must not require attempts: %v", err)
	}
	if updated.IsTarget {
		t.Error("expected isTarget = false")
	}
}

func TestSetEnrolled_Guards(t *testing.T) {
	engine := newTestEngine()
	positivo := OutcomePositivo
	richiamare := OutcomeRichiamare

	tests := []struct {
		name   string
		mutate func(*Lead)
	}{
		{"never contacted", func(l *Lead) {}},
		{"contacted without outcome", func(l *Lead) {
			l.Contacted = true
		}},
		{"outcome not positive", func(l *Lead) {
			l.Contacted = true
			l.CallOutcome = &richiamare
		}},
		{"lost lead", func(l *Lead) {
			l.Contacted = true
			l.CallOutcome = &positivo
			l.Status = StatusPerso
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lead := newTestLead()
			tc.mutate(&lead)

			_, err := engine.SetEnrolled(lead, testNow)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			kind := apperr.GetKind(err)
			if kind != apperr.KindValidation {
				t.Fatalf("expected validation error, got kind %d (%v)", kind, err)
			}
		})
	}
}

func TestSetEnrolled_Succeeds(t *testing.T) {
	engine := newTestEngine()
	positivo := OutcomePositivo
	lead := newTestLead()
	lead.Status = StatusContattato
	lead.Contacted = true
	lead.CallOutcome = &positivo
	lead.CallAttempts = 2

	updated, err := engine.SetEnrolled(lead, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusIscritto {
		t.Errorf("expected ISCRITTO, got %s", updated.Status)
	}
	if !updated.Enrolled {
		t.Error("expected enrolled = true")
	}
	if updated.EnrolledAt == nil || !updated.EnrolledAt.Equal(testNow) {
		t.Error("expected enrolledAt set")
	}
}

func TestSetEnrolled_RejectsDoubleEnrollment(t *testing.T) {
	engine := newTestEngine()
	positivo := OutcomePositivo
	lead := newTestLead()
	lead.Status = StatusIscritto
	lead.Contacted = true
	lead.Enrolled = true
	lead.CallOutcome = &positivo

	_, err := engine.SetEnrolled(lead, testNow)
	if !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}
