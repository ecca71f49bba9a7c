package domain

import (
	"testing"
	"time"
)

func TestStaleDaysRemaining_UndefinedWithoutRichiamare(t *testing.T) {
	engine := newTestEngine()
	positivo := OutcomePositivo
	last := testNow.Add(-72 * time.Hour)

	tests := []struct {
		name   string
		mutate func(*Lead)
	}{
		{"no outcome", func(l *Lead) { l.LastAttemptAt = &last }},
		{"positive outcome", func(l *Lead) {
			l.CallOutcome = &positivo
			l.LastAttemptAt = &last
		}},
		{"richiamare without attempt timestamp", func(l *Lead) {
			o := OutcomeRichiamare
			l.CallOutcome = &o
		}},
		{"lost lead", func(l *Lead) {
			o := OutcomeRichiamare
			l.Status = StatusPerso
			l.CallOutcome = &o
			l.LastAttemptAt = &last
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lead := newTestLead()
			tc.mutate(&lead)

			if _, ok := engine.StaleDaysRemaining(lead, testNow); ok {
				t.Error("expected staleness to be undefined")
			}
		})
	}
}

func TestStaleDaysRemaining_Window(t *testing.T) {
	engine := newTestEngine()
	richiamare := OutcomeRichiamare

	tests := []struct {
		name          string
		daysAgo       int
		wantRemaining int
		wantStale     bool
	}{
		{"fresh attempt", 0, 15, false},
		{"mid window", 5, 10, false},
		{"last day", 14, 1, false},
		{"window exhausted", 15, 0, true},
		{"long overdue", 30, -15, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			last := testNow.Add(-time.Duration(tc.daysAgo) * 24 * time.Hour)
			lead := newTestLead()
			lead.CallOutcome = &richiamare
			lead.LastAttemptAt = &last

			remaining, ok := engine.StaleDaysRemaining(lead, testNow)
			if !ok {
				t.Fatal("expected staleness to be defined")
			}
			if remaining != tc.wantRemaining {
				t.Errorf("expected %d days remaining, got %d", tc.wantRemaining, remaining)
			}
			if engine.IsStale(lead, testNow) != tc.wantStale {
				t.Errorf("expected stale = %v", tc.wantStale)
			}
		})
	}
}

func TestStaleDaysRemaining_PartialDayIsFloored(t *testing.T) {
	engine := newTestEngine()
	richiamare := OutcomeRichiamare
	last := testNow.Add(-36 * time.Hour) // 1.5 days ago

	lead := newTestLead()
	lead.CallOutcome = &richiamare
	lead.LastAttemptAt = &last

	remaining, ok := engine.StaleDaysRemaining(lead, testNow)
	if !ok {
		t.Fatal("expected staleness to be defined")
	}
	if remaining != 14 {
		t.Errorf("expected 14 days remaining (floor of elapsed days), got %d", remaining)
	}
}
