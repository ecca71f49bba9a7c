package domain

import "time"

// StaleDaysRemaining returns how many days remain before a RICHIAMARE lead
// crosses the auto-loss window, counted from its last call attempt. Zero or
// negative means the lead is eligible for loss. The second return is false
// when the query is undefined: the lead's last outcome is not RICHIAMARE or
// no attempt has been logged.
//
// This is a pure query. Nothing in the engine transitions a lead on elapsed
// time alone; a stale lead moves to PERSO only through a recorded outcome.
func (e *Engine) StaleDaysRemaining(lead Lead, now time.Time) (int, bool) {
	if lead.IsLost() {
		return 0, false
	}
	if lead.CallOutcome == nil || *lead.CallOutcome != OutcomeRichiamare {
		return 0, false
	}
	if lead.LastAttemptAt == nil {
		return 0, false
	}

	elapsedDays := int(now.Sub(*lead.LastAttemptAt).Hours() / 24)
	return e.rules.AutoLossDays - elapsedDays, true
}

// IsStale reports whether the lead has exhausted its RICHIAMARE window.
func (e *Engine) IsStale(lead Lead, now time.Time) bool {
	remaining, ok := e.StaleDaysRemaining(lead, now)
	return ok && remaining <= 0
}
