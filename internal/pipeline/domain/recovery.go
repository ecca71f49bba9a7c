package domain

import (
	"time"

	"lead_crm_backend/platform/apperr"
)

// Recover pulls a PERSO lead back into the active pipeline. The lead
// restarts at CONTATTATO with a clean attempt counter, so the full
// RICHIAMARE window applies again. Recovery is not a permanent unlock: a
// recovered lead re-enters PERSO through ordinary call outcomes.
func (e *Engine) Recover(lead Lead, now time.Time) (Lead, error) {
	if !lead.IsLost() {
		return lead, apperr.InvalidTransition("only lost leads can be recovered")
	}

	updated := lead
	updated.Status = StatusContattato
	updated.Contacted = true
	if updated.ContactedAt == nil {
		updated.ContactedAt = &now
	}
	updated.CallOutcome = nil
	updated.OutcomeNotes = nil
	updated.CallAttempts = 0
	updated.FirstAttemptAt = nil
	updated.LastAttemptAt = nil
	updated.LostReason = nil
	updated.LostAt = nil

	return updated, nil
}
