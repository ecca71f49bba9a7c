package domain

import (
	"time"

	"lead_crm_backend/platform/apperr"
)

// Engine enforces the lead status state machine. All methods take a lead by
// value and return the updated copy; on error the input lead is returned
// unchanged, so a failed operation never partially mutates a record.
//
// Forward path: NUOVO -> CONTATTATO -> IN_TRATTATIVA -> ISCRITTO.
// Loss path: any non-terminal status -> PERSO.
// PERSO is terminal; only Recover reverses it.
type Engine struct {
	rules Rules
}

// NewEngine creates a status engine with the given rule set.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's active rule set.
func (e *Engine) Rules() Rules {
	return e.rules
}

// RecordCallOutcome logs a call attempt against the lead. Calls cannot be
// logged against lost or already-enrolled leads; lost leads must go through
// the recovery workflow first.
//
// Every successful call increments the attempt counter and stamps the
// first/last attempt times. The outcome then drives the status:
//   - NEGATIVO closes the lead as PERSO with reason NEGATIVO.
//   - RICHIAMARE at or past the attempt ceiling closes it as PERSO with
//     reason MAX_ATTEMPTS; below the ceiling the status is untouched.
//   - POSITIVO marks the lead contacted and advances it to at least
//     CONTATTATO.
func (e *Engine) RecordCallOutcome(lead Lead, outcome CallOutcome, notes *string, now time.Time) (Lead, error) {
	if lead.IsLost() {
		return lead, apperr.InvalidTransition("cannot log a call against a lost lead").
			WithReason(apperr.ReasonLeadLost)
	}
	if lead.Enrolled {
		return lead, apperr.InvalidTransition("cannot log a call against an enrolled lead").
			WithReason(apperr.ReasonLeadEnrolled)
	}

	switch outcome {
	case OutcomePositivo, OutcomeNegativo, OutcomeRichiamare:
	default:
		return lead, apperr.Validation("unknown call outcome")
	}

	updated := lead
	updated.CallAttempts++
	updated.LastAttemptAt = &now
	if updated.FirstAttemptAt == nil {
		updated.FirstAttemptAt = &now
	}
	if updated.ContactedAt == nil {
		updated.ContactedAt = &now
	}
	updated.Contacted = true
	o := outcome
	updated.CallOutcome = &o
	updated.OutcomeNotes = notes

	switch outcome {
	case OutcomeNegativo:
		updated = markLost(updated, LostReasonNegative, now)
	case OutcomeRichiamare:
		if updated.CallAttempts >= e.rules.MaxCallAttempts {
			updated = markLost(updated, LostReasonMaxAttempts, now)
		}
	case OutcomePositivo:
		if updated.Status == StatusNuovo {
			updated.Status = StatusContattato
		}
	}

	return updated, nil
}

// SetTarget flags the lead as an in-target prospect (or clears the flag).
// Marking a lead as target requires at least one logged call attempt: the
// guard forces callers onto the call-logging path instead of silently
// flipping the flag. A target lead that has been contacted advances into
// IN_TRATTATIVA.
func (e *Engine) SetTarget(lead Lead, value bool, note *string, now time.Time) (Lead, error) {
	if lead.IsLost() {
		return lead, apperr.PreconditionFailed("cannot change target flag on a lost lead", apperr.ReasonLeadLost)
	}
	if value && lead.CallAttempts == 0 {
		return lead, apperr.PreconditionFailed("target flag requires at least one call attempt", apperr.ReasonNoAttempt)
	}

	updated := lead
	updated.IsTarget = value
	updated.TargetNote = note
	if value && updated.Status == StatusContattato {
		updated.Status = StatusInTrattativa
	}

	return updated, nil
}

// SetEnrolled marks the lead as enrolled. The lead must have been contacted
// with a POSITIVO outcome and must not be lost or already enrolled.
func (e *Engine) SetEnrolled(lead Lead, now time.Time) (Lead, error) {
	if lead.IsLost() {
		return lead, apperr.Validation("cannot enroll a lost lead").
			WithReason(apperr.ReasonLeadLost)
	}
	if lead.Enrolled {
		return lead, apperr.InvalidTransition("lead is already enrolled").
			WithReason(apperr.ReasonLeadEnrolled)
	}
	if !lead.Contacted {
		return lead, apperr.Validation("cannot enroll a lead that was never contacted").
			WithReason(apperr.ReasonMissingContact)
	}
	if !lead.HasPositiveOutcome() {
		return lead, apperr.Validation("enrollment requires a POSITIVO call outcome").
			WithReason(apperr.ReasonMissingContact)
	}

	updated := lead
	updated.Status = StatusIscritto
	updated.Enrolled = true
	updated.EnrolledAt = &now

	return updated, nil
}

func markLost(lead Lead, reason string, now time.Time) Lead {
	lead.Status = StatusPerso
	lead.LostReason = &reason
	lead.LostAt = &now
	return lead
}
