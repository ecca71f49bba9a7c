// Package domain provides the core business rules for the lead pipeline
// bounded context: the status state machine, call-attempt tracking, loss
// recovery, agent assignment and acquisition-cost allocation. Everything in
// this package is a pure function over in-memory values; persistence and
// event publication belong to the service layer.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lead's position in the sales pipeline.
type Status string

const (
	StatusNuovo        Status = "NUOVO"
	StatusContattato   Status = "CONTATTATO"
	StatusInTrattativa Status = "IN_TRATTATIVA"
	StatusIscritto     Status = "ISCRITTO"
	StatusPerso        Status = "PERSO"
)

// CallOutcome is the result of a logged call attempt.
type CallOutcome string

const (
	OutcomePositivo   CallOutcome = "POSITIVO"
	OutcomeNegativo   CallOutcome = "NEGATIVO"
	OutcomeRichiamare CallOutcome = "RICHIAMARE"
)

// Loss reasons recorded when a lead transitions to PERSO.
const (
	LostReasonNegative    = "NEGATIVO"
	LostReasonMaxAttempts = "MAX_ATTEMPTS"
)

// Lead is the pipeline's view of a prospective student. Once created, a lead
// is mutated exclusively through the engine operations in this package.
type Lead struct {
	ID     uuid.UUID
	Status Status

	Contacted   bool
	ContactedAt *time.Time

	IsTarget   bool
	TargetNote *string

	Enrolled   bool
	EnrolledAt *time.Time

	CallAttempts   int
	FirstAttemptAt *time.Time
	LastAttemptAt  *time.Time
	CallOutcome    *CallOutcome
	OutcomeNotes   *string

	LostReason *string
	LostAt     *time.Time

	AcquisitionCostCents *int64

	AssignedAgentID *uuid.UUID
	CampaignID      *uuid.UUID
	CourseID        *uuid.UUID

	CreatedAt time.Time
}

// IsLost reports whether the lead is in the terminal PERSO state.
func (l Lead) IsLost() bool {
	return l.Status == StatusPerso
}

// HasPositiveOutcome reports whether the last logged call was POSITIVO.
func (l Lead) HasPositiveOutcome() bool {
	return l.CallOutcome != nil && *l.CallOutcome == OutcomePositivo
}

// CampaignSpend is an aggregate marketing spend record for a campaign over a
// date range. EndDate nil means the spend period is still open.
type CampaignSpend struct {
	ID         uuid.UUID
	CampaignID uuid.UUID
	StartDate  time.Time
	EndDate    *time.Time
	AmountCents int64
}

// Covers reports whether the spend period covers the given creation time.
// Open-ended records are capped at now.
func (s CampaignSpend) Covers(createdAt, now time.Time) bool {
	if createdAt.Before(s.StartDate) {
		return false
	}
	end := now
	if s.EndDate != nil {
		end = *s.EndDate
	}
	return !createdAt.After(end)
}
