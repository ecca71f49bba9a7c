// Package repository provides Postgres persistence for the pipeline bounded
// context. The engine itself is pure; this layer loads lead state, applies
// the patches the service computed, and keeps bulk updates atomic.
package repository

import (
	"context"
	"errors"
	"time"

	"lead_crm_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, status,
	contacted, contacted_at,
	is_target, target_note,
	enrolled, enrolled_at,
	call_attempts, first_attempt_at, last_attempt_at,
	call_outcome, outcome_notes,
	lost_reason, lost_at,
	acquisition_cost_cents,
	assigned_agent_id, campaign_id, course_id,
	created_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var outcome *string

	err := row.Scan(
		&lead.ID, &lead.Status,
		&lead.Contacted, &lead.ContactedAt,
		&lead.IsTarget, &lead.TargetNote,
		&lead.Enrolled, &lead.EnrolledAt,
		&lead.CallAttempts, &lead.FirstAttemptAt, &lead.LastAttemptAt,
		&outcome, &lead.OutcomeNotes,
		&lead.LostReason, &lead.LostAt,
		&lead.AcquisitionCostCents,
		&lead.AssignedAgentID, &lead.CampaignID, &lead.CourseID,
		&lead.CreatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	if outcome != nil {
		o := domain.CallOutcome(*outcome)
		lead.CallOutcome = &o
	}

	return lead, nil
}

// GetByID loads a single lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// ListByIDs loads the given leads, preserving the requested order. IDs with
// no matching record are reported through the second return value so callers
// can reject a partial batch up front.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, []uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]domain.Lead, len(ids))
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, nil, err
		}
		byID[lead.ID] = lead
	}
	if rows.Err() != nil {
		return nil, nil, rows.Err()
	}

	leads := make([]domain.Lead, 0, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		if lead, ok := byID[id]; ok {
			leads = append(leads, lead)
		} else {
			missing = append(missing, id)
		}
	}

	return leads, missing, nil
}

// ListByCampaign loads every lead attributed to a campaign, oldest first.
func (r *Repository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE campaign_id = $1 ORDER BY created_at ASC, id ASC`,
		campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListStaleCandidates loads leads whose last outcome was RICHIAMARE and
// whose last attempt predates the cutoff. Staleness itself is derived by the
// engine; this query only narrows the candidate set.
func (r *Repository) ListStaleCandidates(ctx context.Context, cutoff time.Time) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status <> 'PERSO'
		  AND call_outcome = 'RICHIAMARE'
		  AND last_attempt_at <= $1
		ORDER BY last_attempt_at ASC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

// CreateLeadParams holds the intake fields for a new lead. Pipeline state
// starts at its zero values (NUOVO, no attempts).
type CreateLeadParams struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           *string
	Source          *string
	AssignedAgentID *uuid.UUID
	CampaignID      *uuid.UUID
	CourseID        *uuid.UUID
}

// Create inserts a new NUOVO lead and returns its pipeline view.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (first_name, last_name, phone, email, source, assigned_agent_id, campaign_id, course_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leadColumns,
		params.FirstName, params.LastName, params.Phone, params.Email,
		params.Source, params.AssignedAgentID, params.CampaignID, params.CourseID)

	return scanLead(row)
}

// UpdateState persists the engine-owned fields of a lead. The repository
// writes the whole pipeline state in one statement; the engine guarantees
// the value it produced is internally consistent.
func (r *Repository) UpdateState(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	var outcome *string
	if lead.CallOutcome != nil {
		s := string(*lead.CallOutcome)
		outcome = &s
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			status = $2,
			contacted = $3, contacted_at = $4,
			is_target = $5, target_note = $6,
			enrolled = $7, enrolled_at = $8,
			call_attempts = $9, first_attempt_at = $10, last_attempt_at = $11,
			call_outcome = $12, outcome_notes = $13,
			lost_reason = $14, lost_at = $15,
			acquisition_cost_cents = $16,
			assigned_agent_id = $17,
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		lead.ID,
		lead.Status,
		lead.Contacted, lead.ContactedAt,
		lead.IsTarget, lead.TargetNote,
		lead.Enrolled, lead.EnrolledAt,
		lead.CallAttempts, lead.FirstAttemptAt, lead.LastAttemptAt,
		outcome, lead.OutcomeNotes,
		lead.LostReason, lead.LostAt,
		lead.AcquisitionCostCents,
		lead.AssignedAgentID,
	)

	updated, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return updated, err
}

// ApplyAssignments persists a bulk assignment batch in a single transaction:
// either every lead in the batch gets its new owner or none does, so the
// stored result always matches the previewed distribution.
func (r *Repository) ApplyAssignments(ctx context.Context, results []domain.AssignmentResult) error {
	if len(results) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, result := range results {
			batch.Queue(
				`UPDATE leads SET assigned_agent_id = $2, updated_at = now() WHERE id = $1`,
				result.LeadID, result.AgentID,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for range results {
			tag, err := br.Exec()
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}

// ApplyCostAllocations persists a cost distribution batch in a single
// transaction, all-or-nothing.
func (r *Repository) ApplyCostAllocations(ctx context.Context, allocations map[uuid.UUID]int64) error {
	if len(allocations) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		count := 0
		for leadID, cents := range allocations {
			batch.Queue(
				`UPDATE leads SET acquisition_cost_cents = $2, updated_at = now() WHERE id = $1`,
				leadID, cents,
			)
			count++
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := 0; i < count; i++ {
			tag, err := br.Exec()
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}
