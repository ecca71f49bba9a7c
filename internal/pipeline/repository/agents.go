package repository

import (
	"context"

	"github.com/google/uuid"
)

// Agent is a sales user leads can be assigned to.
type Agent struct {
	ID       uuid.UUID
	Name     string
	Email    string
	IsActive bool
}

// ListAgents returns all active agents in display order. The order matters:
// round-robin distribution walks agents in exactly this sequence.
func (r *Repository) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, is_active
		FROM agents
		WHERE is_active = true
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]Agent, 0)
	for rows.Next() {
		var agent Agent
		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Email, &agent.IsActive); err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return agents, nil
}

// AgentExists reports whether an active agent with the given ID exists.
func (r *Repository) AgentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM agents WHERE id = $1 AND is_active = true)`, id,
	).Scan(&exists)
	return exists, err
}
