package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityDescriptionMaxLen is the maximum character length for activity
// descriptions. Callers should use TruncateDescription before appending.
const ActivityDescriptionMaxLen = 400

// TruncateDescription trims text to maxLen, appending "..." on overflow.
// Returns the empty string for blank input.
func TruncateDescription(text string, maxLen int) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen] + "..."
	}
	return trimmed
}

// ActivityEntry is one row of a lead's audit trail.
type ActivityEntry struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	EventType   string
	Description string
	CreatedAt   time.Time
}

// AppendActivity records an audit entry for a lead. This is invoked from
// event handlers after the state change has been committed; a failure here
// is logged by the subscriber and never affects the transition itself.
func (r *Repository) AppendActivity(ctx context.Context, leadID uuid.UUID, eventType, description string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activity_log (lead_id, event_type, description)
		VALUES ($1, $2, $3)
	`, leadID, eventType, TruncateDescription(description, ActivityDescriptionMaxLen))
	return err
}

// ListActivity returns a lead's audit trail, newest first.
func (r *Repository) ListActivity(ctx context.Context, leadID uuid.UUID) ([]ActivityEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, event_type, description, created_at
		FROM lead_activity_log
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ActivityEntry, 0)
	for rows.Next() {
		var entry ActivityEntry
		if err := rows.Scan(&entry.ID, &entry.LeadID, &entry.EventType, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return entries, nil
}
