package repository

import (
	"context"

	"lead_crm_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

// ListSpendByCampaign returns the spend records for a campaign, oldest
// period first. Spend records are read-only input to the cost allocator.
func (r *Repository) ListSpendByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.CampaignSpend, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, campaign_id, start_date, end_date, amount_cents
		FROM campaign_spend
		WHERE campaign_id = $1
		ORDER BY start_date ASC, id ASC
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spends := make([]domain.CampaignSpend, 0)
	for rows.Next() {
		var spend domain.CampaignSpend
		if err := rows.Scan(&spend.ID, &spend.CampaignID, &spend.StartDate, &spend.EndDate, &spend.AmountCents); err != nil {
			return nil, err
		}
		spends = append(spends, spend)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return spends, nil
}
