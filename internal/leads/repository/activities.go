package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const activityColumns = `id, organization_id, lead_id, type, content, created_by, created_by_name, created_at`

func scanActivity(row pgx.Row) (Activity, error) {
	var a Activity
	err := row.Scan(&a.ID, &a.OrganizationID, &a.LeadID, &a.Type, &a.Content, &a.CreatedBy, &a.CreatedByName, &a.CreatedAt)
	return a, err
}

func (r *Repository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	// The lead must belong to the same organization; a mismatch inserts nothing.
	activity, err := scanActivity(r.pool.QueryRow(ctx, `
		INSERT INTO lead_activities (organization_id, lead_id, type, content, created_by, created_by_name)
		SELECT l.organization_id, l.id, $3, $4, $5, $6
		FROM leads l
		WHERE l.id = $2 AND l.organization_id = $1
		RETURNING `+activityColumns,
		params.OrganizationID, params.LeadID, params.Type, params.Content, params.CreatedBy, params.CreatedByName,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	return activity, err
}

func (r *Repository) ListActivities(ctx context.Context, organizationID, leadID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+activityColumns+`
		FROM lead_activities
		WHERE organization_id = $1 AND lead_id = $2
		ORDER BY created_at DESC, id
	`, organizationID, leadID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Activity, error) {
		return scanActivity(row)
	})
}
