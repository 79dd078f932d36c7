package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const followupSelect = `
	SELECT f.id, f.organization_id, f.lead_id, l.name, f.date_time, f.description, f.status,
		f.created_by, f.created_by_name, f.created_at
	FROM lead_followups f
	JOIN leads l ON l.id = f.lead_id`

func scanFollowup(row pgx.Row) (Followup, error) {
	var f Followup
	err := row.Scan(
		&f.ID, &f.OrganizationID, &f.LeadID, &f.LeadName, &f.DateTime, &f.Description, &f.Status,
		&f.CreatedBy, &f.CreatedByName, &f.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Followup{}, ErrNotFound
	}
	return f, err
}

func (r *Repository) CreateFollowup(ctx context.Context, params CreateFollowupParams) (Followup, error) {
	return scanFollowup(r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO lead_followups (organization_id, lead_id, date_time, description, created_by, created_by_name)
			SELECT l.organization_id, l.id, $3, $4, $5, $6
			FROM leads l
			WHERE l.id = $2 AND l.organization_id = $1
			RETURNING *
		)
		SELECT f.id, f.organization_id, f.lead_id, l.name, f.date_time, f.description, f.status,
			f.created_by, f.created_by_name, f.created_at
		FROM inserted f
		JOIN leads l ON l.id = f.lead_id
	`, params.OrganizationID, params.LeadID, params.DateTime, params.Description, params.CreatedBy, params.CreatedByName))
}

func (r *Repository) GetFollowup(ctx context.Context, organizationID, id uuid.UUID) (Followup, error) {
	return scanFollowup(r.pool.QueryRow(ctx, followupSelect+`
		WHERE f.id = $1 AND f.organization_id = $2
	`, id, organizationID))
}

func (r *Repository) ListFollowups(ctx context.Context, params FollowupListParams) ([]Followup, error) {
	where := []string{"f.organization_id = $1"}
	args := []interface{}{params.OrganizationID}

	if params.LeadID != nil {
		args = append(args, *params.LeadID)
		where = append(where, fmt.Sprintf("f.lead_id = $%d", len(args)))
	}
	if params.CreatedBy != nil {
		args = append(args, *params.CreatedBy)
		where = append(where, fmt.Sprintf("f.created_by = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("f.status = $%d", len(args)))
	}

	rows, err := r.pool.Query(ctx, followupSelect+" WHERE "+strings.Join(where, " AND ")+" ORDER BY f.date_time ASC, f.id", args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Followup, error) {
		return scanFollowup(row)
	})
}

func (r *Repository) SetFollowupStatus(ctx context.Context, organizationID, id uuid.UUID, status string) (Followup, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_followups SET status = $3 WHERE id = $1 AND organization_id = $2
	`, id, organizationID, status)
	if err != nil {
		return Followup{}, err
	}
	if tag.RowsAffected() == 0 {
		return Followup{}, ErrNotFound
	}
	return r.GetFollowup(ctx, organizationID, id)
}
