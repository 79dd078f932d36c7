package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, organization_id, name, email, phone, company, location, source, status,
	assigned_rep_id, assigned_rep_name, expected_value, notes, tags, score, score_reasons,
	created_by, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company, &lead.Location,
		&lead.Source, &lead.Status, &lead.AssignedRepID, &lead.AssignedRepName, &lead.ExpectedValue,
		&lead.Notes, &lead.Tags, &lead.Score, &lead.ScoreReasons,
		&lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			organization_id, name, email, phone, company, location, source, status,
			assigned_rep_id, assigned_rep_name, expected_value, notes, tags, score, score_reasons, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+leadColumns,
		params.OrganizationID, params.Name, params.Email, params.Phone, params.Company, params.Location,
		params.Source, params.Status, params.AssignedRepID, params.AssignedRepName, params.ExpectedValue,
		params.Notes, nonNil(params.Tags), params.Score, nonNil(params.ScoreReasons), params.CreatedBy,
	))
}

func (r *Repository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
}

func (r *Repository) UpdateLocked(ctx context.Context, organizationID, id uuid.UUID, mutate LeadMutator) (Lead, Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, Lead{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	before, err := scanLead(tx.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 AND organization_id = $2 FOR UPDATE
	`, id, organizationID))
	if err != nil {
		return Lead{}, Lead{}, err
	}

	next, err := mutate(before)
	if err != nil {
		return Lead{}, Lead{}, err
	}

	after, err := scanLead(tx.QueryRow(ctx, `
		UPDATE leads SET
			name = $3, email = $4, phone = $5, company = $6, location = $7, source = $8, status = $9,
			assigned_rep_id = $10, assigned_rep_name = $11, expected_value = $12, notes = $13, tags = $14,
			score = $15, score_reasons = $16, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+leadColumns,
		id, organizationID,
		next.Name, next.Email, next.Phone, next.Company, next.Location, next.Source, next.Status,
		next.AssignedRepID, next.AssignedRepName, next.ExpectedValue, next.Notes, nonNil(next.Tags),
		next.Score, nonNil(next.ScoreReasons),
	))
	if err != nil {
		return Lead{}, Lead{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, Lead{}, err
	}
	return before, after, nil
}

func (r *Repository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC, id`, leadColumns, whereClause)
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, params.Limit, params.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	// Organization ID is always the first filter (mandatory for tenant isolation)
	whereClauses := []string{"organization_id = $1"}
	args := []interface{}{params.OrganizationID}
	argIdx := 2

	add := func(format string, value interface{}) {
		whereClauses = append(whereClauses, strings.ReplaceAll(format, "?", fmt.Sprintf("$%d", argIdx)))
		args = append(args, value)
		argIdx++
	}

	if params.AssignedRepID != nil {
		add("assigned_rep_id = ?", *params.AssignedRepID)
	}
	if params.Status != nil {
		add("status = ?", *params.Status)
	}
	if params.Source != nil {
		add("source = ?", *params.Source)
	}
	if params.Search != "" {
		add("(name ILIKE ? OR company ILIKE ? OR email ILIKE ?)", "%"+escapeLike(params.Search)+"%")
	}
	if params.Tag != "" {
		add("EXISTS (SELECT 1 FROM unnest(tags) AS t(tag) WHERE t.tag ILIKE ?)", "%"+escapeLike(params.Tag)+"%")
	}
	if params.CreatedFrom != nil {
		add("created_at >= ?", *params.CreatedFrom)
	}
	if params.CreatedBefore != nil {
		add("created_at < ?", *params.CreatedBefore)
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func (r *Repository) RescoreAll(ctx context.Context, organizationID uuid.UUID, score ScoreFunc) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE organization_id = $1 ORDER BY id FOR UPDATE
	`, organizationID)
	if err != nil {
		return 0, err
	}
	leads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Lead, error) {
		return scanLead(row)
	})
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, lead := range leads {
		newScore, reasons := score(lead)
		if newScore == lead.Score && slices.Equal(reasons, lead.ScoreReasons) {
			continue
		}
		batch.Queue(`
			UPDATE leads SET score = $2, score_reasons = $3, updated_at = now() WHERE id = $1
		`, lead.ID, newScore, nonNil(reasons))
	}

	changed := batch.Len()
	if changed > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("rescore batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return changed, nil
}

func (r *Repository) ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM organizations ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
