// Package repository persists the pipeline stages of each organization.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("stage not found")

type Stage struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Order          int
	Color          string
}

// NewStage is a stage to insert.
type NewStage struct {
	Name  string
	Color string
}

// StageStore is the storage contract of the pipeline service.
type StageStore interface {
	ListStages(ctx context.Context, organizationID uuid.UUID) ([]Stage, error)
	// SeedStages inserts stages in order when the organization has none and
	// reports whether it did. Concurrent callers seed at most once.
	SeedStages(ctx context.Context, organizationID uuid.UUID, stages []NewStage) (bool, error)
	CreateStage(ctx context.Context, organizationID uuid.UUID, stage NewStage) (Stage, error)
	UpdateStage(ctx context.Context, organizationID, id uuid.UUID, name, color *string) (Stage, error)
	DeleteStage(ctx context.Context, organizationID, id uuid.UUID) error
	// DeleteDuplicateStages keeps the lowest-ordered stage of every name.
	DeleteDuplicateStages(ctx context.Context, organizationID uuid.UUID) (int, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ StageStore = (*Repository)(nil)

const stageColumns = `id, organization_id, name, display_order, color`

func scanStage(row pgx.Row) (Stage, error) {
	var s Stage
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Order, &s.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stage{}, ErrNotFound
	}
	return s, err
}

func (r *Repository) ListStages(ctx context.Context, organizationID uuid.UUID) ([]Stage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stageColumns+` FROM pipeline_stages
		WHERE organization_id = $1
		ORDER BY display_order, id
	`, organizationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Stage, error) {
		return scanStage(row)
	})
}

func (r *Repository) SeedStages(ctx context.Context, organizationID uuid.UUID, stages []NewStage) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serialize seeding per organization.
	if _, err := tx.Exec(ctx, `SELECT 1 FROM organizations WHERE id = $1 FOR UPDATE`, organizationID); err != nil {
		return false, err
	}

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM pipeline_stages WHERE organization_id = $1`, organizationID).Scan(&existing); err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	batch := &pgx.Batch{}
	for i, stage := range stages {
		batch.Queue(`
			INSERT INTO pipeline_stages (organization_id, name, display_order, color) VALUES ($1, $2, $3, $4)
		`, organizationID, stage.Name, i, stage.Color)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (r *Repository) CreateStage(ctx context.Context, organizationID uuid.UUID, stage NewStage) (Stage, error) {
	return scanStage(r.pool.QueryRow(ctx, `
		INSERT INTO pipeline_stages (organization_id, name, display_order, color)
		VALUES ($1, $2, (SELECT COUNT(*) FROM pipeline_stages WHERE organization_id = $1), $3)
		RETURNING `+stageColumns,
		organizationID, stage.Name, stage.Color,
	))
}

func (r *Repository) UpdateStage(ctx context.Context, organizationID, id uuid.UUID, name, color *string) (Stage, error) {
	return scanStage(r.pool.QueryRow(ctx, `
		UPDATE pipeline_stages SET
			name = COALESCE($3, name),
			color = COALESCE($4, color)
		WHERE id = $1 AND organization_id = $2
		RETURNING `+stageColumns,
		id, organizationID, name, color,
	))
}

func (r *Repository) DeleteStage(ctx context.Context, organizationID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pipeline_stages WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteDuplicateStages(ctx context.Context, organizationID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM pipeline_stages
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY name ORDER BY display_order, id) AS rn
				FROM pipeline_stages
				WHERE organization_id = $1
			) ranked
			WHERE ranked.rn > 1
		)
	`, organizationID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
