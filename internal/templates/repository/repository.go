// Package repository persists email templates and the log of sent emails.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("template not found")

type Template struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Subject        string
	Body           string
	CreatedBy      *uuid.UUID
	CreatedAt      time.Time
}

type EmailLog struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	LeadName       string
	TemplateID     *uuid.UUID
	TemplateName   string
	Subject        string
	Body           string
	SentBy         *uuid.UUID
	SentByName     string
	SentAt         time.Time
}

type TemplateStore interface {
	ListTemplates(ctx context.Context, organizationID uuid.UUID) ([]Template, error)
	GetTemplate(ctx context.Context, organizationID, id uuid.UUID) (Template, error)
	CreateTemplate(ctx context.Context, t Template) (Template, error)
	UpdateTemplate(ctx context.Context, organizationID, id uuid.UUID, name, subject, body *string) (Template, error)
	DeleteTemplate(ctx context.Context, organizationID, id uuid.UUID) error
}

type LogStore interface {
	CreateLog(ctx context.Context, l EmailLog) (EmailLog, error)
	ListLogs(ctx context.Context, organizationID, leadID uuid.UUID) ([]EmailLog, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var (
	_ TemplateStore = (*Repository)(nil)
	_ LogStore      = (*Repository)(nil)
)

const templateColumns = `id, organization_id, name, subject, body, created_by, created_at`

func scanTemplate(row pgx.Row) (Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Subject, &t.Body, &t.CreatedBy, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) ListTemplates(ctx context.Context, organizationID uuid.UUID) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+templateColumns+` FROM email_templates
		WHERE organization_id = $1
		ORDER BY created_at DESC, id
	`, organizationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Template, error) {
		return scanTemplate(row)
	})
}

func (r *Repository) GetTemplate(ctx context.Context, organizationID, id uuid.UUID) (Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx, `
		SELECT `+templateColumns+` FROM email_templates
		WHERE organization_id = $1 AND id = $2
	`, organizationID, id))
}

func (r *Repository) CreateTemplate(ctx context.Context, t Template) (Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx, `
		INSERT INTO email_templates (organization_id, name, subject, body, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+templateColumns,
		t.OrganizationID, t.Name, t.Subject, t.Body, t.CreatedBy))
}

func (r *Repository) UpdateTemplate(ctx context.Context, organizationID, id uuid.UUID, name, subject, body *string) (Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx, `
		UPDATE email_templates SET
			name = COALESCE($3, name),
			subject = COALESCE($4, subject),
			body = COALESCE($5, body)
		WHERE organization_id = $1 AND id = $2
		RETURNING `+templateColumns,
		organizationID, id, name, subject, body))
}

func (r *Repository) DeleteTemplate(ctx context.Context, organizationID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_templates WHERE organization_id = $1 AND id = $2`, organizationID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const logColumns = `id, organization_id, lead_id, lead_name, template_id, template_name, subject, body, sent_by, sent_by_name, sent_at`

func scanLog(row pgx.Row) (EmailLog, error) {
	var l EmailLog
	err := row.Scan(&l.ID, &l.OrganizationID, &l.LeadID, &l.LeadName, &l.TemplateID, &l.TemplateName,
		&l.Subject, &l.Body, &l.SentBy, &l.SentByName, &l.SentAt)
	return l, err
}

func (r *Repository) CreateLog(ctx context.Context, l EmailLog) (EmailLog, error) {
	return scanLog(r.pool.QueryRow(ctx, `
		INSERT INTO email_logs (organization_id, lead_id, lead_name, template_id, template_name, subject, body, sent_by, sent_by_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+logColumns,
		l.OrganizationID, l.LeadID, l.LeadName, l.TemplateID, l.TemplateName, l.Subject, l.Body, l.SentBy, l.SentByName))
}

func (r *Repository) ListLogs(ctx context.Context, organizationID, leadID uuid.UUID) ([]EmailLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+logColumns+` FROM email_logs
		WHERE organization_id = $1 AND lead_id = $2
		ORDER BY sent_at DESC, id
	`, organizationID, leadID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (EmailLog, error) {
		return scanLog(row)
	})
}
