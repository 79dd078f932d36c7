package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Email          string
	PasswordHash   string
	Role           string
	AvatarKey      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserWithStats adds the sales figures shown on the users page.
type UserWithStats struct {
	User
	LeadCount  int
	WonCount   int
	WonRevenue int64
}

type CreateUserParams struct {
	OrganizationID uuid.UUID
	Name           string
	Email          string
	PasswordHash   string
	Role           string
}

// StoredToken is a persisted token digest.
type StoredToken struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
	Consumed  bool
}

const userColumns = `id, organization_id, name, email, password_hash, role, avatar_key, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.AvatarKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func translateInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *Repository) CreateOrganizationWithAdmin(ctx context.Context, organizationName string, params CreateUserParams) (User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orgID uuid.UUID
	if err := tx.QueryRow(ctx, `
		INSERT INTO organizations (name) VALUES ($1) RETURNING id
	`, organizationName).Scan(&orgID); err != nil {
		return User{}, fmt.Errorf("create organization: %w", err)
	}

	params.OrganizationID = orgID
	user, err := insertUser(ctx, tx, params)
	if err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	return insertUser(ctx, r.pool, params)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertUser(ctx context.Context, q queryRower, params CreateUserParams) (User, error) {
	user, err := scanUser(q.QueryRow(ctx, `
		INSERT INTO users (organization_id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		params.OrganizationID, params.Name, params.Email, params.PasswordHash, params.Role,
	))
	if err != nil {
		return User{}, translateInsertErr(err)
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)
	`, email))
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, userID))
}

func (r *Repository) ListUsers(ctx context.Context, organizationID uuid.UUID) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE organization_id = $1
		ORDER BY name ASC
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *Repository) ListUsersWithStats(ctx context.Context, organizationID uuid.UUID) ([]UserWithStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.organization_id, u.name, u.email, u.password_hash, u.role, u.avatar_key, u.created_at, u.updated_at,
			COUNT(l.id) AS lead_count,
			COUNT(l.id) FILTER (WHERE l.status = 'Won') AS won_count,
			COALESCE(SUM(l.expected_value) FILTER (WHERE l.status = 'Won'), 0) AS won_revenue
		FROM users u
		LEFT JOIN leads l ON l.assigned_rep_id = u.id AND l.organization_id = u.organization_id
		WHERE u.organization_id = $1
		GROUP BY u.id
		ORDER BY u.name ASC
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]UserWithStats, 0)
	for rows.Next() {
		var item UserWithStats
		if err := rows.Scan(
			&item.ID,
			&item.OrganizationID,
			&item.Name,
			&item.Email,
			&item.PasswordHash,
			&item.Role,
			&item.AvatarKey,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.LeadCount,
			&item.WonCount,
			&item.WonRevenue,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *Repository) UpdateName(ctx context.Context, userID uuid.UUID, name string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		userID, name,
	))
}

func (r *Repository) SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET avatar_key = $2, updated_at = now() WHERE id = $1
	`, userID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetRole(ctx context.Context, organizationID, userID uuid.UUID, role string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET role = $3, updated_at = now()
		WHERE id = $2 AND organization_id = $1
		RETURNING `+userColumns,
		organizationID, userID, role,
	))
}

func (r *Repository) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES ($1, $2, $3)
	`, tokenHash, userID, expiresAt)
	return err
}

func (r *Repository) ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (StoredToken, error) {
	var token StoredToken
	err := r.pool.QueryRow(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
		RETURNING user_id, expires_at
	`, tokenHash, now).Scan(&token.UserID, &token.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredToken{}, ErrNotFound
	}
	if err != nil {
		return StoredToken{}, err
	}
	token.Consumed = true
	return token, nil
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now() WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash)
	return err
}

func (r *Repository) CreateResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at) VALUES ($1, $2, $3)
	`, tokenHash, userID, expiresAt)
	return err
}

func (r *Repository) GetResetToken(ctx context.Context, tokenHash string) (StoredToken, error) {
	var token StoredToken
	var usedAt *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, expires_at, used_at FROM password_reset_tokens WHERE token_hash = $1
	`, tokenHash).Scan(&token.UserID, &token.ExpiresAt, &usedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredToken{}, ErrNotFound
	}
	token.Consumed = usedAt != nil
	return token, err
}

func (r *Repository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE password_reset_tokens SET used_at = now()
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING user_id
	`, tokenHash, now).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("use reset token: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, userID, passwordHash); err != nil {
		return uuid.Nil, fmt.Errorf("update password: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL
	`, userID); err != nil {
		return uuid.Nil, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}
