package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserReader loads users.
type UserReader interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	ListUsers(ctx context.Context, organizationID uuid.UUID) ([]User, error)
	ListUsersWithStats(ctx context.Context, organizationID uuid.UUID) ([]UserWithStats, error)
}

// UserWriter mutates users and organizations.
type UserWriter interface {
	CreateOrganizationWithAdmin(ctx context.Context, organizationName string, params CreateUserParams) (User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	UpdateName(ctx context.Context, userID uuid.UUID, name string) (User, error)
	SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) error
	SetRole(ctx context.Context, organizationID, userID uuid.UUID, role string) (User, error)
}

// TokenStore persists refresh and password reset token digests.
// Consume and reset claim the token with a conditional write and return
// ErrNotFound when it is unknown, revoked, used or expired at now.
type TokenStore interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (StoredToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error

	CreateResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetResetToken(ctx context.Context, tokenHash string) (StoredToken, error)
	// ResetPassword uses the token, stores the new hash and revokes every
	// refresh token of the user in one transaction.
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error)
}

// AuthRepository is everything the auth service needs.
type AuthRepository interface {
	UserReader
	UserWriter
	TokenStore
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
