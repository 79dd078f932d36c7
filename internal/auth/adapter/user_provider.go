// Package adapter provides implementations of external interfaces that other domains need.
// The auth domain satisfies consumer-driven interfaces defined by other domains.
package adapter

import (
	"context"
	"errors"

	"crm_backend/internal/auth/repository"
	"crm_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// UserDirectoryAdapter implements leads/ports.UserDirectory using the auth repository.
type UserDirectoryAdapter struct {
	repo repository.UserReader
}

// NewUserDirectoryAdapter creates a new adapter for providing user info to other domains.
func NewUserDirectoryAdapter(repo repository.UserReader) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{repo: repo}
}

// GetUser implements ports.UserProvider. Users of another tenant are reported as missing.
func (a *UserDirectoryAdapter) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (ports.UserInfo, error) {
	user, err := a.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ports.UserInfo{}, ports.ErrUserNotFound
	}
	if err != nil {
		return ports.UserInfo{}, err
	}
	if user.OrganizationID != tenantID {
		return ports.UserInfo{}, ports.ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// ListUsers implements ports.UserLister.
func (a *UserDirectoryAdapter) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]ports.UserInfo, error) {
	users, err := a.repo.ListUsers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result := make([]ports.UserInfo, 0, len(users))
	for _, user := range users {
		result = append(result, toUserInfo(user))
	}
	return result, nil
}

func toUserInfo(user repository.User) ports.UserInfo {
	return ports.UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// Ensure UserDirectoryAdapter implements ports.UserDirectory
var _ ports.UserDirectory = (*UserDirectoryAdapter)(nil)
