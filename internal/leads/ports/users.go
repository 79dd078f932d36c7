// Package ports defines consumer-driven interfaces for external dependencies.
// These interfaces are defined in the Leads domain based on what it needs,
// rather than what other domains choose to offer.
package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user does not exist in the tenant.
var ErrUserNotFound = errors.New("user not found")

// UserInfo represents the minimal user data the leads domain needs.
type UserInfo struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

// UserProvider resolves a single tenant member.
// This interface is defined here (consumer-driven) rather than in the auth domain.
type UserProvider interface {
	// GetUser returns ErrUserNotFound when userID is not a member of tenantID.
	GetUser(ctx context.Context, tenantID, userID uuid.UUID) (UserInfo, error)
}

// UserLister provides the members of a tenant.
type UserLister interface {
	ListUsers(ctx context.Context, tenantID uuid.UUID) ([]UserInfo, error)
}

// UserDirectory combines lookup and listing.
type UserDirectory interface {
	UserProvider
	UserLister
}
