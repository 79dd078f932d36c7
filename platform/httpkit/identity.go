// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Role names carried in access tokens.
const (
	RoleAdmin = "admin"
	RoleRep   = "rep"
)

// Identity represents the authenticated user's identity.
// Handlers read it instead of poking at gin context keys directly.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// TenantID returns the organization the user belongs to.
	TenantID() uuid.UUID
	// Roles returns the user's assigned roles.
	Roles() []string
	// HasRole checks if the user has a specific role.
	HasRole(role string) bool
	// IsAdmin reports whether the user holds the admin role.
	IsAdmin() bool
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	tenantID      uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID        { return i.userID }
func (i *identity) TenantID() uuid.UUID      { return i.tenantID }
func (i *identity) Roles() []string          { return i.roles }
func (i *identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }
func (i *identity) IsAdmin() bool            { return i.HasRole(RoleAdmin) }
func (i *identity) IsAuthenticated() bool    { return i.authenticated }

// NewIdentity builds an authenticated identity. Used by tests and background jobs.
func NewIdentity(userID, tenantID uuid.UUID, roles ...string) Identity {
	return &identity{userID: userID, tenantID: tenantID, roles: roles, authenticated: true}
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user or tenant info is missing.
func GetIdentity(c *gin.Context) Identity {
	uid, ok := c.Value(ContextUserIDKey).(uuid.UUID)
	if !ok {
		return &identity{}
	}
	tid, ok := c.Value(ContextTenantIDKey).(uuid.UUID)
	if !ok {
		return &identity{}
	}
	roles, _ := c.Value(ContextRolesKey).([]string)

	return &identity{
		userID:        uid,
		tenantID:      tid,
		roles:         roles,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}
