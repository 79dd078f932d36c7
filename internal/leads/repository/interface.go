package repository

import (
	"context"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	// UpdateLocked loads the row FOR UPDATE, applies mutate and writes the
	// result in a single UPDATE within one transaction. It returns the row
	// as it was before and after the change.
	UpdateLocked(ctx context.Context, organizationID, id uuid.UUID, mutate LeadMutator) (before Lead, after Lead, err error)
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
}

// LeadRescorer recomputes stored scores in bulk.
type LeadRescorer interface {
	// RescoreAll returns how many leads had their score or reasons changed.
	RescoreAll(ctx context.Context, organizationID uuid.UUID, score ScoreFunc) (int, error)
	ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ActivityStore records lead activity.
type ActivityStore interface {
	CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error)
	ListActivities(ctx context.Context, organizationID, leadID uuid.UUID) ([]Activity, error)
}

// FollowupStore persists follow-ups.
type FollowupStore interface {
	CreateFollowup(ctx context.Context, params CreateFollowupParams) (Followup, error)
	GetFollowup(ctx context.Context, organizationID, id uuid.UUID) (Followup, error)
	ListFollowups(ctx context.Context, params FollowupListParams) ([]Followup, error)
	SetFollowupStatus(ctx context.Context, organizationID, id uuid.UUID, status string) (Followup, error)
}

// Ensure Repository implements every store
var (
	_ LeadReader    = (*Repository)(nil)
	_ LeadWriter    = (*Repository)(nil)
	_ LeadRescorer  = (*Repository)(nil)
	_ ActivityStore = (*Repository)(nil)
	_ FollowupStore = (*Repository)(nil)
)
