package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Lead is a row of the leads table.
type Lead struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Name            string
	Email           string
	Phone           string
	Company         string
	Location        *string
	Source          string
	Status          string
	AssignedRepID   *uuid.UUID
	AssignedRepName string
	ExpectedValue   int64
	Notes           *string
	Tags            []string
	Score           int
	ScoreReasons    []string
	CreatedBy       *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAssignedTo reports whether userID is the lead's rep.
func (l Lead) IsAssignedTo(userID uuid.UUID) bool {
	return l.AssignedRepID != nil && *l.AssignedRepID == userID
}

type CreateLeadParams struct {
	OrganizationID  uuid.UUID
	Name            string
	Email           string
	Phone           string
	Company         string
	Location        *string
	Source          string
	Status          string
	AssignedRepID   *uuid.UUID
	AssignedRepName string
	ExpectedValue   int64
	Notes           *string
	Tags            []string
	Score           int
	ScoreReasons    []string
	CreatedBy       *uuid.UUID
}

// ListParams filters a tenant's leads. Nil pointers and empty strings do not filter.
type ListParams struct {
	OrganizationID uuid.UUID
	AssignedRepID  *uuid.UUID
	Search         string
	Status         *string
	Source         *string
	CreatedFrom    *time.Time
	// CreatedBefore is exclusive.
	CreatedBefore *time.Time
	Tag           string
	// Limit 0 returns every match.
	Limit  int
	Offset int
}

// LeadMutator receives the locked row and returns its replacement.
type LeadMutator func(current Lead) (Lead, error)

// ScoreFunc recomputes the score columns of a lead.
type ScoreFunc func(lead Lead) (score int, reasons []string)

// Activity is an entry of a lead's timeline.
type Activity struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	Type           string
	Content        string
	CreatedBy      *uuid.UUID
	CreatedByName  string
	CreatedAt      time.Time
}

type CreateActivityParams struct {
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	Type           string
	Content        string
	CreatedBy      *uuid.UUID
	CreatedByName  string
}

// Followup is a scheduled touchpoint with a lead.
type Followup struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	LeadName       string
	DateTime       time.Time
	Description    string
	Status         string
	CreatedBy      *uuid.UUID
	CreatedByName  string
	CreatedAt      time.Time
}

type CreateFollowupParams struct {
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	DateTime       time.Time
	Description    string
	CreatedBy      *uuid.UUID
	CreatedByName  string
}

// FollowupListParams filters follow-ups. Nil pointers do not filter.
type FollowupListParams struct {
	OrganizationID uuid.UUID
	LeadID         *uuid.UUID
	CreatedBy      *uuid.UUID
	Status         *string
}
