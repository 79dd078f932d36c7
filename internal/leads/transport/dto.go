package transport

import (
	"time"

	"github.com/google/uuid"
)

// =====================================
// Leads
// =====================================

type CreateLeadRequest struct {
	Name          string     `json:"name" validate:"required,max=200"`
	Email         string     `json:"email" validate:"omitempty,email,max=254"`
	Phone         string     `json:"phone" validate:"max=40"`
	Company       string     `json:"company" validate:"required,max=200"`
	Location      *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	Source        *string    `json:"source,omitempty" validate:"omitempty,max=60"`
	Status        *string    `json:"status,omitempty" validate:"omitempty,max=60"`
	AssignedRep   *uuid.UUID `json:"assignedRep,omitempty"`
	ExpectedValue int64      `json:"expectedValue" validate:"min=0"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Tags          []string   `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=40"`
}

type UpdateLeadRequest struct {
	Name          *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email         *string      `json:"email,omitempty" validate:"omitempty,max=254"`
	Phone         *string      `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company       *string      `json:"company,omitempty" validate:"omitempty,min=1,max=200"`
	Location      *string      `json:"location,omitempty" validate:"omitempty,max=200"`
	Source        *string      `json:"source,omitempty" validate:"omitempty,max=60"`
	Status        *string      `json:"status,omitempty" validate:"omitempty,max=60"`
	AssignedRep   OptionalUUID `json:"assignedRep,omitempty"`
	ExpectedValue *int64       `json:"expectedValue,omitempty" validate:"omitempty,min=0"`
	Notes         *string      `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Tags          *[]string    `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=40"`
}

// ListLeadsRequest mirrors the filters of the leads page and global search.
// DateStart and DateEnd are calendar days (YYYY-MM-DD); DateEnd is inclusive.
type ListLeadsRequest struct {
	Search    string `form:"search" validate:"max=200"`
	Stage     string `form:"stage" validate:"max=60"`
	Source    string `form:"source" validate:"max=60"`
	Rep       string `form:"rep" validate:"omitempty,uuid"`
	DateStart string `form:"dateStart" validate:"omitempty,datetime=2006-01-02"`
	DateEnd   string `form:"dateEnd" validate:"omitempty,datetime=2006-01-02"`
	Tags      string `form:"tags" validate:"max=40"`
	Page      int    `form:"page" validate:"min=0"`
	PageSize  int    `form:"pageSize" validate:"min=0,max=200"`
}

type LeadResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organizationId"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Company         string     `json:"company"`
	Location        *string    `json:"location,omitempty"`
	Source          string     `json:"source"`
	Status          string     `json:"status"`
	AssignedRep     *uuid.UUID `json:"assignedRep,omitempty"`
	AssignedRepName string     `json:"assignedRepName"`
	ExpectedValue   int64      `json:"expectedValue"`
	Notes           *string    `json:"notes,omitempty"`
	Tags            []string   `json:"tags"`
	Score           int        `json:"score"`
	ScoreReasons    []string   `json:"scoreReasons"`
	ScoreTier       string     `json:"scoreTier"`
	CreatedBy       *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type RescoreResponse struct {
	Updated int `json:"updated"`
}

// =====================================
// Activities
// =====================================

type CreateActivityRequest struct {
	Type    string `json:"type" validate:"required,oneof=note call email whatsapp meeting"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type ActivityResponse struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"leadId"`
	Type          string     `json:"type"`
	Content       string     `json:"content"`
	CreatedBy     *uuid.UUID `json:"createdBy,omitempty"`
	CreatedByName string     `json:"createdByName"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// =====================================
// Follow-ups
// =====================================

type CreateFollowupRequest struct {
	DateTime    time.Time `json:"dateTime" validate:"required"`
	Description string    `json:"description" validate:"required,max=1000"`
}

type FollowupResponse struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"leadId"`
	LeadName      string     `json:"leadName"`
	DateTime      time.Time  `json:"dateTime"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	CreatedBy     *uuid.UUID `json:"createdBy,omitempty"`
	CreatedByName string     `json:"createdByName"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// GroupedFollowupsResponse buckets follow-ups the way the follow-ups page shows them.
type GroupedFollowupsResponse struct {
	Overdue  []FollowupResponse `json:"overdue"`
	Today    []FollowupResponse `json:"today"`
	Upcoming []FollowupResponse `json:"upcoming"`
	Done     []FollowupResponse `json:"done"`
}
