// Package events holds the CRM domain events. The bus itself lives in
// platform/events; the aliases below let modules import a single package.
package events

import (
	"time"

	"crm_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new organization and its first admin are created.
type UserSignedUp struct {
	BaseEvent
	UserID         uuid.UUID `json:"userId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// PasswordResetRequested is published when a user requests a password reset.
type PasswordResetRequested struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ResetToken string    `json:"resetToken"`
}

func (e PasswordResetRequested) EventName() string { return "auth.password.reset_requested" }

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published after a lead is inserted.
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	AssignedRepID  uuid.UUID `json:"assignedRepId"`
	Source         string    `json:"source"`
	Score          int       `json:"score"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published after any successful lead update.
type LeadUpdated struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ActorID        uuid.UUID `json:"actorId"`
	Score          int       `json:"score"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadStageChanged is published when an update moves a lead to another stage.
type LeadStageChanged struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ActorID        uuid.UUID `json:"actorId"`
	OldStage       string    `json:"oldStage"`
	NewStage       string    `json:"newStage"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

// LeadDeleted is published after a lead is removed.
type LeadDeleted struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// LeadsRescored is published after a bulk score recomputation.
type LeadsRescored struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Count          int       `json:"count"`
}

func (e LeadsRescored) EventName() string { return "leads.rescored" }

// =============================================================================
// Follow-up Domain Events
// =============================================================================

// FollowupScheduled is published when a follow-up is created.
type FollowupScheduled struct {
	BaseEvent
	FollowupID     uuid.UUID `json:"followupId"`
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	DueAt          time.Time `json:"dueAt"`
}

func (e FollowupScheduled) EventName() string { return "followups.scheduled" }

// FollowupReminderDue is published by the scheduler worker shortly before a
// pending follow-up is due.
type FollowupReminderDue struct {
	BaseEvent
	FollowupID     uuid.UUID `json:"followupId"`
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	LeadName       string    `json:"leadName"`
	Description    string    `json:"description"`
	DueAt          time.Time `json:"dueAt"`
	UserID         uuid.UUID `json:"userId"`
}

func (e FollowupReminderDue) EventName() string { return "followups.reminder_due" }

// =============================================================================
// Email Domain Events
// =============================================================================

// EmailSent is published after a templated email is delivered and logged.
type EmailSent struct {
	BaseEvent
	LogID          uuid.UUID `json:"logId"`
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	TemplateName   string    `json:"templateName"`
}

func (e EmailSent) EventName() string { return "templates.email.sent" }
