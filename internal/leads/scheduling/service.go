// Package scheduling handles follow-up scheduling for leads.
// This is a vertically sliced feature package containing service logic
// for creating, listing, grouping and completing follow-ups, and for
// raising reminders shortly before they are due.
package scheduling

import (
	"context"
	"errors"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the scheduling service.
// This is a consumer-driven interface - only what scheduling needs.
type Repository interface {
	repository.LeadReader
	repository.FollowupStore
}

// Service handles follow-up scheduling operations.
type Service struct {
	repo         Repository
	users        ports.UserProvider
	eventBus     events.Bus
	reminders    ports.ReminderScheduler
	reminderLead time.Duration
	log          *logger.Logger
	now          func() time.Time
}

// New creates a follow-up service. reminders may be nil, in which case no
// reminders are queued.
func New(repo Repository, users ports.UserProvider, eventBus events.Bus, reminders ports.ReminderScheduler, reminderLead time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:         repo,
		users:        users,
		eventBus:     eventBus,
		reminders:    reminders,
		reminderLead: reminderLead,
		log:          log,
		now:          time.Now,
	}
}

// Create schedules a follow-up on a lead the actor may see.
func (s *Service) Create(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID, req transport.CreateFollowupRequest) (transport.FollowupResponse, error) {
	description := sanitize.Text(req.Description)
	if description == "" {
		return transport.FollowupResponse{}, apperr.Validation("description is required")
	}
	if req.DateTime.IsZero() {
		return transport.FollowupResponse{}, apperr.Validation("dateTime is required")
	}

	lead, err := s.repo.GetByID(ctx, actor.TenantID(), leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.FollowupResponse{}, apperr.NotFound("lead not found")
		}
		return transport.FollowupResponse{}, err
	}
	if !actor.IsAdmin() && !lead.IsAssignedTo(actor.UserID()) {
		return transport.FollowupResponse{}, apperr.Forbidden("forbidden")
	}

	var authorName string
	if user, err := s.users.GetUser(ctx, actor.TenantID(), actor.UserID()); err == nil {
		authorName = user.Name
	}

	author := actor.UserID()
	followup, err := s.repo.CreateFollowup(ctx, repository.CreateFollowupParams{
		OrganizationID: actor.TenantID(),
		LeadID:         leadID,
		DateTime:       req.DateTime,
		Description:    description,
		CreatedBy:      &author,
		CreatedByName:  authorName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.FollowupResponse{}, apperr.NotFound("lead not found")
		}
		return transport.FollowupResponse{}, err
	}

	s.eventBus.Publish(ctx, events.FollowupScheduled{
		BaseEvent:      events.NewBaseEvent(),
		FollowupID:     followup.ID,
		LeadID:         followup.LeadID,
		OrganizationID: followup.OrganizationID,
		DueAt:          followup.DateTime,
	})
	s.scheduleReminder(ctx, followup)

	return ToFollowupResponse(followup), nil
}

// scheduleReminder queues a reminder reminderLead before the follow-up, or
// immediately when that moment has already passed. Past follow-ups get none.
func (s *Service) scheduleReminder(ctx context.Context, followup repository.Followup) {
	if s.reminders == nil {
		return
	}
	now := s.now()
	if !followup.DateTime.After(now) {
		return
	}

	at := followup.DateTime.Add(-s.reminderLead)
	if at.Before(now) {
		at = now
	}
	if err := s.reminders.ScheduleFollowupReminder(ctx, followup.OrganizationID, followup.ID, at); err != nil {
		s.log.WithContext(ctx).Warn("failed to schedule follow-up reminder", "followupId", followup.ID, "error", err)
	}
}

// ListForLead returns the follow-ups of one lead, soonest first.
func (s *Service) ListForLead(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID) ([]transport.FollowupResponse, error) {
	lead, err := s.repo.GetByID(ctx, actor.TenantID(), leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}
	if !actor.IsAdmin() && !lead.IsAssignedTo(actor.UserID()) {
		return nil, apperr.Forbidden("forbidden")
	}

	items, err := s.repo.ListFollowups(ctx, repository.FollowupListParams{OrganizationID: actor.TenantID(), LeadID: &leadID})
	if err != nil {
		return nil, err
	}
	return ToFollowupResponses(items), nil
}

// ListForUser returns every follow-up of the tenant for admins and the
// follow-ups a rep created otherwise.
func (s *Service) ListForUser(ctx context.Context, actor httpkit.Identity) ([]transport.FollowupResponse, error) {
	params := repository.FollowupListParams{OrganizationID: actor.TenantID()}
	if !actor.IsAdmin() {
		self := actor.UserID()
		params.CreatedBy = &self
	}

	items, err := s.repo.ListFollowups(ctx, params)
	if err != nil {
		return nil, err
	}
	return ToFollowupResponses(items), nil
}

// Grouped buckets ListForUser the way the follow-ups page shows it.
func (s *Service) Grouped(ctx context.Context, actor httpkit.Identity) (transport.GroupedFollowupsResponse, error) {
	items, err := s.ListForUser(ctx, actor)
	if err != nil {
		return transport.GroupedFollowupsResponse{}, err
	}
	return Group(items, s.now()), nil
}

// Toggle flips a follow-up between pending and done. Admins may toggle any
// follow-up, reps only the ones they created.
func (s *Service) Toggle(ctx context.Context, actor httpkit.Identity, id uuid.UUID) (transport.FollowupResponse, error) {
	current, err := s.repo.GetFollowup(ctx, actor.TenantID(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.FollowupResponse{}, apperr.NotFound("follow-up not found")
		}
		return transport.FollowupResponse{}, err
	}
	if !actor.IsAdmin() && (current.CreatedBy == nil || *current.CreatedBy != actor.UserID()) {
		return transport.FollowupResponse{}, apperr.Forbidden("forbidden")
	}

	next := domain.FollowupDone
	if current.Status == domain.FollowupDone {
		next = domain.FollowupPending
	}

	updated, err := s.repo.SetFollowupStatus(ctx, actor.TenantID(), id, next)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.FollowupResponse{}, apperr.NotFound("follow-up not found")
		}
		return transport.FollowupResponse{}, err
	}
	if next == domain.FollowupPending {
		s.scheduleReminder(ctx, updated)
	}
	return ToFollowupResponse(updated), nil
}

// RaiseReminder publishes FollowupReminderDue when the follow-up still exists
// and is pending. It is called by the reminder worker; a follow-up that was
// completed or deleted in the meantime is ignored.
func (s *Service) RaiseReminder(ctx context.Context, organizationID, followupID uuid.UUID) error {
	followup, err := s.repo.GetFollowup(ctx, organizationID, followupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Info("reminder skipped, follow-up gone", "followupId", followupID)
			return nil
		}
		return err
	}
	if followup.Status != domain.FollowupPending {
		return nil
	}

	event := events.FollowupReminderDue{
		BaseEvent:      events.NewBaseEvent(),
		FollowupID:     followup.ID,
		LeadID:         followup.LeadID,
		OrganizationID: followup.OrganizationID,
		LeadName:       followup.LeadName,
		Description:    followup.Description,
		DueAt:          followup.DateTime,
	}
	if followup.CreatedBy != nil {
		event.UserID = *followup.CreatedBy
	}
	return s.eventBus.PublishSync(ctx, event)
}
