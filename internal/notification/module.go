// Package notification sends emails in response to domain events.
// Domain modules publish events and never talk to the mail provider directly.
package notification

import (
	"context"
	"net/url"
	"strings"

	"crm_backend/internal/email"
	"crm_backend/internal/events"
	"crm_backend/internal/leads/ports"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"
)

type Module struct {
	sender email.Sender
	users  ports.UserProvider
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notification module. users resolves the recipient of
// follow-up reminders.
func New(sender email.Sender, users ports.UserProvider, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		sender: sender,
		users:  users,
		cfg:    cfg,
		log:    log,
	}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.PasswordResetRequested{}.EventName(), m)
	bus.Subscribe(events.FollowupReminderDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.PasswordResetRequested:
		return m.handlePasswordResetRequested(ctx, e)
	case events.FollowupReminderDue:
		return m.handleFollowupReminderDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handlePasswordResetRequested(ctx context.Context, e events.PasswordResetRequested) error {
	resetURL := m.buildURL("/reset-password", e.ResetToken)
	if err := m.sender.SendPasswordResetEmail(ctx, e.Email, e.Name, resetURL); err != nil {
		m.log.Error("failed to send password reset email",
			"userId", e.UserID,
			"email", e.Email,
			"error", err,
		)
		return err
	}
	m.log.Info("password reset email sent", "userId", e.UserID, "email", e.Email)
	return nil
}

func (m *Module) handleFollowupReminderDue(ctx context.Context, e events.FollowupReminderDue) error {
	user, err := m.users.GetUser(ctx, e.OrganizationID, e.UserID)
	if err != nil {
		// The creator may have been removed since the follow-up was scheduled.
		m.log.Warn("follow-up reminder recipient not found",
			"followupId", e.FollowupID,
			"userId", e.UserID,
			"error", err,
		)
		return nil
	}
	if user.Email == "" {
		return nil
	}

	if err := m.sender.SendFollowupReminderEmail(ctx, user.Email, user.Name, e.LeadName, e.Description, e.DueAt); err != nil {
		m.log.Error("failed to send follow-up reminder email",
			"followupId", e.FollowupID,
			"userId", e.UserID,
			"error", err,
		)
		return err
	}
	m.log.Info("follow-up reminder email sent", "followupId", e.FollowupID, "userId", e.UserID)
	return nil
}

func (m *Module) buildURL(path, token string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	if token == "" {
		return base + path
	}
	return base + path + "?token=" + url.QueryEscape(token)
}
