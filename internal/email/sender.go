// Package email renders and delivers transactional and templated emails.
package email

import (
	"context"
	"time"

	"crm_backend/platform/config"
)

type Sender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, name, resetURL string) error
	SendFollowupReminderEmail(ctx context.Context, toEmail, name, leadName, description string, dueAt time.Time) error
	// SendCustomEmail delivers a plain-text body composed by a user.
	SendCustomEmail(ctx context.Context, toEmail, subject, body string) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendPasswordResetEmail(ctx context.Context, toEmail, name, resetURL string) error {
	return nil
}

func (NoopSender) SendFollowupReminderEmail(ctx context.Context, toEmail, name, leadName, description string, dueAt time.Time) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, body string) error {
	return nil
}

// NewSender returns an SMTP sender when email is enabled and a NoopSender otherwise.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

// IsNoop reports whether s discards messages.
func IsNoop(s Sender) bool {
	_, ok := s.(NoopSender)
	return ok
}

func renderPasswordReset(name, resetURL string) (string, error) {
	return renderEmailTemplate("password_reset.html", passwordResetEmailData{
		baseEmailData: baseEmailData{
			Title:    subjectPasswordReset,
			Heading:  subjectPasswordReset,
			CTALabel: "Choose a new password",
			CTAURL:   resetURL,
		},
		Name: name,
	})
}

func renderFollowupReminder(name, leadName, description string, dueAt time.Time) (string, error) {
	return renderEmailTemplate("followup_reminder.html", followupReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Follow-up reminder",
			Heading: "Follow-up reminder",
		},
		Name:        name,
		LeadName:    leadName,
		Description: description,
		DueAt:       dueAt.UTC().Format("Mon 2 Jan 2006 15:04 MST"),
	})
}

func renderCustom(subject, body string) (string, error) {
	return renderEmailTemplate("custom.html", customEmailData{
		baseEmailData: baseEmailData{Title: subject, Heading: subject},
		Paragraphs:    paragraphs(body),
	})
}
