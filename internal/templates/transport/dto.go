package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=300"`
	Body    string `json:"body" validate:"required,max=20000"`
}

type UpdateTemplateRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Subject *string `json:"subject,omitempty" validate:"omitempty,min=1,max=300"`
	Body    *string `json:"body,omitempty" validate:"omitempty,min=1,max=20000"`
}

type TemplateResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SendEmailRequest sends subject and body to a lead. When TemplateID is set
// the log records that template; the subject and body are taken as given so
// the user can edit a rendered template before sending.
type SendEmailRequest struct {
	TemplateID *uuid.UUID `json:"templateId,omitempty"`
	Subject    string     `json:"subject" validate:"required,max=300"`
	Body       string     `json:"body" validate:"required,max=20000"`
}

type RenderedTemplateResponse struct {
	TemplateID uuid.UUID `json:"templateId"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
}

type EmailLogResponse struct {
	ID           uuid.UUID  `json:"id"`
	LeadID       uuid.UUID  `json:"leadId"`
	LeadName     string     `json:"leadName"`
	TemplateID   *uuid.UUID `json:"templateId,omitempty"`
	TemplateName string     `json:"templateName"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	SentBy       *uuid.UUID `json:"sentBy,omitempty"`
	SentByName   string     `json:"sentByName"`
	SentAt       time.Time  `json:"sentAt"`
}

type SendEmailResponse struct {
	Log EmailLogResponse `json:"log"`
	// Delivered is false when the lead has no address or SMTP is disabled.
	Delivered bool `json:"delivered"`
}
