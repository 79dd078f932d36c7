// Package service implements template management and sending emails to leads.
package service

import (
	"context"
	"errors"
	"fmt"

	"crm_backend/internal/email"
	"crm_backend/internal/events"
	"crm_backend/internal/leads/ports"
	leadtransport "crm_backend/internal/leads/transport"
	"crm_backend/internal/templates/repository"
	"crm_backend/internal/templates/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// CustomTemplateName is logged for emails sent without a template.
const CustomTemplateName = "Custom"

// Leads resolves a lead the actor may see.
type Leads interface {
	GetByID(ctx context.Context, actor httpkit.Identity, id uuid.UUID) (leadtransport.LeadResponse, error)
}

// Activities records the email on the lead timeline.
type Activities interface {
	Add(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID, req leadtransport.CreateActivityRequest) (leadtransport.ActivityResponse, error)
}

type Repository interface {
	repository.TemplateStore
	repository.LogStore
}

type Service struct {
	repo       Repository
	leads      Leads
	activities Activities
	users      ports.UserProvider
	sender     email.Sender
	eventBus   events.Bus
	log        *logger.Logger
}

func New(repo Repository, leads Leads, activities Activities, users ports.UserProvider, sender email.Sender, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		leads:      leads,
		activities: activities,
		users:      users,
		sender:     sender,
		eventBus:   eventBus,
		log:        log,
	}
}

// List returns the organization's templates, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]transport.TemplateResponse, error) {
	items, err := s.repo.ListTemplates(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.TemplateResponse, len(items))
	for i, t := range items {
		out[i] = toTemplateResponse(t)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor httpkit.Identity, req transport.CreateTemplateRequest) (transport.TemplateResponse, error) {
	name := sanitize.Line(req.Name)
	subject := sanitize.Line(req.Subject)
	if name == "" || subject == "" || req.Body == "" {
		return transport.TemplateResponse{}, apperr.Validation("name, subject and body are required")
	}
	creator := actor.UserID()
	t, err := s.repo.CreateTemplate(ctx, repository.Template{
		OrganizationID: actor.TenantID(),
		Name:           name,
		Subject:        subject,
		Body:           req.Body,
		CreatedBy:      &creator,
	})
	if err != nil {
		return transport.TemplateResponse{}, err
	}
	return toTemplateResponse(t), nil
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateTemplateRequest) (transport.TemplateResponse, error) {
	name, subject := trimmedPtr(req.Name), trimmedPtr(req.Subject)
	if (name != nil && *name == "") || (subject != nil && *subject == "") {
		return transport.TemplateResponse{}, apperr.Validation("name and subject cannot be empty")
	}
	t, err := s.repo.UpdateTemplate(ctx, tenantID, id, name, subject, req.Body)
	if err != nil {
		return transport.TemplateResponse{}, mapNotFound(err)
	}
	return toTemplateResponse(t), nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return mapNotFound(s.repo.DeleteTemplate(ctx, tenantID, id))
}

// Preview renders a template for a lead without sending it.
func (s *Service) Preview(ctx context.Context, actor httpkit.Identity, templateID, leadID uuid.UUID) (transport.RenderedTemplateResponse, error) {
	t, err := s.repo.GetTemplate(ctx, actor.TenantID(), templateID)
	if err != nil {
		return transport.RenderedTemplateResponse{}, mapNotFound(err)
	}
	lead, err := s.leads.GetByID(ctx, actor, leadID)
	if err != nil {
		return transport.RenderedTemplateResponse{}, err
	}
	subject, body := Render(t, lead.Name, lead.Company)
	return transport.RenderedTemplateResponse{TemplateID: t.ID, Subject: subject, Body: body}, nil
}

// Send delivers an email to a lead and records it. Delivery happens only when
// the lead has an address and SMTP is configured; a failed delivery writes
// nothing.
func (s *Service) Send(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID, req transport.SendEmailRequest) (transport.SendEmailResponse, error) {
	subject := sanitize.Line(req.Subject)
	if subject == "" || req.Body == "" {
		return transport.SendEmailResponse{}, apperr.Validation("subject and body are required")
	}

	lead, err := s.leads.GetByID(ctx, actor, leadID)
	if err != nil {
		return transport.SendEmailResponse{}, err
	}

	templateName := CustomTemplateName
	if req.TemplateID != nil {
		t, err := s.repo.GetTemplate(ctx, actor.TenantID(), *req.TemplateID)
		if err != nil {
			return transport.SendEmailResponse{}, mapNotFound(err)
		}
		templateName = t.Name
	}

	delivered := false
	if lead.Email != "" && !email.IsNoop(s.sender) {
		if err := s.sender.SendCustomEmail(ctx, lead.Email, subject, req.Body); err != nil {
			s.log.WithContext(ctx).Error("email delivery failed", "leadId", leadID, "error", err)
			return transport.SendEmailResponse{}, apperr.Wrap(apperr.KindUnavailable, "email delivery failed", err)
		}
		delivered = true
	}

	sender := actor.UserID()
	entry, err := s.repo.CreateLog(ctx, repository.EmailLog{
		OrganizationID: actor.TenantID(),
		LeadID:         lead.ID,
		LeadName:       lead.Name,
		TemplateID:     req.TemplateID,
		TemplateName:   templateName,
		Subject:        subject,
		Body:           req.Body,
		SentBy:         &sender,
		SentByName:     s.senderName(ctx, actor),
	})
	if err != nil {
		return transport.SendEmailResponse{}, err
	}

	if _, err := s.activities.Add(ctx, actor, lead.ID, leadtransport.CreateActivityRequest{
		Type:    "email",
		Content: fmt.Sprintf("Email sent: %s", subject),
	}); err != nil {
		s.log.WithContext(ctx).Warn("failed to record email activity", "leadId", lead.ID, "error", err)
	}

	s.eventBus.Publish(ctx, events.EmailSent{
		BaseEvent:      events.NewBaseEvent(),
		LogID:          entry.ID,
		LeadID:         lead.ID,
		OrganizationID: actor.TenantID(),
		TemplateName:   templateName,
	})

	return transport.SendEmailResponse{Log: toLogResponse(entry), Delivered: delivered}, nil
}

// ListLogs returns the emails sent to a lead, newest first.
func (s *Service) ListLogs(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID) ([]transport.EmailLogResponse, error) {
	if _, err := s.leads.GetByID(ctx, actor, leadID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListLogs(ctx, actor.TenantID(), leadID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.EmailLogResponse, len(items))
	for i, l := range items {
		out[i] = toLogResponse(l)
	}
	return out, nil
}

func (s *Service) senderName(ctx context.Context, actor httpkit.Identity) string {
	user, err := s.users.GetUser(ctx, actor.TenantID(), actor.UserID())
	if err != nil {
		return ""
	}
	return user.Name
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("template not found")
	}
	return err
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := sanitize.Line(*v)
	return &trimmed
}

func toTemplateResponse(t repository.Template) transport.TemplateResponse {
	return transport.TemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subject:   t.Subject,
		Body:      t.Body,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

func toLogResponse(l repository.EmailLog) transport.EmailLogResponse {
	return transport.EmailLogResponse{
		ID:           l.ID,
		LeadID:       l.LeadID,
		LeadName:     l.LeadName,
		TemplateID:   l.TemplateID,
		TemplateName: l.TemplateName,
		Subject:      l.Subject,
		Body:         l.Body,
		SentBy:       l.SentBy,
		SentByName:   l.SentByName,
		SentAt:       l.SentAt,
	}
}
