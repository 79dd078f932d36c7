package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/leads/ports"
	leadtransport "crm_backend/internal/leads/transport"
	"crm_backend/internal/templates/repository"
	"crm_backend/internal/templates/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	templates map[uuid.UUID]repository.Template
	logs      []repository.EmailLog
}

func (m *memRepo) ListTemplates(context.Context, uuid.UUID) ([]repository.Template, error) {
	var out []repository.Template
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *memRepo) GetTemplate(_ context.Context, orgID, id uuid.UUID) (repository.Template, error) {
	t, ok := m.templates[id]
	if !ok || t.OrganizationID != orgID {
		return repository.Template{}, repository.ErrNotFound
	}
	return t, nil
}

func (m *memRepo) CreateTemplate(_ context.Context, t repository.Template) (repository.Template, error) {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	m.templates[t.ID] = t
	return t, nil
}

func (m *memRepo) UpdateTemplate(_ context.Context, orgID, id uuid.UUID, name, subject, body *string) (repository.Template, error) {
	t, ok := m.templates[id]
	if !ok || t.OrganizationID != orgID {
		return repository.Template{}, repository.ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if subject != nil {
		t.Subject = *subject
	}
	if body != nil {
		t.Body = *body
	}
	m.templates[id] = t
	return t, nil
}

func (m *memRepo) DeleteTemplate(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	if _, ok := m.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memRepo) CreateLog(_ context.Context, l repository.EmailLog) (repository.EmailLog, error) {
	l.ID = uuid.New()
	l.SentAt = time.Now()
	m.logs = append(m.logs, l)
	return l, nil
}

func (m *memRepo) ListLogs(context.Context, uuid.UUID, uuid.UUID) ([]repository.EmailLog, error) {
	return m.logs, nil
}

type fakeLeads struct{ lead leadtransport.LeadResponse }

func (f fakeLeads) GetByID(_ context.Context, _ httpkit.Identity, id uuid.UUID) (leadtransport.LeadResponse, error) {
	if id != f.lead.ID {
		return leadtransport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	return f.lead, nil
}

type fakeActivities struct{ added []leadtransport.CreateActivityRequest }

func (f *fakeActivities) Add(_ context.Context, _ httpkit.Identity, leadID uuid.UUID, req leadtransport.CreateActivityRequest) (leadtransport.ActivityResponse, error) {
	f.added = append(f.added, req)
	return leadtransport.ActivityResponse{LeadID: leadID, Type: req.Type, Content: req.Content}, nil
}

type users struct{}

func (users) GetUser(_ context.Context, _ uuid.UUID, id uuid.UUID) (ports.UserInfo, error) {
	return ports.UserInfo{ID: id, Name: "Ravi"}, nil
}

type sentMail struct{ to, subject, body string }

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) SendPasswordResetEmail(context.Context, string, string, string) error {
	return nil
}

func (f *fakeSender) SendFollowupReminderEmail(context.Context, string, string, string, string, time.Time) error {
	return nil
}

func (f *fakeSender) SendCustomEmail(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type recordingBus struct{ published []events.Event }

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

type fixture struct {
	svc        *Service
	repo       *memRepo
	activities *fakeActivities
	sender     *fakeSender
	bus        *recordingBus
	actor      httpkit.Identity
	lead       leadtransport.LeadResponse
}

func newFixture(leadEmail string) *fixture {
	actor := httpkit.NewIdentity(uuid.New(), uuid.New(), httpkit.RoleRep)
	lead := leadtransport.LeadResponse{ID: uuid.New(), OrganizationID: actor.TenantID(), Name: "Priya", Company: "Acme", Email: leadEmail}
	f := &fixture{
		repo:       &memRepo{templates: map[uuid.UUID]repository.Template{}},
		activities: &fakeActivities{},
		sender:     &fakeSender{},
		bus:        &recordingBus{},
		actor:      actor,
		lead:       lead,
	}
	f.svc = New(f.repo, fakeLeads{lead: lead}, f.activities, users{}, f.sender, f.bus, logger.Discard())
	return f
}

func TestRender(t *testing.T) {
	subject, body := Render(repository.Template{
		Subject: "Hello {{leadName}}",
		Body:    "Dear {{leadName}} of {{company}}, {{leadName}} again. {{unknown}}",
	}, "Priya", "Acme")

	assert.Equal(t, "Hello Priya", subject)
	assert.Equal(t, "Dear Priya of Acme, Priya again. {{unknown}}", body)
}

func TestSendWithTemplate(t *testing.T) {
	f := newFixture("priya@acme.test")
	ctx := context.Background()

	tmpl, err := f.svc.Create(ctx, f.actor, transport.CreateTemplateRequest{Name: "Intro", Subject: "Hi {{leadName}}", Body: "From {{company}}"})
	require.NoError(t, err)

	preview, err := f.svc.Preview(ctx, f.actor, tmpl.ID, f.lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi Priya", preview.Subject)

	resp, err := f.svc.Send(ctx, f.actor, f.lead.ID, transport.SendEmailRequest{TemplateID: &tmpl.ID, Subject: preview.Subject, Body: preview.Body})
	require.NoError(t, err)

	assert.True(t, resp.Delivered)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, sentMail{"priya@acme.test", "Hi Priya", "From Acme"}, f.sender.sent[0])
	assert.Equal(t, "Intro", resp.Log.TemplateName)
	assert.Equal(t, "Ravi", resp.Log.SentByName)
	assert.Equal(t, "Priya", resp.Log.LeadName)

	require.Len(t, f.activities.added, 1)
	assert.Equal(t, "email", f.activities.added[0].Type)
	assert.Equal(t, "Email sent: Hi Priya", f.activities.added[0].Content)

	require.Len(t, f.bus.published, 1)
	assert.Equal(t, "templates.email.sent", f.bus.published[0].EventName())
}

func TestSendCustomWithoutAddressStillLogs(t *testing.T) {
	f := newFixture("")

	resp, err := f.svc.Send(context.Background(), f.actor, f.lead.ID, transport.SendEmailRequest{Subject: "Quick note", Body: "Hello"})
	require.NoError(t, err)

	assert.False(t, resp.Delivered)
	assert.Empty(t, f.sender.sent)
	assert.Equal(t, CustomTemplateName, resp.Log.TemplateName)
	assert.Len(t, f.repo.logs, 1)
}

func TestSendDeliveryFailureWritesNothing(t *testing.T) {
	f := newFixture("priya@acme.test")
	f.sender.err = errors.New("smtp down")

	_, err := f.svc.Send(context.Background(), f.actor, f.lead.ID, transport.SendEmailRequest{Subject: "Quick note", Body: "Hello"})
	require.Error(t, err)

	assert.Empty(t, f.repo.logs)
	assert.Empty(t, f.activities.added)
	assert.Empty(t, f.bus.published)
}

func TestSendValidation(t *testing.T) {
	f := newFixture("priya@acme.test")
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.actor, f.lead.ID, transport.SendEmailRequest{Subject: "  ", Body: "Hello"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Send(ctx, f.actor, uuid.New(), transport.SendEmailRequest{Subject: "x", Body: "y"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	missing := uuid.New()
	_, err = f.svc.Send(ctx, f.actor, f.lead.ID, transport.SendEmailRequest{TemplateID: &missing, Subject: "x", Body: "y"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture("")
	ctx := context.Background()

	tmpl, err := f.svc.Create(ctx, f.actor, transport.CreateTemplateRequest{Name: "Intro", Subject: "Hi", Body: "Body"})
	require.NoError(t, err)

	blank := "   "
	_, err = f.svc.Update(ctx, f.actor.TenantID(), tmpl.ID, transport.UpdateTemplateRequest{Name: &blank})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	renamed := "Welcome"
	updated, err := f.svc.Update(ctx, f.actor.TenantID(), tmpl.ID, transport.UpdateTemplateRequest{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", updated.Name)
	assert.Equal(t, "Hi", updated.Subject)

	require.NoError(t, f.svc.Delete(ctx, f.actor.TenantID(), tmpl.ID))
	assert.True(t, apperr.Is(f.svc.Delete(ctx, f.actor.TenantID(), tmpl.ID), apperr.KindNotFound))
}
