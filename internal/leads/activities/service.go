// Package activities records the timeline of touchpoints on a lead.
package activities

import (
	"context"
	"errors"

	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const maxContentLength = 2000

// Repository is what the activities service needs from storage.
type Repository interface {
	repository.LeadReader
	repository.ActivityStore
}

type Service struct {
	repo  Repository
	users ports.UserProvider
}

func New(repo Repository, users ports.UserProvider) *Service {
	return &Service{repo: repo, users: users}
}

// Add appends an activity to a lead the actor may see. HTML is stripped from
// the content before storage.
func (s *Service) Add(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID, req transport.CreateActivityRequest) (transport.ActivityResponse, error) {
	if !domain.ActivityType(req.Type).Valid() {
		return transport.ActivityResponse{}, apperr.Validation("invalid activity type")
	}
	content := sanitize.Text(req.Content)
	if content == "" {
		return transport.ActivityResponse{}, apperr.Validation("content is required")
	}
	if len([]rune(content)) > maxContentLength {
		return transport.ActivityResponse{}, apperr.Validation("content is too long")
	}

	if _, err := s.visibleLead(ctx, actor, leadID); err != nil {
		return transport.ActivityResponse{}, err
	}

	var authorName string
	if user, err := s.users.GetUser(ctx, actor.TenantID(), actor.UserID()); err == nil {
		authorName = user.Name
	}

	author := actor.UserID()
	activity, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		OrganizationID: actor.TenantID(),
		LeadID:         leadID,
		Type:           req.Type,
		Content:        content,
		CreatedBy:      &author,
		CreatedByName:  authorName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ActivityResponse{}, apperr.NotFound("lead not found")
		}
		return transport.ActivityResponse{}, err
	}
	return toResponse(activity), nil
}

// List returns the lead's activities, newest first.
func (s *Service) List(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID) ([]transport.ActivityResponse, error) {
	if _, err := s.visibleLead(ctx, actor, leadID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListActivities(ctx, actor.TenantID(), leadID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ActivityResponse, len(items))
	for i, item := range items {
		out[i] = toResponse(item)
	}
	return out, nil
}

func (s *Service) visibleLead(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, actor.TenantID(), leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, err
	}
	if !actor.IsAdmin() && !lead.IsAssignedTo(actor.UserID()) {
		return repository.Lead{}, apperr.Forbidden("forbidden")
	}
	return lead, nil
}

func toResponse(a repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:            a.ID,
		LeadID:        a.LeadID,
		Type:          a.Type,
		Content:       a.Content,
		CreatedBy:     a.CreatedBy,
		CreatedByName: a.CreatedByName,
		CreatedAt:     a.CreatedAt,
	}
}
