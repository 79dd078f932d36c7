// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, deleting and re-scoring leads. It is the
// only caller of the scoring engine.
package management

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	opCreate  = "create"
	opUpdate  = "update"
	opImport  = "import"
	opRescore = "rescore"

	defaultPageSize = 50

	msgLeadNotFound = "lead not found"
	msgForbidden    = "forbidden"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.LeadRescorer
	repository.ActivityStore
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo     Repository
	users    ports.UserProvider
	eventBus events.Bus
	phone    phone.Normalizer
	metrics  *Metrics
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new lead management service. metrics may be nil.
func New(repo Repository, users ports.UserProvider, eventBus events.Bus, normalizer phone.Normalizer, metrics *Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:     repo,
		users:    users,
		eventBus: eventBus,
		phone:    normalizer,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// Create validates, scores and stores a new lead. Source defaults to
// Website and status to New. Only admins may assign the lead to someone else.
func (s *Service) Create(ctx context.Context, actor httpkit.Identity, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	draft := repository.Lead{
		Name:          sanitize.Line(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         req.Phone,
		Company:       sanitize.Line(req.Company),
		Location:      linePtr(req.Location),
		Source:        domain.SourceWebsite,
		Status:        domain.StageNew,
		ExpectedValue: req.ExpectedValue,
		Notes:         sanitize.TextPtr(req.Notes),
		Tags:          sanitize.Tags(req.Tags),
	}
	if req.Source != nil && strings.TrimSpace(*req.Source) != "" {
		draft.Source = sanitize.Line(*req.Source)
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		draft.Status = sanitize.Line(*req.Status)
	}

	assignee := actor.UserID()
	if req.AssignedRep != nil && *req.AssignedRep != actor.UserID() {
		if !actor.IsAdmin() {
			return transport.LeadResponse{}, apperr.Forbidden("only admins can assign leads to other users")
		}
		assignee = *req.AssignedRep
	}

	lead, err := s.create(ctx, actor, draft, assignee, opCreate)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// create is shared by Create and ImportCSV so that every stored lead is
// scored exactly once, inline with its INSERT.
func (s *Service) create(ctx context.Context, actor httpkit.Identity, draft repository.Lead, assignee uuid.UUID, operation string) (repository.Lead, error) {
	if draft.Name == "" {
		return repository.Lead{}, apperr.Validation("name is required")
	}
	if draft.Company == "" {
		return repository.Lead{}, apperr.Validation("company is required")
	}

	rep, err := s.resolveRep(ctx, actor.TenantID(), assignee)
	if err != nil {
		return repository.Lead{}, err
	}

	draft.Phone = s.phone.Normalize(draft.Phone)
	draft.AssignedRepID = &rep.ID
	draft.AssignedRepName = rep.Name
	draft.Score, draft.ScoreReasons = ScoreLead(draft)

	createdBy := actor.UserID()
	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		OrganizationID:  actor.TenantID(),
		Name:            draft.Name,
		Email:           draft.Email,
		Phone:           draft.Phone,
		Company:         draft.Company,
		Location:        draft.Location,
		Source:          draft.Source,
		Status:          draft.Status,
		AssignedRepID:   draft.AssignedRepID,
		AssignedRepName: draft.AssignedRepName,
		ExpectedValue:   draft.ExpectedValue,
		Notes:           draft.Notes,
		Tags:            draft.Tags,
		Score:           draft.Score,
		ScoreReasons:    draft.ScoreReasons,
		CreatedBy:       &createdBy,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	s.metrics.observe(operation, lead.Score)
	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
		AssignedRepID:  rep.ID,
		Source:         lead.Source,
		Score:          lead.Score,
	})
	s.log.Info("lead created", "leadId", lead.ID, "score", lead.Score, "operation", operation)

	return lead, nil
}

// GetByID retrieves a lead the actor may see.
func (s *Service) GetByID(ctx context.Context, actor httpkit.Identity, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// Update applies a partial patch and re-scores the merged lead inside the
// same row-locked transaction, so the stored score always matches the
// stored fields.
func (s *Service) Update(ctx context.Context, actor httpkit.Identity, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if req.Name != nil && sanitize.Line(*req.Name) == "" {
		return transport.LeadResponse{}, apperr.Validation("name cannot be empty")
	}
	if req.Company != nil && sanitize.Line(*req.Company) == "" {
		return transport.LeadResponse{}, apperr.Validation("company cannot be empty")
	}

	var newRep *ports.UserInfo
	if req.AssignedRep.Set && req.AssignedRep.Value != nil {
		rep, err := s.resolveRep(ctx, actor.TenantID(), *req.AssignedRep.Value)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		newRep = &rep
	}

	before, after, err := s.repo.UpdateLocked(ctx, actor.TenantID(), id, func(current repository.Lead) (repository.Lead, error) {
		if !canAccess(actor, current) {
			return repository.Lead{}, apperr.Forbidden(msgForbidden)
		}
		if req.AssignedRep.Set && !sameUUID(current.AssignedRepID, req.AssignedRep.Value) && !actor.IsAdmin() {
			return repository.Lead{}, apperr.Forbidden("only admins can reassign leads")
		}

		next := applyPatch(current, req, s.phone)
		if req.AssignedRep.Set {
			next.AssignedRepID = nil
			next.AssignedRepName = ""
			if newRep != nil {
				next.AssignedRepID = &newRep.ID
				next.AssignedRepName = newRep.Name
			}
		}
		next.Score, next.ScoreReasons = ScoreLead(next)
		return next, nil
	})
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}

	s.metrics.observe(opUpdate, after.Score)
	s.eventBus.Publish(ctx, events.LeadUpdated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         after.ID,
		OrganizationID: after.OrganizationID,
		ActorID:        actor.UserID(),
		Score:          after.Score,
	})

	if before.Status != after.Status {
		s.recordStageChange(ctx, actor, before, after)
	}

	return ToLeadResponse(after), nil
}

func (s *Service) recordStageChange(ctx context.Context, actor httpkit.Identity, before, after repository.Lead) {
	actorID := actor.UserID()
	_, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		OrganizationID: after.OrganizationID,
		LeadID:         after.ID,
		Type:           string(domain.ActivityNote),
		Content:        fmt.Sprintf("Stage changed from %s to %s", before.Status, after.Status),
		CreatedBy:      &actorID,
		CreatedByName:  s.actorName(ctx, actor),
	})
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to record stage change", "leadId", after.ID, "error", err)
	}

	s.eventBus.Publish(ctx, events.LeadStageChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         after.ID,
		OrganizationID: after.OrganizationID,
		ActorID:        actorID,
		OldStage:       before.Status,
		NewStage:       after.Status,
	})
}

// Delete removes a lead. Admins may delete any lead, reps only their own.
func (s *Service) Delete(ctx context.Context, actor httpkit.Identity, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.TenantID(), id); err != nil {
		return mapNotFound(err)
	}

	s.eventBus.Publish(ctx, events.LeadDeleted{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         id,
		OrganizationID: actor.TenantID(),
	})
	return nil
}

// List retrieves a filtered, paginated list of the leads the actor may see.
func (s *Service) List(ctx context.Context, actor httpkit.Identity, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}

	params, err := buildListParams(actor, req)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	params.Limit = req.PageSize
	params.Offset = (req.Page - 1) * req.PageSize

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	return transport.LeadListResponse{
		Items:      ToLeadResponses(leads),
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: (total + req.PageSize - 1) / req.PageSize,
	}, nil
}

// ListVisible returns every lead the actor may see, newest first.
func (s *Service) ListVisible(ctx context.Context, actor httpkit.Identity) ([]transport.LeadResponse, error) {
	leads, err := s.listAll(ctx, actor, transport.ListLeadsRequest{})
	if err != nil {
		return nil, err
	}
	return ToLeadResponses(leads), nil
}

func (s *Service) listAll(ctx context.Context, actor httpkit.Identity, req transport.ListLeadsRequest) ([]repository.Lead, error) {
	params, err := buildListParams(actor, req)
	if err != nil {
		return nil, err
	}
	leads, _, err := s.repo.List(ctx, params)
	return leads, err
}

// Rescore recomputes and stores the score of every lead of an organization.
// It returns how many leads changed.
func (s *Service) Rescore(ctx context.Context, organizationID uuid.UUID) (int, error) {
	changed, err := s.repo.RescoreAll(ctx, organizationID, ScoreLead)
	if err != nil {
		return 0, err
	}

	s.metrics.addRescored(changed)
	s.eventBus.Publish(ctx, events.LeadsRescored{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		Count:          changed,
	})
	s.log.Info("leads rescored", "organizationId", organizationID, "changed", changed)
	return changed, nil
}

// RescoreAllOrganizations runs Rescore for every tenant and returns the total
// number of changed leads.
func (s *Service) RescoreAllOrganizations(ctx context.Context) (int, error) {
	orgIDs, err := s.repo.ListOrganizationIDs(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, orgID := range orgIDs {
		changed, err := s.Rescore(ctx, orgID)
		if err != nil {
			return total, fmt.Errorf("rescore organization %s: %w", orgID, err)
		}
		total += changed
	}
	return total, nil
}

func (s *Service) load(ctx context.Context, actor httpkit.Identity, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, actor.TenantID(), id)
	if err != nil {
		return repository.Lead{}, mapNotFound(err)
	}
	if !canAccess(actor, lead) {
		return repository.Lead{}, apperr.Forbidden(msgForbidden)
	}
	return lead, nil
}

func (s *Service) resolveRep(ctx context.Context, tenantID, userID uuid.UUID) (ports.UserInfo, error) {
	rep, err := s.users.GetUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return ports.UserInfo{}, apperr.Validation("assigned rep is not a member of this organization")
		}
		return ports.UserInfo{}, err
	}
	return rep, nil
}

func (s *Service) actorName(ctx context.Context, actor httpkit.Identity) string {
	user, err := s.users.GetUser(ctx, actor.TenantID(), actor.UserID())
	if err != nil {
		return ""
	}
	return user.Name
}

func applyPatch(current repository.Lead, req transport.UpdateLeadRequest, normalizer phone.Normalizer) repository.Lead {
	next := current
	if req.Name != nil {
		next.Name = sanitize.Line(*req.Name)
	}
	if req.Email != nil {
		next.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		next.Phone = normalizer.Normalize(*req.Phone)
	}
	if req.Company != nil {
		next.Company = sanitize.Line(*req.Company)
	}
	if req.Location != nil {
		next.Location = linePtr(req.Location)
	}
	if req.Source != nil {
		next.Source = sanitize.Line(*req.Source)
	}
	if req.Status != nil {
		next.Status = sanitize.Line(*req.Status)
	}
	if req.ExpectedValue != nil {
		next.ExpectedValue = *req.ExpectedValue
	}
	if req.Notes != nil {
		next.Notes = sanitize.TextPtr(req.Notes)
	}
	if req.Tags != nil {
		next.Tags = sanitize.Tags(*req.Tags)
	}
	return next
}

func buildListParams(actor httpkit.Identity, req transport.ListLeadsRequest) (repository.ListParams, error) {
	params := repository.ListParams{
		OrganizationID: actor.TenantID(),
		Search:         strings.TrimSpace(req.Search),
		Tag:            strings.TrimSpace(req.Tags),
	}

	if stage := strings.TrimSpace(req.Stage); stage != "" && stage != "all" {
		params.Status = &stage
	}
	if source := strings.TrimSpace(req.Source); source != "" && source != "all" {
		params.Source = &source
	}

	if !actor.IsAdmin() {
		self := actor.UserID()
		params.AssignedRepID = &self
	} else if rep := strings.TrimSpace(req.Rep); rep != "" && rep != "all" {
		repID, err := uuid.Parse(rep)
		if err != nil {
			return repository.ListParams{}, apperr.Validation("invalid rep filter")
		}
		params.AssignedRepID = &repID
	}

	if req.DateStart != "" {
		start, err := time.Parse(time.DateOnly, req.DateStart)
		if err != nil {
			return repository.ListParams{}, apperr.Validation("invalid dateStart")
		}
		params.CreatedFrom = &start
	}
	if req.DateEnd != "" {
		end, err := time.Parse(time.DateOnly, req.DateEnd)
		if err != nil {
			return repository.ListParams{}, apperr.Validation("invalid dateEnd")
		}
		// Inclusive through the end of that day.
		nextDay := end.AddDate(0, 0, 1)
		params.CreatedBefore = &nextDay
	}

	return params, nil
}

func canAccess(actor httpkit.Identity, lead repository.Lead) bool {
	return actor.IsAdmin() || lead.IsAssignedTo(actor.UserID())
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return err
}

func linePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitize.Line(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

func sameUUID(a *uuid.UUID, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
