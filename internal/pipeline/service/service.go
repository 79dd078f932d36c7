// Package service implements the kanban pipeline: stage management, the
// board view and moving leads between stages.
package service

import (
	"context"
	"errors"
	"sort"

	"crm_backend/internal/leads/domain"
	leadtransport "crm_backend/internal/leads/transport"
	"crm_backend/internal/pipeline/repository"
	"crm_backend/internal/pipeline/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const defaultStageColor = "#6366f1"

// Leads is what the board needs from the leads module.
type Leads interface {
	ListVisible(ctx context.Context, actor httpkit.Identity) ([]leadtransport.LeadResponse, error)
	GetByID(ctx context.Context, actor httpkit.Identity, id uuid.UUID) (leadtransport.LeadResponse, error)
	Update(ctx context.Context, actor httpkit.Identity, id uuid.UUID, req leadtransport.UpdateLeadRequest) (leadtransport.LeadResponse, error)
}

type Service struct {
	repo  repository.StageStore
	leads Leads
	log   *logger.Logger
}

func New(repo repository.StageStore, leads Leads, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, leads: leads, log: log}
}

// ListStages returns the organization's stages ordered for display, seeding
// the default board the first time. Stages sharing a name are collapsed to
// the lowest-ordered one.
func (s *Service) ListStages(ctx context.Context, organizationID uuid.UUID) ([]transport.StageResponse, error) {
	stages, err := s.repo.ListStages(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	if len(stages) == 0 {
		defaults := make([]repository.NewStage, len(domain.DefaultStages))
		for i, stage := range domain.DefaultStages {
			defaults[i] = repository.NewStage{Name: stage.Name, Color: stage.Color}
		}
		seeded, err := s.repo.SeedStages(ctx, organizationID, defaults)
		if err != nil {
			return nil, err
		}
		if seeded {
			s.log.Info("default pipeline stages created", "organizationId", organizationID)
		}
		if stages, err = s.repo.ListStages(ctx, organizationID); err != nil {
			return nil, err
		}
	}

	return toResponses(Dedupe(stages)), nil
}

// Dedupe keeps the first stage of every name after sorting by order.
func Dedupe(stages []repository.Stage) []repository.Stage {
	sorted := make([]repository.Stage, len(stages))
	copy(sorted, stages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	seen := make(map[string]struct{}, len(sorted))
	out := make([]repository.Stage, 0, len(sorted))
	for _, stage := range sorted {
		if _, dup := seen[stage.Name]; dup {
			continue
		}
		seen[stage.Name] = struct{}{}
		out = append(out, stage)
	}
	return out
}

// CreateStage appends a stage at the end of the board.
func (s *Service) CreateStage(ctx context.Context, organizationID uuid.UUID, req transport.CreateStageRequest) (transport.StageResponse, error) {
	name := sanitize.Line(req.Name)
	if name == "" {
		return transport.StageResponse{}, apperr.Validation("name is required")
	}
	color := req.Color
	if color == "" {
		color = defaultStageColor
	}

	stage, err := s.repo.CreateStage(ctx, organizationID, repository.NewStage{Name: name, Color: color})
	if err != nil {
		return transport.StageResponse{}, err
	}
	return toResponse(stage), nil
}

func (s *Service) UpdateStage(ctx context.Context, organizationID, id uuid.UUID, req transport.UpdateStageRequest) (transport.StageResponse, error) {
	var name *string
	if req.Name != nil {
		clean := sanitize.Line(*req.Name)
		if clean == "" {
			return transport.StageResponse{}, apperr.Validation("name cannot be empty")
		}
		name = &clean
	}

	stage, err := s.repo.UpdateStage(ctx, organizationID, id, name, req.Color)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.StageResponse{}, apperr.NotFound("stage not found")
		}
		return transport.StageResponse{}, err
	}
	return toResponse(stage), nil
}

func (s *Service) DeleteStage(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.repo.DeleteStage(ctx, organizationID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("stage not found")
		}
		return err
	}
	return nil
}

// RemoveDuplicates deletes stages whose name repeats and returns how many went.
func (s *Service) RemoveDuplicates(ctx context.Context, organizationID uuid.UUID) (int, error) {
	removed, err := s.repo.DeleteDuplicateStages(ctx, organizationID)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Info("duplicate stages removed", "organizationId", organizationID, "removed", removed)
	}
	return removed, nil
}

// Board groups the leads the actor may see into one column per stage.
// Leads whose status matches no stage are not shown.
func (s *Service) Board(ctx context.Context, actor httpkit.Identity) (transport.BoardResponse, error) {
	stages, err := s.ListStages(ctx, actor.TenantID())
	if err != nil {
		return transport.BoardResponse{}, err
	}
	leads, err := s.leads.ListVisible(ctx, actor)
	if err != nil {
		return transport.BoardResponse{}, err
	}
	return BuildBoard(stages, leads), nil
}

// BuildBoard is the pure part of Board.
func BuildBoard(stages []transport.StageResponse, leads []leadtransport.LeadResponse) transport.BoardResponse {
	columns := make([]transport.BoardColumn, len(stages))
	index := make(map[string]int, len(stages))
	for i, stage := range stages {
		columns[i] = transport.BoardColumn{Stage: stage, Leads: []leadtransport.LeadResponse{}}
		index[stage.Name] = i
	}

	for _, lead := range leads {
		i, ok := index[lead.Status]
		if !ok {
			continue
		}
		columns[i].Leads = append(columns[i].Leads, lead)
		columns[i].Count++
		columns[i].TotalValue += lead.ExpectedValue
	}
	return transport.BoardResponse{Columns: columns}
}

// MoveLead sets a lead's stage. Moving to the current stage is a no-op;
// otherwise the change goes through the regular lead update, which re-scores.
func (s *Service) MoveLead(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID, req transport.MoveLeadRequest) (leadtransport.LeadResponse, error) {
	stage := sanitize.Line(req.Stage)
	if stage == "" {
		return leadtransport.LeadResponse{}, apperr.Validation("stage is required")
	}

	current, err := s.leads.GetByID(ctx, actor, leadID)
	if err != nil {
		return leadtransport.LeadResponse{}, err
	}
	if current.Status == stage {
		return current, nil
	}

	return s.leads.Update(ctx, actor, leadID, leadtransport.UpdateLeadRequest{Status: &stage})
}

func toResponse(stage repository.Stage) transport.StageResponse {
	return transport.StageResponse{ID: stage.ID, Name: stage.Name, Order: stage.Order, Color: stage.Color}
}

func toResponses(stages []repository.Stage) []transport.StageResponse {
	out := make([]transport.StageResponse, len(stages))
	for i, stage := range stages {
		out[i] = toResponse(stage)
	}
	return out
}
