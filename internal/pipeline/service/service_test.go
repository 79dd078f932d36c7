package service

import (
	"context"
	"testing"

	leadtransport "crm_backend/internal/leads/transport"
	"crm_backend/internal/pipeline/repository"
	"crm_backend/internal/pipeline/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStages struct {
	stages []repository.Stage
	seeds  int
}

func (m *memStages) ListStages(context.Context, uuid.UUID) ([]repository.Stage, error) {
	return append([]repository.Stage(nil), m.stages...), nil
}

func (m *memStages) SeedStages(_ context.Context, orgID uuid.UUID, stages []repository.NewStage) (bool, error) {
	if len(m.stages) > 0 {
		return false, nil
	}
	m.seeds++
	for i, s := range stages {
		m.stages = append(m.stages, repository.Stage{ID: uuid.New(), OrganizationID: orgID, Name: s.Name, Order: i, Color: s.Color})
	}
	return true, nil
}

func (m *memStages) CreateStage(_ context.Context, orgID uuid.UUID, s repository.NewStage) (repository.Stage, error) {
	stage := repository.Stage{ID: uuid.New(), OrganizationID: orgID, Name: s.Name, Order: len(m.stages), Color: s.Color}
	m.stages = append(m.stages, stage)
	return stage, nil
}

func (m *memStages) UpdateStage(_ context.Context, _ uuid.UUID, id uuid.UUID, name, color *string) (repository.Stage, error) {
	for i := range m.stages {
		if m.stages[i].ID == id {
			if name != nil {
				m.stages[i].Name = *name
			}
			if color != nil {
				m.stages[i].Color = *color
			}
			return m.stages[i], nil
		}
	}
	return repository.Stage{}, repository.ErrNotFound
}

func (m *memStages) DeleteStage(context.Context, uuid.UUID, uuid.UUID) error {
	return repository.ErrNotFound
}

func (m *memStages) DeleteDuplicateStages(context.Context, uuid.UUID) (int, error) {
	before := len(m.stages)
	m.stages = Dedupe(m.stages)
	return before - len(m.stages), nil
}

type fakeLeads struct {
	leads   []leadtransport.LeadResponse
	updates []leadtransport.UpdateLeadRequest
}

func (f *fakeLeads) ListVisible(context.Context, httpkit.Identity) ([]leadtransport.LeadResponse, error) {
	return f.leads, nil
}

func (f *fakeLeads) GetByID(_ context.Context, _ httpkit.Identity, id uuid.UUID) (leadtransport.LeadResponse, error) {
	for _, l := range f.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return leadtransport.LeadResponse{}, apperr.NotFound("lead not found")
}

func (f *fakeLeads) Update(_ context.Context, _ httpkit.Identity, id uuid.UUID, req leadtransport.UpdateLeadRequest) (leadtransport.LeadResponse, error) {
	f.updates = append(f.updates, req)
	lead, err := f.GetByID(context.Background(), nil, id)
	lead.Status = *req.Status
	return lead, err
}

func TestListStagesSeedsDefaultsOnce(t *testing.T) {
	repo := &memStages{}
	svc := New(repo, &fakeLeads{}, nil)
	orgID := uuid.New()

	stages, err := svc.ListStages(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, stages, 7)
	assert.Equal(t, "New", stages[0].Name)
	assert.Equal(t, "#6366f1", stages[0].Color)
	assert.Equal(t, "Lost", stages[6].Name)
	assert.Equal(t, "#ef4444", stages[6].Color)

	_, err = svc.ListStages(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.seeds)
}

func TestDedupeKeepsLowestOrder(t *testing.T) {
	stages := []repository.Stage{
		{Name: "Won", Order: 5, Color: "late"},
		{Name: "New", Order: 0},
		{Name: "Won", Order: 2, Color: "early"},
	}

	got := Dedupe(stages)
	require.Len(t, got, 2)
	assert.Equal(t, "New", got[0].Name)
	assert.Equal(t, "early", got[1].Color)
}

func TestStageCRUD(t *testing.T) {
	repo := &memStages{}
	svc := New(repo, &fakeLeads{}, nil)
	ctx := context.Background()
	orgID := uuid.New()

	created, err := svc.CreateStage(ctx, orgID, transport.CreateStageRequest{Name: " Demo "})
	require.NoError(t, err)
	assert.Equal(t, "Demo", created.Name)
	assert.Equal(t, defaultStageColor, created.Color)
	assert.Equal(t, 0, created.Order)

	_, err = svc.CreateStage(ctx, orgID, transport.CreateStageRequest{Name: "Demo"})
	require.NoError(t, err)
	removed, err := svc.RemoveDuplicates(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	color := "#000000"
	updated, err := svc.UpdateStage(ctx, orgID, created.ID, transport.UpdateStageRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#000000", updated.Color)

	_, err = svc.UpdateStage(ctx, orgID, uuid.New(), transport.UpdateStageRequest{Color: &color})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.True(t, apperr.Is(svc.DeleteStage(ctx, orgID, uuid.New()), apperr.KindNotFound))
}

func TestBuildBoard(t *testing.T) {
	stages := []transport.StageResponse{{Name: "New"}, {Name: "Won"}}
	leads := []leadtransport.LeadResponse{
		{Status: "New", ExpectedValue: 100},
		{Status: "Won", ExpectedValue: 500},
		{Status: "New", ExpectedValue: 50},
		{Status: "Archived", ExpectedValue: 999},
	}

	board := BuildBoard(stages, leads)
	require.Len(t, board.Columns, 2)
	assert.Equal(t, 2, board.Columns[0].Count)
	assert.Equal(t, int64(150), board.Columns[0].TotalValue)
	assert.Equal(t, 1, board.Columns[1].Count)
	assert.Equal(t, int64(500), board.Columns[1].TotalValue)
}

func TestMoveLead(t *testing.T) {
	leadID := uuid.New()
	leads := &fakeLeads{leads: []leadtransport.LeadResponse{{ID: leadID, Status: "New"}}}
	svc := New(&memStages{}, leads, nil)
	actor := httpkit.NewIdentity(uuid.New(), uuid.New(), httpkit.RoleRep)

	same, err := svc.MoveLead(context.Background(), actor, leadID, transport.MoveLeadRequest{Stage: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", same.Status)
	assert.Empty(t, leads.updates, "unchanged stage does not write")

	moved, err := svc.MoveLead(context.Background(), actor, leadID, transport.MoveLeadRequest{Stage: "Won"})
	require.NoError(t, err)
	assert.Equal(t, "Won", moved.Status)
	require.Len(t, leads.updates, 1)
	assert.Equal(t, "Won", *leads.updates[0].Status)

	_, err = svc.MoveLead(context.Background(), actor, uuid.New(), transport.MoveLeadRequest{Stage: "Won"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
