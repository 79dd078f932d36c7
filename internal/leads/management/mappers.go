package management

import (
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/scoring"
	"crm_backend/internal/leads/transport"
)

// ToLeadResponse maps a stored lead to its API shape. The score is read as
// stored; readers never recompute it.
func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}
	reasons := lead.ScoreReasons
	if reasons == nil {
		reasons = []string{}
	}

	return transport.LeadResponse{
		ID:              lead.ID,
		OrganizationID:  lead.OrganizationID,
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		Company:         lead.Company,
		Location:        lead.Location,
		Source:          lead.Source,
		Status:          lead.Status,
		AssignedRep:     lead.AssignedRepID,
		AssignedRepName: lead.AssignedRepName,
		ExpectedValue:   lead.ExpectedValue,
		Notes:           lead.Notes,
		Tags:            tags,
		Score:           lead.Score,
		ScoreReasons:    reasons,
		ScoreTier:       scoring.Tier(lead.Score),
		CreatedBy:       lead.CreatedBy,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}

// ToLeadResponses maps a slice of leads.
func ToLeadResponses(leads []repository.Lead) []transport.LeadResponse {
	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}
	return items
}

func scoringInput(lead repository.Lead) scoring.Input {
	return scoring.Input{
		Email:   lead.Email,
		Phone:   lead.Phone,
		Company: lead.Company,
		Source:  lead.Source,
		Status:  lead.Status,
	}
}

// ScoreLead computes the score columns of lead. It satisfies repository.ScoreFunc.
func ScoreLead(lead repository.Lead) (int, []string) {
	result := scoring.Calculate(scoringInput(lead))
	return result.Score, result.Reasons
}
