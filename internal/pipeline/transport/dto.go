package transport

import (
	leadtransport "crm_backend/internal/leads/transport"

	"github.com/google/uuid"
)

type CreateStageRequest struct {
	Name  string `json:"name" validate:"required,max=60"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateStageRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=60"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type MoveLeadRequest struct {
	Stage string `json:"stage" validate:"required,max=60"`
}

type StageResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Order int       `json:"order"`
	Color string    `json:"color"`
}

// BoardColumn is one stage of the kanban board with the leads in it.
type BoardColumn struct {
	Stage      StageResponse                `json:"stage"`
	Leads      []leadtransport.LeadResponse `json:"leads"`
	Count      int                          `json:"count"`
	TotalValue int64                        `json:"totalValue"`
}

type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
}

type RemoveDuplicatesResponse struct {
	Removed int `json:"removed"`
}
