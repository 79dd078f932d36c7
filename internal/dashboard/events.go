package dashboard

import (
	"crm_backend/internal/events"

	"github.com/google/uuid"
)

func tenantOf(event events.Event) *uuid.UUID {
	switch e := event.(type) {
	case events.LeadCreated:
		return &e.OrganizationID
	case events.LeadUpdated:
		return &e.OrganizationID
	case events.LeadDeleted:
		return &e.OrganizationID
	case events.LeadsRescored:
		return &e.OrganizationID
	case events.FollowupScheduled:
		return &e.OrganizationID
	default:
		return nil
	}
}
