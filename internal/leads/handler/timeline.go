package handler

import (
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/leads/:id/activities
func (h *Handler) ListActivities(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.activities.List(c.Request.Context(), identity, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// POST /api/v1/leads/:id/activities
func (h *Handler) AddActivity(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.CreateActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	activity, err := h.activities.Add(c.Request.Context(), identity, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, activity)
}

// GET /api/v1/leads/:id/followups
func (h *Handler) ListLeadFollowups(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.followups.ListForLead(c.Request.Context(), identity, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// POST /api/v1/leads/:id/followups
func (h *Handler) CreateFollowup(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.CreateFollowupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	followup, err := h.followups.Create(c.Request.Context(), identity, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, followup)
}

// ListFollowups returns the caller's follow-ups grouped into overdue, today,
// upcoming and done.
// GET /api/v1/followups
func (h *Handler) ListFollowups(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	grouped, err := h.followups.Grouped(c.Request.Context(), identity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, grouped)
}

// PATCH /api/v1/followups/:id/toggle
func (h *Handler) ToggleFollowup(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	followup, err := h.followups.Toggle(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, followup)
}
