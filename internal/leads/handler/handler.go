package handler

import (
	"net/http"

	"crm_backend/internal/leads/activities"
	"crm_backend/internal/leads/management"
	"crm_backend/internal/leads/scheduling"
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	mgmt       *management.Service
	activities *activities.Service
	followups  *scheduling.Service
	val        *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	importFormField = "file"
	maxImportSize   = 5 << 20
)

func New(mgmt *management.Service, activitiesSvc *activities.Service, followups *scheduling.Service, val *validator.Validator) *Handler {
	return &Handler{mgmt: mgmt, activities: activitiesSvc, followups: followups, val: val}
}

// RegisterRoutes mounts the lead routes on the /leads group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/export", h.Export)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/activities", h.ListActivities)
	rg.POST("/:id/activities", h.AddActivity)
	rg.GET("/:id/followups", h.ListLeadFollowups)
	rg.POST("/:id/followups", h.CreateFollowup)
}

// RegisterFollowupRoutes mounts the cross-lead follow-up routes.
func (h *Handler) RegisterFollowupRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListFollowups)
	rg.PATCH("/:id/toggle", h.ToggleFollowup)
}

// RegisterAdminRoutes mounts the admin-only lead routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.POST("/rescore", h.Rescore)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) validate(c *gin.Context, req interface{}) bool {
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return false
	}
	return true
}

// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.ListLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.mgmt.List(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lead, err := h.mgmt.Create(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, lead)
}

// GET /api/v1/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	lead, err := h.mgmt.GetByID(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// PATCH /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lead, err := h.mgmt.Update(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// DELETE /api/v1/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.mgmt.Delete(c.Request.Context(), identity, id)) {
		return
	}
	httpkit.NoContent(c)
}

// Export streams the filtered leads as CSV.
// GET /api/v1/leads/export
func (h *Handler) Export(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.ListLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+h.mgmt.ExportName()+`"`)
	c.Status(http.StatusOK)
	if err := h.mgmt.ExportCSV(c.Request.Context(), identity, req, c.Writer); err != nil {
		// Headers are already out; record the failure for the request logger.
		_ = c.Error(err)
	}
}

// Import creates leads from an uploaded CSV file.
// POST /api/v1/admin/leads/import
func (h *Handler) Import(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	fileHeader, err := c.FormFile(importFormField)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	if fileHeader.Size > maxImportSize {
		httpkit.Error(c, http.StatusBadRequest, "file is too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.mgmt.ImportCSV(c.Request.Context(), identity, file)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Rescore recomputes every stored score of the caller's organization.
// POST /api/v1/admin/leads/rescore
func (h *Handler) Rescore(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	updated, err := h.mgmt.Rescore(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.RescoreResponse{Updated: updated})
}
