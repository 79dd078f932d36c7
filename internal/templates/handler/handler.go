package handler

import (
	"net/http"

	"crm_backend/internal/templates/service"
	"crm_backend/internal/templates/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.List)
	rg.GET("/templates/:id/preview/:leadId", h.Preview)
	rg.POST("/leads/:id/emails", h.Send)
	rg.GET("/leads/:id/emails", h.ListLogs)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/templates", h.Create)
	rg.PATCH("/templates/:id", h.Update)
	rg.DELETE("/templates/:id", h.Delete)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", validator.Details(err))
		return false
	}
	return true
}

// GET /api/v1/templates
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	items, err := h.svc.List(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// GET /api/v1/templates/:id/preview/:leadId
func (h *Handler) Preview(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "leadId")
	if !ok {
		return
	}
	rendered, err := h.svc.Preview(c.Request.Context(), identity, id, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rendered)
}

// POST /api/v1/leads/:id/emails
func (h *Handler) Send(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.SendEmailRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.Send(c.Request.Context(), identity, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// GET /api/v1/leads/:id/emails
func (h *Handler) ListLogs(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListLogs(c.Request.Context(), identity, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// POST /api/v1/admin/templates
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateTemplateRequest
	if !h.bind(c, &req) {
		return
	}
	tmpl, err := h.svc.Create(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, tmpl)
}

// PATCH /api/v1/admin/templates/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateTemplateRequest
	if !h.bind(c, &req) {
		return
	}
	tmpl, err := h.svc.Update(c.Request.Context(), identity.TenantID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tmpl)
}

// DELETE /api/v1/admin/templates/:id
func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), identity.TenantID(), id)) {
		return
	}
	httpkit.NoContent(c)
}
