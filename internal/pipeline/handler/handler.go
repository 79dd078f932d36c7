package handler

import (
	"net/http"

	"crm_backend/internal/pipeline/service"
	"crm_backend/internal/pipeline/transport"
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
	rg.GET("/stages", h.ListStages)
	rg.GET("/board", h.Board)
	rg.PATCH("/leads/:id/stage", h.MoveLead)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/stages", h.CreateStage)
	rg.POST("/stages/remove-duplicates", h.RemoveDuplicates)
	rg.PATCH("/stages/:id", h.UpdateStage)
	rg.DELETE("/stages/:id", h.DeleteStage)
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

// GET /api/v1/pipeline/stages
func (h *Handler) ListStages(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	stages, err := h.svc.ListStages(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": stages})
}

// GET /api/v1/pipeline/board
func (h *Handler) Board(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	board, err := h.svc.Board(c.Request.Context(), identity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, board)
}

// MoveLead is the drop target of the board.
// PATCH /api/v1/pipeline/leads/:id/stage
func (h *Handler) MoveLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.MoveLeadRequest
	if !h.bind(c, &req) {
		return
	}
	lead, err := h.svc.MoveLead(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// POST /api/v1/admin/pipeline/stages
func (h *Handler) CreateStage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateStageRequest
	if !h.bind(c, &req) {
		return
	}
	stage, err := h.svc.CreateStage(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, stage)
}

// PATCH /api/v1/admin/pipeline/stages/:id
func (h *Handler) UpdateStage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateStageRequest
	if !h.bind(c, &req) {
		return
	}
	stage, err := h.svc.UpdateStage(c.Request.Context(), identity.TenantID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stage)
}

// DELETE /api/v1/admin/pipeline/stages/:id
func (h *Handler) DeleteStage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteStage(c.Request.Context(), identity.TenantID(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// POST /api/v1/admin/pipeline/stages/remove-duplicates
func (h *Handler) RemoveDuplicates(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	removed, err := h.svc.RemoveDuplicates(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.RemoveDuplicatesResponse{Removed: removed})
}
