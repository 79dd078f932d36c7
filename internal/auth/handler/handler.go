package handler

import (
	"net/http"

	"crm_backend/internal/auth/service"
	"crm_backend/internal/auth/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	avatarFormField = "file"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-up", h.SignUp)
	rg.POST("/sign-in", h.SignIn)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/sign-out", h.SignOut)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.POST("/reset-password", h.ResetPassword)
}

// bind decodes and validates the JSON body, answering 400 on failure.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return false
	}
	return true
}

// SignUp creates an organization and its admin.
// POST /api/v1/auth/sign-up
func (h *Handler) SignUp(c *gin.Context) {
	var req transport.SignUpRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// POST /api/v1/auth/sign-in
func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// POST /api/v1/auth/sign-out
func (h *Handler) SignOut(c *gin.Context) {
	var req transport.RefreshRequest
	if !h.bind(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.svc.SignOut(c.Request.Context(), req.RefreshToken)) {
		return
	}
	httpkit.NoContent(c)
}

// ForgotPassword always answers 202 so callers cannot probe for accounts.
// POST /api/v1/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req transport.ForgotPasswordRequest
	if !h.bind(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.svc.ForgotPassword(c.Request.Context(), req.Email)) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"message": "if the account exists, a reset link has been sent"})
}

// POST /api/v1/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req transport.ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)) {
		return
	}
	httpkit.NoContent(c)
}

// GET /api/v1/users/me
func (h *Handler) GetMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	resp, err := h.svc.GetMe(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// PATCH /api/v1/users/me
func (h *Handler) UpdateMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.UpdateMeRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.UpdateMe(c.Request.Context(), identity.UserID(), req.Name)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UploadAvatar accepts a multipart image in the "file" field.
// POST /api/v1/users/me/avatar
func (h *Handler) UploadAvatar(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	header, err := c.FormFile(avatarFormField)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	file, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer file.Close()

	resp, err := h.svc.UploadAvatar(c.Request.Context(), identity, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// GET /api/v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	users, err := h.svc.ListUsers(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": users})
}

// POST /api/v1/admin/users
func (h *Handler) CreateUser(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.CreateUser(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// PUT /api/v1/admin/users/:id/role
func (h *Handler) SetRole(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	userID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req transport.SetRoleRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.SetRole(c.Request.Context(), identity, userID, req.Role)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
