package transport

import "time"

type SignUpRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,strongpassword"`
	OrganizationName string `json:"organizationName" validate:"required,max=120"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

type UpdateMeRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,strongpassword"`
	Role     string `json:"role" validate:"required,oneof=admin rep"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin rep"`
}

type UserResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	AvatarURL      *string   `json:"avatarUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type UserWithStatsResponse struct {
	UserResponse
	LeadCount  int   `json:"leadCount"`
	WonCount   int   `json:"wonCount"`
	WonRevenue int64 `json:"wonRevenue"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         UserResponse `json:"user"`
}
