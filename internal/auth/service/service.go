package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"crm_backend/internal/adapters/storage"
	"crm_backend/internal/auth/password"
	"crm_backend/internal/auth/repository"
	"crm_backend/internal/auth/token"
	"crm_backend/internal/auth/transport"
	"crm_backend/internal/events"
	"crm_backend/platform/apperr"
	"crm_backend/platform/config"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType = "access"

	refreshTokenBytes = 48
	resetTokenBytes   = 32

	msgInvalidCredentials = "invalid email or password"
	msgInvalidToken       = "invalid or expired token"
	msgUserNotFound       = "user not found"
)

// dummyHash keeps sign-in timing similar for unknown emails.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := password.Hash("not-a-real-password")
	return hash
})

type Service struct {
	repo         repository.AuthRepository
	cfg          config.AuthServiceConfig
	bus          events.Bus
	log          *logger.Logger
	storage      storage.StorageService
	avatarBucket string
	now          func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log, now: time.Now}
}

// SetAvatarStorage enables avatar uploads. Without it UploadAvatar reports Unavailable.
func (s *Service) SetAvatarStorage(store storage.StorageService, bucket string) {
	s.storage = store
	s.avatarBucket = bucket
}

// SignUp opens a new organization with the caller as its first admin and signs them in.
func (s *Service) SignUp(ctx context.Context, req transport.SignUpRequest) (transport.AuthResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	user, err := s.repo.CreateOrganizationWithAdmin(ctx, strings.TrimSpace(req.OrganizationName), repository.CreateUserParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         httpkit.RoleAdmin,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return transport.AuthResponse{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return transport.AuthResponse{}, err
	}

	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent:      events.NewBaseEvent(),
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		Name:           user.Name,
	})
	s.log.AuthEvent("sign_up", user.Email, true, "")

	return s.issueTokens(ctx, user)
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (transport.AuthResponse, error) {
	email = normalizeEmail(email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		_ = password.Compare(dummyHash(), plainPassword)
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return transport.AuthResponse{}, err
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	s.log.AuthEvent("sign_in", email, true, "")
	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token. The presented token is claimed in one
// conditional write, so concurrent refreshes of the same token yield one session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (transport.AuthResponse, error) {
	stored, err := s.repo.ConsumeRefreshToken(ctx, token.HashSHA256(refreshToken), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidToken)
	}
	if err != nil {
		return transport.AuthResponse{}, err
	}

	user, err := s.repo.GetUserByID(ctx, stored.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidToken)
	}
	if err != nil {
		return transport.AuthResponse{}, err
	}
	return s.issueTokens(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// ForgotPassword issues a reset token for a known email. Unknown emails
// succeed silently so the endpoint does not reveal accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	raw, hash, err := token.New(resetTokenBytes)
	if err != nil {
		return err
	}
	if err := s.repo.CreateResetToken(ctx, user.ID, hash, s.now().Add(s.cfg.GetResetTokenTTL())); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.PasswordResetRequested{
		BaseEvent:  events.NewBaseEvent(),
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		ResetToken: raw,
	})
	return nil
}

// ResetPassword consumes a reset token and signs the user out everywhere.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	hash := token.HashSHA256(rawToken)
	stored, err := s.repo.GetResetToken(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.BadRequest(msgInvalidToken)
	}
	if err != nil {
		return err
	}
	if stored.Consumed || s.now().After(stored.ExpiresAt) {
		return apperr.Gone(msgInvalidToken)
	}

	passwordHash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	// The token may have been used since the lookup; only the claim decides.
	if _, err := s.repo.ResetPassword(ctx, hash, passwordHash, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Gone(msgInvalidToken)
		}
		return err
	}

	s.log.Info("password reset completed", "userId", stored.UserID)
	return nil
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return transport.UserResponse{}, err
	}
	return s.toUserResponse(ctx, user), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, name string) (transport.UserResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return transport.UserResponse{}, apperr.Validation("name is required")
	}
	user, err := s.repo.UpdateName(ctx, userID, name)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return transport.UserResponse{}, err
	}
	return s.toUserResponse(ctx, user), nil
}

// UploadAvatar stores the image under <org>/<user>/ and records its key.
func (s *Service) UploadAvatar(ctx context.Context, id httpkit.Identity, fileName, contentType string, size int64, body io.Reader) (transport.UserResponse, error) {
	if s.storage == nil {
		return transport.UserResponse{}, apperr.Unavailable("avatar storage is not configured")
	}
	if err := storage.ValidateImage(contentType, size, s.storage.GetMaxFileSize()); err != nil {
		return transport.UserResponse{}, apperr.Validation(err.Error())
	}

	user, err := s.repo.GetUserByID(ctx, id.UserID())
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return transport.UserResponse{}, err
	}

	folder := fmt.Sprintf("%s/%s", id.TenantID(), id.UserID())
	key, err := s.storage.UploadFile(ctx, s.avatarBucket, folder, fileName, contentType, body, size)
	if err != nil {
		return transport.UserResponse{}, err
	}
	if err := s.repo.SetAvatarKey(ctx, user.ID, key); err != nil {
		return transport.UserResponse{}, err
	}

	if user.AvatarKey != nil && *user.AvatarKey != "" {
		if err := s.storage.DeleteObject(ctx, s.avatarBucket, *user.AvatarKey); err != nil {
			s.log.Warn("failed to delete previous avatar", "userId", user.ID, "error", err)
		}
	}

	user.AvatarKey = &key
	return s.toUserResponse(ctx, user), nil
}

// ListUsers returns the tenant's users with their lead and revenue figures.
func (s *Service) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]transport.UserWithStatsResponse, error) {
	users, err := s.repo.ListUsersWithStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result := make([]transport.UserWithStatsResponse, 0, len(users))
	for _, u := range users {
		result = append(result, transport.UserWithStatsResponse{
			UserResponse: s.toUserResponse(ctx, u.User),
			LeadCount:    u.LeadCount,
			WonCount:     u.WonCount,
			WonRevenue:   u.WonRevenue,
		})
	}
	return result, nil
}

// CreateUser adds a member to the admin's organization.
func (s *Service) CreateUser(ctx context.Context, tenantID uuid.UUID, req transport.CreateUserRequest) (transport.UserResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, err
	}
	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		OrganizationID: tenantID,
		Name:           strings.TrimSpace(req.Name),
		Email:          normalizeEmail(req.Email),
		PasswordHash:   hash,
		Role:           req.Role,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return transport.UserResponse{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.log.Info("user created", "userId", user.ID, "role", user.Role)
	return s.toUserResponse(ctx, user), nil
}

// SetRole changes another member's role. Admins cannot change their own role.
func (s *Service) SetRole(ctx context.Context, actor httpkit.Identity, userID uuid.UUID, role string) (transport.UserResponse, error) {
	if role != httpkit.RoleAdmin && role != httpkit.RoleRep {
		return transport.UserResponse{}, apperr.Validation("role must be admin or rep")
	}
	if actor.UserID() == userID {
		return transport.UserResponse{}, apperr.Forbidden("you cannot change your own role")
	}

	user, err := s.repo.SetRole(ctx, actor.TenantID(), userID, role)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.log.Info("user role changed", "userId", userID, "role", role, "by", actor.UserID())
	return s.toUserResponse(ctx, user), nil
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (transport.AuthResponse, error) {
	ttl := s.cfg.GetAccessTokenTTL()
	accessToken, err := s.signJWT(user, ttl)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	raw, hash, err := token.New(refreshTokenBytes)
	if err != nil {
		return transport.AuthResponse{}, err
	}
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, s.now().Add(s.cfg.GetRefreshTokenTTL())); err != nil {
		return transport.AuthResponse{}, err
	}

	return transport.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresIn:    int64(ttl.Seconds()),
		User:         s.toUserResponse(ctx, user),
	}, nil
}

func (s *Service) signJWT(user repository.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"tenant_id": user.OrganizationID.String(),
		"type":      accessTokenType,
		"roles":     []string{user.Role},
		"exp":       now.Add(ttl).Unix(),
		"iat":       now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func (s *Service) toUserResponse(ctx context.Context, user repository.User) transport.UserResponse {
	resp := transport.UserResponse{
		ID:             user.ID.String(),
		OrganizationID: user.OrganizationID.String(),
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		CreatedAt:      user.CreatedAt,
	}
	if s.storage != nil && user.AvatarKey != nil && *user.AvatarKey != "" {
		presigned, err := s.storage.GenerateDownloadURL(ctx, s.avatarBucket, *user.AvatarKey)
		if err != nil {
			s.log.Warn("failed to presign avatar", "userId", user.ID, "error", err)
		} else {
			resp.AvatarURL = &presigned.URL
		}
	}
	return resp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
