package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"crm_backend/internal/auth/repository"
	"crm_backend/internal/auth/token"
	"crm_backend/internal/auth/transport"
	"crm_backend/internal/events"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string         { return "test-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return time.Hour }
func (testConfig) GetResetTokenTTL() time.Duration   { return 30 * time.Minute }

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

type fakeRepo struct {
	mu            sync.Mutex
	users         map[uuid.UUID]repository.User
	refreshTokens map[string]repository.StoredToken
	resetTokens   map[string]repository.StoredToken
	// beforeClaim runs ahead of each refresh claim, outside the lock.
	beforeClaim func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:         map[uuid.UUID]repository.User{},
		refreshTokens: map[string]repository.StoredToken{},
		resetTokens:   map[string]repository.StoredToken{},
	}
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (f *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) ListUsers(_ context.Context, org uuid.UUID) ([]repository.User, error) {
	var out []repository.User
	for _, u := range f.users {
		if u.OrganizationID == org {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListUsersWithStats(ctx context.Context, org uuid.UUID) ([]repository.UserWithStats, error) {
	users, _ := f.ListUsers(ctx, org)
	out := make([]repository.UserWithStats, 0, len(users))
	for _, u := range users {
		out = append(out, repository.UserWithStats{User: u, LeadCount: 3, WonCount: 1, WonRevenue: 5000})
	}
	return out, nil
}

func (f *fakeRepo) CreateOrganizationWithAdmin(ctx context.Context, _ string, p repository.CreateUserParams) (repository.User, error) {
	p.OrganizationID = uuid.New()
	return f.CreateUser(ctx, p)
}

func (f *fakeRepo) CreateUser(ctx context.Context, p repository.CreateUserParams) (repository.User, error) {
	if _, err := f.GetUserByEmail(ctx, p.Email); err == nil {
		return repository.User{}, repository.ErrEmailTaken
	}
	u := repository.User{
		ID:             uuid.New(),
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Email:          p.Email,
		PasswordHash:   p.PasswordHash,
		Role:           p.Role,
		CreatedAt:      time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeRepo) UpdateName(_ context.Context, id uuid.UUID, name string) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	u.Name = name
	f.users[id] = u
	return u, nil
}

func (f *fakeRepo) SetAvatarKey(_ context.Context, id uuid.UUID, key string) error {
	u := f.users[id]
	u.AvatarKey = &key
	f.users[id] = u
	return nil
}

func (f *fakeRepo) SetRole(_ context.Context, org, id uuid.UUID, role string) (repository.User, error) {
	u, ok := f.users[id]
	if !ok || u.OrganizationID != org {
		return repository.User{}, repository.ErrNotFound
	}
	u.Role = role
	f.users[id] = u
	return u, nil
}

func (f *fakeRepo) CreateRefreshToken(_ context.Context, id uuid.UUID, hash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshTokens[hash] = repository.StoredToken{UserID: id, ExpiresAt: exp}
	return nil
}

func (f *fakeRepo) ConsumeRefreshToken(_ context.Context, hash string, now time.Time) (repository.StoredToken, error) {
	if hook := f.beforeClaim; hook != nil {
		f.beforeClaim = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.refreshTokens[hash]
	if !ok || t.Consumed || !now.Before(t.ExpiresAt) {
		return repository.StoredToken{}, repository.ErrNotFound
	}
	t.Consumed = true
	f.refreshTokens[hash] = t
	return t, nil
}

func (f *fakeRepo) RevokeRefreshToken(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.refreshTokens[hash]; ok {
		t.Consumed = true
		f.refreshTokens[hash] = t
	}
	return nil
}

func (f *fakeRepo) CreateResetToken(_ context.Context, id uuid.UUID, hash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetTokens[hash] = repository.StoredToken{UserID: id, ExpiresAt: exp}
	return nil
}

func (f *fakeRepo) GetResetToken(_ context.Context, hash string) (repository.StoredToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.resetTokens[hash]
	if !ok {
		return repository.StoredToken{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) ResetPassword(_ context.Context, hash, passwordHash string, now time.Time) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.resetTokens[hash]
	if !ok || t.Consumed || !now.Before(t.ExpiresAt) {
		return uuid.Nil, repository.ErrNotFound
	}
	t.Consumed = true
	f.resetTokens[hash] = t

	u := f.users[t.UserID]
	u.PasswordHash = passwordHash
	f.users[t.UserID] = u
	for h, rt := range f.refreshTokens {
		if rt.UserID == t.UserID {
			rt.Consumed = true
			f.refreshTokens[h] = rt
		}
	}
	return t.UserID, nil
}

func newTestService() (*Service, *fakeRepo, *recordingBus) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	return New(repo, testConfig{}, bus, logger.Discard()), repo, bus
}

func signUp(t *testing.T, svc *Service) transport.AuthResponse {
	t.Helper()
	resp, err := svc.SignUp(context.Background(), transport.SignUpRequest{
		Name:             "Asha Rao",
		Email:            " Asha@Example.com ",
		Password:         "Sup3r$ecret",
		OrganizationName: "Acme Sales",
	})
	require.NoError(t, err)
	return resp
}

func TestSignUpCreatesAdminAndIssuesTenantToken(t *testing.T) {
	svc, _, bus := newTestService()
	resp := signUp(t, svc)

	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, httpkit.RoleAdmin, resp.User.Role)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Len(t, bus.events, 1)

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID, claims["sub"])
	assert.Equal(t, resp.User.OrganizationID, claims["tenant_id"])
	assert.Equal(t, "access", claims["type"])

	_, err = svc.SignUp(context.Background(), transport.SignUpRequest{
		Name: "Dup", Email: "asha@example.com", Password: "Sup3r$ecret", OrganizationName: "Other",
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	signUp(t, svc)

	_, err := svc.SignIn(context.Background(), "asha@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = svc.SignIn(context.Background(), "nobody@example.com", "Sup3r$ecret")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	resp, err := svc.SignIn(context.Background(), "ASHA@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestService()
	first := signUp(t, svc)

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "reused refresh token must be rejected")

	require.NoError(t, svc.SignOut(context.Background(), second.RefreshToken))
	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestRefreshTokenYieldsOneSession(t *testing.T) {
	svc, repo, _ := newTestService()
	first := signUp(t, svc)

	var innerErr error
	repo.beforeClaim = func() {
		_, innerErr = svc.Refresh(context.Background(), first.RefreshToken)
	}
	_, outerErr := svc.Refresh(context.Background(), first.RefreshToken)

	require.NoError(t, innerErr)
	assert.True(t, apperr.Is(outerErr, apperr.KindUnauthorized), "a refresh token interleaved with its own rotation must lose")
}

func TestConcurrentRefreshSucceedsOnce(t *testing.T) {
	svc, _, _ := newTestService()
	first := signUp(t, svc)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(context.Background(), first.RefreshToken); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, _, _ := newTestService()
	first := signUp(t, svc)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := svc.Refresh(context.Background(), first.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestConcurrentResetSucceedsOnce(t *testing.T) {
	svc, _, bus := newTestService()
	signUp(t, svc)
	require.NoError(t, svc.ForgotPassword(context.Background(), "asha@example.com"))
	reset := bus.events[len(bus.events)-1].(events.PasswordResetRequested)

	errs := make(chan error, 2)
	for _, pw := range []string{"N3w$ecret!", "An0ther$ecret"} {
		go func() { errs <- svc.ResetPassword(context.Background(), reset.ResetToken, pw) }()
	}
	first, second := <-errs, <-errs

	if first == nil {
		assert.True(t, apperr.Is(second, apperr.KindGone))
	} else {
		require.NoError(t, second)
		assert.True(t, apperr.Is(first, apperr.KindGone))
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, repo, bus := newTestService()
	session := signUp(t, svc)
	bus.events = nil

	require.NoError(t, svc.ForgotPassword(context.Background(), "unknown@example.com"))
	assert.Empty(t, bus.events)

	require.NoError(t, svc.ForgotPassword(context.Background(), "asha@example.com"))
	require.Len(t, bus.events, 1)
	reset := bus.events[0].(events.PasswordResetRequested)
	assert.NotEmpty(t, reset.ResetToken)

	require.NoError(t, svc.ResetPassword(context.Background(), reset.ResetToken, "N3w$ecret!"))
	assert.True(t, repo.refreshTokens[token.HashSHA256(session.RefreshToken)].Consumed)

	err := svc.ResetPassword(context.Background(), reset.ResetToken, "An0ther$ecret")
	assert.True(t, apperr.Is(err, apperr.KindGone), "reset tokens are single use")

	_, err = svc.SignIn(context.Background(), "asha@example.com", "N3w$ecret!")
	require.NoError(t, err)
}

func TestResetPasswordExpired(t *testing.T) {
	svc, _, bus := newTestService()
	signUp(t, svc)
	require.NoError(t, svc.ForgotPassword(context.Background(), "asha@example.com"))
	reset := bus.events[len(bus.events)-1].(events.PasswordResetRequested)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	err := svc.ResetPassword(context.Background(), reset.ResetToken, "N3w$ecret!")
	assert.True(t, apperr.Is(err, apperr.KindGone))
}

func TestSetRole(t *testing.T) {
	svc, _, _ := newTestService()
	admin := signUp(t, svc)
	adminID := uuid.MustParse(admin.User.ID)
	tenantID := uuid.MustParse(admin.User.OrganizationID)
	actor := httpkit.NewIdentity(adminID, tenantID, httpkit.RoleAdmin)

	rep, err := svc.CreateUser(context.Background(), tenantID, transport.CreateUserRequest{
		Name: "Vikram", Email: "vikram@example.com", Password: "Sup3r$ecret", Role: httpkit.RoleRep,
	})
	require.NoError(t, err)

	_, err = svc.SetRole(context.Background(), actor, adminID, httpkit.RoleRep)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	updated, err := svc.SetRole(context.Background(), actor, uuid.MustParse(rep.ID), httpkit.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, httpkit.RoleAdmin, updated.Role)

	otherTenant := httpkit.NewIdentity(uuid.New(), uuid.New(), httpkit.RoleAdmin)
	_, err = svc.SetRole(context.Background(), otherTenant, uuid.MustParse(rep.ID), httpkit.RoleRep)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUploadAvatarWithoutStorage(t *testing.T) {
	svc, _, _ := newTestService()
	admin := signUp(t, svc)
	id := httpkit.NewIdentity(uuid.MustParse(admin.User.ID), uuid.MustParse(admin.User.OrganizationID), httpkit.RoleAdmin)

	_, err := svc.UploadAvatar(context.Background(), id, "me.png", "image/png", 10, strings.NewReader("0123456789"))
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestListUsersIncludesStats(t *testing.T) {
	svc, _, _ := newTestService()
	admin := signUp(t, svc)

	users, err := svc.ListUsers(context.Background(), uuid.MustParse(admin.User.OrganizationID))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 3, users[0].LeadCount)
	assert.Equal(t, int64(5000), users[0].WonRevenue)
}
