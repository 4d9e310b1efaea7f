package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/portfolio/backend/internal/application/identity"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/auth"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/portfolio/backend/internal/infrastructure/mail"
	"github.com/portfolio/backend/internal/infrastructure/otp"
	"github.com/portfolio/backend/internal/infrastructure/session"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"github.com/portfolio/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ownerPassword = "correct-horse-battery-9"

// memoryAdmins is an in-memory identity.AdminRepository
type memoryAdmins struct {
	mu     sync.Mutex
	admins map[uuid.UUID]*identity.Admin
}

func (r *memoryAdmins) Create(_ context.Context, a *identity.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[a.ID] = a
	return nil
}

func (r *memoryAdmins) Update(ctx context.Context, a *identity.Admin) error {
	return r.Create(ctx, a)
}

func (r *memoryAdmins) FindByID(_ context.Context, id uuid.UUID) (*identity.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryAdmins) find(match func(*identity.Admin) bool) (*identity.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if match(a) {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryAdmins) FindByUsername(_ context.Context, username string) (*identity.Admin, error) {
	return r.find(func(a *identity.Admin) bool { return strings.EqualFold(a.Username, username) })
}

func (r *memoryAdmins) FindByEmail(_ context.Context, email string) (*identity.Admin, error) {
	return r.find(func(a *identity.Admin) bool { return strings.EqualFold(a.Email, email) })
}

func (r *memoryAdmins) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *memoryAdmins) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

type inbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (i *inbox) Send(_ context.Context, msg mail.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sent = append(i.sent, msg)
	return nil
}

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

func (i *inbox) lastCode(t *testing.T) string {
	t.Helper()
	i.mu.Lock()
	defer i.mu.Unlock()
	require.NotEmpty(t, i.sent)
	code := sixDigits.FindString(i.sent[len(i.sent)-1].Text)
	require.NotEmpty(t, code)
	return code
}

type allowAll struct{}

func (allowAll) Reserve(string) (bool, time.Duration) { return true, 0 }

type authRig struct {
	engine *gin.Engine
	inbox  *inbox
}

func newAuthRig(t *testing.T, twoFactor bool) *authRig {
	t.Helper()
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-with-enough-length",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		TempTokenExpiration:    5 * time.Minute,
		Issuer:                 "portfolio-test",
		MaxRefreshCount:        5,
	})
	sessions := session.NewStore(store, 24*time.Hour)
	blacklist := auth.NewTokenBlacklist(store)

	admins := &memoryAdmins{admins: map[uuid.UUID]*identity.Admin{}}
	owner, err := identity.NewAdmin("owner", "owner@example.dev", ownerPassword)
	require.NoError(t, err)
	if twoFactor {
		require.NoError(t, owner.EnableTwoFactor())
	}
	require.NoError(t, admins.Create(context.Background(), owner))

	box := &inbox{}
	svc := appidentity.NewAuthService(appidentity.AuthDependencies{
		Admins:    admins,
		Tokens:    tokens,
		Sessions:  sessions,
		Codes:     otp.NewStore(store, config.AuthConfig{OTPLength: 6, OTPTTL: 5 * time.Minute, OTPMaxAttempts: 5}),
		Blacklist: blacklist,
		Mailer:    box,
		Resend:    allowAll{},
	}, appidentity.DefaultAuthServiceConfig(), zap.NewNop())

	h := NewAuthHandler(svc)
	gate := middleware.RequireAdmin(middleware.AuthConfig{Tokens: tokens, Sessions: sessions, Blacklist: blacklist})

	r := newTestEngine()
	g := r.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/verify-otp", h.VerifyOTP)
	g.POST("/refresh", h.RefreshToken)
	g.POST("/logout", gate, h.Logout)
	g.GET("/me", gate, h.GetCurrentUser)
	g.PUT("/password", gate, h.ChangePassword)

	return &authRig{engine: r, inbox: box}
}

func (r *authRig) login(t *testing.T) LoginResponse {
	t.Helper()
	w := perform(r.engine, http.MethodPost, "/auth/login", LoginRequest{Username: "owner", Password: ownerPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	return resp
}

func bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}

func TestAuthHandler_LoginWithoutTwoFactor(t *testing.T) {
	rig := newAuthRig(t, false)

	resp := rig.login(t)
	assert.False(t, resp.RequiresTwoFactor)
	require.NotNil(t, resp.Token)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	require.NotNil(t, resp.User)
	assert.Equal(t, "owner", resp.User.Username)
	assert.Empty(t, rig.inbox.sent)

	w := perform(rig.engine, http.MethodGet, "/auth/me", nil, bearer(resp.Token.AccessToken)...)
	require.Equal(t, http.StatusOK, w.Code)
	var me CurrentUserResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &me))
	assert.Equal(t, "owner", me.User.Username)
	assert.False(t, me.LastLogin.IsZero())
}

func TestAuthHandler_LoginRejectsBadPassword(t *testing.T) {
	rig := newAuthRig(t, false)

	w := perform(rig.engine, http.MethodPost, "/auth/login", LoginRequest{Username: "owner", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeEnvelope(t, w).errorInfo(t).Code)

	w = perform(rig.engine, http.MethodPost, "/auth/login", map[string]string{"username": "ab"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decodeEnvelope(t, w).fieldErrors(t)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestAuthHandler_TwoStepLogin(t *testing.T) {
	rig := newAuthRig(t, true)

	first := rig.login(t)
	require.True(t, first.RequiresTwoFactor)
	assert.Nil(t, first.Token)
	require.NotEmpty(t, first.TempToken)
	require.NotNil(t, first.TempTokenExpiresAt)

	// The temporary token never opens the admin area
	w := perform(rig.engine, http.MethodGet, "/auth/me", nil, bearer(first.TempToken)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(rig.engine, http.MethodPost, "/auth/verify-otp", VerifyOTPRequest{TempToken: first.TempToken, Code: "000000x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	code := rig.inbox.lastCode(t)
	w = perform(rig.engine, http.MethodPost, "/auth/verify-otp", VerifyOTPRequest{TempToken: first.TempToken, Code: code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second LoginResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &second))
	require.NotNil(t, second.Token)

	w = perform(rig.engine, http.MethodGet, "/auth/me", nil, bearer(second.Token.AccessToken)...)
	assert.Equal(t, http.StatusOK, w.Code)

	// A code is single-use
	w = perform(rig.engine, http.MethodPost, "/auth/verify-otp", VerifyOTPRequest{TempToken: first.TempToken, Code: code})
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestAuthHandler_LogoutEndsSession(t *testing.T) {
	rig := newAuthRig(t, false)
	resp := rig.login(t)
	token := resp.Token.AccessToken

	w := perform(rig.engine, http.MethodPost, "/auth/logout", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(rig.engine, http.MethodGet, "/auth/me", nil, bearer(token)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(rig.engine, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Bearer realm="admin"`, w.Header().Get("WWW-Authenticate"))
}

func TestAuthHandler_RefreshRotatesAccessToken(t *testing.T) {
	rig := newAuthRig(t, false)
	resp := rig.login(t)

	w := perform(rig.engine, http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: resp.Token.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed TokenResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	w = perform(rig.engine, http.MethodGet, "/auth/me", nil, bearer(refreshed.AccessToken)...)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(rig.engine, http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: resp.Token.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	rig := newAuthRig(t, false)
	resp := rig.login(t)
	token := resp.Token.AccessToken

	w := perform(rig.engine, http.MethodPut, "/auth/password",
		ChangePasswordRequest{OldPassword: ownerPassword, NewPassword: "short"}, bearer(token)...)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(rig.engine, http.MethodPut, "/auth/password",
		ChangePasswordRequest{OldPassword: ownerPassword, NewPassword: "an-entirely-new-passphrase-2"}, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(rig.engine, http.MethodGet, "/auth/me", nil, bearer(token)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "changing the password ends the session")
}
