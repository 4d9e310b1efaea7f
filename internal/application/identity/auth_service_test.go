package identity

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/auth"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/portfolio/backend/internal/infrastructure/mail"
	"github.com/portfolio/backend/internal/infrastructure/otp"
	"github.com/portfolio/backend/internal/infrastructure/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "s3cret-pass"

// MockAdminRepository is a mock implementation of identity.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *identity.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *MockAdminRepository) Update(ctx context.Context, admin *identity.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *MockAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Admin), args.Error(1)
}

func (m *MockAdminRepository) FindByUsername(ctx context.Context, username string) (*identity.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Admin), args.Error(1)
}

func (m *MockAdminRepository) FindByEmail(ctx context.Context, email string) (*identity.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Admin), args.Error(1)
}

func (m *MockAdminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func (s *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent)
	code := codePattern.FindString(s.sent[len(s.sent)-1].Text)
	require.NotEmpty(t, code)
	return code
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fakeLimiter struct {
	allow bool
	wait  time.Duration
}

func (l *fakeLimiter) Reserve(string) (bool, time.Duration) { return l.allow, l.wait }

type authFixture struct {
	svc       *AuthService
	repo      *MockAdminRepository
	mailer    *captureSender
	events    *recordingPublisher
	sessions  *session.Store
	blacklist *auth.StoreTokenBlacklist
	tokens    *auth.JWTService
	limiter   *fakeLimiter
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-that-is-at-least-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		TempTokenExpiration:    5 * time.Minute,
		Issuer:                 "portfolio-test",
		MaxRefreshCount:        10,
	})
	f := &authFixture{
		repo:      new(MockAdminRepository),
		mailer:    &captureSender{},
		events:    &recordingPublisher{},
		sessions:  session.NewStore(store, 7*24*time.Hour),
		blacklist: auth.NewTokenBlacklist(store),
		tokens:    tokens,
		limiter:   &fakeLimiter{allow: true},
	}
	f.svc = NewAuthService(AuthDependencies{
		Admins:    f.repo,
		Tokens:    tokens,
		Sessions:  f.sessions,
		Codes:     otp.NewStore(store, config.AuthConfig{OTPLength: 6, OTPTTL: 5 * time.Minute, OTPMaxAttempts: 5}),
		Blacklist: f.blacklist,
		Mailer:    f.mailer,
		Events:    f.events,
		Resend:    f.limiter,
	}, DefaultAuthServiceConfig(), zap.NewNop())
	return f
}

func (f *authFixture) admin(t *testing.T, twoFactor bool) *identity.Admin {
	t.Helper()
	admin, err := identity.NewAdmin("owner", "owner@example.dev", testPassword)
	require.NoError(t, err)
	if twoFactor {
		require.NoError(t, admin.EnableTwoFactor())
	}
	f.repo.On("FindByUsername", mock.Anything, "owner").Return(admin, nil).Maybe()
	f.repo.On("FindByEmail", mock.Anything, "owner@example.dev").Return(admin, nil).Maybe()
	f.repo.On("FindByID", mock.Anything, admin.ID).Return(admin, nil).Maybe()
	f.repo.On("Update", mock.Anything, admin).Return(nil).Maybe()
	return admin
}

func TestAuthService_Login_IssuesSession(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.admin(t, false)
	ctx := context.Background()

	result, err := f.svc.Login(ctx, LoginInput{Identifier: "Owner", Password: testPassword, IP: "198.51.100.7"})
	require.NoError(t, err)

	assert.False(t, result.RequiresTwoFactor)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, admin.ID, result.User.ID)

	claims, err := f.tokens.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	active, err := f.sessions.IsActive(ctx, claims.SessionID, result.AccessToken)
	require.NoError(t, err)
	assert.True(t, active)

	current, err := f.svc.GetCurrentUser(ctx, claims.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "owner", current.User.Username)
	assert.WithinDuration(t, time.Now(), current.LastLogin, 2*time.Second)

	assert.Equal(t, []string{identity.EventTypeAdminLoggedIn}, f.events.types())
	assert.Equal(t, "198.51.100.7", admin.LastLoginIP)
	assert.Empty(t, f.mailer.sent)
}

func TestAuthService_Login_ByEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, false)

	_, err := f.svc.Login(context.Background(), LoginInput{Identifier: "Owner@Example.dev", Password: testPassword})
	require.NoError(t, err)
	f.repo.AssertCalled(t, "FindByEmail", mock.Anything, "owner@example.dev")
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.admin(t, false)
	f.repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginInput{Identifier: "ghost", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: "wrong-pass-1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, admin.FailedAttempts)
	f.repo.AssertCalled(t, "Update", mock.Anything, admin)
}

func TestAuthService_Login_LocksAfterMaxAttempts(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, false)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: "wrong-pass-1"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: "wrong-pass-1"})
	require.ErrorIs(t, err, ErrAccountLocked)

	_, err = f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestAuthService_TwoFactorFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, true)
	ctx := context.Background()

	challenge, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)
	require.True(t, challenge.RequiresTwoFactor)
	assert.NotEmpty(t, challenge.TempToken)
	assert.Empty(t, challenge.AccessToken)
	assert.Empty(t, f.events.events, "no login event before the code is verified")

	_, err = f.tokens.ValidateAccessToken(challenge.TempToken)
	assert.Error(t, err, "temporary tokens are not access tokens")

	code := f.mailer.lastCode(t)
	assert.Equal(t, "owner@example.dev", f.mailer.sent[0].To)

	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: wrongCode(code)})
	assert.ErrorIs(t, err, otp.ErrInvalidCode)

	result, err := f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: code})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, []string{identity.EventTypeAdminLoggedIn}, f.events.types())

	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: code})
	assert.ErrorIs(t, err, ErrTempTokenInvalid, "temporary tokens are single use")
}

func TestAuthService_VerifyOTP_AttemptsExceeded(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, true)
	ctx := context.Background()

	challenge, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)
	bad := wrongCode(f.mailer.lastCode(t))

	for i := 0; i < 4; i++ {
		_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: bad})
		require.ErrorIs(t, err, otp.ErrInvalidCode)
	}
	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: bad})
	require.ErrorIs(t, err, otp.ErrAttemptsExceeded)

	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: bad})
	assert.ErrorIs(t, err, ErrTempTokenInvalid)
}

func TestAuthService_Login_MailFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, true)
	f.mailer.err = shared.ErrUpstream

	_, err := f.svc.Login(context.Background(), LoginInput{Identifier: "owner", Password: testPassword})
	assert.ErrorIs(t, err, shared.ErrUnavailable)
}

func TestAuthService_ResendOTP(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, true)
	ctx := context.Background()

	challenge, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)
	first := f.mailer.lastCode(t)

	resent, err := f.svc.ResendOTP(ctx, challenge.TempToken)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), resent.ExpiresAt, 2*time.Second)
	second := f.mailer.lastCode(t)
	require.Len(t, f.mailer.sent, 2)

	if first != second {
		_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: first})
		assert.ErrorIs(t, err, otp.ErrInvalidCode, "the previous code is replaced")
	}
	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{TempToken: challenge.TempToken, Code: second})
	assert.NoError(t, err)
}

func TestAuthService_ResendOTP_Throttled(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, true)
	ctx := context.Background()

	challenge, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)

	f.limiter.allow, f.limiter.wait = false, 20*time.Second
	_, err = f.svc.ResendOTP(ctx, challenge.TempToken)
	require.ErrorIs(t, err, shared.ErrRateLimited)

	var retry *shared.RetryAfterError
	require.ErrorAs(t, err, &retry)
	assert.Equal(t, 20*time.Second, retry.RetryAfter)
	assert.Len(t, f.mailer.sent, 1)
}

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, false)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.AccessToken, refreshed.AccessToken)

	claims, err := f.tokens.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	active, err := f.sessions.IsActive(ctx, claims.SessionID, refreshed.AccessToken)
	require.NoError(t, err)
	assert.True(t, active)
	stale, err := f.sessions.IsActive(ctx, claims.SessionID, login.AccessToken)
	require.NoError(t, err)
	assert.False(t, stale, "the previous access token no longer matches the session")

	_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid, "refresh tokens are single use")

	_, err = f.svc.RefreshToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestAuthService_Logout_ClearsSession(t *testing.T) {
	f := newAuthFixture(t)
	f.admin(t, false)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)
	claims, err := f.tokens.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, LogoutInput{
		AccessJTI: claims.ID,
		AccessTTL: claims.GetRemainingTTL(),
		SessionID: claims.SessionID,
	}))

	_, err = f.sessions.Load(ctx, claims.SessionID)
	assert.ErrorIs(t, err, identity.ErrNoSession)
	_, err = f.svc.GetCurrentUser(ctx, claims.SessionID)
	assert.ErrorIs(t, err, ErrSessionExpired)

	revoked, err := f.blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.admin(t, false)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)
	claims, err := f.tokens.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, ChangePasswordInput{AdminID: admin.ID, SessionID: claims.SessionID, OldPassword: "wrong-pass-1", NewPassword: "n3w-password"})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PASSWORD", ""))

	require.NoError(t, f.svc.ChangePassword(ctx, ChangePasswordInput{
		AdminID: admin.ID, SessionID: claims.SessionID, OldPassword: testPassword, NewPassword: "n3w-password",
	}))
	assert.True(t, admin.VerifyPassword("n3w-password"))
	assert.Contains(t, f.events.types(), identity.EventTypeAdminPasswordChanged)

	_, err = f.sessions.Load(ctx, claims.SessionID)
	assert.ErrorIs(t, err, identity.ErrNoSession)
	_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestAuthService_SetTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.admin(t, false)
	ctx := context.Background()

	_, err := f.svc.SetTwoFactor(ctx, SetTwoFactorInput{AdminID: admin.ID, Enabled: true, Password: "wrong-pass-1"})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PASSWORD", ""))
	assert.False(t, admin.TwoFactorEnabled)

	profile, err := f.svc.SetTwoFactor(ctx, SetTwoFactorInput{AdminID: admin.ID, Enabled: true, Password: testPassword})
	require.NoError(t, err)
	assert.True(t, profile.TwoFactorEnabled)

	result, err := f.svc.Login(ctx, LoginInput{Identifier: "owner", Password: testPassword})
	require.NoError(t, err)
	assert.True(t, result.RequiresTwoFactor)
}

func TestAuthService_CreateAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.repo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)
	_, err := f.svc.CreateAdmin(ctx, CreateAdminInput{Username: "Taken", Email: "a@example.dev", Password: testPassword})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	f.repo.On("ExistsByUsername", mock.Anything, "fresh").Return(false, nil)
	f.repo.On("ExistsByEmail", mock.Anything, "fresh@example.dev").Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*identity.Admin")).Return(nil)

	profile, err := f.svc.CreateAdmin(ctx, CreateAdminInput{
		Username: "fresh", Email: "fresh@example.dev", Password: testPassword, DisplayName: "Fresh Admin", TwoFactor: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fresh Admin", profile.DisplayName)
	assert.True(t, profile.TwoFactorEnabled)
	f.repo.AssertExpectations(t)
}

// wrongCode returns a six-digit code different from code
func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
