package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/auth"
	"github.com/portfolio/backend/internal/infrastructure/mail"
	"github.com/portfolio/backend/internal/infrastructure/otp"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountLocked      = shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	ErrAccountDisabled    = shared.NewDomainError("ACCOUNT_DISABLED", "Account has been deactivated")
	ErrTempTokenInvalid   = shared.NewDomainError("TOKEN_INVALID", "Verification session is invalid or has expired, please log in again")
	ErrRefreshInvalid     = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrRefreshExpired     = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrSessionExpired     = shared.NewDomainError("SESSION_EXPIRED", "Session has expired, please log in again")
)

// SessionStore keeps the three-key server-side session
type SessionStore interface {
	Save(ctx context.Context, sessionID string, sess identity.Session) error
	Load(ctx context.Context, sessionID string) (identity.Session, error)
	Clear(ctx context.Context, sessionID string) error
	Rotate(ctx context.Context, sessionID, token string) error
}

// CodeStore issues and checks one-time codes keyed by temporary token ID
type CodeStore interface {
	Issue(ctx context.Context, key string) (string, error)
	Verify(ctx context.Context, key, code string) error
	Discard(ctx context.Context, key string) error
	TTL() time.Duration
}

// ResendLimiter throttles code re-delivery per admin
type ResendLimiter interface {
	Reserve(key string) (bool, time.Duration)
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // failed attempts before the account locks
	LockDuration     time.Duration // how long a lock lasts
	SiteName         string        // shown in OTP mail
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
		SiteName:         "Portfolio",
	}
}

// AuthDependencies groups the collaborators of AuthService
type AuthDependencies struct {
	Admins    identity.AdminRepository
	Tokens    *auth.JWTService
	Sessions  SessionStore
	Codes     CodeStore
	Blacklist auth.TokenBlacklist
	Mailer    mail.Sender
	Events    shared.EventPublisher
	Resend    ResendLimiter
}

// AuthService handles admin authentication
type AuthService struct {
	AuthDependencies
	config AuthServiceConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(deps AuthDependencies, config AuthServiceConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		AuthDependencies: deps,
		config:           config,
		logger:           logger,
		now:              time.Now,
	}
}

// Login checks the password. Admins with two-factor enabled get a temporary
// token and an e-mailed code instead of a session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	s.logger.Info("Login attempt", zap.String("identifier", identifier), zap.String("ip", input.IP))

	admin, err := s.findAdmin(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Unknown admin during login", zap.String("identifier", identifier))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.checkCanLogin(admin); err != nil {
		s.logger.Warn("Login refused", zap.String("username", admin.Username), zap.Error(err))
		return nil, err
	}

	if !admin.VerifyPassword(input.Password) {
		locked := admin.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.Admins.Update(ctx, admin); err != nil {
			s.logger.Error("Failed to update admin after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", admin.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, ErrAccountLocked
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("username", admin.Username),
			zap.Int("failed_attempts", admin.FailedAttempts))
		return nil, ErrInvalidCredentials
	}

	if admin.TwoFactorEnabled {
		return s.startTwoFactor(ctx, admin)
	}
	return s.completeLogin(ctx, admin, input.IP)
}

// VerifyOTP exchanges a temporary token and its code for a session
func (s *AuthService) VerifyOTP(ctx context.Context, input VerifyOTPInput) (*LoginResult, error) {
	claims, err := s.validateTempToken(ctx, input.TempToken)
	if err != nil {
		return nil, err
	}

	if err := s.Codes.Verify(ctx, claims.ID, strings.TrimSpace(input.Code)); err != nil {
		if errors.Is(err, otp.ErrAttemptsExceeded) || errors.Is(err, otp.ErrExpired) {
			s.burnTempToken(ctx, claims)
		}
		s.logger.Warn("OTP verification failed", zap.String("admin_id", claims.AdminID), zap.Error(err))
		return nil, err
	}

	first, err := s.Blacklist.ConsumeOnce(ctx, claims.ID, claims.GetRemainingTTL())
	if err != nil {
		return nil, fmt.Errorf("consume temporary token: %w", err)
	}
	if !first {
		return nil, ErrTempTokenInvalid
	}

	admin, err := s.loadAdmin(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.checkCanLogin(admin); err != nil {
		return nil, err
	}
	return s.completeLogin(ctx, admin, input.IP)
}

// ResendOTP issues a fresh code for a pending temporary token
func (s *AuthService) ResendOTP(ctx context.Context, tempToken string) (*ResendOTPResult, error) {
	claims, err := s.validateTempToken(ctx, tempToken)
	if err != nil {
		return nil, err
	}

	if s.Resend != nil {
		if ok, wait := s.Resend.Reserve(claims.AdminID); !ok {
			s.logger.Warn("OTP resend throttled", zap.String("admin_id", claims.AdminID), zap.Duration("retry_after", wait))
			return nil, shared.NewRateLimitError(wait)
		}
	}

	admin, err := s.loadAdmin(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.sendCode(ctx, admin, claims.ID); err != nil {
		return nil, err
	}
	return &ResendOTPResult{ExpiresAt: s.now().Add(s.Codes.TTL())}, nil
}

// RefreshToken rotates a refresh token. The old refresh token becomes unusable
// and the session is rebound to the new access token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResult, error) {
	pair, old, err := s.Tokens.RefreshTokenPair(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token rejected", zap.Error(err))
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, ErrRefreshExpired
		case errors.Is(err, auth.ErrMaxRefreshExceeded):
			return nil, ErrSessionExpired
		default:
			return nil, ErrRefreshInvalid
		}
	}

	revoked, err := s.Blacklist.IsAdminTokenRevoked(ctx, old.AdminID, old.GetIssuedAtTime())
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrSessionExpired
	}

	first, err := s.Blacklist.ConsumeOnce(ctx, old.ID, old.GetRemainingTTL())
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if !first {
		s.logger.Warn("Refresh token reused", zap.String("admin_id", old.AdminID), zap.String("session_id", old.SessionID))
		return nil, ErrRefreshInvalid
	}

	admin, err := s.loadAdmin(ctx, old)
	if err != nil {
		return nil, err
	}
	if err := s.checkCanLogin(admin); err != nil {
		return nil, err
	}

	if err := s.Sessions.Rotate(ctx, old.SessionID, pair.AccessToken); err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	s.logger.Info("Token refreshed", zap.String("admin_id", old.AdminID), zap.Int("refresh_count", old.RefreshCount+1))
	return tokenResult(pair), nil
}

// Logout revokes the access token and clears the session
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessJTI != "" {
		if err := s.Blacklist.AddToBlacklist(ctx, input.AccessJTI, input.AccessTTL); err != nil {
			return err
		}
	}
	if input.SessionID != "" {
		if err := s.Sessions.Clear(ctx, input.SessionID); err != nil {
			return err
		}
	}
	s.logger.Info("Admin logged out", zap.String("session_id", input.SessionID))
	return nil
}

// GetCurrentUser returns the profile and last login stored in the session
func (s *AuthService) GetCurrentUser(ctx context.Context, sessionID string) (*CurrentUserResult, error) {
	sess, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return &CurrentUserResult{User: sess.User, LastLogin: sess.LastLogin}, nil
}

// ChangePassword verifies the current password, sets the new one and
// invalidates every token the admin holds, including the caller's.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	admin, err := s.Admins.FindByID(ctx, input.AdminID)
	if err != nil {
		return err
	}
	if err := admin.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.Admins.Update(ctx, admin); err != nil {
		s.logger.Error("Failed to update admin after password change", zap.Error(err))
		return err
	}

	if err := s.Blacklist.RevokeAdminTokens(ctx, admin.ID.String(), s.Tokens.RefreshTokenExpiration()); err != nil {
		return err
	}
	if input.SessionID != "" {
		if err := s.Sessions.Clear(ctx, input.SessionID); err != nil {
			return err
		}
	}
	s.publish(ctx, admin)

	s.logger.Info("Admin password changed", zap.String("admin_id", admin.ID.String()))
	return nil
}

// SetTwoFactor enables or disables the e-mailed code step after re-checking the password
func (s *AuthService) SetTwoFactor(ctx context.Context, input SetTwoFactorInput) (*identity.Profile, error) {
	admin, err := s.Admins.FindByID(ctx, input.AdminID)
	if err != nil {
		return nil, err
	}
	if !admin.VerifyPassword(input.Password) {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	if input.Enabled {
		if err := admin.EnableTwoFactor(); err != nil {
			return nil, err
		}
	} else {
		admin.DisableTwoFactor()
	}
	if err := s.Admins.Update(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("Two-factor setting changed",
		zap.String("admin_id", admin.ID.String()),
		zap.Bool("enabled", input.Enabled))
	profile := admin.Profile()
	return &profile, nil
}

// CreateAdmin seeds a new admin account
func (s *AuthService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*identity.Profile, error) {
	exists, err := s.Admins.ExistsByUsername(ctx, strings.ToLower(strings.TrimSpace(input.Username)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}
	exists, err = s.Admins.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	admin, err := identity.NewAdmin(input.Username, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != "" {
		if err := admin.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.TwoFactor {
		if err := admin.EnableTwoFactor(); err != nil {
			return nil, err
		}
	}
	if err := s.Admins.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("Admin created", zap.String("admin_id", admin.ID.String()), zap.String("username", admin.Username))
	profile := admin.Profile()
	return &profile, nil
}

func (s *AuthService) findAdmin(ctx context.Context, identifier string) (*identity.Admin, error) {
	if identifier == "" {
		return nil, shared.ErrNotFound
	}
	if strings.Contains(identifier, "@") {
		return s.Admins.FindByEmail(ctx, strings.ToLower(identifier))
	}
	return s.Admins.FindByUsername(ctx, strings.ToLower(identifier))
}

func (s *AuthService) loadAdmin(ctx context.Context, claims *auth.Claims) (*identity.Admin, error) {
	id, err := claims.GetAdminUUID()
	if err != nil {
		return nil, ErrTempTokenInvalid
	}
	admin, err := s.Admins.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	return admin, err
}

func (s *AuthService) checkCanLogin(admin *identity.Admin) error {
	if admin.CanLogin() {
		return nil
	}
	if admin.IsLocked() {
		return ErrAccountLocked
	}
	return ErrAccountDisabled
}

func (s *AuthService) startTwoFactor(ctx context.Context, admin *identity.Admin) (*LoginResult, error) {
	temp, err := s.Tokens.GenerateTempToken(admin.ID, admin.Username)
	if err != nil {
		return nil, fmt.Errorf("generate temporary token: %w", err)
	}
	if err := s.sendCode(ctx, admin, temp.JTI); err != nil {
		return nil, err
	}

	s.logger.Info("Two-factor challenge issued", zap.String("admin_id", admin.ID.String()))
	return &LoginResult{
		RequiresTwoFactor:  true,
		TempToken:          temp.Token,
		TempTokenExpiresAt: temp.ExpiresAt,
	}, nil
}

func (s *AuthService) sendCode(ctx context.Context, admin *identity.Admin, key string) error {
	code, err := s.Codes.Issue(ctx, key)
	if err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}
	msg := mail.OTPMessage(admin.Email, s.config.SiteName, code, s.Codes.TTL())
	if err := s.Mailer.Send(ctx, msg); err != nil {
		_ = s.Codes.Discard(ctx, key)
		s.logger.Error("Failed to deliver OTP", zap.String("admin_id", admin.ID.String()), zap.Error(err))
		return fmt.Errorf("%w: could not deliver verification code", shared.ErrUnavailable)
	}
	return nil
}

func (s *AuthService) validateTempToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.Tokens.ValidateTempToken(token)
	if err != nil {
		return nil, ErrTempTokenInvalid
	}
	used, err := s.Blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrTempTokenInvalid
	}
	return claims, nil
}

func (s *AuthService) burnTempToken(ctx context.Context, claims *auth.Claims) {
	if err := s.Blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke temporary token", zap.Error(err))
	}
}

func (s *AuthService) completeLogin(ctx context.Context, admin *identity.Admin, ip string) (*LoginResult, error) {
	admin.RecordLoginSuccess(ip)

	sessionID := uuid.NewString()
	pair, err := s.Tokens.GenerateTokenPair(auth.GenerateTokenInput{
		AdminID:   admin.ID,
		Username:  admin.Username,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("generate token pair: %w", err)
	}

	profile := admin.Profile()
	sess := identity.Session{Token: pair.AccessToken, User: profile, LastLogin: *admin.LastLoginAt}
	if err := s.Sessions.Save(ctx, sessionID, sess); err != nil {
		return nil, err
	}

	if err := s.Admins.Update(ctx, admin); err != nil {
		s.logger.Error("Failed to update admin after successful login", zap.Error(err))
	}
	s.publish(ctx, admin)

	s.logger.Info("Admin logged in",
		zap.String("admin_id", admin.ID.String()),
		zap.String("session_id", sessionID))

	return &LoginResult{TokenResult: *tokenResult(pair), User: profile}, nil
}

func (s *AuthService) publish(ctx context.Context, admin *identity.Admin) {
	events := admin.PullDomainEvents()
	if s.Events == nil || len(events) == 0 {
		return
	}
	if err := s.Events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish admin events", zap.Error(err))
	}
}

func tokenResult(pair *auth.TokenPair) *TokenResult {
	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}
