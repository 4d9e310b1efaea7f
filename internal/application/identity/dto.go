package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/identity"
)

// LoginInput contains the credentials for the password step
type LoginInput struct {
	Identifier string // username or e-mail
	Password   string
	IP         string
}

// TokenResult is a freshly issued access/refresh pair
type TokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LoginResult is either a full session or a pending two-factor challenge.
// When RequiresTwoFactor is set only the TempToken fields are populated.
type LoginResult struct {
	TokenResult
	User               identity.Profile
	RequiresTwoFactor  bool
	TempToken          string
	TempTokenExpiresAt time.Time
}

// VerifyOTPInput exchanges a temporary token and code for a session
type VerifyOTPInput struct {
	TempToken string
	Code      string
	IP        string
}

// ResendOTPResult tells the client when the new code expires
type ResendOTPResult struct {
	ExpiresAt time.Time
}

// LogoutInput identifies the access token and session to end
type LogoutInput struct {
	AccessJTI string
	AccessTTL time.Duration
	SessionID string
}

// CurrentUserResult is the profile and last login kept in the session
type CurrentUserResult struct {
	User      identity.Profile
	LastLogin time.Time
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	AdminID     uuid.UUID
	SessionID   string
	OldPassword string
	NewPassword string
}

// SetTwoFactorInput toggles the e-mailed code step
type SetTwoFactorInput struct {
	AdminID  uuid.UUID
	Enabled  bool
	Password string
}

// CreateAdminInput seeds an admin account
type CreateAdminInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	TwoFactor   bool
}
