package handler

import (
	"time"

	appidentity "github.com/portfolio/backend/internal/application/identity"
	"github.com/portfolio/backend/internal/domain/identity"
)

// LoginRequest is the password step. Username accepts a username or an e-mail.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// VerifyOTPRequest exchanges a temporary token and code for a session
type VerifyOTPRequest struct {
	TempToken string `json:"temp_token" binding:"required"`
	Code      string `json:"code" binding:"required,numeric,min=4,max=10"`
}

// ResendOTPRequest asks for a fresh code
type ResendOTPRequest struct {
	TempToken string `json:"temp_token" binding:"required"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TwoFactorRequest toggles the e-mailed code step; the password confirms it
type TwoFactorRequest struct {
	Enabled  *bool  `json:"enabled" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse is either a session (token + user) or a two-factor challenge
// (requires_two_factor + temp_token).
type LoginResponse struct {
	RequiresTwoFactor  bool              `json:"requires_two_factor"`
	Token              *TokenResponse    `json:"token,omitempty"`
	User               *identity.Profile `json:"user,omitempty"`
	TempToken          string            `json:"temp_token,omitempty"`
	TempTokenExpiresAt *time.Time        `json:"temp_token_expires_at,omitempty"`
}

// ResendOTPResponse tells the client when the new code expires
type ResendOTPResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// CurrentUserResponse is the session's profile and last login
type CurrentUserResponse struct {
	User      identity.Profile `json:"user"`
	LastLogin time.Time        `json:"last_login"`
}

func toTokenResponse(t appidentity.TokenResult) *TokenResponse {
	return &TokenResponse{
		AccessToken:           t.AccessToken,
		RefreshToken:          t.RefreshToken,
		AccessTokenExpiresAt:  t.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: t.RefreshTokenExpiresAt,
		TokenType:             t.TokenType,
	}
}

func toLoginResponse(r *appidentity.LoginResult) LoginResponse {
	if r.RequiresTwoFactor {
		expires := r.TempTokenExpiresAt
		return LoginResponse{
			RequiresTwoFactor:  true,
			TempToken:          r.TempToken,
			TempTokenExpiresAt: &expires,
		}
	}
	user := r.User
	return LoginResponse{
		Token: toTokenResponse(r.TokenResult),
		User:  &user,
	}
}
