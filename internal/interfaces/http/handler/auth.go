package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/application/identity"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"github.com/portfolio/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles admin authentication requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login. Admins with two-factor enabled get a
// temporary token and an e-mailed code instead of a session.
//
// @ID          loginAdmin
// @Summary     Log in with username or e-mail
// @Description Returns a session, or a temporary token when two-factor login is enabled
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Request body"
// @Success     200 {object} APIResponse[LoginResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     429 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Identifier: req.Username,
		Password:   req.Password,
		IP:         c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	message := "Login successful"
	if result.RequiresTwoFactor {
		message = "Verification code sent"
	}
	dto.Success(c, toLoginResponse(result), message)
}

// VerifyOTP handles POST /auth/verify-otp
//
// @ID          verifyAdminOTP
// @Summary     Exchange a verification code for a session
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body VerifyOTPRequest true "Request body"
// @Success     200 {object} APIResponse[LoginResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     429 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.VerifyOTP(c.Request.Context(), identity.VerifyOTPInput{
		TempToken: req.TempToken,
		Code:      req.Code,
		IP:        c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, toLoginResponse(result), "Login successful")
}

// ResendOTP handles POST /auth/resend-otp
//
// @ID          resendAdminOTP
// @Summary     Send a fresh verification code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResendOTPRequest true "Request body"
// @Success     200 {object} APIResponse[ResendOTPResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     429 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.ResendOTP(c.Request.Context(), req.TempToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, ResendOTPResponse{ExpiresAt: result.ExpiresAt}, "Verification code sent")
}

// RefreshToken handles POST /auth/refresh
//
// @ID          refreshAdminToken
// @Summary     Rotate the access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshTokenRequest true "Request body"
// @Success     200 {object} APIResponse[TokenResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     429 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, toTokenResponse(*result), "Token refreshed")
}

// Logout handles POST /auth/logout. The access token is revoked for its
// remaining lifetime and all three session keys are cleared.
//
// @ID          logoutAdmin
// @Summary     End the current session
// @Tags        auth
// @Produce     json
// @Success     200 {object} APIResponse[any]
// @Failure     401 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		dto.Unauthorized(c, "Authorization required", h.errorInfo(c, dto.ErrCodeUnauthorized))
		return
	}

	err := h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		AccessJTI: claims.ID,
		AccessTTL: claims.GetRemainingTTL(),
		SessionID: claims.SessionID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, nil, "Logged out")
}

// GetCurrentUser handles GET /auth/me
//
// @ID          getCurrentAdmin
// @Summary     Get the signed-in admin
// @Tags        auth
// @Produce     json
// @Success     200 {object} APIResponse[CurrentUserResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	result, err := h.authService.GetCurrentUser(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, CurrentUserResponse{User: result.User, LastLogin: result.LastLogin}, "")
}

// ChangePassword handles PUT /auth/password. Every token of the admin is
// revoked, so the client has to log in again.
//
// @ID          changeAdminPassword
// @Summary     Change the admin password
// @Description Revokes every token of the admin; the client has to log in again
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ChangePasswordRequest true "Request body"
// @Success     200 {object} APIResponse[any]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	if claims == nil {
		dto.Unauthorized(c, "Authorization required", h.errorInfo(c, dto.ErrCodeUnauthorized))
		return
	}
	adminID, err := claims.GetAdminUUID()
	if err != nil {
		dto.Unauthorized(c, "Invalid token", h.errorInfo(c, dto.ErrCodeTokenInvalid))
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		AdminID:     adminID,
		SessionID:   claims.SessionID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, nil, "Password changed, please log in again")
}

// SetTwoFactor handles PUT /auth/two-factor
//
// @ID          setAdminTwoFactor
// @Summary     Turn two-factor login on or off
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body TwoFactorRequest true "Request body"
// @Success     200 {object} APIResponse[identity.Profile]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /auth/two-factor [put]
func (h *AuthHandler) SetTwoFactor(c *gin.Context) {
	var req TwoFactorRequest
	if !h.BindJSON(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	if claims == nil {
		dto.Unauthorized(c, "Authorization required", h.errorInfo(c, dto.ErrCodeUnauthorized))
		return
	}
	adminID, err := claims.GetAdminUUID()
	if err != nil {
		dto.Unauthorized(c, "Invalid token", h.errorInfo(c, dto.ErrCodeTokenInvalid))
		return
	}

	profile, err := h.authService.SetTwoFactor(c.Request.Context(), identity.SetTwoFactorInput{
		AdminID:  adminID,
		Enabled:  *req.Enabled,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, profile, "Two-factor setting updated")
}
