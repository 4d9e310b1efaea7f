package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/infrastructure/auth"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by the admin gate
const (
	AuthClaimsKey    = "auth_claims"
	AuthAdminIDKey   = "auth_admin_id"
	AuthSessionIDKey = "auth_session_id"
)

// AuthorizationHeader and BearerPrefix describe how clients present tokens
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// SessionChecker reports whether a server-side session still holds a token
type SessionChecker interface {
	IsActive(ctx context.Context, sessionID, token string) (bool, error)
}

// AuthConfig wires the admin gate
type AuthConfig struct {
	Tokens    *auth.JWTService
	Sessions  SessionChecker
	Blacklist auth.TokenBlacklist // optional
	Logger    *zap.Logger
}

// RequireAdmin lets a request through iff it carries a valid access token
// whose session is present in the session store. Temporary (two-factor)
// tokens and refresh tokens are rejected by type. Store failures reject the
// request as well; the gate never fails open.
func RequireAdmin(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := ExtractBearerToken(c)
		if token == "" {
			rejectAuth(c, "Authorization required", dto.ErrCodeUnauthorized)
			return
		}

		claims, err := cfg.Tokens.ValidateAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				rejectAuth(c, "Token has expired", dto.ErrCodeTokenExpired)
			default:
				rejectAuth(c, "Invalid token", dto.ErrCodeTokenInvalid)
			}
			return
		}
		if claims.SessionID == "" {
			rejectAuth(c, "Invalid token", dto.ErrCodeTokenInvalid)
			return
		}

		active, err := cfg.Sessions.IsActive(ctx, claims.SessionID, token)
		if err != nil {
			logger.Enrich(ctx, log).Error("Session lookup failed", zap.String("admin_id", claims.AdminID), zap.Error(err))
			dto.ServiceUnavailable(c, "Authentication is temporarily unavailable",
				dto.ErrorInfo{Code: dto.ErrCodeServiceUnavailable, RequestID: GetRequestID(c)})
			return
		}
		if !active {
			rejectAuth(c, "Session has expired, please log in again", dto.ErrCodeSessionExpired)
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := isRevoked(ctx, cfg.Blacklist, claims)
			if err != nil {
				logger.Enrich(ctx, log).Error("Token revocation check failed", zap.String("admin_id", claims.AdminID), zap.Error(err))
				dto.ServiceUnavailable(c, "Authentication is temporarily unavailable",
					dto.ErrorInfo{Code: dto.ErrCodeServiceUnavailable, RequestID: GetRequestID(c)})
				return
			}
			if revoked {
				rejectAuth(c, "Token has been revoked", dto.ErrCodeTokenInvalid)
				return
			}
		}

		c.Set(AuthClaimsKey, claims)
		c.Set(AuthAdminIDKey, claims.AdminID)
		c.Set(AuthSessionIDKey, claims.SessionID)
		ctx = logger.ContextWithAdminID(ctx, claims.AdminID)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("admin_id", claims.AdminID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func isRevoked(ctx context.Context, blacklist auth.TokenBlacklist, claims *auth.Claims) (bool, error) {
	if claims.ID != "" {
		revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil || revoked {
			return revoked, err
		}
	}
	return blacklist.IsAdminTokenRevoked(ctx, claims.AdminID, claims.GetIssuedAtTime())
}

func rejectAuth(c *gin.Context, message, code string) {
	c.Header("WWW-Authenticate", `Bearer realm="admin"`)
	dto.Unauthorized(c, message, dto.ErrorInfo{Code: code, RequestID: GetRequestID(c)})
}

// ExtractBearerToken returns the token from "Authorization: Bearer <token>", or ""
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthorizationHeader)
	if len(header) <= len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(BearerPrefix):])
}

// GetClaims returns the claims stored by RequireAdmin, or nil
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(AuthClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetAdminID returns the authenticated admin ID, or ""
func GetAdminID(c *gin.Context) string {
	return c.GetString(AuthAdminIDKey)
}

// GetSessionID returns the authenticated session ID, or ""
func GetSessionID(c *gin.Context) string {
	return c.GetString(AuthSessionIDKey)
}
