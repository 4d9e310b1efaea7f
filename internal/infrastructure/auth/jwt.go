package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	// TokenTypeTemporary is issued after the password check when the admin
	// has two-factor enabled. It only authorizes OTP verification and resend.
	TokenTypeTemporary TokenType = "temporary"
)

// Common errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingAdminID     = errors.New("missing admin_id in claims")
	ErrMissingSessionID   = errors.New("missing session id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims represents custom JWT claims
type Claims struct {
	jwt.RegisteredClaims
	AdminID      string    `json:"admin_id"`
	Username     string    `json:"username"`
	SessionID    string    `json:"sid,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // Bearer
	SessionID             string    `json:"-"`
	AccessJTI             string    `json:"-"`
}

// TempToken is the short-lived credential handed out between password and OTP checks
type TempToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// JWTService handles JWT token operations
type JWTService struct {
	secret            []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	tempExpiration    time.Duration
	issuer            string
	maxRefreshCount   int
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:            []byte(cfg.Secret),
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		tempExpiration:    cfg.TempTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	AdminID   uuid.UUID
	Username  string
	SessionID string // empty starts a new session
}

func (s *JWTService) claims(now time.Time, ttl time.Duration, adminID, username string, typ TokenType) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   adminID,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AdminID:   adminID,
		Username:  username,
		TokenType: typ,
	}
}

// GenerateTokenPair generates access and refresh tokens bound to one session
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return s.issuePair(time.Now(), input.AdminID.String(), input.Username, sessionID, 0)
}

func (s *JWTService) issuePair(now time.Time, adminID, username, sessionID string, refreshCount int) (*TokenPair, error) {
	access := s.claims(now, s.accessExpiration, adminID, username, TokenTypeAccess)
	access.SessionID = sessionID
	accessToken, err := s.sign(access)
	if err != nil {
		return nil, err
	}

	refresh := s.claims(now, s.refreshExpiration, adminID, username, TokenTypeRefresh)
	refresh.SessionID = sessionID
	refresh.RefreshCount = refreshCount
	refreshToken, err := s.sign(refresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
		SessionID:             sessionID,
		AccessJTI:             access.ID,
	}, nil
}

// GenerateTempToken issues a temporary token for the OTP step
func (s *JWTService) GenerateTempToken(adminID uuid.UUID, username string) (*TempToken, error) {
	now := time.Now()
	c := s.claims(now, s.tempExpiration, adminID.String(), username, TokenTypeTemporary)
	token, err := s.sign(c)
	if err != nil {
		return nil, err
	}
	return &TempToken{Token: token, JTI: c.ID, ExpiresAt: now.Add(s.tempExpiration)}, nil
}

func (s *JWTService) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, TokenTypeRefresh)
}

// ValidateTempToken validates a temporary token and returns its claims
func (s *JWTService) ValidateTempToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, TokenTypeTemporary)
}

func (s *JWTService) validateToken(tokenString string, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidTokenType
	}
	if claims.AdminID == "" {
		return nil, ErrMissingAdminID
	}
	if expectedType != TokenTypeTemporary && claims.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	return claims, nil
}

// RefreshTokenPair rotates a valid refresh token into a new pair on the same session.
// The caller blacklists the old refresh token's jti.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, *Claims, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, nil, ErrMaxRefreshExceeded
	}
	if _, err := uuid.Parse(claims.AdminID); err != nil {
		return nil, nil, ErrInvalidClaims
	}

	pair, err := s.issuePair(time.Now(), claims.AdminID, claims.Username, claims.SessionID, claims.RefreshCount+1)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

// GetAdminUUID parses the admin ID from claims
func (c *Claims) GetAdminUUID() (uuid.UUID, error) {
	return uuid.Parse(c.AdminID)
}

// GetIssuedAtTime returns the token's issued-at time
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// AccessTokenExpiration returns the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// RefreshTokenExpiration returns the refresh token lifetime
func (s *JWTService) RefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}

// TempTokenExpiration returns the temporary token lifetime
func (s *JWTService) TempTokenExpiration() time.Duration {
	return s.tempExpiration
}
