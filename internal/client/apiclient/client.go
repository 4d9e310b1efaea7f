// Package apiclient is a small HTTP client for the portfolio API used by the
// admin CLI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/domain/identity"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client calls the JSON API and unwraps the response envelope
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends "Authorization: Bearer <token>" on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the server at baseURL (e.g. http://localhost:8080)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "portfolioctl",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FieldError is a single validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a non-2xx response
type Error struct {
	Status    int
	Message   string
	Code      string
	RequestID string
	Fields    []FieldError
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", e.Status, e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "; %s: %s", f.Field, f.Message)
	}
	return b.String()
}

// IsUnauthorized reports whether the server rejected the credentials or token
func (e *Error) IsUnauthorized() bool { return e.Status == http.StatusUnauthorized }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent || (len(raw) == 0 && resp.StatusCode < 300) {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return decodeError(resp.StatusCode, env)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// decodeError reads the errors member, which is a field list for validation
// failures and an object carrying the error code otherwise
func decodeError(status int, env envelope) *Error {
	e := &Error{Status: status, Message: env.Message}
	if len(env.Errors) == 0 {
		return e
	}
	if env.Errors[0] == '[' {
		_ = json.Unmarshal(env.Errors, &e.Fields)
		return e
	}
	var info struct {
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
	}
	if json.Unmarshal(env.Errors, &info) == nil {
		e.Code = info.Code
		e.RequestID = info.RequestID
	}
	return e
}

// Tokens are the credentials of a full session
type Tokens struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult is either a full session or a two-factor challenge
type LoginResult struct {
	RequiresTwoFactor  bool              `json:"requires_two_factor"`
	Token              *Tokens           `json:"token,omitempty"`
	User               *identity.Profile `json:"user,omitempty"`
	TempToken          string            `json:"temp_token,omitempty"`
	TempTokenExpiresAt *time.Time        `json:"temp_token_expires_at,omitempty"`
}

// CurrentUser is the profile of the logged-in admin
type CurrentUser struct {
	User      identity.Profile `json:"user"`
	LastLogin time.Time        `json:"last_login"`
}

// Login starts a session with a username or e-mail and a password
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP completes a two-factor login
func (c *Client) VerifyOTP(ctx context.Context, tempToken, code string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/verify-otp", map[string]string{
		"temp_token": tempToken,
		"code":       code,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendOTP asks for a fresh code and returns its expiry
func (c *Client) ResendOTP(ctx context.Context, tempToken string) (time.Time, error) {
	var out struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/resend-otp", map[string]string{"temp_token": tempToken}, &out)
	return out.ExpiresAt, err
}

// Logout ends the session of the client's token
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// Me returns the current admin
func (c *Client) Me(ctx context.Context) (*CurrentUser, error) {
	var out CurrentUser
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
