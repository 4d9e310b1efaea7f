package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Storage keys of a persisted admin session. The three values are always
// written together and cleared together.
const (
	SessionKeyToken     = "admin_token"
	SessionKeyUser      = "admin_user"
	SessionKeyLastLogin = "admin_last_login"
)

// SessionKeys lists the session keys in storage order
var SessionKeys = []string{SessionKeyToken, SessionKeyUser, SessionKeyLastLogin}

// ErrNoSession means no usable session is stored. Malformed state is reported
// the same way after it has been discarded.
var ErrNoSession = errors.New("no active session")

// Session is the authenticated state kept between requests
type Session struct {
	Token     string
	User      Profile
	LastLogin time.Time
}

// Encode serializes the session into the three stored string values
func (s Session) Encode() (map[string]string, error) {
	if strings.TrimSpace(s.Token) == "" {
		return nil, fmt.Errorf("encode session: empty token")
	}
	if err := s.User.Validate(); err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	user, err := json.Marshal(s.User)
	if err != nil {
		return nil, fmt.Errorf("encode session user: %w", err)
	}
	return map[string]string{
		SessionKeyToken:     s.Token,
		SessionKeyUser:      string(user),
		SessionKeyLastLogin: s.LastLogin.UTC().Format(time.RFC3339),
	}, nil
}

// DecodeSession parses stored values. Any missing, empty or unparsable value
// yields an error wrapping ErrNoSession; callers must then clear all three keys.
func DecodeSession(values map[string]string) (Session, error) {
	token := values[SessionKeyToken]
	if strings.TrimSpace(token) == "" {
		return Session{}, ErrNoSession
	}

	rawUser, ok := values[SessionKeyUser]
	if !ok || rawUser == "" {
		return Session{}, fmt.Errorf("%w: missing user", ErrNoSession)
	}
	var user Profile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return Session{}, fmt.Errorf("%w: malformed user: %v", ErrNoSession, err)
	}
	if err := user.Validate(); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	lastLogin, err := time.Parse(time.RFC3339, values[SessionKeyLastLogin])
	if err != nil {
		return Session{}, fmt.Errorf("%w: malformed last login: %v", ErrNoSession, err)
	}

	return Session{Token: token, User: user, LastLogin: lastLogin}, nil
}
