// Package session keeps server-side admin sessions in the shared cache store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

// Store persists sessions as three keys under session:<id>:
type Store struct {
	store cache.Store
	ttl   time.Duration
}

// NewStore creates a session store. ttl bounds how long an idle session lives
// and normally equals the refresh token lifetime.
func NewStore(store cache.Store, ttl time.Duration) *Store {
	return &Store{store: store, ttl: ttl}
}

func keys(sessionID string) []string {
	out := make([]string, len(identity.SessionKeys))
	for i, k := range identity.SessionKeys {
		out[i] = keyPrefix + sessionID + ":" + k
	}
	return out
}

// Save writes token, user and last-login together
func (s *Store) Save(ctx context.Context, sessionID string, sess identity.Session) error {
	values, err := sess.Encode()
	if err != nil {
		return err
	}
	ks := keys(sessionID)
	prefixed := make(map[string]string, len(ks))
	for i, k := range identity.SessionKeys {
		prefixed[ks[i]] = values[k]
	}
	if err := s.store.SetMulti(ctx, prefixed, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored session. Partial or malformed state is cleared and
// reported as identity.ErrNoSession.
func (s *Store) Load(ctx context.Context, sessionID string) (identity.Session, error) {
	if sessionID == "" {
		return identity.Session{}, identity.ErrNoSession
	}
	ks := keys(sessionID)
	raw, found, err := s.store.MGet(ctx, ks...)
	if err != nil {
		return identity.Session{}, fmt.Errorf("load session: %w", err)
	}

	values := make(map[string]string, len(ks))
	present := 0
	for i, k := range identity.SessionKeys {
		if found[i] {
			values[k] = raw[i]
			present++
		}
	}
	if present == 0 {
		return identity.Session{}, identity.ErrNoSession
	}

	sess, err := identity.DecodeSession(values)
	if err != nil {
		logger.L(ctx).Warn("discarding malformed session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		if cerr := s.Clear(ctx, sessionID); cerr != nil {
			return identity.Session{}, cerr
		}
		return identity.Session{}, identity.ErrNoSession
	}
	return sess, nil
}

// Clear removes all three keys
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Del(ctx, keys(sessionID)...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Rotate replaces the token of an existing session, keeping user and last-login
func (s *Store) Rotate(ctx context.Context, sessionID, token string) error {
	sess, err := s.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Token = token
	return s.Save(ctx, sessionID, sess)
}

// IsActive reports whether the session exists and still holds token
func (s *Store) IsActive(ctx context.Context, sessionID, token string) (bool, error) {
	sess, err := s.Load(ctx, sessionID)
	if errors.Is(err, identity.ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sess.Token == token, nil
}
