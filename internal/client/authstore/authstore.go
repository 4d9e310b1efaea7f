// Package authstore keeps the admin CLI session: the auth token, the user
// profile and the last-login time, written and cleared together.
package authstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/portfolio/backend/internal/domain/identity"
)

// Save writes all three session keys. If any write fails the keys written so
// far are removed again.
func Save(s Storage, sess identity.Session) error {
	values, err := sess.Encode()
	if err != nil {
		return err
	}
	for _, k := range identity.SessionKeys {
		if err := s.SetItem(k, values[k]); err != nil {
			return errors.Join(fmt.Errorf("save session: %w", err), Clear(s))
		}
	}
	return nil
}

// Load returns the stored session. Missing state yields identity.ErrNoSession.
// Malformed state is cleared first and reported the same way.
func Load(s Storage) (identity.Session, error) {
	values := make(map[string]string, len(identity.SessionKeys))
	for _, k := range identity.SessionKeys {
		v, ok, err := s.GetItem(k)
		if err != nil {
			return identity.Session{}, fmt.Errorf("load session: %w", err)
		}
		if ok {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return identity.Session{}, identity.ErrNoSession
	}

	sess, err := identity.DecodeSession(values)
	if err != nil {
		if clearErr := Clear(s); clearErr != nil {
			return identity.Session{}, errors.Join(err, clearErr)
		}
		return identity.Session{}, err
	}
	return sess, nil
}

// Clear removes all three keys
func Clear(s Storage) error {
	var errs []error
	for _, k := range identity.SessionKeys {
		if err := s.RemoveItem(k); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Decision is the outcome of Gate
type Decision struct {
	NeedsLogin bool
	Session    *identity.Session
}

// Gate decides whether the user has to log in: it does iff no valid token is
// stored. A token whose exp claim has passed is not valid and the stored
// session is cleared. Signatures are not checked here; the server does that.
func Gate(s Storage) Decision {
	return gateAt(s, time.Now())
}

func gateAt(s Storage, now time.Time) Decision {
	sess, err := Load(s)
	if err != nil {
		return Decision{NeedsLogin: true}
	}
	if expired(sess.Token, now) {
		_ = Clear(s)
		return Decision{NeedsLogin: true}
	}
	return Decision{Session: &sess}
}

// expired reports whether token is a JWT whose exp lies before now.
// Opaque tokens never expire client side.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}
