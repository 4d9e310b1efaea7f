// Package otp issues and verifies one-time login codes.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/portfolio/backend/internal/infrastructure/config"
)

const keyPrefix = "otp:"

var (
	ErrInvalidCode      = shared.NewDomainError("INVALID_OTP", "Invalid verification code")
	ErrExpired          = shared.NewDomainError("OTP_EXPIRED", "Verification code has expired, please log in again")
	ErrAttemptsExceeded = shared.NewDomainError("OTP_ATTEMPTS_EXCEEDED", "Too many invalid attempts, please log in again")
)

// Store keeps codes keyed by the temporary token they belong to.
// A code is deleted once it has been used or its attempts are spent.
type Store struct {
	store       cache.Store
	length      int
	ttl         time.Duration
	maxAttempts int64
}

// NewStore creates a code store from the auth configuration
func NewStore(store cache.Store, cfg config.AuthConfig) *Store {
	return &Store{
		store:       store,
		length:      cfg.OTPLength,
		ttl:         cfg.OTPTTL,
		maxAttempts: int64(cfg.OTPMaxAttempts),
	}
}

func codeKey(key string) string     { return keyPrefix + key + ":code" }
func attemptsKey(key string) string { return keyPrefix + key + ":attempts" }

// TTL returns how long an issued code stays valid
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Issue generates a fresh code for key, replacing any previous one and
// resetting the attempt counter.
func (s *Store) Issue(ctx context.Context, key string) (string, error) {
	code, err := Generate(s.length)
	if err != nil {
		return "", err
	}
	if err := s.store.Del(ctx, attemptsKey(key)); err != nil {
		return "", fmt.Errorf("reset otp attempts: %w", err)
	}
	if err := s.store.Set(ctx, codeKey(key), code, s.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify checks code against the one issued for key
func (s *Store) Verify(ctx context.Context, key, code string) error {
	stored, err := s.store.Get(ctx, codeKey(key))
	if errors.Is(err, cache.ErrCacheMiss) {
		return ErrExpired
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	attempts, err := s.store.Incr(ctx, attemptsKey(key), s.ttl)
	if err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if attempts > s.maxAttempts {
		s.discard(ctx, key)
		return ErrAttemptsExceeded
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		if attempts >= s.maxAttempts {
			s.discard(ctx, key)
			return ErrAttemptsExceeded
		}
		return ErrInvalidCode
	}

	s.discard(ctx, key)
	return nil
}

// Discard removes the code and its counter
func (s *Store) Discard(ctx context.Context, key string) error {
	return s.store.Del(ctx, codeKey(key), attemptsKey(key))
}

func (s *Store) discard(ctx context.Context, key string) {
	_ = s.Discard(ctx, key)
}

// Generate returns a uniformly random numeric code of the given length
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}
	digits := make([]byte, length)
	ten := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
