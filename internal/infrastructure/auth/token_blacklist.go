package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/portfolio/backend/internal/infrastructure/cache"
)

// TokenBlacklist invalidates JWTs before they expire (logout, refresh rotation,
// single-use temporary tokens, password change).
type TokenBlacklist interface {
	// AddToBlacklist adds a token's jti; ttl should be the token's remaining lifetime.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	// ConsumeOnce atomically marks jti as used and reports whether this call was first.
	ConsumeOnce(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	// RevokeAdminTokens rejects every token of the admin issued before now.
	RevokeAdminTokens(ctx context.Context, adminID string, ttl time.Duration) error
	IsAdminTokenRevoked(ctx context.Context, adminID string, issuedAt time.Time) (bool, error)
}

const blacklistPrefix = "token:blacklist:"

// StoreTokenBlacklist implements TokenBlacklist on a cache.Store,
// so it is Redis-backed in production and in-memory in development.
type StoreTokenBlacklist struct {
	store cache.Store
	now   func() time.Time
}

// NewTokenBlacklist creates a blacklist on the shared store
func NewTokenBlacklist(store cache.Store) *StoreTokenBlacklist {
	return &StoreTokenBlacklist{store: store, now: time.Now}
}

func jtiKey(jti string) string {
	return blacklistPrefix + "jti:" + jti
}

func adminKey(adminID string) string {
	return blacklistPrefix + "admin:" + adminID
}

// AddToBlacklist implements TokenBlacklist
func (b *StoreTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired tokens are rejected by signature validation
		return nil
	}
	if err := b.store.Set(ctx, jtiKey(jti), "1", ttl); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted implements TokenBlacklist
func (b *StoreTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	_, err := b.store.Get(ctx, jtiKey(jti))
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return true, nil
}

// ConsumeOnce implements TokenBlacklist
func (b *StoreTokenBlacklist) ConsumeOnce(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	first, err := b.store.SetNX(ctx, jtiKey(jti), "1", ttl)
	if err != nil {
		return false, fmt.Errorf("failed to consume token: %w", err)
	}
	return first, nil
}

// RevokeAdminTokens implements TokenBlacklist
func (b *StoreTokenBlacklist) RevokeAdminTokens(ctx context.Context, adminID string, ttl time.Duration) error {
	stamp := strconv.FormatInt(b.now().Unix(), 10)
	if err := b.store.Set(ctx, adminKey(adminID), stamp, ttl); err != nil {
		return fmt.Errorf("failed to revoke admin tokens: %w", err)
	}
	return nil
}

// IsAdminTokenRevoked implements TokenBlacklist. JWT iat has second precision,
// so a token counts as revoked only when issued in an earlier second than the revocation.
func (b *StoreTokenBlacklist) IsAdminTokenRevoked(ctx context.Context, adminID string, issuedAt time.Time) (bool, error) {
	raw, err := b.store.Get(ctx, adminKey(adminID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check admin token revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() < revokedAt, nil
}

var _ TokenBlacklist = (*StoreTokenBlacklist)(nil)
