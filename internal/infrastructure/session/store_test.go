package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *cache.MemoryStore) {
	t.Helper()
	mem := cache.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	return NewStore(mem, time.Hour), mem
}

func testSession() identity.Session {
	return identity.Session{
		Token:     "access-token",
		User:      identity.Profile{ID: uuid.New(), Username: "admin", Email: "admin@example.com"},
		LastLogin: time.Now().UTC().Truncate(time.Second),
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()
	want := testSession()

	require.NoError(t, s.Save(ctx, "sid", want))
	assert.Equal(t, 3, mem.Len())

	got, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.User.Username, got.User.Username)
	assert.True(t, want.LastLogin.Equal(got.LastLogin))
}

func TestStore_LoginThenLogoutLeavesNoKeys(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sid", testSession()))
	require.NoError(t, s.Clear(ctx, "sid"))

	assert.Zero(t, mem.Len())
	_, err := s.Load(ctx, "sid")
	assert.ErrorIs(t, err, identity.ErrNoSession)
}

func TestStore_MalformedUserIsDiscarded(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "sid", testSession()))

	require.NoError(t, mem.Set(ctx, "session:sid:"+identity.SessionKeyUser, "{not-json", 0))

	_, err := s.Load(ctx, "sid")
	assert.ErrorIs(t, err, identity.ErrNoSession)
	assert.Zero(t, mem.Len(), "all three keys cleared together")
}

func TestStore_MalformedLastLoginIsDiscarded(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "sid", testSession()))

	require.NoError(t, mem.Set(ctx, "session:sid:"+identity.SessionKeyLastLogin, "not-a-time", 0))

	_, err := s.Load(ctx, "sid")
	assert.ErrorIs(t, err, identity.ErrNoSession)
	assert.Zero(t, mem.Len())
}

func TestStore_PartialStateIsDiscarded(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "sid", testSession()))
	require.NoError(t, mem.Del(ctx, "session:sid:"+identity.SessionKeyToken))

	_, err := s.Load(ctx, "sid")
	assert.ErrorIs(t, err, identity.ErrNoSession)
	assert.Zero(t, mem.Len())
}

func TestStore_RotateAndIsActive(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "sid", testSession()))

	active, err := s.IsActive(ctx, "sid", "access-token")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, s.Rotate(ctx, "sid", "new-token"))

	active, err = s.IsActive(ctx, "sid", "access-token")
	require.NoError(t, err)
	assert.False(t, active, "old token no longer matches")

	active, err = s.IsActive(ctx, "sid", "new-token")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = s.IsActive(ctx, "other", "new-token")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestStore_RotateMissingSession(t *testing.T) {
	s, _ := newStore(t)
	err := s.Rotate(context.Background(), "nope", "tok")
	assert.ErrorIs(t, err, identity.ErrNoSession)
}
