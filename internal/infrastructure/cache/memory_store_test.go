package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(t *testing.T) (*MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(time.Hour)
	s.now = clock.Now
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func TestMemoryStore_GetSetDel(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "k", "v", 0))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Del(ctx, "k", "never-set"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", "v", time.Minute))
	require.NoError(t, s.Set(ctx, "forever", "v", 0))

	clock.Advance(59 * time.Second)
	_, err := s.Get(ctx, "short")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = s.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = s.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryStore_SetMultiAndMGet(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMulti(ctx, map[string]string{"a": "1", "b": "2"}, time.Minute))

	values, found, err := s.MGet(ctx, "a", "missing", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", "2"}, values)
	assert.Equal(t, []bool{true, false, true}, found)

	clock.Advance(time.Minute)
	_, found, err = s.MGet(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, found, "all keys written together expire together")
}

func TestMemoryStore_SetNX(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "once", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "once", "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(2 * time.Minute)
	ok, err = s.SetNX(ctx, "once", "3", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key can be set again")
}

func TestMemoryStore_Incr(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := s.Incr(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	clock.Advance(time.Minute)
	n, err := s.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter restarts after its window")

	require.NoError(t, s.Set(ctx, "text", "abc", 0))
	_, err = s.Incr(ctx, "text", 0)
	assert.Error(t, err)
}

func TestMemoryStore_PurgeExpired(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", "1", time.Second))
	require.NoError(t, s.Set(ctx, "b", "1", 0))
	clock.Advance(2 * time.Second)

	s.purgeExpired()
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Incr(ctx, "hits", 0)
		}()
	}
	wg.Wait()

	v, err := s.Get(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, "50", v)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
