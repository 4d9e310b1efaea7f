package cache

import (
	"errors"
	"testing"

	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStoreFactory_RedisDisabled(t *testing.T) {
	f := NewStoreFactory(config.RedisConfig{Enabled: false})
	f.connect = func(config.RedisConfig) (*redis.Client, error) {
		t.Fatal("connect must not be called when Redis is disabled")
		return nil, nil
	}

	store, err := f.CreateStore()
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &MemoryStore{}, store)
}

func TestStoreFactory_FallbackOnConnectError(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	f := NewStoreFactory(config.RedisConfig{Enabled: true, Host: "nowhere", Port: 1}, WithLogger(zap.New(core)))
	f.connect = func(config.RedisConfig) (*redis.Client, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	store, err := f.CreateStore()
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &MemoryStore{}, store)
	assert.Equal(t, 1, recorded.Len())
}

func TestStoreFactory_NoFallback(t *testing.T) {
	f := NewStoreFactory(config.RedisConfig{Enabled: true}, WithInMemoryFallback(false))
	f.connect = func(config.RedisConfig) (*redis.Client, error) {
		return nil, errors.New("connection refused")
	}

	store, err := f.CreateStore()
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestStoreFactory_UsesRedisClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	f := NewStoreFactory(config.RedisConfig{Enabled: true})
	f.connect = func(config.RedisConfig) (*redis.Client, error) { return client, nil }

	store, err := f.CreateStore()
	require.NoError(t, err)
	defer store.Close()

	rs, ok := store.(*RedisStore)
	require.True(t, ok)
	assert.Same(t, client, rs.Client())
}
