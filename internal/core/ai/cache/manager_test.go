package cache

import (
	"context"
	"testing"
	"time"

	"safescan/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheConfig(maxSize int, ttl time.Duration) *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         maxSize,
			TTL:             ttl,
			CleanupInterval: time.Hour,
		},
	}
}

func TestCacheSetGet(t *testing.T) {
	m := NewManager(cacheConfig(10, time.Minute))
	require.NotNil(t, m)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "prompt-a", `{"category":"Food Product"}`))

	val, err := m.Get(ctx, "prompt-a")
	require.NoError(t, err)
	assert.Equal(t, `{"category":"Food Product"}`, val)

	// 不同 prompt 不能混到同一個鍵
	_, err = m.Get(ctx, "prompt-b")
	assert.Error(t, err)
}

func TestCacheExpiry(t *testing.T) {
	m := NewManager(cacheConfig(10, 10*time.Millisecond))
	require.NotNil(t, m)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "prompt-a", "value"))

	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(ctx, "prompt-a")
	assert.Error(t, err)
}

func TestCacheLRUEviction(t *testing.T) {
	m := NewManager(cacheConfig(2, time.Minute))
	require.NotNil(t, m)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))

	// 提高 a 的訪問次數，b 成為 LRU 淘汰對象
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "b")
	assert.Error(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestCacheDisabledReturnsNil(t *testing.T) {
	m := NewManager(&config.Config{})
	assert.Nil(t, m)

	// nil receiver 也要安全
	ctx := context.Background()
	_, err := m.Get(ctx, "x")
	assert.Error(t, err)
	assert.NoError(t, m.Set(ctx, "x", "y"))
	assert.NoError(t, m.Close())
}

func TestCacheStats(t *testing.T) {
	m := NewManager(cacheConfig(10, time.Minute))
	require.NotNil(t, m)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", "1"))
	_, _ = m.Get(ctx, "a")
	_, _ = m.Get(ctx, "missing")

	stats := m.GetStats()
	assert.Equal(t, 1, stats["size"])
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}
