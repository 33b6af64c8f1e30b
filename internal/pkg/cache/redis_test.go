package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covidtimeseries/metadata/internal/config"
)

type entry struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths"`
}

func setupTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	db := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = db.Close() })

	return NewCache(db, ttl, "registry:"), mr
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	db, err := NewRedis(context.Background(), config.CacheConfig{
		Host: mr.Host(),
		Port: port,
	})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
}

func TestNewRedis_ConnectionError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, config.CacheConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}

func TestCache_Key(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)
	assert.Equal(t, "registry:distribution:abc", c.Key("distribution", "abc"))
}

func TestCache_SetAndGetJSON(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	want := entry{Name: "cases", Paths: []string{"confirmed", "deaths"}}
	require.NoError(t, c.SetJSON(ctx, "registry:distribution:1", want))

	var got entry
	found, err := c.GetJSON(ctx, "registry:distribution:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	assert.Equal(t, time.Minute, mr.TTL("registry:distribution:1"))
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)

	var got entry
	found, err := c.GetJSON(context.Background(), "registry:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Expiry(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", entry{Name: "x"}))
	mr.FastForward(2 * time.Minute)

	var got entry
	found, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_CorruptValue(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	require.NoError(t, mr.Set("k", "{not json"))

	var got entry
	found, err := c.GetJSON(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCache_BackendDown(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	mr.Close()

	var got entry
	_, err := c.GetJSON(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.Error(t, c.SetJSON(context.Background(), "k", entry{}))
	assert.Error(t, c.Ping(context.Background()))
}
