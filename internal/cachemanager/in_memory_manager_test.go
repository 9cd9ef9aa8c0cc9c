package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cachedDefinition struct {
	ID   string
	Name string
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *cachedDefinition]("workflows", DefaultExpiration, DefaultCleanupInterval)
	def := &cachedDefinition{ID: "wf-1", Name: "Daily Report"}
	cache.Set(context.Background(), "wf-1", def, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "wf-1")
	require.True(t, ok)
	require.Same(t, def, got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *cachedDefinition]("workflows", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "wf-1")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_WrongStoredType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *cachedDefinition]("workflows", DefaultExpiration, DefaultCleanupInterval)

	cache.cache.Set("wf-1", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "wf-1")
	require.False(t, ok, "Mistyped entry should read as a miss")
	require.Nil(t, got)
}

func TestInMemoryCacheManager_Expiration(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("workflows", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "wf-1", "v", 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get(context.Background(), "wf-1")
	require.False(t, ok, "Entry should expire after its TTL")
}

func TestInMemoryCacheManager_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("workflows", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "a", "b"))

	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	_, ok = cache.Get(ctx, "b")
	require.False(t, ok)
}

func TestInMemoryCacheManager_DeleteNoKeys(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("workflows", DefaultExpiration, DefaultCleanupInterval)
	require.NoError(t, cache.Delete(context.Background()))
}

func TestInMemoryCacheManager_KeysAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("workflows", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)

	require.ElementsMatch(t, []string{"a", "b"}, cache.Keys(ctx))

	require.NoError(t, cache.Flush(ctx))
	require.Empty(t, cache.Keys(ctx))
}
