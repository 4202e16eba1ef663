package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type wordList struct {
	Words []string
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, wordList]("patterns", DefaultExpiration, DefaultCleanupInterval)
	value := wordList{Words: []string{"foo", "bar"}}
	cache.Set(context.Background(), "k:1", value, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "k:1")
	require.True(t, ok)
	require.Equal(t, value, got)
}

func TestInMemoryCacheManager_GetWithNoExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("patterns", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithExistingInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("patterns", DefaultExpiration, DefaultCleanupInterval)

	cache.cache.Set("k", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "k")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_NamedKeyType(t *testing.T) {
	type surfaceKey string
	cache := NewInMemoryCacheManager[surfaceKey, int]("surfaces", NoExpiration, DefaultCleanupInterval)

	cache.Set(context.Background(), surfaceKey("a/bugs"), 3, NoExpiration)

	got, ok := cache.Get(context.Background(), "a/bugs")
	require.True(t, ok)
	require.Equal(t, 3, got)
}

func TestInMemoryCacheManager_GetWithRefresh_WithNoExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("patterns", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.GetWithRefresh(context.Background(), "k", time.Minute)
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithRefresh_ExtendsTTL(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("patterns", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "k", "v", time.Minute)

	got, ok := cache.GetWithRefresh(context.Background(), "k", time.Hour)
	require.True(t, ok)
	require.Equal(t, "v", got)

	_, expiration, found := cache.cache.GetWithExpiration("k")
	require.True(t, found)
	require.True(t, expiration.After(time.Now().Add(30*time.Minute)), "ttl should have been extended")
}

func TestInMemoryCacheManager_DeleteWithNoKeysDoesNothing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("patterns", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "k", "v", DefaultExpiration)

	require.NoError(t, cache.Delete(context.Background()))
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_DeleteExistingValues(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("patterns", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "a", "1", DefaultExpiration)
	cache.Set(context.Background(), "b", "2", DefaultExpiration)
	cache.Set(context.Background(), "c", "3", DefaultExpiration)

	require.NoError(t, cache.Delete(context.Background(), "a", "b", "missing"))

	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	got, ok := cache.Get(context.Background(), "c")
	require.True(t, ok)
	require.Equal(t, "3", got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("patterns", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "a", "1", DefaultExpiration)
	cache.Set(context.Background(), "b", "2", NoExpiration)

	require.NoError(t, cache.Flush(context.Background()))
	require.Equal(t, 0, cache.Len())
}
