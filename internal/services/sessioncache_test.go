package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

func setupSessionCacheTestClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSessionCache_SaveThenLoadRoundTrips(t *testing.T) {
	client := setupSessionCacheTestClient(t)
	cache := NewSessionCache(client, time.Minute)
	ctx := context.Background()

	pctx := models.NewProcessingContext("session-1", "poster.jpg", "poster:1")
	pctx.SetResult(models.PhaseResult{Phase: models.PhaseType, Status: models.StatusCompleted, Confidence: 0.9})
	t.Cleanup(func() { cache.Remove(ctx, pctx.SessionID) })

	require.NoError(t, cache.Save(ctx, pctx))

	loaded, ok, err := cache.Load(ctx, pctx.SessionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pctx.SessionID, loaded.SessionID)
	assert.Equal(t, pctx.PosterID, loaded.PosterID)
	result, found := loaded.Result(models.PhaseType)
	require.True(t, found)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestSessionCache_Load_MissingSessionReturnsNotOK(t *testing.T) {
	client := setupSessionCacheTestClient(t)
	cache := NewSessionCache(client, time.Minute)

	_, ok, err := cache.Load(context.Background(), "never-saved")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionCache_Remove_DeletesSnapshot(t *testing.T) {
	client := setupSessionCacheTestClient(t)
	cache := NewSessionCache(client, time.Minute)
	ctx := context.Background()
	pctx := models.NewProcessingContext("session-2", "poster.jpg", "poster:2")
	require.NoError(t, cache.Save(ctx, pctx))

	require.NoError(t, cache.Remove(ctx, pctx.SessionID))

	_, ok, err := cache.Load(ctx, pctx.SessionID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSessionCache_DefaultsTTL(t *testing.T) {
	client := setupSessionCacheTestClient(t)

	cache := NewSessionCache(client, 0)

	assert.Equal(t, time.Hour, cache.ttl)
}
