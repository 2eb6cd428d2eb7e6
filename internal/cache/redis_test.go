package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcfa/cfa-backend/internal/config"
	"github.com/techcfa/cfa-backend/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	expected := []models.Plan{
		{PlanID: "basic", PlanName: "Basic Protection", Price: 1999},
		{PlanID: "family", PlanName: "Family Protection", Price: 4999},
	}
	err := cache.Set(ctx, PlansKey, expected, time.Minute)
	require.NoError(t, err)

	var actual []models.Plan
	found, err := cache.Get(ctx, PlansKey, &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out []models.Plan
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, PlansKey, []models.Plan{{PlanID: "basic"}}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx, PlansKey))

	var out []models.Plan
	found, err := cache.Get(ctx, PlansKey, &out)
	require.NoError(t, err)
	assert.False(t, found)
}
