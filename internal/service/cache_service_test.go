package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("redis down")
}

func TestCacheServiceCountsHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCacheRepo(), metrics, 0, nil, true)

	var out dto.DashboardResponse
	hit, err := cache.Get(ctx, "dashboard:a", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "dashboard:a", &dto.DashboardResponse{View: models.ViewTutor}, 0))
	hit, err = cache.Get(ctx, "dashboard:a", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, models.ViewTutor, out.View)

	assert.Equal(t, 1.0, counterValue(t, metrics, "cache_hits_total", nil))
	assert.Equal(t, 1.0, counterValue(t, metrics, "cache_misses_total", nil))
}

func TestCacheServiceSurfacesRepositoryErrors(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, true)
	hit, err := cache.Get(context.Background(), "k", &dto.DashboardResponse{})
	assert.Error(t, err)
	assert.False(t, hit)
}
