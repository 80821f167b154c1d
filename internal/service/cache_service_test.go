package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct {
	ttl time.Duration
	err error
}

func (b *brokenCache) Get(ctx context.Context, key string, dest interface{}) error { return b.err }

func (b *brokenCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b.ttl = ttl
	return b.err
}

func (b *brokenCache) Delete(ctx context.Context, keys ...string) error { return b.err }

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilService *CacheService
	hit, err := nilService.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilService.Set(context.Background(), "k", 1, 0))

	repo := &brokenCache{err: errors.New("should not be called")}
	svc := NewCacheService(repo, nil, 0, nil, false)
	hit, err = svc.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Invalidate(context.Background(), "k"))
}

func TestCacheServiceHitAndMissMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&memoryCache{data: map[string][]byte{}}, metrics, time.Minute, nil, true)

	var out []string
	hit, err := svc.Get(context.Background(), "catalog:courses", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "catalog:courses", []string{"go-basics"}, 0))
	hit, err = svc.Get(context.Background(), "catalog:courses", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"go-basics"}, out)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := &brokenCache{err: errors.New("connection refused")}
	svc := NewCacheService(repo, nil, 2*time.Minute, nil, true)

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.Error(t, err)
	assert.False(t, hit)

	assert.Error(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Equal(t, 2*time.Minute, repo.ttl)
	assert.Error(t, svc.Invalidate(context.Background(), "k"))
}

func TestRememberLoadsOnceAndSkipsCachingErrors(t *testing.T) {
	cache := NewCacheService(&memoryCache{data: map[string][]byte{}}, nil, time.Minute, nil, true)
	loads := 0
	load := func(ctx context.Context) ([]string, error) {
		loads++
		return []string{"go-basics"}, nil
	}

	first, hit, err := Remember(context.Background(), cache, "catalog:courses", 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := Remember(context.Background(), cache, "catalog:courses", 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)

	_, _, err = Remember(context.Background(), cache, "broken", 0, func(ctx context.Context) ([]string, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)
	hit, err = cache.Get(context.Background(), "broken", &[]string{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRememberFallsBackToLoaderWhenCacheFails(t *testing.T) {
	cache := NewCacheService(&brokenCache{err: errors.New("connection refused")}, nil, time.Minute, nil, true)

	value, hit, err := Remember(context.Background(), cache, "k", 0, func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, value)
}
