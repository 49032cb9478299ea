package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/cache"
)

func TestKeyJoinsPathHashAndSnapshot(t *testing.T) {
	assert.Equal(t, "a.go:hash1:snap1", cache.Key("a.go", "hash1", "snap1"))
}

func TestInProcessL2RoundTripsAndExpires(t *testing.T) {
	ctx := context.Background()
	l2 := cache.NewInProcessL2(0)

	l2.Set(ctx, "k", "v", time.Hour)
	v, ok := l2.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	l2.Set(ctx, "expired", "v2", -time.Second)
	_, ok = l2.Get(ctx, "expired")
	assert.False(t, ok)
}

func TestInProcessL2NoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	l2 := cache.NewInProcessL2(0)
	l2.Set(ctx, "k", "v", 0)

	v, ok := l2.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestTierGetHitsL1BeforeLoader(t *testing.T) {
	calls := 0
	loader := func(ctx context.Context, key string) (any, error) {
		calls++
		return "loaded", nil
	}
	tier := cache.NewTier(10, nil, time.Minute, loader)

	v1, err := tier.Get(context.Background(), "k")
	require.NoError(t, err)
	v2, err := tier.Get(context.Background(), "k")
	require.NoError(t, err)

	assert.Equal(t, "loaded", v1)
	assert.Equal(t, "loaded", v2)
	assert.Equal(t, 1, calls)
}

func TestTierSetMetricsRecordsL1HitsAndMisses(t *testing.T) {
	rec := newFakeHitMissRecorder()
	loader := func(ctx context.Context, key string) (any, error) { return "loaded", nil }
	tier := cache.NewTier(10, cache.NewInProcessL2(10), time.Minute, loader)
	tier.SetMetrics(rec)

	ctx := context.Background()
	tier.Get(ctx, "k") // L1 miss, L2 miss, loads and populates both
	tier.Get(ctx, "k") // L1 hit

	assert.Equal(t, 1, rec.hits["l1"])
	assert.Equal(t, 1, rec.misses["l1"])
	assert.Equal(t, 1, rec.misses["l2"])
}

func TestTierGetHoistsL2HitIntoL1(t *testing.T) {
	ctx := context.Background()
	l2 := cache.NewInProcessL2(0)
	l2.Set(ctx, "k", "from-l2", time.Hour)

	calls := 0
	loader := func(ctx context.Context, key string) (any, error) {
		calls++
		return "loaded", nil
	}
	tier := cache.NewTier(10, l2, time.Minute, loader)

	v, err := tier.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "from-l2", v)
	assert.Equal(t, 0, calls)
}

func TestTierInvalidateRemovesFromBothTiers(t *testing.T) {
	ctx := context.Background()
	l2 := cache.NewInProcessL2(0)
	loader := func(ctx context.Context, key string) (any, error) { return "loaded", nil }
	tier := cache.NewTier(10, l2, time.Minute, loader)

	_, err := tier.Get(ctx, "k")
	require.NoError(t, err)

	tier.Invalidate(ctx, "k")

	_, ok := l2.Get(ctx, "k")
	assert.False(t, ok)
}

func TestTierPropagatesLoaderError(t *testing.T) {
	loaderErr := assert.AnError
	loader := func(ctx context.Context, key string) (any, error) { return nil, loaderErr }
	tier := cache.NewTier(10, nil, time.Minute, loader)

	_, err := tier.Get(context.Background(), "k")
	assert.ErrorIs(t, err, loaderErr)
}

func TestTierClearEmptiesBothTiers(t *testing.T) {
	ctx := context.Background()
	l2 := cache.NewInProcessL2(0)
	loader := func(ctx context.Context, key string) (any, error) { return "loaded", nil }
	tier := cache.NewTier(10, l2, time.Minute, loader)
	_, _ = tier.Get(ctx, "k")

	tier.Clear(ctx)

	_, ok := l2.Get(ctx, "k")
	assert.False(t, ok)
}
