package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCacheService_GetOrSetAndExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cs := NewCacheService()
	cs.now = func() time.Time { return now }

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	v, err := cs.GetOrSet(context.Background(), "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, _ = cs.GetOrSet(context.Background(), "k", time.Minute, load)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	v, _ = cs.GetOrSet(context.Background(), "k", time.Minute, load)
	assert.Equal(t, 2, v)
}

func TestCacheService_ErrorsAreNotCached(t *testing.T) {
	cs := NewCacheService()
	_, err := cs.GetOrSet(context.Background(), "k", time.Minute, func(context.Context) (interface{}, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)
	assert.Zero(t, cs.Len())
}

func TestCacheService_InvalidateTaxonomy(t *testing.T) {
	cs := NewCacheService()
	cs.Set(ActiveTypesCacheKey(), 1, time.Minute)
	cs.Set(StatsCacheKey(), 2, time.Minute)

	cs.InvalidateTaxonomy()

	_, ok := cs.Get(ActiveTypesCacheKey())
	assert.False(t, ok)
	_, ok = cs.Get(StatsCacheKey())
	assert.True(t, ok)
}

func TestCacheService_RunPurgesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	cs := NewCacheService()
	cs.Set("short", 1, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cs.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return cs.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
