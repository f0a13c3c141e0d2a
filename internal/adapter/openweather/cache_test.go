package openweather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls  int
	result domain.WeatherReading
	err    error
}

func (m *countingProvider) CurrentWeather(_ context.Context, city string) (domain.WeatherReading, error) {
	m.calls++
	r := m.result
	r.City = city
	return r, m.err
}

func newTestCache(inner domain.WeatherProvider, size int, ttl time.Duration) (*CachedProvider, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC))
	return NewCachedProvider(inner, size, ttl, clock, observability.NewMetricsForTesting()), clock
}

// --- CachedProvider tests ---

func TestCachedProvider_HitWithinTTL(t *testing.T) {
	inner := &countingProvider{result: domain.WeatherReading{Temperature: 31, Humidity: 80}}
	cached, clock := newTestCache(inner, 10, 10*time.Minute)

	r1, err := cached.CurrentWeather(context.Background(), "Mumbai")
	require.NoError(t, err)
	clock.Advance(9 * time.Minute)
	r2, err := cached.CurrentWeather(context.Background(), "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedProvider_ExpiresAfterTTL(t *testing.T) {
	inner := &countingProvider{result: domain.WeatherReading{Temperature: 31}}
	cached, clock := newTestCache(inner, 10, 10*time.Minute)

	_, err := cached.CurrentWeather(context.Background(), "Mumbai")
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	_, err = cached.CurrentWeather(context.Background(), "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_DistinctCities(t *testing.T) {
	inner := &countingProvider{}
	cached, _ := newTestCache(inner, 10, time.Minute)

	_, _ = cached.CurrentWeather(context.Background(), "Pune")
	_, _ = cached.CurrentWeather(context.Background(), "Patna")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("timeout")}
	cached, _ := newTestCache(inner, 10, time.Minute)

	_, err := cached.CurrentWeather(context.Background(), "Kochi")
	require.Error(t, err)
	_, err = cached.CurrentWeather(context.Background(), "Kochi")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, cached.cache.size())
}

func TestCachedProvider_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingProvider{}
	cached, _ := newTestCache(inner, 2, time.Hour)
	ctx := context.Background()

	_, _ = cached.CurrentWeather(ctx, "A")
	_, _ = cached.CurrentWeather(ctx, "B")
	_, _ = cached.CurrentWeather(ctx, "A") // A becomes most recent
	_, _ = cached.CurrentWeather(ctx, "C") // evicts B
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 2, cached.cache.size())

	_, _ = cached.CurrentWeather(ctx, "A")
	assert.Equal(t, 3, inner.calls, "A should still be cached")

	_, _ = cached.CurrentWeather(ctx, "B")
	assert.Equal(t, 4, inner.calls, "B should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	now := time.Now()

	c.put("x", domain.WeatherReading{Temperature: 1}, now, now.Add(time.Minute))
	c.put("x", domain.WeatherReading{Temperature: 2}, now, now.Add(time.Minute))

	got, ok := c.get("x", now)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Temperature)
	assert.Equal(t, 1, c.size())
}

func TestLRUCache_EvictsExpiredBeforeLive(t *testing.T) {
	c := newLRUCache(2)
	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)

	c.put("old", domain.WeatherReading{Temperature: 1}, now, now.Add(time.Hour))
	c.put("stale", domain.WeatherReading{Temperature: 2}, now, now.Add(time.Minute))

	later := now.Add(5 * time.Minute)
	c.put("new", domain.WeatherReading{Temperature: 3}, later, later.Add(time.Hour))

	assert.Equal(t, 2, c.size())
	_, ok := c.get("old", later)
	assert.True(t, ok, "live entry should survive while an expired one can go")
	_, ok = c.get("stale", later)
	assert.False(t, ok)
	_, ok = c.get("new", later)
	assert.True(t, ok)
}

func TestLRUCache_ExpiredLookupDropsEntry(t *testing.T) {
	c := newLRUCache(4)
	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)

	c.put("x", domain.WeatherReading{Temperature: 1}, now, now.Add(time.Minute))
	_, ok := c.get("x", now.Add(time.Minute))
	assert.False(t, ok)
	assert.Zero(t, c.size())
}
