//go:build openweather

package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dengue-risk-service/internal/observability"
)

// These tests hit the real OpenWeatherMap API and require a valid OWM_API_KEY env var.
// Run with: go test -tags=openweather ./internal/adapter/openweather/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("OWM_API_KEY")
	if key == "" {
		t.Fatal("OWM_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.openweathermap.org/data/2.5/weather",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_CurrentWeather(t *testing.T) {
	c := smokeClient(t)

	r, err := c.CurrentWeather(context.Background(), "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, "Mumbai", r.City)
	assert.InDelta(t, 28, r.Temperature, 15, "temperature should be plausible for Mumbai")
	assert.GreaterOrEqual(t, r.Humidity, 0.0)
	assert.LessOrEqual(t, r.Humidity, 100.0)
	assert.GreaterOrEqual(t, r.Rainfall, 0.0)
	assert.NotEmpty(t, r.Description)
}

func TestSmoke_UnknownCity(t *testing.T) {
	c := smokeClient(t)

	_, err := c.CurrentWeather(context.Background(), "XYZNONEXISTENT99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSmoke_CachedProvider(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedProvider(c, 10, time.Minute, clockwork.NewRealClock(), observability.NewMetricsForTesting())

	r1, err := cached.CurrentWeather(context.Background(), "Chennai")
	require.NoError(t, err)

	r2, err := cached.CurrentWeather(context.Background(), "Chennai")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
