package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
)

// CountryCode restricts city lookups to India.
const CountryCode = "IN"

// Client implements domain.WeatherProvider using the OpenWeatherMap current
// weather API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. Every request is bounded by
// timeout.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentWeather fetches the current conditions for an Indian city.
func (c *Client) CurrentWeather(ctx context.Context, city string) (domain.WeatherReading, error) {
	params := url.Values{
		"q":     {city + "," + CountryCode},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	start := time.Now()
	reading, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReading{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return reading, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WeatherReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.WeatherReading{}, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		return domain.WeatherReading{}, fmt.Errorf("decode response: %w", err)
	}

	return owm.reading()
}

// OpenWeatherMap API response types. Pointers distinguish missing fields
// from zero values.

type response struct {
	Name    string      `json:"name"`
	Main    *mainBlock  `json:"main"`
	Rain    *rainBlock  `json:"rain"`
	Weather []condition `json:"weather"`
}

type mainBlock struct {
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
}

type rainBlock struct {
	OneHour float64 `json:"1h"`
}

type condition struct {
	Description string `json:"description"`
}

func (r response) reading() (domain.WeatherReading, error) {
	if r.Main == nil || r.Main.Temp == nil || r.Main.Humidity == nil {
		return domain.WeatherReading{}, domain.ErrIncompleteReading
	}
	if len(r.Weather) == 0 {
		return domain.WeatherReading{}, fmt.Errorf("%w: no weather description", domain.ErrIncompleteReading)
	}

	reading := domain.WeatherReading{
		City:        r.Name,
		Temperature: domain.Round1(*r.Main.Temp),
		Humidity:    domain.Round1(*r.Main.Humidity),
		Description: titleCase(r.Weather[0].Description),
	}
	if r.Rain != nil {
		reading.Rainfall = domain.Round1(r.Rain.OneHour)
	}
	return reading, nil
}

// titleCase upper-cases the first letter of every word: "light rain" -> "Light Rain".
func titleCase(s string) string {
	prev := false
	return strings.Map(func(r rune) rune {
		out := unicode.ToUpper(r)
		if prev {
			out = unicode.ToLower(r)
		}
		prev = unicode.IsLetter(r)
		return out
	}, s)
}
