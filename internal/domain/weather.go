package domain

import (
	"context"
	"errors"
	"time"
)

// ErrIncompleteReading is returned by providers when a response is missing
// temperature or humidity.
var ErrIncompleteReading = errors.New("incomplete weather reading")

// WeatherReading is a live observation from an external provider.
type WeatherReading struct {
	City        string
	Temperature float64
	Humidity    float64
	Rainfall    float64 // last hour, 0 when not reported
	Description string
}

// Conditions drops the metadata and keeps the feature values.
func (r WeatherReading) Conditions() Conditions {
	return Conditions{Temperature: r.Temperature, Humidity: r.Humidity, Rainfall: r.Rainfall}
}

// WeatherProvider fetches current weather for a city.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, city string) (WeatherReading, error)
}

// Prediction is the response shape shared by the city+month and live modes.
type Prediction struct {
	City        string    `json:"city"`
	Month       int       `json:"month"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Rainfall    float64   `json:"rainfall"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Confidence  float64   `json:"confidence"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	IsLive      bool      `json:"is_live"`
}

// ForecastPoint is one month of a yearly forecast.
type ForecastPoint struct {
	Month       string    `json:"month"`
	MonthNum    int       `json:"month_num"`
	Year        int       `json:"year"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Rainfall    float64   `json:"rainfall"`
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskColor   string    `json:"risk_color"`
	Confidence  float64   `json:"confidence"`
}

// PredictionEvent records a served prediction for downstream consumers.
type PredictionEvent struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"` // "city_month", "live", "forecast"
	City        string    `json:"city"`
	Year        int       `json:"year,omitempty"`
	Month       int       `json:"month"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Rainfall    float64   `json:"rainfall"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Confidence  float64   `json:"confidence"`
	IsLive      bool      `json:"is_live"`
	PredictedAt time.Time `json:"predicted_at"`
}
