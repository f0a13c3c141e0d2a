// Package prediction turns a city and month, live weather, or a calendar year
// into dengue risk predictions using a trained classifier.
package prediction

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
)

// Prediction modes, used as metric labels and event modes.
const (
	ModeCityMonth = "city_month"
	ModeLive      = "live"
	ModeForecast  = "forecast"
)

// DefaultRecordTimeout bounds how long a request waits on the recorder.
const DefaultRecordTimeout = 2 * time.Second

// FallbackDescription marks a live prediction served from the seasonal estimate.
const FallbackDescription = "Estimated (live API unavailable)"

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Predictor classifies a feature vector into a risk level and a confidence
// percentage. It returns domain.ErrModelUnavailable when no model is loaded.
type Predictor interface {
	Predict(f domain.FeatureVector) (domain.RiskLevel, float64, error)
}

// Recorder receives every served prediction.
type Recorder interface {
	Record(ctx context.Context, events ...domain.PredictionEvent) error
}

// Option configures a Service.
type Option func(*Service)

// WithWeather enables live weather lookups. Without a provider every live
// prediction falls back to the seasonal estimate.
func WithWeather(p domain.WeatherProvider) Option {
	return func(s *Service) { s.weather = p }
}

// WithRecorder reports served predictions to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the clock used for the current month and event timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithRecordTimeout overrides DefaultRecordTimeout.
func WithRecordTimeout(d time.Duration) Option {
	return func(s *Service) { s.recordTimeout = d }
}

// WithForecastSeed makes forecast jitter reproducible.
func WithForecastSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
		s.seeded = true
	}
}

// Service serves the three prediction modes.
type Service struct {
	model    Predictor
	profiles *domain.ProfileTable
	weather  domain.WeatherProvider
	recorder Recorder
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger

	recordTimeout time.Duration

	seeded bool
	seed   uint64
}

// New creates a Service. model may be nil, in which case every prediction
// fails with domain.ErrModelUnavailable.
func New(model Predictor, profiles *domain.ProfileTable, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		model:    model,
		profiles: profiles,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
		logger:   logger,

		recordTimeout: DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness reports whether a model is loaded and answering.
func (s *Service) CheckReadiness(_ context.Context) error {
	_, _, err := s.classify(s.profiles.Estimate(domain.DefaultCity, 1).WithMonth(1))
	return err
}

// Cities returns the supported city names in sorted order.
func (s *Service) Cities() []string {
	return s.profiles.Cities()
}

// PredictCityMonth predicts risk from the seasonal estimate for city in month.
func (s *Service) PredictCityMonth(ctx context.Context, city string, month int) (domain.Prediction, error) {
	if !domain.ValidMonth(month) {
		s.recordError(ModeCityMonth, domain.ErrInvalidMonth)
		return domain.Prediction{}, domain.ErrInvalidMonth
	}

	cond := s.profiles.Estimate(city, month)
	level, conf, err := s.classify(cond.WithMonth(month))
	if err != nil {
		s.recordError(ModeCityMonth, err)
		return domain.Prediction{}, err
	}

	p := domain.Prediction{
		City:        city,
		Month:       month,
		Temperature: domain.Round1(cond.Temperature),
		Humidity:    domain.Round1(cond.Humidity),
		Rainfall:    domain.Round1(cond.Rainfall),
		RiskLevel:   level,
		Confidence:  conf,
		Color:       level.Color(),
	}
	s.served(ctx, ModeCityMonth, s.event(ModeCityMonth, 0, p))
	return p, nil
}

// PredictLive predicts risk for the current month from live weather. Any
// failure to obtain a complete reading falls back to the seasonal estimate
// with IsLive false; only a missing model is returned as an error.
func (s *Service) PredictLive(ctx context.Context, city string) (domain.Prediction, error) {
	if err := s.CheckReadiness(ctx); err != nil {
		s.recordError(ModeLive, err)
		return domain.Prediction{}, err
	}

	month := int(s.clock.Now().Month())
	p := domain.Prediction{City: city, Month: month}

	reading, err := s.fetch(ctx, city)
	if err == nil {
		if reading.City != "" {
			p.City = reading.City
		}
		p.Temperature = reading.Temperature
		p.Humidity = reading.Humidity
		p.Rainfall = reading.Rainfall
		p.Description = reading.Description
		p.IsLive = true
	} else {
		s.logger.Warn("live weather unavailable, using seasonal estimate", "city", city, "error", err)
		s.metrics.WeatherFallbacks.Inc()
		cond := s.profiles.Estimate(city, month)
		p.Temperature = domain.Round1(cond.Temperature)
		p.Humidity = domain.Round1(cond.Humidity)
		p.Rainfall = domain.Round1(cond.Rainfall)
		p.Description = FallbackDescription
	}

	features := domain.Conditions{Temperature: p.Temperature, Humidity: p.Humidity, Rainfall: p.Rainfall}.WithMonth(month)
	level, conf, err := s.classify(features)
	if err != nil {
		s.recordError(ModeLive, err)
		return domain.Prediction{}, err
	}
	p.RiskLevel = level
	p.Confidence = conf
	p.Color = level.Color()

	s.served(ctx, ModeLive, s.event(ModeLive, 0, p))
	return p, nil
}

var errNoProvider = errors.New("live weather disabled")

func (s *Service) fetch(ctx context.Context, city string) (domain.WeatherReading, error) {
	if s.weather == nil {
		return domain.WeatherReading{}, errNoProvider
	}
	return s.weather.CurrentWeather(ctx, city)
}

// YearlyForecast predicts risk for each month of year with small random
// perturbations around the seasonal estimate.
func (s *Service) YearlyForecast(ctx context.Context, city string, year int) ([]domain.ForecastPoint, error) {
	rng := s.forecastRNG()
	points := make([]domain.ForecastPoint, 0, len(monthNames))
	events := make([]domain.PredictionEvent, 0, len(monthNames))

	for i, name := range monthNames {
		month := i + 1
		base := s.profiles.Estimate(city, month)

		cond := domain.Conditions{
			Temperature: base.Temperature + uniform(rng, -1, 1),
			Humidity:    base.Humidity + uniform(rng, -4, 4),
		}
		if base.Rainfall > 10 {
			cond.Rainfall = max(0, base.Rainfall+uniform(rng, -15, 20))
		} else {
			cond.Rainfall = max(0, base.Rainfall+uniform(rng, 0, 5))
		}

		level, conf, err := s.classify(cond.WithMonth(month))
		if err != nil {
			s.recordError(ModeForecast, err)
			return nil, err
		}

		pt := domain.ForecastPoint{
			Month:       name,
			MonthNum:    month,
			Year:        year,
			Temperature: domain.Round1(cond.Temperature),
			Humidity:    domain.Round1(cond.Humidity),
			Rainfall:    domain.Round1(cond.Rainfall),
			RiskLevel:   level,
			RiskColor:   level.Color(),
			Confidence:  domain.Round1(conf),
		}
		points = append(points, pt)
		events = append(events, s.event(ModeForecast, year, domain.Prediction{
			City:        city,
			Month:       month,
			Temperature: pt.Temperature,
			Humidity:    pt.Humidity,
			Rainfall:    pt.Rainfall,
			RiskLevel:   level,
			Confidence:  pt.Confidence,
		}))
	}

	s.served(ctx, ModeForecast, events...)
	return points, nil
}

func (s *Service) forecastRNG() *rand.Rand {
	if s.seeded {
		return rand.New(rand.NewPCG(s.seed, s.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func (s *Service) classify(f domain.FeatureVector) (domain.RiskLevel, float64, error) {
	if s.model == nil {
		return "", 0, domain.ErrModelUnavailable
	}
	return s.model.Predict(f)
}

func (s *Service) recordError(mode string, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, domain.ErrModelUnavailable):
		reason = "model_unavailable"
	case errors.Is(err, domain.ErrInvalidMonth):
		reason = "invalid_input"
	}
	s.metrics.PredictionErrors.WithLabelValues(mode, reason).Inc()
}

func (s *Service) event(mode string, year int, p domain.Prediction) domain.PredictionEvent {
	return domain.PredictionEvent{
		ID:          uuid.NewString(),
		Mode:        mode,
		City:        p.City,
		Year:        year,
		Month:       p.Month,
		Temperature: p.Temperature,
		Humidity:    p.Humidity,
		Rainfall:    p.Rainfall,
		RiskLevel:   p.RiskLevel,
		Confidence:  p.Confidence,
		IsLive:      p.IsLive,
		PredictedAt: s.clock.Now().UTC().Truncate(time.Millisecond),
	}
}

// served updates metrics and hands events to the recorder. Recorder failures
// are logged and never reach the caller.
func (s *Service) served(ctx context.Context, mode string, events ...domain.PredictionEvent) {
	for _, e := range events {
		s.metrics.Predictions.WithLabelValues(mode, e.RiskLevel.String()).Inc()
	}
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.recordTimeout)
	defer cancel()
	if err := s.recorder.Record(ctx, events...); err != nil {
		s.logger.Warn("record prediction events failed", "mode", mode, "count", len(events), "error", err)
	}
}
