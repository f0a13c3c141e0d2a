package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction service.
type Metrics struct {
	Predictions      *prometheus.CounterVec // labels: mode={city_month,live,forecast}, risk_level
	PredictionErrors *prometheus.CounterVec // labels: mode, reason={model_unavailable,invalid_input}
	ModelLoaded      prometheus.Gauge

	// Live weather metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error}
	WeatherFallbacks   prometheus.Counter
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram

	// Prediction event sink metrics.
	EventsPublished     prometheus.Counter
	EventPublishErrors  prometheus.Counter
	EventsPublisherOpen prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.Predictions,
		m.PredictionErrors,
		m.ModelLoaded,
		m.WeatherRequests,
		m.WeatherFallbacks,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.EventsPublished,
		m.EventPublishErrors,
		m.EventsPublisherOpen,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dengue",
			Name:      "predictions_total",
			Help:      help("Predictions served by mode and risk level."),
		}, []string{"mode", "risk_level"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dengue",
			Name:      "prediction_errors_total",
			Help:      help("Prediction requests that failed, by mode and reason."),
		}, []string{"mode", "reason"}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dengue",
			Name:      "model_loaded",
			Help:      help("1 when a trained model is loaded, 0 in degraded mode."),
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dengue",
			Name:      "weather_requests_total",
			Help:      help("Live weather API requests by outcome."),
		}, []string{"outcome"}),
		WeatherFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue",
			Name:      "weather_fallbacks_total",
			Help:      help("Live predictions served from the seasonal estimate."),
		}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dengue",
			Name:      "weather_cache_total",
			Help:      help("Live weather cache lookups by result."),
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dengue",
			Name:      "weather_api_duration_seconds",
			Help:      help("OpenWeatherMap request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue",
			Name:      "prediction_events_published_total",
			Help:      help("Prediction events written to Kafka."),
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue",
			Name:      "prediction_event_errors_total",
			Help:      help("Prediction events that failed to publish."),
		}),
		EventsPublisherOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dengue",
			Name:      "prediction_events_enabled",
			Help:      help("1 when prediction events are published to Kafka, 0 otherwise."),
		}),
	}
}
