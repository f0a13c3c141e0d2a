package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Training artifacts.
	ModelPath   string
	DatasetPath string

	// Optional YAML file extending or overriding the built-in city profiles.
	CityProfilesFile string

	// OpenWeatherMap live weather configuration.
	WeatherAPIKey    string
	WeatherBaseURL   string
	WeatherEnabled   bool
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration
	WeatherCacheSize int

	// Kafka prediction event sink.
	KafkaBrokers            []string
	PredictionEventsTopic   string
	PredictionEventsEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("OWM_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("WEATHER_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("OWM_API_KEY")
	weatherEnabled := apiKey != ""
	if v := os.Getenv("OWM_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8000"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelPath:        sharedcfg.EnvOrDefault("MODEL_PATH", "dengue_model.json"),
		DatasetPath:      sharedcfg.EnvOrDefault("DATASET_PATH", "historical_dengue_data.csv"),
		CityProfilesFile: os.Getenv("CITY_PROFILES_FILE"),

		WeatherAPIKey:    apiKey,
		WeatherBaseURL:   sharedcfg.EnvOrDefault("OWM_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		WeatherEnabled:   weatherEnabled,
		WeatherTimeout:   weatherTimeout,
		WeatherCacheTTL:  cacheTTL,
		WeatherCacheSize: parseCacheSize(),

		KafkaBrokers:            sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		PredictionEventsTopic:   sharedcfg.EnvOrDefault("PREDICTION_EVENTS_TOPIC", "dengue-predictions"),
		PredictionEventsEnabled: os.Getenv("PREDICTION_EVENTS_ENABLED") == "true",
	}

	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.WeatherEnabled && cfg.WeatherAPIKey == "" {
		return nil, errors.New("OWM_ENABLED is true but OWM_API_KEY is not set")
	}
	if cfg.PredictionEventsEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when PREDICTION_EVENTS_ENABLED is true")
		}
		if cfg.PredictionEventsTopic == "" {
			return nil, errors.New("PREDICTION_EVENTS_TOPIC is required when PREDICTION_EVENTS_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("WEATHER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
