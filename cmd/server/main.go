package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/dengue-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dengue-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/dengue-risk-service/internal/adapter/openweather"
	"github.com/couchcryptid/dengue-risk-service/internal/config"
	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/forest"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
	"github.com/couchcryptid/dengue-risk-service/internal/prediction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	profiles, err := config.LoadProfileTable(cfg.CityProfilesFile)
	if err != nil {
		logger.Error("failed to load city profiles", "error", err)
		os.Exit(1)
	}

	// A missing or invalid artifact starts the server degraded: /readyz
	// reports 503 and prediction routes return 500.
	var model prediction.Predictor
	if m, err := forest.Load(cfg.ModelPath); err != nil {
		logger.Error("failed to load model, serving degraded", "path", cfg.ModelPath, "error", err)
	} else {
		model = m
		metrics.ModelLoaded.Set(1)
		logger.Info("model loaded", "path", cfg.ModelPath, "trees", len(m.Trees), "classes", m.Classes)
	}

	opts := []prediction.Option{prediction.WithClock(clock)}

	// Live weather is feature-flagged via OWM_ENABLED / OWM_API_KEY.
	if cfg.WeatherEnabled {
		client := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)
		var weather domain.WeatherProvider = client
		if cfg.WeatherCacheTTL > 0 {
			weather = openweather.NewCachedProvider(client, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, clock, metrics)
		}
		opts = append(opts, prediction.WithWeather(weather))
		logger.Info("live weather enabled", "timeout", cfg.WeatherTimeout, "cache_ttl", cfg.WeatherCacheTTL, "cache_size", cfg.WeatherCacheSize)
	} else {
		logger.Info("live weather disabled, live predictions use seasonal estimates")
	}

	var publisher *kafkaadapter.Publisher
	if cfg.PredictionEventsEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		opts = append(opts, prediction.WithRecorder(publisher))
		logger.Info("prediction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.PredictionEventsTopic)
	}

	svc := prediction.New(model, profiles, metrics, logger, opts...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
