package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dengue-risk-service/internal/config"
	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)
	event := domain.PredictionEvent{
		ID:          "0b6f2c1e-2c7a-4d7e-9f4b-1f1f0c2a9e11",
		Mode:        "live",
		City:        "Mumbai",
		Month:       8,
		Temperature: 29.4,
		Humidity:    88,
		Rainfall:    3.1,
		RiskLevel:   domain.RiskHigh,
		Confidence:  92.5,
		IsLive:      true,
		PredictedAt: now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte(event.ID), msg.Key)
	assert.Len(t, msg.Headers, 3)
	assert.Equal(t, "mode", msg.Headers[0].Key)
	assert.Equal(t, []byte("live"), msg.Headers[0].Value)
	assert.Equal(t, "risk_level", msg.Headers[1].Key)
	assert.Equal(t, []byte("High"), msg.Headers[1].Value)
	assert.Equal(t, "predicted_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded domain.PredictionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
	assert.NotContains(t, string(msg.Value), `"year"`)
}

func TestNewPublisher_FailsFast(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, PredictionEventsTopic: "dengue-predictions"}
	p := NewPublisher(cfg, observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, writeTimeout, p.writer.WriteTimeout)
	assert.Equal(t, maxAttempts, p.writer.MaxAttempts)
	assert.LessOrEqual(t, p.writer.WriteTimeout*time.Duration(p.writer.MaxAttempts), 5*time.Second)
}

func TestPublisher_RecordNothing(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := newPublisher(&kafkago.Writer{Addr: kafkago.TCP("127.0.0.1:1"), Topic: "t"}, metrics, discardLogger())
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.Record(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublisherOpen))
	assert.Zero(t, testutil.ToFloat64(metrics.EventsPublished))
}

func TestPublisher_RecordUnreachableBroker(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	w := &kafkago.Writer{
		Addr:         kafkago.TCP("127.0.0.1:1"),
		Topic:        "dengue-predictions",
		MaxAttempts:  1,
		BatchTimeout: time.Millisecond,
		WriteTimeout: time.Second,
	}
	p := newPublisher(w, metrics, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.Record(ctx, domain.PredictionEvent{ID: "a", Mode: "forecast"}, domain.PredictionEvent{ID: "b", Mode: "forecast"})
	require.Error(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EventPublishErrors))

	_ = p.Close()
	assert.Zero(t, testutil.ToFloat64(metrics.EventsPublisherOpen))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
