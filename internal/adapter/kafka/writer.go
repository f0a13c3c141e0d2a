package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dengue-risk-service/internal/config"
	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
)

// Publishing sits on the request path, so a silent broker must fail fast.
const (
	writeTimeout = 2 * time.Second
	maxAttempts  = 2
)

// Publisher writes served predictions to a Kafka topic.
// It implements prediction.Recorder.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the prediction events topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.PredictionEventsTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		MaxAttempts:            maxAttempts,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, metrics, logger)
}

func newPublisher(w *kafkago.Writer, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	metrics.EventsPublisherOpen.Set(1)
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Record publishes events in a single WriteMessages call.
func (p *Publisher) Record(ctx context.Context, events ...domain.PredictionEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			p.metrics.EventPublishErrors.Add(float64(len(events)))
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.metrics.EventPublishErrors.Add(float64(len(events)))
		return fmt.Errorf("publish prediction events: %w", err)
	}
	p.metrics.EventsPublished.Add(float64(len(events)))
	p.logger.Debug("prediction events published", "count", len(events), "mode", events[0].Mode)
	return nil
}

func (p *Publisher) Close() error {
	p.metrics.EventsPublisherOpen.Set(0)
	return p.writer.Close()
}

// serializeToMessage marshals a PredictionEvent into a Kafka message keyed by
// the event id.
func serializeToMessage(event domain.PredictionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mode", Value: []byte(event.Mode)},
			{Key: "risk_level", Value: []byte(event.RiskLevel)},
			{Key: "predicted_at", Value: []byte(event.PredictedAt.Format(time.RFC3339))},
		},
	}, nil
}
