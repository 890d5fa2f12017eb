package repository

import (
	"context"
	"fmt"

	"StockSage/internal/domain/models"
	pkgkafka "StockSage/pkg/kafka"
)

const defaultCompletedTopic = "analysis.completed"

// KafkaPublisher emits analysis lifecycle events, keyed by ticker so one
// symbol's events stay ordered within a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = defaultCompletedTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishAnalysisCompleted(ctx context.Context, ev *models.AnalysisEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.Ticker), ev); err != nil {
		return fmt.Errorf("publish analysis event: %w", err)
	}
	return nil
}

// NoopPublisher stands in when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishAnalysisCompleted(context.Context, *models.AnalysisEvent) error {
	return nil
}
