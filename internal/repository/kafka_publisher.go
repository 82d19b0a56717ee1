package repository

import (
	"context"
	"strconv"

	"TrendWatch/internal/domain/models"
	"TrendWatch/internal/domain/repository"
	pkgkafka "TrendWatch/pkg/kafka"
	applogger "TrendWatch/pkg/logger"
)

// KafkaEventPublisher writes watchlist events keyed by user id, so one
// user's changes stay ordered within a partition.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a Kafka-backed event publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishWatchlistEvent(ctx context.Context, ev models.WatchlistEvent) error {
	key := []byte(strconv.FormatInt(ev.UserID, 10))
	return p.producer.Publish(ctx, p.topic, key, ev)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopEventPublisher drops events. Used when Kafka is disabled.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishWatchlistEvent(context.Context, models.WatchlistEvent) error {
	return nil
}

func (NoopEventPublisher) Close() error { return nil }

// KafkaLogPublisher ships aggregated error logs to a topic.
type KafkaLogPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ applogger.Publisher = (*KafkaLogPublisher)(nil)

// NewKafkaLogPublisher creates the log collector sink.
func NewKafkaLogPublisher(producer *pkgkafka.Producer, topic string) *KafkaLogPublisher {
	return &KafkaLogPublisher{producer: producer, topic: topic}
}

func (p *KafkaLogPublisher) PublishLogs(ctx context.Context, entries []applogger.AggregatedLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(entries))
	for i, e := range entries {
		msgs[i] = pkgkafka.Message{Key: []byte(e.Level), Value: e}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}
