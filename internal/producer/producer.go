// Package producer wraps a Kafka writer used for dungeon events and alert records.
package producer

import (
	"context"
	"fmt"
	"log/slog"

	kafkautil "github.com/afikmenashe/dungeon-monitor/internal/kafka"

	"github.com/segmentio/kafka-go"
)

// Publisher publishes keyed JSON payloads.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte, headers ...kafka.Header) error
	Close() error
}

// Options controls how the writer is configured.
type Options struct {
	// Async makes Publish return immediately; delivery errors are logged from the
	// writer's completion callback and never retried.
	Async bool
	// CreateTopic attempts best-effort topic creation before the writer is used.
	CreateTopic bool
}

// Producer wraps a Kafka writer. Messages are keyed by run_id so a run's records
// keep their order within one partition.
type Producer struct {
	writer *kafka.Writer
	topic  string
	async  bool
}

// Ensure Producer implements Publisher interface
var _ Publisher = (*Producer)(nil)

// NewProducer creates a Kafka producer for topic.
func NewProducer(brokers string, topic string, opts Options) (*Producer, error) {
	if err := kafkautil.ValidateProducerParams(brokers, topic); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka producer",
		"brokers", brokerList,
		"topic", topic,
		"async", opts.Async,
	)

	if opts.CreateTopic {
		createTopicIfNotExists(brokerList[0], topic)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key-based partitioning (hashes the message key)
		WriteTimeout: kafkautil.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        opts.Async,
	}
	if opts.Async {
		writer.Completion = completionLogger(topic)
	}

	slog.Info("Kafka producer configured",
		"write_timeout", kafkautil.WriteTimeout,
		"required_acks", "RequireOne",
		"balancer", "Hash (key-based partitioning)",
		"partition_key", "run_id",
	)

	return &Producer{
		writer: writer,
		topic:  topic,
		async:  opts.Async,
	}, nil
}

// Publish writes one message. In async mode the error only reflects local failures
// such as a closed writer; delivery failures are reported by the completion callback.
func (p *Producer) Publish(ctx context.Context, key string, payload []byte, headers ...kafka.Header) error {
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: headers,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("Failed to write message to Kafka",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

// Topic returns the topic this producer writes to.
func (p *Producer) Topic() string {
	return p.topic
}

// Close flushes pending async writes and closes the writer.
func (p *Producer) Close() error {
	slog.Info("Closing Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		slog.Error("Error closing Kafka producer", "error", err)
		return err
	}
	slog.Info("Kafka producer closed successfully")
	return nil
}

func completionLogger(topic string) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		if err == nil {
			return
		}
		slog.Error("Async Kafka write failed",
			"topic", topic,
			"messages", len(messages),
			"error", err,
		)
	}
}
