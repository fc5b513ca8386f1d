// Package consumer provides the Kafka message source for the dungeon topic.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	kafkautil "github.com/afikmenashe/dungeon-monitor/internal/kafka"

	"github.com/segmentio/kafka-go"
)

// Consumer wraps a Kafka reader and hands raw messages to the processor.
// Payloads are not decoded here; malformed messages are the processor's concern.
type Consumer struct {
	reader *kafka.Reader
	topic  string
	group  string
}

// NewConsumer creates a group consumer for topic.
// Offsets are committed in the background on kafkautil.CommitInterval (at-least-once).
func NewConsumer(brokers string, topic string, groupID string) (*Consumer, error) {
	if err := kafkautil.ValidateConsumerParams(brokers, topic, groupID); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka consumer",
		"brokers", brokerList,
		"topic", topic,
		"group_id", groupID,
	)

	cfg := kafkautil.NewReaderConfig(brokerList, topic, groupID)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reader config: %w", err)
	}
	reader := kafka.NewReader(cfg)
	kafkautil.LogReaderConfig(cfg)

	return &Consumer{
		reader: reader,
		topic:  topic,
		group:  groupID,
	}, nil
}

// ReadMessage blocks until the next message arrives or ctx is done.
func (c *Consumer) ReadMessage(ctx context.Context) (*kafka.Message, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read message from Kafka: %w", err)
	}

	slog.Debug("Received message",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"bytes", len(msg.Value),
	)
	return &msg, nil
}

// Stats returns the reader statistics since the last call.
func (c *Consumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}

// Close gracefully closes the Kafka reader and releases resources.
func (c *Consumer) Close() error {
	slog.Info("Closing Kafka consumer", "topic", c.topic, "group_id", c.group)
	if err := c.reader.Close(); err != nil {
		slog.Error("Error closing Kafka consumer", "error", err)
		return err
	}
	slog.Info("Kafka consumer closed successfully")
	return nil
}
