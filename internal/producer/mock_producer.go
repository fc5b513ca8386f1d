package producer

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// MockProducer logs payloads instead of publishing to Kafka.
// Useful for running without a Kafka instance.
type MockProducer struct {
	topic string
	count int
}

// Ensure MockProducer implements Publisher interface
var _ Publisher = (*MockProducer)(nil)

// NewMock creates a producer that only logs.
func NewMock(topic string) *MockProducer {
	slog.Info("Using mock producer (no Kafka connection)",
		"topic", topic,
		"note", "Messages will be logged but not published to Kafka",
	)
	return &MockProducer{topic: topic}
}

// Publish logs the payload.
func (p *MockProducer) Publish(ctx context.Context, key string, payload []byte, headers ...kafka.Header) error {
	p.count++
	slog.Info("Mock publish (message logged, not sent to Kafka)",
		"topic", p.topic,
		"key", key,
		"payload", string(payload),
	)
	return nil
}

// Published returns how many messages were logged.
func (p *MockProducer) Published() int {
	return p.count
}

// Close is a no-op for the mock producer.
func (p *MockProducer) Close() error {
	slog.Info("Mock producer closed", "topic", p.topic, "messages", p.count)
	return nil
}
