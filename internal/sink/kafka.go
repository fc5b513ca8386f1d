package sink

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/afikmenashe/dungeon-monitor/internal/events"
	"github.com/afikmenashe/dungeon-monitor/internal/producer"

	"github.com/segmentio/kafka-go"
)

const (
	recordTypeAlert   = "alert"
	recordTypeSummary = "summary"
)

// KafkaSink publishes alerts, and optionally summaries, as JSON records keyed by run_id.
type KafkaSink struct {
	publisher        producer.Publisher
	publishSummaries bool
}

// NewKafkaSink creates a sink on top of publisher, which it owns and closes.
func NewKafkaSink(publisher producer.Publisher, publishSummaries bool) *KafkaSink {
	return &KafkaSink{publisher: publisher, publishSummaries: publishSummaries}
}

func (s *KafkaSink) EmitAlert(ctx context.Context, alert events.Alert) {
	s.publish(ctx, alert.RunID, alert,
		kafka.Header{Key: "record_type", Value: []byte(recordTypeAlert)},
		kafka.Header{Key: "alert_type", Value: []byte(alert.Type)},
	)
}

func (s *KafkaSink) EmitSummary(ctx context.Context, summary events.Summary) {
	if !s.publishSummaries {
		return
	}
	s.publish(ctx, summary.RunID, summary,
		kafka.Header{Key: "record_type", Value: []byte(recordTypeSummary)},
	)
}

func (s *KafkaSink) publish(ctx context.Context, runID string, record any, headers ...kafka.Header) {
	payload, err := json.Marshal(record)
	if err != nil {
		slog.Error("Failed to marshal record", "run_id", runID, "error", err)
		return
	}
	headers = append(headers, kafka.Header{Key: "content-type", Value: []byte("application/json")})
	if err := s.publisher.Publish(ctx, runID, payload, headers...); err != nil {
		slog.Warn("Dropping record after publish failure", "run_id", runID, "error", err)
	}
}

func (s *KafkaSink) Close() error {
	return s.publisher.Close()
}
