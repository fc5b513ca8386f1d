package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/producer"
)

// Stream publishes one generated event per interval until ctx is cancelled or,
// when count > 0, count events have been sent. Cancellation is a clean stop.
// It returns the number of events published.
func Stream(ctx context.Context, gen *Generator, pub producer.Publisher, interval time.Duration, count int) (int, error) {
	slog.Info("Starting dungeon event production",
		"interval", interval,
		"count", count,
		"active_runs", len(gen.runs),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for {
		ev := gen.Next()
		payload, err := ev.Marshal()
		if err != nil {
			return sent, fmt.Errorf("failed to encode event: %w", err)
		}

		slog.Debug("Generated dungeon event", "payload", string(payload))
		if err := pub.Publish(ctx, ev.RunID, payload); err != nil {
			if ctx.Err() != nil {
				slog.Warn("Production interrupted", "sent", sent)
				return sent, nil
			}
			return sent, fmt.Errorf("failed to publish event: %w", err)
		}
		sent++
		slog.Info("Sent dungeon event", "event", ev.Event, "run_id", ev.RunID, "sent", sent)

		if count > 0 && sent >= count {
			slog.Info("Requested event count reached", "sent", sent)
			return sent, nil
		}

		select {
		case <-ctx.Done():
			slog.Warn("Production interrupted", "sent", sent)
			return sent, nil
		case <-ticker.C:
		}
	}
}
