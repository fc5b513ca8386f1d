// Package sink provides the outbound destinations for alerts and run summaries.
package sink

import (
	"context"
	"errors"

	"github.com/afikmenashe/dungeon-monitor/internal/events"
	"github.com/afikmenashe/dungeon-monitor/internal/processor"
)

// Multi fans out every record to all sinks in order.
type Multi []processor.AlertSink

var _ processor.AlertSink = Multi(nil)

func (m Multi) EmitAlert(ctx context.Context, alert events.Alert) {
	for _, s := range m {
		s.EmitAlert(ctx, alert)
	}
}

func (m Multi) EmitSummary(ctx context.Context, summary events.Summary) {
	for _, s := range m {
		s.EmitSummary(ctx, summary)
	}
}

// Close closes every sink and returns the joined errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
