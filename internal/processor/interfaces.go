// Package processor runs the decode, evaluate, commit and emit loop over the event stream.
package processor

import (
	"context"

	"github.com/afikmenashe/dungeon-monitor/internal/events"

	"github.com/segmentio/kafka-go"
)

// MessageSource delivers raw dungeon messages.
type MessageSource interface {
	// ReadMessage blocks until the next message is available or ctx is done.
	ReadMessage(ctx context.Context) (*kafka.Message, error)

	// Close closes the source and releases its connection.
	Close() error
}

// AlertSink receives alerts and rolling summaries. Implementations are best effort:
// they log their own failures and must not block on slow I/O.
type AlertSink interface {
	EmitAlert(ctx context.Context, alert events.Alert)
	EmitSummary(ctx context.Context, summary events.Summary)
	Close() error
}

// StateStore is the per-run state the processor reads and commits.
type StateStore interface {
	GetOrCreate(runID string) events.RunState
	Put(runID string, st events.RunState)
}
