package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/events"
)

const (
	// DefaultArchiveBuffer is the number of alerts queued for the archive worker.
	DefaultArchiveBuffer = 1024
	archiveWriteTimeout  = 5 * time.Second
)

// AlertStore persists alerts. InsertAlert reports whether a new row was written.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert events.Alert) (bool, error)
}

// ArchiveSink queues alerts for a background writer so storage latency never
// reaches the processing loop. When the queue is full the alert is dropped.
type ArchiveSink struct {
	store AlertStore
	queue chan events.Alert

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewArchiveSink starts the background writer.
func NewArchiveSink(store AlertStore, buffer int) *ArchiveSink {
	if buffer <= 0 {
		buffer = DefaultArchiveBuffer
	}
	s := &ArchiveSink{
		store: store,
		queue: make(chan events.Alert, buffer),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *ArchiveSink) run() {
	defer s.wg.Done()
	for alert := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
		inserted, err := s.store.InsertAlert(ctx, alert)
		cancel()
		if err != nil {
			slog.Error("Failed to archive alert",
				"alert_id", alert.AlertID,
				"run_id", alert.RunID,
				"error", err,
			)
			continue
		}
		if !inserted {
			slog.Debug("Alert already archived", "alert_id", alert.AlertID)
		}
	}
}

func (s *ArchiveSink) EmitAlert(ctx context.Context, alert events.Alert) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- alert:
	default:
		slog.Warn("Archive queue full, dropping alert",
			"alert_id", alert.AlertID,
			"run_id", alert.RunID,
		)
	}
}

// EmitSummary is a no-op; only alerts are archived.
func (s *ArchiveSink) EmitSummary(ctx context.Context, summary events.Summary) {}

// Close stops accepting alerts and waits for the queue to drain.
func (s *ArchiveSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}
