package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/decoder"
	"github.com/afikmenashe/dungeon-monitor/internal/engine"
	"github.com/afikmenashe/dungeon-monitor/internal/events"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// ErrSourceFailed wraps an unrecoverable error from the message source.
var ErrSourceFailed = errors.New("message source failed")

// Processor consumes dungeon events one at a time and derives alerts from them.
// Messages are handled strictly in delivery order, so per-run state needs no locking.
type Processor struct {
	source     MessageSource
	sink       AlertSink
	store      StateStore
	thresholds events.Thresholds
	metrics    MetricsRecorder
	newID      func() string
	now        func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics sets the metrics recorder. A nil recorder leaves the no-op in place.
func WithMetrics(m MetricsRecorder) Option {
	return func(p *Processor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithIDFunc overrides alert ID generation.
func WithIDFunc(f func() string) Option {
	return func(p *Processor) { p.newID = f }
}

// WithClock overrides the clock used to stamp alerts.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New creates a processor. The store must be owned by this processor alone.
func New(source MessageSource, sink AlertSink, store StateStore, th events.Thresholds, opts ...Option) *Processor {
	p := &Processor{
		source:     source,
		sink:       sink,
		store:      store,
		thresholds: th,
		metrics:    &NoOpMetrics{},
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reads messages until ctx is cancelled or the source fails.
// Cancellation is a clean stop and returns nil; a source failure returns an error
// wrapping ErrSourceFailed. The source is closed before Run returns.
func (p *Processor) Run(ctx context.Context) (err error) {
	slog.Info("Starting dungeon event processing loop",
		"low_hp_threshold", p.thresholds.LowHP,
		"jackpot_gold_threshold", p.thresholds.JackpotGold,
	)

	var handled uint64
	defer func() {
		if cerr := p.source.Close(); cerr != nil {
			slog.Error("Failed to close message source", "error", cerr)
		}
		slog.Info("Dungeon event processing loop stopped",
			"messages_handled", handled,
			"clean", err == nil,
		)
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, rerr := p.source.ReadMessage(ctx)
		if rerr != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("Failed to read from message source", "error", rerr)
			return fmt.Errorf("%w: %w", ErrSourceFailed, rerr)
		}

		p.metrics.RecordReceived()
		p.handleMessage(ctx, msg)
		handled++
	}
}

// handleMessage processes one message. A panic is contained to the message.
func (p *Processor) handleMessage(ctx context.Context, msg *kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.RecordError()
			slog.Error("Recovered from failure while handling message",
				"panic", r,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
		}
	}()

	p.Process(ctx, msg.Value)
}

// Process decodes and applies a single payload. It reports whether the payload
// was a valid event. Malformed payloads are logged and dropped.
func (p *Processor) Process(ctx context.Context, payload []byte) bool {
	start := time.Now()

	ev, err := decoder.Decode(payload)
	if err != nil {
		reason := decoder.Reason(err)
		p.metrics.IncrementCustom("dropped_" + reason)
		slog.Warn("Dropping message",
			"reason", reason,
			"error", err,
			"payload", decoder.Preview(payload),
		)
		return false
	}

	st := p.store.GetOrCreate(ev.RunID)
	st, alerts, summary := engine.Evaluate(st, ev, p.thresholds)
	p.store.Put(ev.RunID, st)

	ts := p.now().Unix()
	for _, alert := range alerts {
		alert.AlertID = p.newID()
		alert.EventTS = ts
		p.sink.EmitAlert(ctx, alert)
		p.metrics.RecordPublished()
		p.metrics.IncrementCustom("alerts_" + strings.ToLower(string(alert.Type)))
	}
	p.sink.EmitSummary(ctx, summary)

	p.metrics.RecordProcessed(time.Since(start))
	return true
}
