package processor

import (
	"context"
	"errors"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/events"

	"github.com/segmentio/kafka-go"
)

var errNoMoreMessages = errors.New("no more messages")

// FakeSource is a test fake for MessageSource. When the messages run out it calls
// OnExhausted (if set) and returns ReadErr, or errNoMoreMessages by default.
type FakeSource struct {
	Messages    [][]byte
	ReadErr     error
	OnExhausted func()
	ReadIndex   int
	ReadCalled  int
	Closed      bool
}

func NewFakeSource(payloads ...string) *FakeSource {
	f := &FakeSource{}
	for _, p := range payloads {
		f.Messages = append(f.Messages, []byte(p))
	}
	return f
}

func (f *FakeSource) ReadMessage(ctx context.Context) (*kafka.Message, error) {
	f.ReadCalled++
	if f.ReadIndex >= len(f.Messages) {
		if f.OnExhausted != nil {
			f.OnExhausted()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
		if f.ReadErr != nil {
			return nil, f.ReadErr
		}
		return nil, errNoMoreMessages
	}
	msg := &kafka.Message{Value: f.Messages[f.ReadIndex], Offset: int64(f.ReadIndex)}
	f.ReadIndex++
	return msg, nil
}

func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// FakeSink is a test fake for AlertSink.
type FakeSink struct {
	Alerts    []events.Alert
	Summaries []events.Summary
	// PanicOnRun makes EmitAlert panic for alerts of this run.
	PanicOnRun string
	Closed     bool
}

func (f *FakeSink) EmitAlert(ctx context.Context, alert events.Alert) {
	if f.PanicOnRun != "" && alert.RunID == f.PanicOnRun {
		panic("sink exploded")
	}
	f.Alerts = append(f.Alerts, alert)
}

func (f *FakeSink) EmitSummary(ctx context.Context, summary events.Summary) {
	f.Summaries = append(f.Summaries, summary)
}

func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}

// FakeMetrics is a test fake for MetricsRecorder that tracks calls.
type FakeMetrics struct {
	ReceivedCount    int
	ProcessedCount   int
	PublishedCount   int
	ErrorCount       int
	CustomIncrements map[string]int
}

func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{CustomIncrements: make(map[string]int)}
}

func (f *FakeMetrics) RecordReceived()                 { f.ReceivedCount++ }
func (f *FakeMetrics) RecordProcessed(_ time.Duration) { f.ProcessedCount++ }
func (f *FakeMetrics) RecordPublished()                { f.PublishedCount++ }
func (f *FakeMetrics) RecordError()                    { f.ErrorCount++ }
func (f *FakeMetrics) IncrementCustom(name string)     { f.CustomIncrements[name]++ }
