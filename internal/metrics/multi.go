package metrics

import (
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/processor"
)

// Multi forwards every measurement to each recorder.
type Multi []processor.MetricsRecorder

var _ processor.MetricsRecorder = Multi(nil)

func (m Multi) RecordReceived() {
	for _, r := range m {
		r.RecordReceived()
	}
}

func (m Multi) RecordProcessed(latency time.Duration) {
	for _, r := range m {
		r.RecordProcessed(latency)
	}
}

func (m Multi) RecordPublished() {
	for _, r := range m {
		r.RecordPublished()
	}
}

func (m Multi) RecordError() {
	for _, r := range m {
		r.RecordError()
	}
}

func (m Multi) IncrementCustom(name string) {
	for _, r := range m {
		r.IncrementCustom(name)
	}
}
