package sink

import (
	"context"
	"errors"
	"sync"

	"github.com/afikmenashe/dungeon-monitor/internal/events"

	"github.com/segmentio/kafka-go"
)

type publishCall struct {
	Key     string
	Payload []byte
	Headers []kafka.Header
}

// FakePublisher is a test fake for producer.Publisher.
type FakePublisher struct {
	Calls      []publishCall
	PublishErr error
	Closed     bool
}

func (f *FakePublisher) Publish(ctx context.Context, key string, payload []byte, headers ...kafka.Header) error {
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.Calls = append(f.Calls, publishCall{Key: key, Payload: payload, Headers: headers})
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// FakeStore is a test fake for AlertStore.
type FakeStore struct {
	mu       sync.Mutex
	Inserted []events.Alert
	FailFor  string
	// Block, when set, holds every insert until it is closed.
	Block chan struct{}
}

func (f *FakeStore) InsertAlert(ctx context.Context, alert events.Alert) (bool, error) {
	if f.Block != nil {
		<-f.Block
	}
	if alert.AlertID == f.FailFor {
		return false, errors.New("insert failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserted = append(f.Inserted, alert)
	return true, nil
}

func (f *FakeStore) inserted() []events.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Alert(nil), f.Inserted...)
}

// recordingSink counts records for fan-out tests.
type recordingSink struct {
	alerts    int
	summaries int
	closeErr  error
}

func (r *recordingSink) EmitAlert(context.Context, events.Alert)     { r.alerts++ }
func (r *recordingSink) EmitSummary(context.Context, events.Summary) { r.summaries++ }
func (r *recordingSink) Close() error                                { return r.closeErr }
