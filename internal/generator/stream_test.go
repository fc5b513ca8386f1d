package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/decoder"

	"github.com/segmentio/kafka-go"
)

type fakePublisher struct {
	keys     []string
	payloads [][]byte
	err      error
	onSend   func(n int)
}

func (f *fakePublisher) Publish(ctx context.Context, key string, payload []byte, headers ...kafka.Header) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, payload)
	if f.onSend != nil {
		f.onSend(len(f.payloads))
	}
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestStream_Count(t *testing.T) {
	g := newTestGenerator(11, 2)
	pub := &fakePublisher{}

	sent, err := Stream(context.Background(), g, pub, time.Millisecond, 5)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if sent != 5 || len(pub.payloads) != 5 {
		t.Fatalf("sent = %d, published = %d, want 5", sent, len(pub.payloads))
	}
	for i, raw := range pub.payloads {
		ev, err := decoder.Decode(raw)
		if err != nil {
			t.Fatalf("payload %d does not decode: %v", i, err)
		}
		if ev.RunID != pub.keys[i] {
			t.Errorf("key %q does not match run_id %q", pub.keys[i], ev.RunID)
		}
	}
}

func TestStream_StopsOnCancel(t *testing.T) {
	g := newTestGenerator(11, 2)
	ctx, cancel := context.WithCancel(context.Background())
	pub := &fakePublisher{onSend: func(n int) {
		if n == 3 {
			cancel()
		}
	}}

	sent, err := Stream(ctx, g, pub, time.Millisecond, 0)
	if err != nil {
		t.Fatalf("Stream() error = %v, want nil on cancel", err)
	}
	if sent != 3 {
		t.Errorf("sent = %d, want 3", sent)
	}
}

func TestStream_PublishError(t *testing.T) {
	g := newTestGenerator(11, 2)
	pub := &fakePublisher{err: errors.New("broker unavailable")}

	sent, err := Stream(context.Background(), g, pub, time.Millisecond, 0)
	if err == nil {
		t.Fatal("Stream() expected error")
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}
