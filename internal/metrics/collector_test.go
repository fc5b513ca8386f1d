package metrics

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector("run-monitor", nil)
	c.TrackRuns(func() int { return 3 })

	c.RecordReceived()
	c.RecordReceived()
	c.RecordProcessed(2 * time.Millisecond)
	c.RecordProcessed(4 * time.Millisecond)
	c.RecordPublished()
	c.RecordError()
	c.IncrementCustom("alerts_low_hp")
	c.IncrementCustom("alerts_low_hp")
	c.IncrementCustom("dropped_not_json")

	s := c.GetSnapshot()
	if s.ServiceName != "run-monitor" || s.Status != "healthy" {
		t.Errorf("snapshot identity = %q/%q", s.ServiceName, s.Status)
	}
	if s.MessagesReceived != 2 || s.MessagesProcessed != 2 || s.AlertsPublished != 1 || s.ProcessingErrors != 1 {
		t.Errorf("counters = %+v", s)
	}
	if s.AvgProcessingLatencyNs != float64(3*time.Millisecond) {
		t.Errorf("AvgProcessingLatencyNs = %v, want %v", s.AvgProcessingLatencyNs, float64(3*time.Millisecond))
	}
	if s.RunsTracked != 3 {
		t.Errorf("RunsTracked = %d, want 3", s.RunsTracked)
	}
	if s.CustomCounters["alerts_low_hp"] != 2 || s.CustomCounters["dropped_not_json"] != 1 {
		t.Errorf("CustomCounters = %v", s.CustomCounters)
	}
}

func TestCollector_ConcurrentCustomCounters(t *testing.T) {
	c := NewCollector("run-monitor", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncrementCustom("alerts_boss_defeated")
			}
		}()
	}
	wg.Wait()

	if got := c.GetSnapshot().CustomCounters["alerts_boss_defeated"]; got != 800 {
		t.Errorf("counter = %d, want 800", got)
	}
}

func TestCollector_StartStopWithoutRedis(t *testing.T) {
	c := NewCollector("run-monitor", nil)
	c.SetReportInterval(time.Millisecond)
	c.Start(context.Background())

	time.Sleep(5 * time.Millisecond)
	c.Stop()
	c.Stop()
}

func TestCollector_StopsOnContextCancel(t *testing.T) {
	c := NewCollector("run-monitor", nil)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		c.done.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop after context cancel")
	}
}

func TestCollector_EmptySnapshot(t *testing.T) {
	s := NewCollector("run-monitor", nil).GetSnapshot()
	if s.AvgProcessingLatencyNs != 0 || s.RunsTracked != 0 || len(s.CustomCounters) != 0 {
		t.Errorf("fresh snapshot = %+v, want zero values", s)
	}
	if s.StartedAt.After(s.LastUpdated) {
		t.Errorf("StartedAt %v after LastUpdated %v", s.StartedAt, s.LastUpdated)
	}
}
