// Package metrics collects processing metrics for the run monitor.
// The Collector periodically writes a JSON snapshot to Redis, the Prometheus
// recorder exposes the same counters for scraping.
package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MetricsKeyPrefix is the Redis key prefix; the snapshot lives at MetricsKeyPrefix + service.
	MetricsKeyPrefix = "metrics:"
	// MetricsTTL expires a snapshot that stops being refreshed.
	MetricsTTL = 2 * time.Minute
	// DefaultReportInterval is how often the snapshot is rewritten.
	DefaultReportInterval = 30 * time.Second
)

// ServiceMetrics is the snapshot written to Redis.
type ServiceMetrics struct {
	ServiceName string    `json:"service_name"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`
	Status      string    `json:"status"`

	MessagesReceived  uint64 `json:"messages_received"`
	MessagesProcessed uint64 `json:"messages_processed"`
	AlertsPublished   uint64 `json:"alerts_published"`
	ProcessingErrors  uint64 `json:"processing_errors"`

	MessagesPerSecond      float64 `json:"messages_per_second"`
	AvgProcessingLatencyNs float64 `json:"avg_processing_latency_ns"`

	// RunsTracked is the number of runs held in the state store.
	RunsTracked int `json:"runs_tracked"`

	// CustomCounters carries named outcomes such as dropped_<reason> and alerts_<type>.
	CustomCounters map[string]uint64 `json:"custom_counters,omitempty"`
}

// loopCounters are the fixed counters fed by the processing loop.
type loopCounters struct {
	received  atomic.Uint64
	processed atomic.Uint64
	published atomic.Uint64
	errors    atomic.Uint64
	latencyNs atomic.Uint64
}

// Collector implements processor.MetricsRecorder and reports to Redis.
type Collector struct {
	service  string
	redis    *redis.Client
	started  time.Time
	interval time.Duration
	runs     func() int

	loop loopCounters

	namedMu sync.RWMutex
	named   map[string]*atomic.Uint64

	// window is the reference point for messages_per_second; reporter goroutine only.
	windowStart     time.Time
	windowProcessed uint64

	stopOnce sync.Once
	stop     chan struct{}
	done     sync.WaitGroup
}

// NewCollector creates a collector. A nil Redis client keeps counting but never reports.
func NewCollector(serviceName string, redisClient *redis.Client) *Collector {
	now := time.Now().UTC()
	return &Collector{
		service:     serviceName,
		redis:       redisClient,
		started:     now,
		interval:    DefaultReportInterval,
		named:       make(map[string]*atomic.Uint64),
		windowStart: now,
		stop:        make(chan struct{}),
	}
}

// SetReportInterval changes the report period. Call before Start.
func (c *Collector) SetReportInterval(interval time.Duration) {
	c.interval = interval
}

// TrackRuns registers a function reporting how many runs are in memory.
func (c *Collector) TrackRuns(fn func() int) {
	c.runs = fn
}

// Start launches the reporter. It writes once per interval and a last time when
// ctx ends or Stop is called.
func (c *Collector) Start(ctx context.Context) {
	c.done.Add(1)
	go c.report(ctx)
}

func (c *Collector) report(ctx context.Context) {
	defer c.done.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush(ctx)
		case <-ctx.Done():
			c.flush(context.Background())
			return
		case <-c.stop:
			c.flush(context.Background())
			return
		}
	}
}

// Stop ends reporting after a final write. Safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.done.Wait()
}

func (c *Collector) RecordReceived() { c.loop.received.Add(1) }

// RecordProcessed counts a processed message and its latency.
func (c *Collector) RecordProcessed(latency time.Duration) {
	c.loop.processed.Add(1)
	c.loop.latencyNs.Add(uint64(latency.Nanoseconds()))
}

func (c *Collector) RecordPublished() { c.loop.published.Add(1) }

func (c *Collector) RecordError() { c.loop.errors.Add(1) }

// IncrementCustom bumps the named counter, creating it on first use.
func (c *Collector) IncrementCustom(name string) {
	c.namedCounter(name).Add(1)
}

func (c *Collector) namedCounter(name string) *atomic.Uint64 {
	c.namedMu.RLock()
	n, ok := c.named[name]
	c.namedMu.RUnlock()
	if ok {
		return n
	}

	c.namedMu.Lock()
	defer c.namedMu.Unlock()
	if n, ok = c.named[name]; !ok {
		n = new(atomic.Uint64)
		c.named[name] = n
	}
	return n
}

func (c *Collector) namedValues() map[string]uint64 {
	c.namedMu.RLock()
	defer c.namedMu.RUnlock()
	out := make(map[string]uint64, len(c.named))
	for name, n := range c.named {
		out[name] = n.Load()
	}
	return out
}

// GetSnapshot returns current metrics without writing to Redis. The rate covers
// the time since the last report.
func (c *Collector) GetSnapshot() *ServiceMetrics {
	now := time.Now().UTC()
	processed := c.loop.processed.Load()

	s := &ServiceMetrics{
		ServiceName:       c.service,
		StartedAt:         c.started,
		LastUpdated:       now,
		Status:            "healthy",
		MessagesReceived:  c.loop.received.Load(),
		MessagesProcessed: processed,
		AlertsPublished:   c.loop.published.Load(),
		ProcessingErrors:  c.loop.errors.Load(),
		CustomCounters:    c.namedValues(),
	}
	if secs := now.Sub(c.windowStart).Seconds(); secs > 0 {
		s.MessagesPerSecond = float64(processed-c.windowProcessed) / secs
	}
	if processed > 0 {
		s.AvgProcessingLatencyNs = float64(c.loop.latencyNs.Load()) / float64(processed)
	}
	if c.runs != nil {
		s.RunsTracked = c.runs()
	}
	return s
}

func (c *Collector) flush(ctx context.Context) {
	if c.redis == nil {
		return
	}

	snapshot := c.GetSnapshot()
	c.windowStart = snapshot.LastUpdated
	c.windowProcessed = snapshot.MessagesProcessed

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("Failed to marshal metrics", "service", c.service, "error", err)
		return
	}

	key := MetricsKeyPrefix + c.service
	if err := c.redis.Set(ctx, key, data, MetricsTTL).Err(); err != nil {
		slog.Error("Failed to write metrics to Redis", "service", c.service, "key", key, "error", err)
		return
	}
	slog.Debug("Metrics written to Redis", "service", c.service, "key", key, "runs_tracked", snapshot.RunsTracked)
}
