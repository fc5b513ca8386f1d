package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dungeon_monitor"

// Prometheus records processing metrics as Prometheus collectors on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	received   prometheus.Counter
	processed  prometheus.Counter
	published  prometheus.Counter
	errors     prometheus.Counter
	custom     *prometheus.CounterVec
	processing prometheus.Histogram
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      name,
		Help:      help,
	})
}

// NewPrometheus creates the recorder and registers its collectors.
// runsTracked may be nil; when set it backs the runs_tracked gauge.
func NewPrometheus(runsTracked func() int) *Prometheus {
	p := &Prometheus{
		registry:  prometheus.NewRegistry(),
		received:  newCounter("messages_received_total", "Messages read from the event topic"),
		processed: newCounter("messages_processed_total", "Messages decoded and applied to run state"),
		published: newCounter("alerts_emitted_total", "Alerts handed to the outbound sinks"),
		errors:    newCounter("processing_errors_total", "Messages whose handling failed unexpectedly"),
		custom: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "events_total",
			Help:      "Named processor outcomes such as dropped messages and alerts by type",
		}, []string{"name"}),
		processing: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "processing_seconds",
			Help:      "Time spent handling one message",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}),
	}

	p.registry.MustRegister(p.received, p.processed, p.published, p.errors, p.custom, p.processing)
	if runsTracked != nil {
		p.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "runs_tracked",
			Help:      "Runs currently held in memory",
		}, func() float64 { return float64(runsTracked()) }))
	}
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) RecordReceived() { p.received.Inc() }

func (p *Prometheus) RecordProcessed(latency time.Duration) {
	p.processed.Inc()
	p.processing.Observe(latency.Seconds())
}

func (p *Prometheus) RecordPublished() { p.published.Inc() }

func (p *Prometheus) RecordError() { p.errors.Inc() }

func (p *Prometheus) IncrementCustom(name string) { p.custom.WithLabelValues(name).Inc() }
