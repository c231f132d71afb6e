// Package observability exposes pipeline counters and timings through
// Prometheus. All recording methods are nil-safe so the hot path never
// has to check whether metrics are enabled.
package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tkarvinen/soundpulse/internal/errors"
	"github.com/tkarvinen/soundpulse/internal/logging"
)

// Metrics holds the pipeline instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	chunksProcessed prometheus.Counter
	speechChunks    prometheus.Counter
	underruns       prometheus.Counter
	sinkFailures    prometheus.Counter
	cycleDuration   prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		chunksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundpulse_chunks_processed_total",
			Help: "Number of audio chunks run through the pipeline",
		}),
		speechChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundpulse_speech_chunks_total",
			Help: "Number of chunks classified as containing speech",
		}),
		underruns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundpulse_underruns_total",
			Help: "Number of cycles that found no chunk ready",
		}),
		sinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundpulse_sink_failures_total",
			Help: "Number of output deliveries that returned an error",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "soundpulse_cycle_duration_seconds",
			Help:    "Wall time spent processing one chunk",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{
		m.chunksProcessed, m.speechChunks, m.underruns, m.sinkFailures, m.cycleDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, errors.New(err).
				Component("observability").
				Category(errors.CategoryState).
				Context("operation", "register_collector").
				Build()
		}
	}

	return m, nil
}

// RecordChunk counts one processed chunk and whether it carried speech.
func (m *Metrics) RecordChunk(speech bool) {
	if m == nil {
		return
	}
	m.chunksProcessed.Inc()
	if speech {
		m.speechChunks.Inc()
	}
}

// RecordUnderrun counts a cycle that found no chunk ready.
func (m *Metrics) RecordUnderrun() {
	if m == nil {
		return
	}
	m.underruns.Inc()
}

// RecordSinkFailure counts a failed output delivery.
func (m *Metrics) RecordSinkFailure() {
	if m == nil {
		return
	}
	m.sinkFailures.Inc()
}

// RecordCycle records the wall time of one processing cycle.
func (m *Metrics) RecordCycle(d time.Duration) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(d.Seconds())
}

// Serve exposes /metrics on the given address until the context is
// canceled. Errors other than a clean shutdown are logged, not fatal;
// a broken metrics endpoint must not take the pipeline down.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	if m == nil {
		return
	}

	logger := logging.ForService("observability")
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
