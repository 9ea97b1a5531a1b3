// Package observability exposes collection run counters in Prometheus format.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "revmetrics"

// RunMetrics holds the counters of a collection run. Each instance owns its
// registry so several runs in one process do not collide.
type RunMetrics struct {
	registry *prometheus.Registry

	measured    prometheus.Counter
	skipped     *prometheus.CounterVec
	failed      prometheus.Counter
	flushes     prometheus.Counter
	unavailable *prometheus.CounterVec
}

// NewRunMetrics creates and registers the run counters.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		measured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_measured_total",
			Help:      "Work items measured and queued for writing.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Work items skipped, by reason.",
		}, []string{"reason"}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Work items that could not be measured because history lookup or materialization failed.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_flushes_total",
			Help:      "Batches committed to the metrics table.",
		}),
		unavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_unavailable_total",
			Help:      "Measurements left unset, by measurement and reason.",
		}, []string{"measurement", "reason"}),
	}
	m.registry.MustRegister(m.measured, m.skipped, m.failed, m.flushes, m.unavailable)
	return m
}

// Registry returns the registry holding the run counters.
func (m *RunMetrics) Registry() *prometheus.Registry { return m.registry }

// ItemMeasured counts a measured work item.
func (m *RunMetrics) ItemMeasured() { m.measured.Inc() }

// ItemSkipped counts a skipped work item.
func (m *RunMetrics) ItemSkipped(reason string) { m.skipped.WithLabelValues(reason).Inc() }

// ItemFailed counts a work item abandoned after a history lookup or materialization failure.
func (m *RunMetrics) ItemFailed() { m.failed.Inc() }

// BatchFlushed counts a committed batch.
func (m *RunMetrics) BatchFlushed() { m.flushes.Inc() }

// MeasurementUnavailable counts a measurement left unset.
func (m *RunMetrics) MeasurementUnavailable(measurement, reason string) {
	m.unavailable.WithLabelValues(measurement, reason).Inc()
}

// Handler serves the registry for scraping.
func (m *RunMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *RunMetrics) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return m.serve(ctx, listener)
}

func (m *RunMetrics) serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
