// Package metrics exposes Prometheus instrumentation for pipeline runs.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// runsTotal counts pipeline runs by outcome ("ok" or "error")
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_runs_total",
		Help: "Total wall detection runs by outcome",
	}, []string{"outcome"})

	// stageDuration tracks per-stage latency
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "floorplan_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"stage"})

	// segmentsTotal counts emitted wall segments by source
	segmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_wall_segments_total",
		Help: "Total wall segments in final results by source",
	}, []string{"source"})

	// degradedTotal counts runs that continued without an optional collaborator
	degradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_degraded_total",
		Help: "Total runs that continued in a degraded mode",
	}, []string{"condition"})
)

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Since is a helper for `defer metrics.Since("stage", time.Now())`.
func Since(stage string, start time.Time) {
	ObserveStage(stage, time.Since(start))
}

// RecordRun counts a finished run.
func RecordRun(err error) {
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return
	}
	runsTotal.WithLabelValues("ok").Inc()
}

// RecordSegments adds n segments of the given source.
func RecordSegments(source string, n int) {
	if n > 0 {
		segmentsTotal.WithLabelValues(source).Add(float64(n))
	}
}

// RecordDegraded counts one degraded condition.
func RecordDegraded(condition string) {
	degradedTotal.WithLabelValues(condition).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs a /metrics endpoint on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
