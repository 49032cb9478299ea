// Package metrics exposes the engine's operational signals as Prometheus
// collectors: cache hit ratios (§4.12), writer throughput (§4.13's batch
// writers), and analysis fixpoint iteration counts (§4.8/§4.9's solvers).
// Collectors register against a private registry rather than the global
// default one, so embedding callers (tests, multiple engine instances in
// one process) don't collide on double-registration.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every collector the engine reports. A nil *Registry is
// valid everywhere these methods are called and is a complete no-op, so
// call sites never need a separate "metrics enabled" branch.
type Registry struct {
	reg *prometheus.Registry

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	fixpointIterations *prometheus.HistogramVec

	writerFiles    *prometheus.CounterVec
	writerFailures *prometheus.CounterVec
	writerDuration *prometheus.HistogramVec
}

// New builds a Registry with every collector registered against a fresh
// prometheus.Registry (never the global default, so multiple Registries
// can coexist in one process, e.g. across package tests).
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codegraph_cache_hits_total",
			Help: "Cache lookups served from a tier without falling through, by tier.",
		}, []string{"tier"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codegraph_cache_misses_total",
			Help: "Cache lookups that fell through a tier, by tier.",
		}, []string{"tier"}),
		fixpointIterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codegraph_fixpoint_iterations",
			Help:    "Worklist iterations a fixpoint solver took to converge, by solver.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
		}, []string{"solver"}),
		writerFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codegraph_writer_files_total",
			Help: "Files processed by an index writer batch, by writer and outcome.",
		}, []string{"writer", "outcome"}),
		writerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codegraph_writer_failures_total",
			Help: "Index writer batch failures, by writer and error class.",
		}, []string{"writer", "class"}),
		writerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codegraph_writer_batch_duration_seconds",
			Help:    "Wall-clock duration of one index writer batch call, by writer.",
			Buckets: prometheus.DefBuckets,
		}, []string{"writer"}),
	}
	reg.MustRegister(r.cacheHits, r.cacheMisses, r.fixpointIterations, r.writerFiles, r.writerFailures, r.writerDuration)
	return r
}

// CacheHit records a hit in the named tier ("l1", "l2", ...).
func (r *Registry) CacheHit(tier string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(tier).Inc()
}

// CacheMiss records a miss in the named tier.
func (r *Registry) CacheMiss(tier string) {
	if r == nil {
		return
	}
	r.cacheMisses.WithLabelValues(tier).Inc()
}

// ObserveFixpointIterations records how many worklist iterations a solver
// (e.g. "sccp", "taint") took to converge on one call.
func (r *Registry) ObserveFixpointIterations(solver string, iterations int) {
	if r == nil {
		return
	}
	r.fixpointIterations.WithLabelValues(solver).Observe(float64(iterations))
}

// ObserveWriterBatch records one writer's batch outcome: files that
// succeeded, were skipped, or failed (by error class), and the batch's
// wall-clock duration.
func (r *Registry) ObserveWriterBatch(writer string, success, skipped int, failedByClass map[string]int, d time.Duration) {
	if r == nil {
		return
	}
	if success > 0 {
		r.writerFiles.WithLabelValues(writer, "success").Add(float64(success))
	}
	if skipped > 0 {
		r.writerFiles.WithLabelValues(writer, "skipped").Add(float64(skipped))
	}
	for class, n := range failedByClass {
		if n <= 0 {
			continue
		}
		r.writerFiles.WithLabelValues(writer, "failed").Add(float64(n))
		r.writerFailures.WithLabelValues(writer, class).Add(float64(n))
	}
	r.writerDuration.WithLabelValues(writer).Observe(d.Seconds())
}

// Gather implements prometheus.Gatherer, letting tests and alternate
// exporters (besides the built-in Handler) inspect collected samples
// directly.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	if r == nil {
		return nil, nil
	}
	return r.reg.Gather()
}

// Handler returns the HTTP handler to mount at e.g. "/metrics". Returns nil
// for a nil Registry.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return nil
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve runs an HTTP server exposing Handler at "/metrics" on addr until ctx
// is canceled, mirroring the engine's optional metrics-endpoint operators
// can point a scraper at. A nil Registry or empty addr makes this a no-op.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	if r == nil || addr == "" {
		<-ctx.Done()
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
