// Package estimator composes a variable graph, the engine boundary and the
// inspection service from a single configuration.
//
// The estimator initializes from configuration via New. Functional options
// override config-created dependencies, mainly for tests.
//
//	cfg, err := estimator.LoadConfig("fuse.yaml")
//	e, err := estimator.New(cfg)
//	e.Graph().Add(p)
//	err = e.Optimize(ctx, func(ctx context.Context, p *problem.Problem) error {
//	    return p.ApplyAllParallel(ctx, solve(p))
//	})
package estimator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/inspect"
	"github.com/tailored-agentic-units/fuse/observability"
	"github.com/tailored-agentic-units/fuse/problem"
)

const metricsNamespace = "fuse"

// Option configures an Estimator before its subsystems are built.
type Option func(*Estimator)

// WithObserver overrides the config-resolved observers of every subsystem.
func WithObserver(o observability.Observer) Option {
	return func(e *Estimator) {
		e.graphObserver = o
		e.observer = o
	}
}

// WithRegistry sets the prometheus registry used when metrics are enabled.
func WithRegistry(r *prometheus.Registry) Option {
	return func(e *Estimator) { e.registry = r }
}

// WithSnapshotStore overrides the config-resolved snapshot store.
func WithSnapshotStore(s graph.SnapshotStore) Option {
	return func(e *Estimator) { e.snapshots = s }
}

// OptimizeFunc runs an engine over a borrowed Problem. ctx is the context
// passed to Optimize and should be honored by long-running engines.
type OptimizeFunc func(ctx context.Context, p *problem.Problem) error

// Estimator owns a live graph and runs optimizations over it.
type Estimator struct {
	graph         *graph.Graph
	graphObserver observability.Observer
	observer      observability.Observer
	snapshots     graph.SnapshotStore
	registry      *prometheus.Registry
	metrics       *observability.MetricsObserver
	parallel      problem.ParallelConfig
	inspect       inspect.Config
}

// New creates an Estimator from configuration.
func New(cfg *Config, opts ...Option) (*Estimator, error) {
	graphObserver, err := observability.GetObserver(cfg.Graph.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve graph observer: %w", err)
	}

	observer, err := observability.GetObserver(cfg.Problem.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve problem observer: %w", err)
	}

	var store graph.SnapshotStore
	if cfg.Graph.Snapshots != "" {
		store, err = graph.GetSnapshotStore(cfg.Graph.Snapshots)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve snapshot store: %w", err)
		}
	}

	e := &Estimator{
		graphObserver: observability.Filter(graphObserver, cfg.Graph.Level),
		observer:      observability.Filter(observer, cfg.Problem.Level),
		snapshots:     store,
		parallel:      cfg.Problem.Parallel,
		inspect:       cfg.Inspect,
	}

	for _, opt := range opts {
		opt(e)
	}

	if cfg.Metrics {
		if e.registry == nil {
			e.registry = prometheus.NewRegistry()
		}
		e.metrics, err = observability.NewMetricsObserver(e.registry, metricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics observer: %w", err)
		}
		e.graphObserver = observability.Join(e.graphObserver, e.metrics)
		e.observer = observability.Join(e.observer, e.metrics)
	}

	e.graph = graph.NewWithDeps(cfg.Graph.Name, e.graphObserver, e.snapshots)
	return e, nil
}

// Graph returns the live graph.
func (e *Estimator) Graph() *graph.Graph {
	return e.graph
}

// Metrics returns the event counter, or nil when metrics are disabled.
func (e *Estimator) Metrics() *observability.MetricsObserver {
	return e.metrics
}

// Optimize borrows every variable of the live graph for the duration of fn.
// fn runs on the caller's goroutine while the live graph's storage write lock
// is held, so inspect requests wait until it returns.
func (e *Estimator) Optimize(ctx context.Context, fn OptimizeFunc) error {
	return e.optimize(ctx, e.graph, fn)
}

// OptimizeSnapshot runs fn over a snapshot of the live graph and, if fn
// succeeds, copies the results back. Only the snapshot is locked while fn
// runs; the live graph is write-locked for the copy back alone, so inspect
// requests see either the values from before the run or the results. Returns
// the number of variables updated.
func (e *Estimator) OptimizeSnapshot(ctx context.Context, fn OptimizeFunc) (int, error) {
	snapshot := e.graph.Snapshot()
	if err := e.optimize(ctx, snapshot, fn); err != nil {
		return 0, err
	}
	return e.graph.Update(snapshot), nil
}

func (e *Estimator) optimize(ctx context.Context, g *graph.Graph, fn OptimizeFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	e.emit(ctx, EventOptimizeStart, observability.LevelInfo, map[string]any{
		"graph":     g.Name(),
		"variables": g.Len(),
	})

	err := problem.Borrow(g, func(p *problem.Problem) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(ctx, p)
	},
		problem.WithObserver(e.observer),
		problem.WithParallel(e.parallel),
	)
	if err != nil {
		e.emit(ctx, EventOptimizeError, observability.LevelError, map[string]any{
			"graph": g.Name(),
			"error": err.Error(),
		})
		return err
	}

	e.emit(ctx, EventOptimizeComplete, observability.LevelInfo, map[string]any{
		"graph":    g.Name(),
		"duration": time.Since(start).String(),
	})
	return nil
}

// Handler returns an HTTP handler serving the inspect service and, when
// metrics are enabled, /metrics.
func (e *Estimator) Handler() http.Handler {
	mux := http.NewServeMux()

	path, handler := inspect.NewHandler(e.graph, inspect.WithObserver(e.observer))
	mux.Handle(path, handler)

	if e.registry != nil && e.metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// Serve serves Handler on the configured inspect address until ctx is
// cancelled.
func (e *Estimator) Serve(ctx context.Context) error {
	if !e.inspect.Enabled() {
		return ErrServeDisabled
	}

	server := &http.Server{
		Addr:              e.inspect.Addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	e.emit(ctx, EventServe, observability.LevelInfo, map[string]any{
		"addr": e.inspect.Addr,
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (e *Estimator) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(ctx, e.observer, typ, level, data)
}
