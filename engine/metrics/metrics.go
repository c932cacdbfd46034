package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "particles"

// FrameMetrics counts the work done by the frame loop.
// Each instance owns its registry so several engines (or tests) never collide on registration.
type FrameMetrics struct {
	registry *prometheus.Registry

	// Frames counts presented frames.
	Frames prometheus.Counter
	// Dispatches counts compute dispatches submitted to the queue.
	Dispatches prometheus.Counter
	// Draws counts instanced draw calls recorded.
	Draws prometheus.Counter
	// SkippedFrames counts frames dropped because no surface texture was available.
	SkippedFrames prometheus.Counter
	// FrameSeconds observes the wall time of one loop iteration.
	FrameSeconds prometheus.Histogram
	// Particles reports the configured particle count.
	Particles prometheus.Gauge
}

// NewFrameMetrics creates the frame loop collectors on a fresh registry.
//
// Returns:
//   - *FrameMetrics: the registered collectors
func NewFrameMetrics() *FrameMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &FrameMetrics{
		registry: reg,
		Frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames presented",
		}),
		Dispatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compute_dispatches_total",
			Help:      "Compute dispatches submitted",
		}),
		Draws: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_calls_total",
			Help:      "Instanced draw calls recorded",
		}),
		SkippedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_frames_total",
			Help:      "Frames skipped because the surface texture was unavailable",
		}),
		FrameSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Wall time of one frame loop iteration in seconds",
			Buckets:   []float64{.001, .002, .004, .008, .016, .033, .05, .1, .25},
		}),
		Particles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "particles",
			Help:      "Number of simulated particles",
		}),
	}
}

// Registry returns the registry holding the frame collectors.
func (m *FrameMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry in the Prometheus text format.
func (m *FrameMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a /metrics listener on addr in its own goroutine.
//
// Parameters:
//   - addr: the listen address, e.g. ":9090"
//   - log: logger for listener failures
//
// Returns:
//   - func(): stops the listener, waiting up to one second for in-flight scrapes
func (m *FrameMetrics) Serve(addr string, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server exited", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("metrics server listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown", zap.Error(err))
		}
	}
}
