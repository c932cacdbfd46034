package engine

import (
	"github.com/Carmen-Shannon/oxy-particles/engine/metrics"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the logger used for lifecycle messages. A nil logger is ignored.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(log *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics sets the frame counters the engine updates. Without it the engine creates its own.
//
// Parameters:
//   - m: the frame metrics
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMetrics(m *metrics.FrameMetrics) EngineBuilderOption {
	return func(e *engine) {
		e.metrics = m
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}
