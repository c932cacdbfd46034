package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the colour the render pass clears to each frame.
//
// Parameters:
//   - c: the RGBA clear colour
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour option to a renderer
func WithClearColor(c [4]float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
	}
}

// WithComputeWorkgroupSize requests device limits large enough for a one-dimensional compute
// workgroup of the given size. Sizes above the WebGPU default of 256 are raised to the
// adapter's limit; NewRenderer fails if the adapter cannot support it.
//
// Parameters:
//   - size: the @workgroup_size x the compute shader declares
//
// Returns:
//   - RendererBuilderOption: a function that applies the workgroup size option to a renderer
func WithComputeWorkgroupSize(size uint32) RendererBuilderOption {
	return func(r *renderer) {
		r.workgroupSize = size
	}
}

// WithLogger sets the logger used for device setup and frame diagnostics.
//
// Parameters:
//   - log: the zap logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log
		}
	}
}
