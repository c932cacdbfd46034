package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// SurfaceSource is the part of a window the renderer needs to create and size its surface.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	backend       RendererBackend
	log           *zap.Logger

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color
	workgroupSize        uint32
}

// Renderer is the GPU front end used by the engine. It caches pipelines by key, creates
// storage buffers and bind groups, and records one compute submission followed by one
// render submission per frame.
//
// Every compute submission is queued before the render submission of the same frame, so
// storage writes made by the dispatch are visible to the draw that follows it.
type Renderer interface {
	// Pipeline retrieves the registered Pipeline for key, or nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline objects (render or compute) via the backend
	// and caches them by PipelineKey. Keys already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error carrying the compiler or validation diagnostic if creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitBindGroup creates a bind group from a layout descriptor and stores it on provider.
	// Each buffer binding without a buffer already on the provider gets a new buffer sized
	// from bufferSizeOverrides, falling back to the entry's MinBindingSize.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags to OR into the derived usage, keyed by binding index (nil safe)
	//   - bufferSizeOverrides: exact buffer sizes keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if buffer or bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues every write. A write smaller than its buffer updates only its range.
	//
	// Parameters:
	//   - writes: the buffer writes to queue
	//
	// Returns:
	//   - error: an error if a target buffer is missing or the queue rejects a write
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginComputeFrame creates the command encoder that batches this frame's dispatches.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginComputeFrame() error

	// DispatchCompute encodes a compute pass for the registered pipeline with provider's bind group at group 0.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered compute Pipeline
	//   - computeProvider: the BindGroupProvider bound at group 0
	//   - workGroupCount: the number of workgroups to dispatch in x, y and z
	//
	// Returns:
	//   - error: ErrPipelineNotFound or ErrNoFrame
	DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// EndComputeFrame finishes the compute encoder and submits it to the queue.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndComputeFrame() error

	// BeginFrame acquires the surface texture and begins the render pass, clearing to the clear colour.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// DrawCall encodes a non-indexed instanced draw within the current render pass.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered render Pipeline
	//   - vertexCount: vertices per instance
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers bound at groups 0..n-1
	//
	// Returns:
	//   - error: ErrPipelineNotFound or ErrNoFrame
	DrawCall(pipelineKey string, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits it. Call Present afterwards.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface and releases the frame's texture. With PresentModeVSync
	// this blocks until the next vertical blank.
	Present()

	// Release releases the device, queue, surface, adapter and instance. Pipelines and
	// providers must be released by their owners first.
	//
	// Returns:
	//   - error: always nil for the WebGPU backend
	Release() error
}

var _ Renderer = &renderer{}

// NewRenderer requests an adapter and device for the surface and configures it at the
// surface's size.
//
// Parameters:
//   - surface: the window providing the surface descriptor and size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if no adapter or device satisfies the requested limits
func NewRenderer(surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		log:           zap.NewNop(),
		presentMode:   PresentModeVSync,
		clearColor:    wgpu.Color{R: 0.05, G: 0.05, B: 0.05, A: 1.0},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), wgpuBackendConfig{
		forceFallbackAdapter: r.forceFallbackAdapter,
		presentMode:          r.presentMode,
		clearColor:           r.clearColor,
		workgroupSize:        r.workgroupSize,
		log:                  r.log,
	})
	if err != nil {
		return nil, err
	}
	r.backend = backend

	r.backend.ConfigureSurface(surface.Width(), surface.Height())
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		var err error
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			err = r.backend.RegisterComputePipeline(p)
		case pipeline.PipelineTypeRender:
			err = r.backend.RegisterRenderPipeline(p)
		}
		if err != nil {
			return fmt.Errorf("renderer: create %s pipeline %q: %w", p.Type(), key, err)
		}
		r.pipelineCache[key] = p
		r.log.Debug("pipeline registered", zap.String("pipeline", key), zap.Stringer("type", p.Type()))
	}
	return nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	if err := r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides); err != nil {
		return fmt.Errorf("renderer: init bind group %q: %w", provider.Label(), err)
	}
	return nil
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginComputeFrame() error {
	return r.backend.BeginComputeFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists || p.Type() != pipeline.PipelineTypeCompute {
		return fmt.Errorf("%w: compute %q", ErrPipelineNotFound, pipelineKey)
	}
	return r.backend.DispatchCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) EndComputeFrame() error {
	return r.backend.EndComputeFrame()
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists || p.Type() != pipeline.PipelineTypeRender {
		return fmt.Errorf("%w: render %q", ErrPipelineNotFound, pipelineKey)
	}
	return r.backend.DrawCall(p, vertexCount, instanceCount, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelineCache = make(map[string]pipeline.Pipeline)
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
	return nil
}
