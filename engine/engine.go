package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-particles/config"
	"github.com/Carmen-Shannon/oxy-particles/engine/metrics"
	"github.com/Carmen-Shannon/oxy-particles/engine/particles"
	"github.com/Carmen-Shannon/oxy-particles/engine/profiler"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// ComputePipelineKey is the registry key of the particle update program.
	ComputePipelineKey = "particles_compute"
	// DrawPipelineKey is the registry key of the point draw program.
	DrawPipelineKey = "particles_draw"
)

// additiveBlend sums overlapping points so dense regions of the swarm brighten.
var additiveBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	},
}

var (
	// ErrNotInitialized is returned by Frame and Run before a successful Init.
	ErrNotInitialized = errors.New("engine: not initialized")

	// ErrWorkGroupMismatch is returned when the compute shader's @workgroup_size disagrees with the configuration.
	ErrWorkGroupMismatch = errors.New("engine: compute shader workgroup size does not match configuration")

	// ErrMissingBinding is returned when the compute shader does not declare one of the four particle slots.
	ErrMissingBinding = errors.New("engine: compute shader is missing a particle binding")
)

// Window is the part of the platform window the frame loop drives.
type Window interface {
	PollEvents()
	CursorPos() (x, y float64)
	IsRunning() bool
	Close() error
}

// engine implements the Engine interface.
type engine struct {
	cfg      config.Config
	window   Window
	renderer renderer.Renderer
	log      *zap.Logger

	metrics          *metrics.FrameMetrics
	profiler         *profiler.Profiler
	profilingEnabled bool

	state         *particles.State
	shaders       []shader.Shader
	pipelines     []pipeline.Pipeline
	compute       bind_group_provider.BindGroupProvider
	draw          bind_group_provider.BindGroupProvider
	dispatchCount uint32

	frames      uint64
	initialized bool
	closeOnce   sync.Once
	closeErr    error
}

// Engine owns the particle buffers and runs the poll, dispatch, draw and present loop
// until the window asks to close.
type Engine interface {
	// Init validates the configuration, builds the particle state, loads and parses the
	// three shaders, creates and fills the four storage buffers and registers the compute
	// and draw pipelines.
	//
	// Returns:
	//   - error: the first failure, wrapped with the step that produced it
	Init() error

	// Frame runs one iteration: poll input, upload the cursor, dispatch the compute pass,
	// draw N instanced points and present.
	//
	// Returns:
	//   - error: a GPU encoding or submission failure
	Frame() error

	// Run calls Frame until the window stops running.
	//
	// Returns:
	//   - error: the first Frame error, or nil once the window closes
	Run() error

	// Close releases pipelines, bind groups, buffers, shaders, the device and the window.
	// Later calls return the result of the first.
	//
	// Returns:
	//   - error: every release failure, combined
	Close() error

	// State returns the host copy of the initial particle data, or nil before Init.
	//
	// Returns:
	//   - *particles.State: the initial particle state
	State() *particles.State

	// Metrics returns the frame counters.
	//
	// Returns:
	//   - *metrics.FrameMetrics: the counters updated by Frame
	Metrics() *metrics.FrameMetrics
}

var _ Engine = &engine{}

// NewEngine creates an Engine for the given window and renderer. Call Init before Run.
//
// Parameters:
//   - cfg: the run configuration
//   - w: the window supplying input and the close signal
//   - r: the renderer created for w
//   - options: functional options for engine configuration (logger, metrics, profiling)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(cfg config.Config, w Window, r renderer.Renderer, options ...EngineBuilderOption) Engine {
	e := &engine{
		cfg:      cfg,
		window:   w,
		renderer: r,
		log:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.NewFrameMetrics()
	}
	if e.profilingEnabled && e.profiler == nil {
		e.profiler = profiler.NewProfiler(e.log)
	}
	return e
}

func (e *engine) State() *particles.State {
	return e.state
}

func (e *engine) Metrics() *metrics.FrameMetrics {
	return e.metrics
}

func (e *engine) Init() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	seed := e.cfg.ResolveSeed()
	e.state = particles.NewState(e.cfg.ParticleCount, e.cfg.TimeStep, seed)
	e.log.Info("particle state created",
		zap.Int("particles", e.state.Count()),
		zap.Int64("seed", seed),
		zap.Float32("time_step", e.state.TimeStep),
	)

	pp := slotPreProcessor()
	vert, err := shader.NewShader("particles_vert", shader.ShaderTypeVertex, e.cfg.Shaders.Vertex, shader.WithPreProcessor(pp))
	if err != nil {
		return fmt.Errorf("engine: load vertex shader: %w", err)
	}
	frag, err := shader.NewShader("particles_frag", shader.ShaderTypeFragment, e.cfg.Shaders.Fragment, shader.WithPreProcessor(pp))
	if err != nil {
		return fmt.Errorf("engine: load fragment shader: %w", err)
	}
	comp, err := shader.NewShader("particles_compute", shader.ShaderTypeCompute, e.cfg.Shaders.Compute, shader.WithPreProcessor(pp))
	if err != nil {
		return fmt.Errorf("engine: load compute shader: %w", err)
	}
	e.shaders = []shader.Shader{vert, frag, comp}
	for _, s := range e.shaders {
		e.log.Debug("shader loaded",
			zap.String("shader", s.Key()),
			zap.String("path", s.Path()),
			zap.String("entry_point", s.EntryPoint()),
		)
	}

	if wg := comp.WorkgroupSize(); int(wg[0]) != e.cfg.WorkGroupSize {
		return fmt.Errorf("%w: shader declares %d, configured %d", ErrWorkGroupMismatch, wg[0], e.cfg.WorkGroupSize)
	}

	computeLayout, ok := comp.BindGroupLayoutDescriptor(0)
	if !ok {
		return fmt.Errorf("%w: no bindings in group 0", ErrMissingBinding)
	}
	if err := requireSlots(computeLayout, particles.SlotPositions, particles.SlotVelocities, particles.SlotCursor, particles.SlotTimeStep); err != nil {
		return err
	}

	e.compute = bind_group_provider.NewBindGroupProvider("particles compute")
	if err := e.renderer.InitBindGroup(e.compute, computeLayout, nil, e.state.BufferSizes()); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	origin := particles.Cursor{}
	if err := e.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.compute, Binding: particles.SlotPositions, Data: e.state.PositionBytes()},
		{Provider: e.compute, Binding: particles.SlotVelocities, Data: e.state.VelocityBytes()},
		{Provider: e.compute, Binding: particles.SlotCursor, Data: origin.Marshal()},
		{Provider: e.compute, Binding: particles.SlotTimeStep, Data: e.state.TimeStepBytes()},
	}); err != nil {
		return fmt.Errorf("engine: upload particle state: %w", err)
	}

	drawLayouts := shader.MergeLayouts(vert.BindGroupLayoutDescriptors(), frag.BindGroupLayoutDescriptors())
	drawLayout, ok := drawLayouts[0]
	if !ok {
		return fmt.Errorf("%w: draw program does not read positions", ErrMissingBinding)
	}
	e.draw = bind_group_provider.NewBindGroupProvider("particles draw",
		bind_group_provider.WithSharedBuffer(particles.SlotPositions, e.compute.Buffer(particles.SlotPositions)),
	)
	if err := e.renderer.InitBindGroup(e.draw, drawLayout, nil, nil); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	e.pipelines = []pipeline.Pipeline{
		pipeline.NewPipeline(ComputePipelineKey, pipeline.PipelineTypeCompute,
			pipeline.WithComputeShader(comp),
		),
		pipeline.NewPipeline(DrawPipelineKey, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(vert),
			pipeline.WithFragmentShader(frag),
			pipeline.WithTopology(wgpu.PrimitiveTopologyPointList),
			pipeline.WithBlendState(additiveBlend),
		),
	}
	if err := e.renderer.RegisterPipelines(e.pipelines...); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	e.dispatchCount = particles.DispatchCount(e.cfg.ParticleCount, e.cfg.WorkGroupSize)
	e.metrics.Particles.Set(float64(e.cfg.ParticleCount))
	e.initialized = true

	e.log.Info("engine initialized",
		zap.Uint32("workgroups", e.dispatchCount),
		zap.Int("workgroup_size", e.cfg.WorkGroupSize),
	)
	return nil
}

// slotPreProcessor registers every particle slot in group 0 so shaders can declare them by name.
func slotPreProcessor() shader.PreProcessor {
	slots := particles.Slots()
	opts := make([]shader.PreProcessorOption, 0, len(slots))
	for _, slot := range slots {
		opts = append(opts, shader.WithSlot(slot.Name, 0, slot.Binding, slot.WGSLType))
	}
	return shader.NewPreProcessor(opts...)
}

// requireSlots checks that layout declares a buffer at every binding in slots.
func requireSlots(layout wgpu.BindGroupLayoutDescriptor, slots ...int) error {
	declared := make(map[uint32]bool, len(layout.Entries))
	for _, entry := range layout.Entries {
		declared[entry.Binding] = true
	}
	for _, slot := range slots {
		if !declared[uint32(slot)] {
			return fmt.Errorf("%w: binding %d", ErrMissingBinding, slot)
		}
	}
	return nil
}

func (e *engine) Frame() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	start := time.Now()

	e.window.PollEvents()
	x, y := e.window.CursorPos()
	cursor := particles.ScreenToNDC(x, y, e.cfg.ScreenWidth, e.cfg.ScreenHeight)
	if err := e.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.compute, Binding: particles.SlotCursor, Data: cursor.Marshal()},
	}); err != nil {
		return fmt.Errorf("engine: upload cursor: %w", err)
	}

	if err := e.renderer.BeginComputeFrame(); err != nil {
		return fmt.Errorf("engine: begin compute: %w", err)
	}
	if err := e.renderer.DispatchCompute(ComputePipelineKey, e.compute, [3]uint32{e.dispatchCount, 1, 1}); err != nil {
		return fmt.Errorf("engine: dispatch: %w", err)
	}
	if err := e.renderer.EndComputeFrame(); err != nil {
		return fmt.Errorf("engine: submit compute: %w", err)
	}
	e.metrics.Dispatches.Inc()

	// A missing surface texture (minimized, occluded) drops the frame instead of ending the run.
	if err := e.renderer.BeginFrame(); err != nil {
		e.log.Debug("frame skipped", zap.Error(err))
		e.metrics.SkippedFrames.Inc()
		return nil
	}
	if err := e.renderer.DrawCall(DrawPipelineKey, 1, uint32(e.cfg.ParticleCount), []bind_group_provider.BindGroupProvider{e.draw}); err != nil {
		return fmt.Errorf("engine: draw: %w", err)
	}
	e.metrics.Draws.Inc()
	if err := e.renderer.EndFrame(); err != nil {
		return fmt.Errorf("engine: submit draw: %w", err)
	}
	e.renderer.Present()

	e.frames++
	e.metrics.Frames.Inc()
	e.metrics.FrameSeconds.Observe(time.Since(start).Seconds())
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Run() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	for e.window.IsRunning() {
		if err := e.Frame(); err != nil {
			return err
		}
	}
	e.log.Info("window closed", zap.Uint64("frames", e.frames))
	return nil
}

func (e *engine) Close() error {
	e.closeOnce.Do(func() {
		var err error
		for _, p := range e.pipelines {
			p.Release()
		}
		// the draw group references the compute group's positions buffer
		if e.draw != nil {
			e.draw.Release()
		}
		if e.compute != nil {
			e.compute.Release()
		}
		for _, s := range e.shaders {
			s.Release()
		}
		if e.renderer != nil {
			err = multierr.Append(err, e.renderer.Release())
		}
		if e.window != nil {
			err = multierr.Append(err, e.window.Close())
		}
		e.initialized = false
		e.closeErr = err
	})
	return e.closeErr
}
