package engine

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/Carmen-Shannon/oxy-particles/config"
	"github.com/Carmen-Shannon/oxy-particles/engine/metrics"
	"github.com/Carmen-Shannon/oxy-particles/engine/particles"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeWindow requests close during its first poll.
type fakeWindow struct {
	polls    int
	x, y     float64
	running  bool
	closed   int
	closeErr error
}

func (w *fakeWindow) PollEvents() {
	w.polls++
	w.running = false
}

func (w *fakeWindow) CursorPos() (float64, float64) { return w.x, w.y }
func (w *fakeWindow) IsRunning() bool               { return w.running }

func (w *fakeWindow) Close() error {
	w.closed++
	return w.closeErr
}

// fakeRenderer records what the engine asks of the GPU.
type fakeRenderer struct {
	layouts         map[string]wgpu.BindGroupLayoutDescriptor
	sizes           map[string]map[int]uint64
	writes          []bind_group_provider.BufferWrite
	pipelines       []pipeline.Pipeline
	dispatches      [][3]uint32
	draws           []uint32
	computeFrames   int
	renderFrames    int
	presents        int
	releases        int
	beginFrameErr   error
	registerErr     error
	writeErr        error
	computeEnded    bool
	drawAfterSubmit bool
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		layouts: make(map[string]wgpu.BindGroupLayoutDescriptor),
		sizes:   make(map[string]map[int]uint64),
	}
}

func (r *fakeRenderer) Pipeline(key string) pipeline.Pipeline {
	for _, p := range r.pipelines {
		if p.PipelineKey() == key {
			return p
		}
	}
	return nil
}

func (r *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	if r.registerErr != nil {
		return r.registerErr
	}
	r.pipelines = append(r.pipelines, pipelines...)
	return nil
}

func (r *fakeRenderer) InitBindGroup(p bind_group_provider.BindGroupProvider, d wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, sizes map[int]uint64) error {
	r.layouts[p.Label()] = d
	r.sizes[p.Label()] = sizes
	return nil
}

func (r *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.writes = append(r.writes, writes...)
	return nil
}

func (r *fakeRenderer) BeginComputeFrame() error {
	r.computeEnded = false
	return nil
}

func (r *fakeRenderer) DispatchCompute(key string, _ bind_group_provider.BindGroupProvider, n [3]uint32) error {
	if key != ComputePipelineKey {
		return renderer.ErrPipelineNotFound
	}
	r.dispatches = append(r.dispatches, n)
	return nil
}

func (r *fakeRenderer) EndComputeFrame() error {
	r.computeFrames++
	r.computeEnded = true
	return nil
}

func (r *fakeRenderer) BeginFrame() error {
	return r.beginFrameErr
}

func (r *fakeRenderer) DrawCall(key string, vertices, instances uint32, groups []bind_group_provider.BindGroupProvider) error {
	if key != DrawPipelineKey || vertices != 1 || len(groups) != 1 {
		return errors.New("unexpected draw")
	}
	r.drawAfterSubmit = r.computeEnded
	r.draws = append(r.draws, instances)
	return nil
}

func (r *fakeRenderer) EndFrame() error {
	r.renderFrames++
	return nil
}

func (r *fakeRenderer) Present() { r.presents++ }

func (r *fakeRenderer) Release() error {
	r.releases++
	return nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ParticleCount = 2000
	cfg.WorkGroupSize = 1000
	cfg.Seed = 7
	cfg.Shaders = config.ShaderPaths{
		Vertex:   "../assets/shaders/particles-vert.wgsl",
		Fragment: "../assets/shaders/particles-frag.wgsl",
		Compute:  "../assets/shaders/particles-compute.wgsl",
	}
	return cfg
}

func TestRunOneFrame(t *testing.T) {
	win := &fakeWindow{running: true, x: 960, y: 540}
	rend := newFakeRenderer()
	m := metrics.NewFrameMetrics()
	e := NewEngine(testConfig(), win, rend, WithMetrics(m))

	require.NoError(t, e.Init())
	require.NoError(t, e.Run())

	assert.Equal(t, 1, win.polls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Frames))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.Dispatches), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.Draws), 1.0)
	assert.Equal(t, 2000.0, testutil.ToFloat64(m.Particles))

	assert.Equal(t, [][3]uint32{{2, 1, 1}}, rend.dispatches)
	assert.Equal(t, []uint32{2000}, rend.draws)
	assert.True(t, rend.drawAfterSubmit, "compute must be submitted before the draw is recorded")
	assert.Equal(t, 1, rend.presents)

	require.NoError(t, e.Close())
}

func TestInitUploadsState(t *testing.T) {
	rend := newFakeRenderer()
	e := NewEngine(testConfig(), &fakeWindow{}, rend)
	require.NoError(t, e.Init())

	// four initial writes, one per slot
	require.Len(t, rend.writes, 4)
	bySlot := map[int][]byte{}
	for _, w := range rend.writes {
		bySlot[w.Binding] = w.Data
	}
	assert.Len(t, bySlot[particles.SlotPositions], 2000*particles.Vec4Size)
	assert.Len(t, bySlot[particles.SlotVelocities], 2000*particles.Vec4Size)
	assert.Equal(t, particles.Cursor{}.Marshal(), bySlot[particles.SlotCursor])
	assert.Equal(t, e.State().TimeStepBytes(), bySlot[particles.SlotTimeStep])

	assert.Equal(t, particles.BufferSizes(2000), rend.sizes["particles compute"])
	assert.Len(t, rend.layouts["particles compute"].Entries, 4)

	draw := rend.layouts["particles draw"]
	require.Len(t, draw.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, draw.Entries[0].Buffer.Type)

	require.Len(t, rend.pipelines, 2)
	drawPipeline := rend.Pipeline(DrawPipelineKey)
	require.NotNil(t, drawPipeline)
	assert.Equal(t, wgpu.PrimitiveTopologyPointList, drawPipeline.Topology())
	assert.True(t, drawPipeline.BlendEnabled())
	assert.Equal(t, wgpu.BlendFactorOne, drawPipeline.BlendState().Color.DstFactor)
	assert.Equal(t, pipeline.PipelineTypeCompute, rend.Pipeline(ComputePipelineKey).Type())
}

func TestFrameUploadsCursorInNDC(t *testing.T) {
	win := &fakeWindow{running: true, x: 0, y: 0}
	rend := newFakeRenderer()
	e := NewEngine(testConfig(), win, rend)
	require.NoError(t, e.Init())

	require.NoError(t, e.Frame())

	last := rend.writes[len(rend.writes)-1]
	assert.Equal(t, particles.SlotCursor, last.Binding)
	assert.Equal(t, particles.Cursor{X: -1, Y: 1}.Marshal(), last.Data)
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"invalid config", func(c *config.Config) { c.ParticleCount = 0 }, config.ErrInvalidParticleCount},
		{"workgroup mismatch", func(c *config.Config) { c.WorkGroupSize = 500 }, ErrWorkGroupMismatch},
		{"missing shader", func(c *config.Config) { c.Shaders.Compute = "../assets/shaders/missing.wgsl" }, fs.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			e := NewEngine(cfg, &fakeWindow{}, newFakeRenderer())
			assert.ErrorIs(t, e.Init(), tt.want)
		})
	}
}

func TestInitPipelineFailure(t *testing.T) {
	rend := newFakeRenderer()
	rend.registerErr = errors.New("shader compile: expected ';'")
	e := NewEngine(testConfig(), &fakeWindow{}, rend)

	err := e.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected ';'")
}

func TestInitFailsOnRejectedUpload(t *testing.T) {
	rend := newFakeRenderer()
	rend.writeErr = errors.New("queue rejected write")
	e := NewEngine(testConfig(), &fakeWindow{}, rend)

	err := e.Init()
	require.ErrorIs(t, err, rend.writeErr)
	assert.Contains(t, err.Error(), "upload particle state")
	assert.ErrorIs(t, e.Frame(), ErrNotInitialized)
}

func TestFrameFailsOnRejectedCursorWrite(t *testing.T) {
	rend := newFakeRenderer()
	m := metrics.NewFrameMetrics()
	e := NewEngine(testConfig(), &fakeWindow{running: true}, rend, WithMetrics(m))
	require.NoError(t, e.Init())

	rend.writeErr = errors.New("queue rejected write")
	err := e.Frame()

	require.ErrorIs(t, err, rend.writeErr)
	assert.Contains(t, err.Error(), "upload cursor")
	assert.Empty(t, rend.dispatches)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Frames))
}

func TestFrameBeforeInit(t *testing.T) {
	e := NewEngine(testConfig(), &fakeWindow{running: true}, newFakeRenderer())

	assert.ErrorIs(t, e.Frame(), ErrNotInitialized)
	assert.ErrorIs(t, e.Run(), ErrNotInitialized)
}

func TestFrameSkippedWithoutSurface(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rend := newFakeRenderer()
	rend.beginFrameErr = errors.New("surface texture outdated")
	m := metrics.NewFrameMetrics()
	e := NewEngine(testConfig(), &fakeWindow{running: true}, rend, WithMetrics(m), WithLogger(zap.New(core)))
	require.NoError(t, e.Init())

	require.NoError(t, e.Frame())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedFrames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispatches))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Draws))
	assert.Equal(t, 0, rend.presents)
	assert.Equal(t, 1, logs.FilterMessage("frame skipped").Len())
}

func TestCloseIsIdempotent(t *testing.T) {
	win := &fakeWindow{closeErr: errors.New("glfw terminate")}
	rend := newFakeRenderer()
	e := NewEngine(testConfig(), win, rend)
	require.NoError(t, e.Init())

	first := e.Close()
	second := e.Close()

	assert.EqualError(t, first, "glfw terminate")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, win.closed)
	assert.Equal(t, 1, rend.releases)
	assert.ErrorIs(t, e.Frame(), ErrNotInitialized)
}
