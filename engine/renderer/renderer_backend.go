package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Present is the only call in the frame that blocks.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

var (
	// ErrPipelineNotFound is returned when a dispatch or draw names an unregistered pipeline.
	ErrPipelineNotFound = errors.New("renderer: pipeline not found")

	// ErrNoFrame is returned when a pass command is issued outside its Begin/End pair.
	ErrNoFrame = errors.New("renderer: no frame in progress")

	// ErrFrameInFlight is returned by BeginFrame while the previous surface texture is unpresented.
	ErrFrameInFlight = errors.New("renderer: previous frame not yet presented")

	// ErrWorkgroupTooLarge is returned when the adapter cannot run the requested compute workgroup size.
	ErrWorkgroupTooLarge = errors.New("renderer: compute workgroup size exceeds adapter limits")

	// ErrBufferTooLarge is returned when a storage buffer exceeds the device binding size limit.
	ErrBufferTooLarge = errors.New("renderer: buffer exceeds storage binding size limit")
)

// wgpuRendererBackend is the set of GPU operations the renderer front end delegates to.
type wgpuRendererBackend interface {
	ConfigureSurface(width, height int)
	RegisterRenderPipeline(p pipeline.Pipeline) error
	RegisterComputePipeline(p pipeline.Pipeline) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error
	BeginComputeFrame() error
	DispatchCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error
	EndComputeFrame() error
	BeginFrame() error
	DrawCall(p pipeline.Pipeline, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
	EndFrame() error
	Present()
	Release()
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
