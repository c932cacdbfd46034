package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// defaultWorkgroupLimit is the WebGPU default for maxComputeWorkgroupSizeX and
// maxComputeInvocationsPerWorkgroup.
const defaultWorkgroupLimit = 256

type wgpuBackendConfig struct {
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color
	workgroupSize        uint32
	log                  *zap.Logger
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	log    *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	limits   wgpu.Limits

	surfaceFormat        wgpu.TextureFormat
	renderPassDescriptor *wgpu.RenderPassDescriptor
	presentMode          wgpu.PresentMode

	// Frame state for the render submission
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Compute frame state, submitted before the render submission of the same frame
	computeFrameEncoder *wgpu.CommandEncoder
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, cfg wgpuBackendConfig) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:       &sync.Mutex{},
		log:      cfg.log,
		instance: wgpu.CreateInstance(nil),
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	switch cfg.presentMode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	b.adapter = adapter

	limits, err := requiredLimits(adapter.GetLimits().Limits, cfg.workgroupSize)
	if err != nil {
		b.Release()
		return nil, err
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Particles Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()
	b.limits = limits

	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil, // set per frame to the surface view
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: cfg.clearColor,
			},
		},
	}

	b.log.Info("gpu device ready",
		zap.Uint32("max_workgroup_size_x", limits.MaxComputeWorkgroupSizeX),
		zap.Uint32("max_invocations_per_workgroup", limits.MaxComputeInvocationsPerWorkgroup),
		zap.Uint64("max_storage_binding_size", limits.MaxStorageBufferBindingSize),
	)
	return b, nil
}

// requiredLimits starts from the WebGPU defaults and raises the compute workgroup limits to
// workgroupSize when the default is too small, provided the adapter supports it.
func requiredLimits(supported wgpu.Limits, workgroupSize uint32) (wgpu.Limits, error) {
	limits := wgpu.DefaultLimits()
	if workgroupSize <= defaultWorkgroupLimit {
		return limits, nil
	}
	if workgroupSize > supported.MaxComputeWorkgroupSizeX || workgroupSize > supported.MaxComputeInvocationsPerWorkgroup {
		return limits, fmt.Errorf("%w: want %d, adapter allows x=%d invocations=%d",
			ErrWorkgroupTooLarge, workgroupSize, supported.MaxComputeWorkgroupSizeX, supported.MaxComputeInvocationsPerWorkgroup)
	}
	limits.MaxComputeWorkgroupSizeX = workgroupSize
	limits.MaxComputeInvocationsPerWorkgroup = workgroupSize
	return limits, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.createShaderModule(vertexShader)
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.createShaderModule(fragmentShader)
	if err != nil {
		return err
	}
	defer fs.Release()

	layout, err := b.createPipelineLayout(p.PipelineKey(), shader.MergeLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors()))
	if err != nil {
		return err
	}
	defer layout.Release()

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	computeShader := p.Shader(shader.ShaderTypeCompute)
	if computeShader == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.createShaderModule(computeShader)
	if err != nil {
		return err
	}
	defer module.Release()

	layout, err := b.createPipelineLayout(p.PipelineKey(), computeShader.BindGroupLayoutDescriptors())
	if err != nil {
		return err
	}
	defer layout.Release()

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return err
	}

	p.SetComputePipeline(created)
	return nil
}

// createShaderModule compiles s. The returned error carries the WGSL compiler diagnostic.
func (b *wgpuRendererBackendImpl) createShaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	if s.Module() == nil {
		return nil, fmt.Errorf("shader %q has been released", s.Key())
	}
	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		b.log.Error("shader compile failed",
			zap.String("shader", s.Key()),
			zap.String("path", s.Path()),
			zap.Stringer("stage", s.ShaderType()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("compile %s shader %q: %w", s.ShaderType(), s.Key(), err)
	}
	return module, nil
}

// createPipelineLayout creates one bind group layout per group, filling gaps with empty
// layouts, and the pipeline layout over them. The bind group layouts are released once
// the pipeline layout holds them.
func (b *wgpuRendererBackendImpl) createPipelineLayout(label string, descriptors map[int]wgpu.BindGroupLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	defer func() {
		for _, l := range bindGroupLayouts {
			if l != nil {
				l.Release()
			}
		}
	}()
	for g := range bindGroupLayouts {
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s group %d", label, g)
		l, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		bindGroupLayouts[g] = l
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		var usage wgpu.BufferUsage
		switch entry.Buffer.Type {
		case wgpu.BufferBindingTypeUniform:
			usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
		case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
			usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
		default:
			return fmt.Errorf("binding %d is not a buffer binding", binding)
		}
		if extra, ok := bufferUsageOverrides[binding]; ok {
			usage |= extra
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			size := entry.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}
			if size < entry.Buffer.MinBindingSize {
				return fmt.Errorf("binding %d: size %d below minimum binding size %d", binding, size, entry.Buffer.MinBindingSize)
			}
			if entry.Buffer.Type != wgpu.BufferBindingTypeUniform && size > b.limits.MaxStorageBufferBindingSize {
				return fmt.Errorf("%w: binding %d wants %d bytes, limit %d", ErrBufferTooLarge, binding, size, b.limits.MaxStorageBufferBindingSize)
			}

			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
				Size:  size,
				Usage: usage,
			})
			if err != nil {
				return fmt.Errorf("create buffer for binding %d: %w", binding, err)
			}
			provider.SetBuffer(binding, buf)
		}

		entries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("renderer: %s has no buffer at binding %d", w.Provider.Label(), w.Binding)
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("renderer: write %s binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.computeFrameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) DispatchCompute(
	p pipeline.Pipeline,
	computeProvider bind_group_provider.BindGroupProvider,
	workGroupCount [3]uint32,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return fmt.Errorf("%w: dispatch %q", ErrNoFrame, p.PipelineKey())
	}

	pass := b.computeFrameEncoder.BeginComputePass(nil)
	pass.SetPipeline(p.Pipeline().(*wgpu.ComputePipeline))
	pass.SetBindGroup(0, computeProvider.BindGroup(), nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	pass.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) EndComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return ErrNoFrame
	}
	defer func() {
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
	}()

	commandBuffer, err := b.computeFrameEncoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// if a previous frame's surface texture is still held, acquiring another one is a
	// wgpu-native validation error
	if b.frameSurface != nil {
		return ErrFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	vertexCount, instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return fmt.Errorf("%w: draw %q", ErrNoFrame, p.PipelineKey())
	}

	b.framePass.SetPipeline(p.Pipeline().(*wgpu.RenderPipeline))
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}

	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// nothing acquired, nothing to present
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder != nil {
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
	}
	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameSurface()

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
