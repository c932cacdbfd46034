package pipeline

import (
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender
)

func (t PipelineType) String() string {
	if t == PipelineTypeCompute {
		return "compute"
	}
	return "render"
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexShader, fragmentShader, computeShader shader.Shader

	// exactly one of these is set once the renderer has registered the pipeline
	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	// render state, ignored by compute pipelines
	topology     wgpu.PrimitiveTopology
	cullMode     wgpu.CullMode
	frontFace    wgpu.FrontFace
	writeMask    wgpu.ColorWriteMask
	blendEnabled bool
	blendState   *wgpu.BlendState
}

// Pipeline describes a GPU pipeline before and after creation: the shaders feeding it, the
// fixed-function render state, and the created *wgpu.RenderPipeline or *wgpu.ComputePipeline.
type Pipeline interface {
	// Type returns the type of the pipeline.
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// PipelineKey returns the unique key this pipeline is cached under.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for the given stage, or nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve (vertex, fragment, or compute)
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Pipeline returns the underlying *wgpu.RenderPipeline or *wgpu.ComputePipeline.
	// The caller is responsible for type asserting the returned value.
	//
	// Returns:
	//   - any: the underlying pipeline object, nil before registration
	Pipeline() any

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// FrontFace returns the front face winding order.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the colour write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendEnabled reports whether BlendState is applied to the colour target.
	BlendEnabled() bool

	// BlendState returns the blend state used when blending is enabled.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the created render pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline stores the created compute pipeline.
	//
	// Parameters:
	//   - p: the WebGPU compute pipeline
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release releases the created GPU pipeline. It is safe to call more than once.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline of the given type. Render pipelines default to a triangle
// list with no culling and no blending.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: the type of pipeline to create (render or compute)
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified type and configuration
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		cullMode:     wgpu.CullModeNone,
		frontFace:    wgpu.FrontFaceCCW,
		writeMask:    wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		if p.renderPipeline == nil {
			return nil
		}
		return p.renderPipeline
	case PipelineTypeCompute:
		if p.computePipeline == nil {
			return nil
		}
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
}
