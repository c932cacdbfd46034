package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-particles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("draw", PipelineTypeRender)

	assert.Equal(t, "draw", p.PipelineKey())
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.False(t, p.BlendEnabled())
	assert.Nil(t, p.Pipeline())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
}

func TestNewPipelineOptions(t *testing.T) {
	cs, err := shader.NewShaderFromSource("c", shader.ShaderTypeCompute, "@compute @workgroup_size(8) fn main() {}")
	require.NoError(t, err)
	vs, err := shader.NewShaderFromSource("v", shader.ShaderTypeVertex, "@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(); }")
	require.NoError(t, err)

	compute := NewPipeline("sim", PipelineTypeCompute, WithComputeShader(cs))
	assert.Equal(t, cs, compute.Shader(shader.ShaderTypeCompute))
	assert.Nil(t, compute.Shader(shader.ShaderTypeVertex))

	blend := &wgpu.BlendState{}
	draw := NewPipeline("draw", PipelineTypeRender,
		WithVertexShader(vs),
		WithTopology(wgpu.PrimitiveTopologyPointList),
		WithBlendState(blend),
	)
	assert.Equal(t, vs, draw.Shader(shader.ShaderTypeVertex))
	assert.Equal(t, wgpu.PrimitiveTopologyPointList, draw.Topology())
	assert.True(t, draw.BlendEnabled())
	assert.Same(t, blend, draw.BlendState())

	NewPipeline("x", PipelineTypeRender, WithBlendState(nil)).Release()
}

func TestPipelineTypeString(t *testing.T) {
	assert.Equal(t, "compute", PipelineTypeCompute.String())
	assert.Equal(t, "render", PipelineTypeRender.String())
}
