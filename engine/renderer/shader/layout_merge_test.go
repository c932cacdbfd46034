package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageVertex},
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 1, Visibility: wgpu.ShaderStageFragment}}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := MergeLayouts(vertex, fragment)
	require.Len(t, merged, 2)

	g0 := merged[0].Entries
	require.Len(t, g0, 2)
	assert.Equal(t, uint32(0), g0[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, g0[0].Visibility)
	assert.Equal(t, uint32(1), g0[1].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, g0[1].Visibility)

	require.Len(t, merged[1].Entries, 1)
	assert.Equal(t, wgpu.ShaderStageFragment, merged[1].Entries[0].Visibility)

	assert.Empty(t, MergeLayouts(nil, nil))
}
