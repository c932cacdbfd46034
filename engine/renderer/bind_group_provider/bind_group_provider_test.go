package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("particles")

	assert.Equal(t, "particles", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Buffer(0))
	assert.Empty(t, p.Buffers())
}

func TestShareBuffer(t *testing.T) {
	// a zero Buffer is never handed to the GPU here; only ownership bookkeeping is exercised
	buf := &wgpu.Buffer{}
	p := NewBindGroupProvider("draw", WithSharedBuffer(0, buf))

	assert.Same(t, buf, p.Buffer(0))
	assert.True(t, p.Shared(0))
	assert.False(t, p.Shared(1))

	p.Release()
	assert.Nil(t, p.Buffer(0))
	assert.False(t, p.Shared(0))

	// releasing twice is a no-op
	p.Release()
}

func TestSetBufferClearsShared(t *testing.T) {
	p := NewBindGroupProvider("draw")
	p.ShareBuffer(2, &wgpu.Buffer{})
	p.SetBuffer(2, nil)

	assert.False(t, p.Shared(2))
}
