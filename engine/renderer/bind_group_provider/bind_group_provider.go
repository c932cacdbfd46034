package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label prefixed to every GPU object created for this provider.
	label string

	// The following fields are GPU allocated resources populated by the Renderer during InitBindGroup.

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers bound by this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// shared marks bindings whose buffer is owned by another provider and must not be released here.
	shared map[int]bool
}

// BindGroupProvider owns one bind group and the storage buffers behind it.
//
// Usage pattern:
//  1. Create a provider with NewBindGroupProvider
//  2. Optionally attach buffers owned by another provider with ShareBuffer
//  3. Call Renderer.InitBindGroup(provider, ...) to create the remaining buffers and the bind group
//  4. Upload data with Renderer.WriteBuffers using BufferWrite values that target the provider
//  5. Pass the provider to DispatchCompute or DrawCall
//  6. Release it on shutdown
type BindGroupProvider interface {
	// Release releases the bind group, its layout and every buffer this provider owns.
	// Shared buffers are left to their owner. It is safe to call more than once.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group, or nil before InitBindGroup.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout, or nil before InitBindGroup.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every buffer keyed by binding index, shared ones included.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: buffers keyed by binding index
	Buffers() map[int]*wgpu.Buffer

	// Shared reports whether the buffer at binding belongs to another provider.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - bool: true if the buffer was attached with ShareBuffer
	Shared(binding int) bool

	// SetBindGroup sets the bind group after GPU initialization.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout after GPU initialization.
	//
	// Parameters:
	//   - bgl: the created bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores a buffer this provider owns.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// ShareBuffer attaches a buffer owned by another provider. InitBindGroup binds it
	// instead of creating a new buffer, and Release leaves it alone.
	//
	// Parameters:
	//   - binding: the binding index in this provider's layout
	//   - buf: the buffer to bind
	ShareBuffer(binding int, buf *wgpu.Buffer)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label used for GPU objects created for this provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
		shared:  make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) Shared(binding int) bool {
	return p.shared[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	delete(p.shared, binding)
}

func (p *bindGroupProvider) ShareBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	p.shared[binding] = true
}

func (p *bindGroupProvider) Release() {
	// the bind group references the buffers, so it goes first
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for i, buf := range p.buffers {
		if buf != nil && !p.shared[i] {
			buf.Release()
		}
		delete(p.buffers, i)
		delete(p.shared, i)
	}
}
