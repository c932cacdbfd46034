package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithSharedBuffer attaches a buffer owned by another provider at the given binding.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to bind
//
// Returns:
//   - BindGroupProviderOption: a function that shares the buffer at the specified binding
func WithSharedBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.ShareBuffer(binding, buf)
	}
}
