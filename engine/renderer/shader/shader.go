package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which pipeline stage a shader feeds.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment stage, paired with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// Visibility returns the bind group visibility flag for this stage.
func (t ShaderType) Visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

var (
	// ErrNoEntryPoint is returned when the source has no entry point for the requested stage.
	ErrNoEntryPoint = errors.New("shader: no entry point for stage")

	// ErrUnsupportedBinding is returned for a resource declaration that is not a buffer.
	ErrUnsupportedBinding = errors.New("shader: unsupported binding")
)

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	path       string
	source     string
	shaderType ShaderType
	entryPoint string

	workGroupSize              [3]uint32
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingNames               map[int]map[int]string
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a loaded and parsed WGSL shader. It carries the metadata the renderer needs to
// build a pipeline without hand-written descriptors: the entry point, the compute
// workgroup size and the bind group layouts declared in the source.
type Shader interface {
	// Key returns the shader's unique identifier, also used as the module label.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Path returns the file the shader was loaded from, or empty for in-memory sources.
	//
	// Returns:
	//   - string: the source path
	Path() string

	// Source returns the WGSL source without the loader's NUL terminator.
	// It is empty after Release.
	//
	// Returns:
	//   - string: the WGSL source code
	Source() string

	// ShaderType returns the stage this shader was parsed for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex, ShaderTypeFragment or ShaderTypeCompute
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry point function.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// WorkgroupSize returns the @workgroup_size dimensions for compute shaders. Omitted
	// dimensions are 1. Non-compute shaders return [0, 0, 0].
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// BindGroupLayoutDescriptor returns the parsed layout for one bind group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
	//   - bool: false if the shader declares nothing in that group
	BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool)

	// BindGroupLayoutDescriptors returns every parsed bind group layout keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindingName returns the WGSL variable name bound at group and binding, or "".
	//
	// Parameters:
	//   - group: the @group index
	//   - binding: the @binding index
	//
	// Returns:
	//   - string: the variable name
	BindingName(group, binding int) string

	// Module returns the descriptor used to compile the shader module. It is nil after Release.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the WGSL module descriptor
	Module() *wgpu.ShaderModuleDescriptor

	// Release drops the held source. Parsed metadata stays available.
	Release()
}

var _ Shader = &shader{}

// NewShader loads WGSL source from path with LoadSource, optionally expands slot
// annotations, and parses it for the given stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader feeds
//   - path: the WGSL file to load
//   - options: functional options applied before parsing
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the file cannot be loaded, pre-processed or parsed
func NewShader(key string, shaderType ShaderType, path string, options ...ShaderBuilderOption) (Shader, error) {
	if path == "" {
		return nil, fmt.Errorf("shader: %s has no source path", key)
	}
	var opts shaderOptions
	for _, opt := range options {
		opt(&opts)
	}

	src, err := LoadSource(path)
	if err != nil {
		return nil, err
	}
	source := trimSentinel(src)
	if opts.preProcessor != nil {
		if source, err = opts.preProcessor.Process(source); err != nil {
			return nil, fmt.Errorf("shader: pre-process %q: %w", path, err)
		}
	}
	s, err := newShader(key, shaderType, source)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	s.path = path
	return s, nil
}

// NewShaderFromSource parses in-memory WGSL source for the given stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader feeds
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the source does not parse
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	return newShader(key, shaderType, source)
}

func newShader(key string, shaderType ShaderType, source string) (*shader, error) {
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
	}

	s.entryPoint = parseEntryPoint(source, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("%w: %s shader %q", ErrNoEntryPoint, shaderType, key)
	}
	if shaderType == ShaderTypeCompute {
		s.workGroupSize = parseWorkgroupSize(source)
	}

	var err error
	s.bindGroupLayoutDescriptors, s.bindingNames, err = parseBindGroupLayouts(source, shaderType.Visibility())
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	desc, ok := s.bindGroupLayoutDescriptors[group]
	return desc, ok
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindingName(group, binding int) string {
	return s.bindingNames[group][binding]
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Release() {
	s.source = ""
	s.module = nil
}
