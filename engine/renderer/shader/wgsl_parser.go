package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// structRegex captures a struct name and its body
	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// memberRegex captures the name and type of one struct member, skipping leading attributes
	memberRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	// entryRegexes capture the function name following each stage attribute
	entryRegexes = map[ShaderType]*regexp.Regexp{
		ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
		ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
		ShaderTypeCompute:  regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`),
	}

	// workgroupSizeRegex captures 1-3 integer dimensions from @workgroup_size(x[, y[, z]])
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?,?\s*\)`)

	// bindingRegex captures group, binding, address space, variable name and type from
	// declarations like: @group(0) @binding(2) var<storage, read> cursor: vec2<f32>;
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint returns the name of the first entry point for the given stage, or ""
// if the source has none.
//
// Parameters:
//   - source: the WGSL source code
//   - shaderType: the stage to look for
//
// Returns:
//   - string: the entry point function name
func parseEntryPoint(source string, shaderType ShaderType) string {
	re, ok := entryRegexes[shaderType]
	if !ok {
		return ""
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseWorkgroupSize returns the @workgroup_size dimensions. Omitted dimensions and a
// missing attribute both default to 1.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
func parseWorkgroupSize(source string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupSizeRegex.FindStringSubmatch(stripComments(source))
	if m == nil {
		return size
	}
	for i := range 3 {
		if m[i+1] == "" {
			continue
		}
		if v, err := strconv.ParseUint(m[i+1], 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

// parseBindGroupLayouts turns every @group/@binding buffer declaration into a layout entry
// with the given stage visibility. MinBindingSize is set from the bound type's layout; for
// a runtime-sized array that is one element stride. Entries are sorted by binding.
//
// Parameters:
//   - source: the WGSL source code
//   - visibility: the stage visibility applied to every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding
//   - error: ErrUnsupportedBinding for texture or sampler declarations, or a duplicate binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	cleaned := stripComments(source)
	known := structLayouts(parseStructs(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)

	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		space := strings.TrimSpace(m[3])
		name := m[4]
		typeName := strings.TrimSpace(m[5])

		bufferType, ok := bufferBindingType(space)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s at @group(%d) @binding(%d)", ErrUnsupportedBinding, name, group, binding)
		}
		if _, dup := names[group][binding]; dup {
			return nil, nil, fmt.Errorf("shader: duplicate @group(%d) @binding(%d)", group, binding)
		}

		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: visibility,
		}
		entry.Buffer.Type = bufferType
		if layout, ok := resolveLayout(typeName, known); ok {
			entry.Buffer.MinBindingSize = layout.size
		}
		groups[group] = append(groups[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = name
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		descriptors[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return descriptors, names, nil
}

// bufferBindingType maps a var address space to its buffer binding type. Handle types
// (textures, samplers) have no address space and report false.
func bufferBindingType(space string) (wgpu.BufferBindingType, bool) {
	switch {
	case space == "uniform":
		return wgpu.BufferBindingTypeUniform, true
	case strings.HasPrefix(space, "storage"):
		if strings.Contains(space, "read_write") {
			return wgpu.BufferBindingTypeStorage, true
		}
		return wgpu.BufferBindingTypeReadOnlyStorage, true
	default:
		return wgpu.BufferBindingTypeUndefined, false
	}
}

// stripComments removes line comments and (nested) block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
