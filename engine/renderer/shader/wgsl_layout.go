package shader

import (
	"strconv"
	"strings"
)

// typeLayout is the byte size and alignment of a host-shareable WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// structMember is one member of a parsed WGSL struct.
type structMember struct {
	name     string
	typeName string
	builtin  bool
}

// wgslStruct is a WGSL struct block.
type wgslStruct struct {
	name    string
	members []structMember
}

// primitiveLayouts covers the scalar, vector and matrix types that can back a buffer.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"f16":         {2, 2},
	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},
	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

func alignUp(align, n uint64) uint64 {
	if align == 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// resolveLayout returns the layout of typeName. A fixed array<T, N> is N strides; a
// runtime-sized array<T> reports one stride, the smallest buffer that can be bound to it.
func resolveLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	typeName = strings.Join(strings.Fields(typeName), "")
	if l, ok := primitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return typeLayout{}, false
	}
	inner = inner[:len(inner)-1]

	elemType, count := inner, uint64(1)
	if i := strings.LastIndex(inner, ","); i >= 0 && !strings.Contains(inner[i:], ">") {
		n, err := strconv.ParseUint(inner[i+1:], 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		elemType, count = inner[:i], n
	}

	elem, ok := resolveLayout(elemType, known)
	if !ok {
		return typeLayout{}, false
	}
	return typeLayout{size: count * alignUp(elem.align, elem.size), align: elem.align}, true
}

// parseStructs extracts struct blocks from comment-free source.
func parseStructs(source string) []wgslStruct {
	var out []wgslStruct
	for _, m := range structRegex.FindAllStringSubmatch(source, -1) {
		s := wgslStruct{name: m[1]}
		for _, part := range splitMembers(m[2]) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			mm := memberRegex.FindStringSubmatch(part)
			if mm == nil {
				continue
			}
			s.members = append(s.members, structMember{
				name:     mm[1],
				typeName: strings.TrimSpace(mm[2]),
				builtin:  strings.Contains(part, "@builtin"),
			})
		}
		out = append(out, s)
	}
	return out
}

// splitMembers splits a struct body on commas outside angle brackets.
func splitMembers(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range body {
		switch c {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

// structLayouts resolves struct sizes, repeating until no more structs resolve so that
// structs may reference structs declared later in the file. Builtin members are skipped.
func structLayouts(structs []wgslStruct) map[string]typeLayout {
	known := make(map[string]typeLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []wgslStruct
		for _, s := range pending {
			if l, ok := structLayout(s, known); ok {
				known[s.name] = l
			} else {
				next = append(next, s)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}

func structLayout(s wgslStruct, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, m := range s.members {
		if m.builtin {
			continue
		}
		l, ok := resolveLayout(m.typeName, known)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{size: alignUp(align, offset), align: align}, true
}
