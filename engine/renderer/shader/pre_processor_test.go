package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessorExpandsSlots(t *testing.T) {
	pp := particleSlots()
	src := "// header\n//@particles:slot positions storage_read_write\n  //@particles:slot cursor storage_read mouse\nfn f() {}"

	out, err := pp.Process(src)
	require.NoError(t, err)

	assert.Equal(t, "// header\n"+
		"@group(0) @binding(0) var<storage, read_write> positions: array<vec4<f32>>;\n"+
		"@group(0) @binding(2) var<storage, read> mouse: vec2<f32>;\n"+
		"fn f() {}", out)

	decls := pp.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationTypeSlot, decls[0].Type)
	assert.Equal(t, 2, decls[0].Line)
	assert.Equal(t, 0, *decls[0].Binding)
	assert.Equal(t, 2, *decls[1].Binding)
	assert.Equal(t, AnnotationArg("mouse"), decls[1].Args[2])
}

func TestPreProcessorResetsDeclarations(t *testing.T) {
	pp := particleSlots()

	_, err := pp.Process("//@particles:slot velocities storage_read_write")
	require.NoError(t, err)
	_, err = pp.Process("fn f() {}")
	require.NoError(t, err)

	assert.Empty(t, pp.Declarations())
}

func TestPreProcessorErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "//@particles:", "empty annotation"},
		{"unknown type", "//@particles:include camera", "unknown annotation type"},
		{"unknown slot", "//@particles:slot colors storage_read", "unknown slot"},
		{"bad address space", "//@particles:slot cursor private", "unknown address space"},
		{"missing args", "//@particles:slot cursor", "requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := particleSlots().Process(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseAnnotationIgnoresPlainLines(t *testing.T) {
	for _, line := range []string{"", "fn main() {}", "// a comment", "let s = \"@particles:slot\";"} {
		a, err := parseAnnotation(line, 1)
		assert.NoError(t, err)
		assert.Nil(t, a, line)
	}
}

func TestNewShaderPreProcessFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("//@particles:slot nowhere storage_read\n@compute @workgroup_size(1) fn main() {}"), 0o644))

	_, err := NewShader("bad", ShaderTypeCompute, path, WithPreProcessor(particleSlots()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown slot")
}
