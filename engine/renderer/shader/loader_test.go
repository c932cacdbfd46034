package shader

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wgsl")
	content := []byte("@compute @workgroup_size(1) fn main() {}\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	src, err := LoadSource(path)
	require.NoError(t, err)

	assert.Len(t, src, len(content)+1)
	assert.Equal(t, byte(0), src[len(src)-1])
	assert.Equal(t, content, src[:len(content)])
}

func TestLoadSourceEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wgsl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	src, err := LoadSource(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, src)
}

func TestLoadSourceMissing(t *testing.T) {
	src, err := LoadSource(filepath.Join(t.TempDir(), "nope.wgsl"))

	assert.Nil(t, src)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadSourceShippedShaders(t *testing.T) {
	for _, name := range []string{"particles-vert.wgsl", "particles-frag.wgsl", "particles-compute.wgsl"} {
		path := filepath.Join("..", "..", "..", "assets", "shaders", name)
		info, err := os.Stat(path)
		require.NoError(t, err, name)

		src, err := LoadSource(path)
		require.NoError(t, err, name)
		assert.Equal(t, info.Size()+1, int64(len(src)), name)
	}
}

func TestTrimSentinel(t *testing.T) {
	assert.Equal(t, "abc", trimSentinel([]byte("abc\x00")))
	assert.Equal(t, "abc", trimSentinel([]byte("abc")))
	assert.Equal(t, "", trimSentinel([]byte{0}))
}
