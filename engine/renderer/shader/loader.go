package shader

import (
	"fmt"
	"os"
)

// LoadSource reads the whole shader file at path in one pass and returns its bytes
// followed by a single terminating NUL, so len(result) == file size + 1.
// A missing or unreadable file is an error wrapping the underlying cause
// (fs.ErrNotExist for a missing path); empty content is never returned in its place.
//
// Parameters:
//   - path: the shader file to read
//
// Returns:
//   - []byte: the file contents with a trailing NUL byte
//   - error: an error if the file cannot be opened or read
func LoadSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shader: load %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("shader: stat %q: %w", path, err)
	}

	buf := make([]byte, info.Size()+1)
	n, err := f.ReadAt(buf[:info.Size()], 0)
	if err != nil && int64(n) != info.Size() {
		return nil, fmt.Errorf("shader: read %q: %w", path, err)
	}
	buf[info.Size()] = 0
	return buf, nil
}

// trimSentinel strips the trailing NUL added by LoadSource.
func trimSentinel(src []byte) string {
	if n := len(src); n > 0 && src[n-1] == 0 {
		src = src[:n-1]
	}
	return string(src)
}
