package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindowOptions(t *testing.T) {
	w := newEngineWindow(WithTitle("particles test"), WithWidth(640), WithHeight(480))

	assert.Equal(t, "particles test", w.title)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
}

func TestUninitializedWindow(t *testing.T) {
	w := newEngineWindow()

	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())

	x, y := w.CursorPos()
	assert.Zero(t, x)
	assert.Zero(t, y)

	// none of these reach GLFW without a platform window
	w.PollEvents()
	w.RequestClose()

	assert.ErrorIs(t, w.Close(), ErrNotInitialized)
}
