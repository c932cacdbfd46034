package window

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotInitialized is returned when a platform window was never created.
var ErrNotInitialized = errors.New("window: not initialized")

// Window is a fixed-size platform window that owns the event loop's input side: the
// close signal and the cursor position. Escape requests close.
type Window interface {
	// PollEvents processes pending window and input events without blocking.
	PollEvents()

	// CursorPos returns the cursor position in screen coordinates relative to the
	// top-left corner of the client area. Y grows downward.
	//
	// Returns:
	//   - float64: the cursor x position
	//   - float64: the cursor y position
	CursorPos() (x, y float64)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window has not been asked to close.
	//
	// Returns:
	//   - bool: true if window is running, false once a close was requested
	IsRunning() bool

	// RequestClose sets the close signal. The window stays open until Close.
	RequestClose()

	// Close destroys the window and terminates GLFW. Later calls return nil.
	//
	// Returns:
	//   - error: ErrNotInitialized if the window was never created
	Close() error

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title  string
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any
	closed         bool
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a non-resizable window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if GLFW fails to initialize or create the window
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "particles",
		width:  1920,
		height: 1080,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) PollEvents() {
	platformPollEvents(w)
}

func (w *engineWindow) CursorPos() (float64, float64) {
	return platformCursorPos(w)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return !w.closed && platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	if w.closed {
		return nil
	}
	if err := platformCloseWindow(w); err != nil {
		return err
	}
	w.closed = true
	return nil
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
