package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window *glfw.Window
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
// The calling goroutine is locked to its OS thread; every later call must come from it.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("window: create GLFW window: %w", err)
	}
	w.internalWindow = &glfwWindow{window: win}

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})

	// The surface is sized in pixels, which differ from screen coordinates on high-DPI displays.
	w.width, w.height = win.GetFramebufferSize()

	return nil
}

func glfwOf(w *engineWindow) *glfwWindow {
	if w.internalWindow == nil {
		return nil
	}
	return w.internalWindow.(*glfwWindow)
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw := glfwOf(w)
	if gw == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformPollEvents polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformPollEvents(w *engineWindow) {
	if glfwOf(w) == nil {
		return
	}
	glfw.PollEvents()
}

func platformCursorPos(w *engineWindow) (float64, float64) {
	gw := glfwOf(w)
	if gw == nil {
		return 0, 0
	}
	return gw.window.GetCursorPos()
}

// platformIsRunningCheck returns false if the internal window is nil or GLFW reports ShouldClose.
func platformIsRunningCheck(w *engineWindow) bool {
	gw := glfwOf(w)
	return gw != nil && !gw.window.ShouldClose()
}

func platformRequestClose(w *engineWindow) {
	if gw := glfwOf(w); gw != nil {
		gw.window.SetShouldClose(true)
	}
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
func platformCloseWindow(w *engineWindow) error {
	gw := glfwOf(w)
	if gw == nil {
		return ErrNotInitialized
	}
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}
