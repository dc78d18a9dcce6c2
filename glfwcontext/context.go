package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	options "github.com/richinsley/goquads/options"
)

// Context wraps a GLFW window and its OpenGL context.
type Context struct {
	window *glfw.Window
}

// New creates a fixed-size GLFW window with an OpenGL 4.1 core context and
// returns a Context object. Hidden windows are used for offscreen recording.
func New(options *options.DemoOptions, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	if visible {
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(*options.Width, *options.Height, *options.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	if visible {
		centerWindow(win)
	}

	c := &Context{window: win}
	win.SetKeyCallback(c.glfwKeyCallback)

	return c, nil
}

func centerWindow(win *glfw.Window) {
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return
	}
	mode := monitor.GetVideoMode()
	if mode == nil {
		return
	}
	w, h := win.GetSize()
	win.SetPos((mode.Width-w)/2, (mode.Height-h)/2)
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	// Escape is a quit request, same as closing the window.
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown only destroys the window; TerminateGraphics tears down GLFW.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) PollEvents() {
	glfw.PollEvents()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) SwapBuffers() {
	c.window.SwapBuffers()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
