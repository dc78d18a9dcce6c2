package graphics

// Context defines the interface for an OpenGL context and the window that
// owns it. The frame loop only depends on this interface.
type Context interface {
	MakeCurrent()
	Shutdown()
	// PollEvents drains pending window events; a quit request is reported
	// by ShouldClose afterwards.
	PollEvents()
	ShouldClose() bool
	SwapBuffers()
	GetFramebufferSize() (int, int)
	// Time returns seconds since the graphics subsystem was initialized.
	Time() float64
}
