// Package app drives the demo: the interactive poll/update/render loop and
// the fixed-step recording loop.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/richinsley/goquads/graphics"
	"github.com/richinsley/goquads/scene"
)

// Renderer draws a scene into the current target.
type Renderer interface {
	RenderFrame(s *scene.Scene)
}

// FrameReader returns the pixels of the last rendered frame.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// FrameSink consumes rendered frames, e.g. a video encoder.
type FrameSink interface {
	WriteFrame(pixels []byte) error
	Close() error
}

// ErrInterrupted is returned by Record when the window is closed before all
// frames were produced.
var ErrInterrupted = errors.New("recording interrupted")

// queueDepth bounds how many frames wait for the encoder.
const queueDepth = 3

type App struct {
	context  graphics.Context
	renderer Renderer
	scene    *scene.Scene
	clock    scene.Clock
	running  bool
	frames   int64
}

func New(ctx graphics.Context, r Renderer, s *scene.Scene) *App {
	return &App{
		context:  ctx,
		renderer: r,
		scene:    s,
		running:  true,
	}
}

func (a *App) Running() bool { return a.running }

// Frames is the number of frames rendered so far.
func (a *App) Frames() int64 { return a.frames }

// ProcessInput drains window events and clears the running flag on a quit
// request.
func (a *App) ProcessInput() {
	a.context.PollEvents()
	if a.context.ShouldClose() {
		a.running = false
	}
}

// Update advances the scene by the wall-clock time since the last Update.
func (a *App) Update() {
	dt := a.clock.Tick(a.context.Time())
	a.scene.Update(dt)
}

// Render draws the scene and presents it.
func (a *App) Render() {
	a.renderer.RenderFrame(a.scene)
	a.context.SwapBuffers()
	a.frames++
}

// Step runs one full iteration. The iteration that observes a quit request
// still updates and renders.
func (a *App) Step() {
	a.ProcessInput()
	a.Update()
	a.Render()
}

// Run loops until a quit request has been seen. The first frame's delta is
// measured from here, so shader translation and texture uploads done
// during setup do not turn into a jump on screen.
func (a *App) Run() {
	log.Println("Starting interactive render loop...")
	a.clock.Reset(a.context.Time())
	for a.running {
		a.Step()
	}
	log.Printf("Render loop finished after %d frames", a.frames)
}

type frame struct {
	pixels []byte
	pts    int64
}

// Record renders totalFrames frames at a fixed step of 1/fps, starting from
// the current scene state, and hands each one to sink from a separate
// goroutine. sink is closed before Record returns.
func (a *App) Record(reader FrameReader, sink FrameSink, totalFrames, fps int) error {
	if fps <= 0 {
		sink.Close()
		return fmt.Errorf("invalid fps %d", fps)
	}
	log.Printf("Starting offscreen render loop: %d frames at %d fps", totalFrames, fps)

	timeStep := float32(1.0 / float64(fps))
	frameChan := make(chan frame, queueDepth)
	encoderDone := make(chan error, 1)
	abort := make(chan struct{})
	var abortOnce sync.Once

	// Consumer: keeps draining after a failure so the producer never blocks.
	go func() {
		var err error
		for f := range frameChan {
			if err != nil {
				continue
			}
			if werr := sink.WriteFrame(f.pixels); werr != nil {
				err = fmt.Errorf("frame %d: %w", f.pts, werr)
				abortOnce.Do(func() { close(abort) })
			}
		}
		encoderDone <- err
	}()

	var renderErr error
produce:
	for i := 0; i < totalFrames; i++ {
		select {
		case <-abort:
			break produce
		default:
		}

		a.context.PollEvents()
		if a.context.ShouldClose() {
			a.running = false
			renderErr = fmt.Errorf("%w after %d frames", ErrInterrupted, i)
			break
		}

		a.renderer.RenderFrame(a.scene)
		a.frames++
		pixels, err := reader.ReadFrame()
		if err != nil {
			renderErr = fmt.Errorf("error reading pixels on frame %d: %w", i, err)
			break
		}
		frameChan <- frame{pixels: pixels, pts: int64(i)}

		a.scene.Update(timeStep)
	}

	close(frameChan)
	encodeErr := <-encoderDone
	closeErr := sink.Close()

	switch {
	case renderErr != nil:
		return renderErr
	case encodeErr != nil:
		return encodeErr
	case closeErr != nil:
		return closeErr
	}
	log.Printf("Recorded %d frames", totalFrames)
	return nil
}
