package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/richinsley/goquads/app"
	"github.com/richinsley/goquads/encoder"
	"github.com/richinsley/goquads/glfwcontext"
	"github.com/richinsley/goquads/options"
	"github.com/richinsley/goquads/renderer"
	"github.com/richinsley/goquads/scene"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

func run(opts *options.DemoOptions) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	record := opts.Recording()

	// If recording, the window will be hidden (headless mode)
	ctx, err := glfwcontext.New(opts, !record)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer ctx.Shutdown()

	r, err := renderer.NewRenderer(*opts.Width, *opts.Height, record, ctx)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Shutdown()

	s := scene.Default()
	if err := r.InitScene(s, *opts.AssetDir); err != nil {
		return fmt.Errorf("failed to initialize scene: %w", err)
	}

	a := app.New(ctx, r, s)
	if !record {
		a.Run()
		return nil
	}

	enc, err := encoder.NewFFmpegEncoder(opts)
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}
	if err := a.Record(r, enc, opts.TotalFrames(), *opts.FPS); err != nil {
		return fmt.Errorf("offscreen rendering failed: %w", err)
	}
	log.Printf("Successfully rendered to %s", *opts.OutputFile)
	return nil
}

func main() {
	opts, fs, err := options.Parse(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	if *opts.Help {
		fmt.Println("Textured quads demo")
		fs.PrintDefaults()
		return
	}

	if err := run(opts); err != nil {
		log.Fatalf("%v", err)
	}
}
