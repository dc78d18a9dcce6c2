package options

import (
	"flag"
	"fmt"
	"math"
)

const (
	ModeWindow = "window"
	ModeRecord = "record"
)

type DemoOptions struct {
	Width      *int
	Height     *int
	Title      *string
	AssetDir   *string // Directory holding the textures and the shaders/ folder
	Mode       *string // "window" or "record"
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string // Optional path to the ffmpeg executable used in record mode
	Help       *bool
}

// Bind registers the demo flags on fs and returns options pointing at them.
func Bind(fs *flag.FlagSet) *DemoOptions {
	return &DemoOptions{
		Width:      fs.Int("width", 640, "Width of the window or recording"),
		Height:     fs.Int("height", 480, "Height of the window or recording"),
		Title:      fs.String("title", "Textured", "Window title"),
		AssetDir:   fs.String("assets", "assets", "Directory containing textures and shaders/"),
		Mode:       fs.String("mode", ModeWindow, "Mode: 'window' or 'record'"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile: fs.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Help:       fs.Bool("help", false, "Show help message"),
	}
}

// Parse binds the demo flags to a new FlagSet and parses args.
func Parse(name string, args []string) (*DemoOptions, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	opts := Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return opts, fs, opts.Validate()
}

func (o *DemoOptions) Recording() bool {
	return *o.Mode == ModeRecord
}

// TotalFrames is the number of frames a recording produces, rounded to the
// nearest frame so products like 4.1*25 are not truncated.
func (o *DemoOptions) TotalFrames() int {
	return int(math.Round(*o.Duration * float64(*o.FPS)))
}

func (o *DemoOptions) Validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	switch *o.Mode {
	case ModeWindow:
	case ModeRecord:
		if *o.FPS <= 0 {
			return fmt.Errorf("invalid fps %d", *o.FPS)
		}
		if *o.Duration <= 0 {
			return fmt.Errorf("invalid duration %v", *o.Duration)
		}
		if *o.OutputFile == "" {
			return fmt.Errorf("record mode needs an output file")
		}
		// yuv420p output needs even dimensions.
		if *o.Width%2 != 0 || *o.Height%2 != 0 {
			return fmt.Errorf("record size %dx%d must be even", *o.Width, *o.Height)
		}
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	return nil
}
