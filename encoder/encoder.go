// Package encoder turns raw RGBA frames into a video file by piping them
// into an ffmpeg process.
package encoder

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	options "github.com/richinsley/goquads/options"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegEncoder feeds rawvideo RGBA frames to ffmpeg over stdin.
type FFmpegEncoder struct {
	pipeWriter *io.PipeWriter
	errc       chan error
	frameSize  int
	frames     int64
	closed     bool
}

// getArgs builds the ffmpeg input and output arguments. Frames arrive
// bottom-up from glReadPixels, so the output is flipped.
func getArgs(opts *options.DemoOptions, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", *opts.Width, *opts.Height),
		"r":       *opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}

	switch goos {
	case "darwin":
		log.Println("Using macOS (VideoToolbox) hardware acceleration.")
		outputArgs["c:v"] = "h264_videotoolbox"
		outputArgs["b:v"] = "8M"
	default:
		log.Println("Using software encoding pipeline (no hardware acceleration).")
		outputArgs["c:v"] = "libx264"
		outputArgs["preset"] = "medium"
		outputArgs["crf"] = 18
	}

	if strings.HasSuffix(*opts.OutputFile, ".mp4") {
		outputArgs["movflags"] = "+faststart"
	}
	return
}

// NewFFmpegEncoder starts ffmpeg writing to opts.OutputFile.
func NewFFmpegEncoder(opts *options.DemoOptions) (*FFmpegEncoder, error) {
	if *opts.Width <= 0 || *opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", *opts.Width, *opts.Height)
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(opts, runtime.GOOS)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	e := &FFmpegEncoder{
		pipeWriter: pipeWriter,
		errc:       make(chan error, 1),
		frameSize:  *opts.Width * *opts.Height * 4,
	}

	go func() {
		err := ffmpegCmd.Run()
		// Unblock any pending WriteFrame if ffmpeg exits early.
		if err != nil {
			pipeReader.CloseWithError(fmt.Errorf("ffmpeg exited: %w", err))
		} else {
			pipeReader.CloseWithError(io.ErrClosedPipe)
		}
		e.errc <- err
	}()

	log.Printf("Encoding %dx%d @ %d fps to %s", *opts.Width, *opts.Height, *opts.FPS, *opts.OutputFile)
	return e, nil
}

// WriteFrame writes one RGBA frame of exactly width*height*4 bytes.
func (e *FFmpegEncoder) WriteFrame(pixels []byte) error {
	if e.closed {
		return errors.New("encoder is closed")
	}
	if len(pixels) != e.frameSize {
		return fmt.Errorf("frame is %d bytes, want %d", len(pixels), e.frameSize)
	}
	if _, err := e.pipeWriter.Write(pixels); err != nil {
		return fmt.Errorf("failed to write frame %d to FFmpeg: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// Close ends the stream and waits for ffmpeg to finish the file.
func (e *FFmpegEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.pipeWriter.Close()
	if err := <-e.errc; err != nil {
		return fmt.Errorf("ffmpeg failed after %d frames: %w", e.frames, err)
	}
	log.Printf("Encoded %d frames", e.frames)
	return nil
}
