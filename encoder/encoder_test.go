package encoder

import (
	"testing"

	options "github.com/richinsley/goquads/options"
)

func recordOptions(t *testing.T, args ...string) *options.DemoOptions {
	t.Helper()
	opts, _, err := options.Parse("test", append([]string{"-mode", "record"}, args...))
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	return opts
}

func TestGetArgsInput(t *testing.T) {
	opts := recordOptions(t, "-fps", "30")
	in, _ := getArgs(opts, "linux")

	want := map[string]interface{}{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       "640x480",
		"r":       30,
	}
	for k, v := range want {
		if in[k] != v {
			t.Errorf("input %s = %v, want %v", k, in[k], v)
		}
	}
}

func TestGetArgsOutput(t *testing.T) {
	tests := []struct {
		goos, output string
		codec        string
		faststart    bool
	}{
		{"linux", "output.mp4", "libx264", true},
		{"windows", "clip.mkv", "libx264", false},
		{"darwin", "output.mp4", "h264_videotoolbox", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.output, func(t *testing.T) {
			opts := recordOptions(t, "-output", tt.output)
			_, out := getArgs(opts, tt.goos)
			if out["c:v"] != tt.codec {
				t.Errorf("c:v = %v, want %v", out["c:v"], tt.codec)
			}
			if out["vf"] != "vflip" {
				t.Errorf("vf = %v, want vflip", out["vf"])
			}
			if out["pix_fmt"] != "yuv420p" {
				t.Errorf("pix_fmt = %v, want yuv420p", out["pix_fmt"])
			}
			_, ok := out["movflags"]
			if ok != tt.faststart {
				t.Errorf("movflags present = %v, want %v", ok, tt.faststart)
			}
		})
	}
}

func TestWriteFrameRejectsWrongSize(t *testing.T) {
	e := &FFmpegEncoder{frameSize: 16, closed: false}
	if err := e.WriteFrame(make([]byte, 15)); err == nil {
		t.Error("expected error for short frame")
	}
	e.closed = true
	if err := e.WriteFrame(make([]byte, 16)); err == nil {
		t.Error("expected error after close")
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}
