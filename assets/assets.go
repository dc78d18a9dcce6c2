// Package assets resolves and reads the files the demo needs at startup:
// shader sources and texture images. The directory also holds the default
// asset set itself.
package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotFound is returned (wrapped in a *ResourceError) when a required
// asset file does not exist.
var ErrNotFound = errors.New("resource not found")

// ResourceError records which asset failed to load and why.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Resolve joins name onto dir. Absolute names are returned unchanged.
func Resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func resourceError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &ResourceError{Path: path, Err: ErrNotFound}
	}
	return &ResourceError{Path: path, Err: err}
}

// ReadText reads a text asset such as a shader source.
func ReadText(dir, name string) (string, error) {
	path := Resolve(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", resourceError(path, err)
	}
	return string(data), nil
}

// DecodeImage decodes an image asset and converts it to RGBA.
func DecodeImage(dir, name string) (*image.RGBA, error) {
	path := Resolve(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, resourceError(path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, resourceError(path, fmt.Errorf("decode: %w", err))
	}

	// Convert source image to RGBA for consistency.
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}
