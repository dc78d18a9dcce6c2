package texture

import (
	"fmt"
	"image"
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	assets "github.com/richinsley/goquads/assets"
)

// Texture is a 2D GPU texture created from an image asset.
type Texture struct {
	ID     uint32
	Width  int32
	Height int32
}

// Load decodes the named image from dir and uploads it with
// nearest-neighbor filtering. A missing file yields assets.ErrNotFound.
func Load(dir, name string) (*Texture, error) {
	rgba, err := assets.DecodeImage(dir, name)
	if err != nil {
		return nil, err
	}
	tex, err := Upload(rgba)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", name, err)
	}
	log.Printf("Loaded texture %s (%dx%d) as %d", name, tex.Width, tex.Height, tex.ID)
	return tex, nil
}

// Upload creates an RGBA8 texture from rgba.
func Upload(rgba *image.RGBA) (*Texture, error) {
	width := int32(rgba.Rect.Size().X)
	height := int32(rgba.Rect.Size().Y)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty image")
	}

	var textureID uint32
	gl.GenTextures(1, &textureID)
	if textureID == 0 {
		return nil, fmt.Errorf("glGenTextures returned no name")
	}
	gl.BindTexture(gl.TEXTURE_2D, textureID)

	// Rows are tightly packed; odd widths would otherwise hit the 4-byte default.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		width,
		height,
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &Texture{ID: textureID, Width: width, Height: height}, nil
}

func (t *Texture) Bind() {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
}

func (t *Texture) Destroy() {
	gl.DeleteTextures(1, &t.ID)
}
