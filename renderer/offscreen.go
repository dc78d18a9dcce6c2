package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// OffscreenRenderer is an RGBA8 framebuffer that record mode draws into
// and reads back from.
type OffscreenRenderer struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
}

func NewOffscreenRenderer(width, height int) (*OffscreenRenderer, error) {
	or := &OffscreenRenderer{
		width:  width,
		height: height,
	}

	gl.GenFramebuffers(1, &or.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)

	gl.GenTextures(1, &or.textureID)
	gl.BindTexture(gl.TEXTURE_2D, or.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		or.Destroy()
		return nil, fmt.Errorf("offscreen framebuffer incomplete: 0x%x", status)
	}
	return or, nil
}

// ReadPixels copies the framebuffer into a new buffer of bottom-up rows.
func (or *OffscreenRenderer) ReadPixels() ([]byte, error) {
	pixels := make([]byte, or.width*or.height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, or.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels failed: 0x%x", errCode)
	}
	return pixels, nil
}

func (or *OffscreenRenderer) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
}
