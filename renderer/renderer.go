package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goquads/graphics"
	"github.com/richinsley/goquads/scene"
	shader "github.com/richinsley/goquads/shader"
	texture "github.com/richinsley/goquads/texture"
)

// Shader and texture locations relative to the asset directory.
const (
	TexturedVertexShader   = "shaders/vertex_textured.glsl"
	TexturedFragmentShader = "shaders/fragment_textured.glsl"
	FlatVertexShader       = "shaders/vertex.glsl"
	FlatFragmentShader     = "shaders/fragment.glsl"
)

var glInitOnce sync.Once

type Renderer struct {
	context     graphics.Context
	texProgram  *shader.Program
	flatProgram *shader.Program
	textures    map[string]*texture.Texture
	vao         uint32
	positionVBO uint32
	texCoordVBO uint32
	offscreen   *OffscreenRenderer
	width       int
	height      int
	recordMode  bool
}

// NewRenderer makes ctx current, loads the GL entry points and sets the
// fixed pipeline state: viewport, alpha blending and the clear color. In
// record mode frames go to an offscreen framebuffer of width x height.
func NewRenderer(width, height int, recordMode bool, ctx graphics.Context) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		textures:   make(map[string]*texture.Texture),
		width:      width,
		height:     height,
		recordMode: recordMode,
	}

	// Make the context current BEFORE initializing OpenGL.
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Printf("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.2, 0.2, 0.2, 1.0)

	// Core profiles have no client-side arrays; vertex data is streamed
	// through these buffers on every draw instead.
	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.positionVBO)
	gl.GenBuffers(1, &r.texCoordVBO)

	if recordMode {
		var err error
		r.offscreen, err = NewOffscreenRenderer(width, height)
		if err != nil {
			r.Shutdown()
			return nil, fmt.Errorf("failed to create offscreen renderer: %w", err)
		}
	}
	return r, nil
}

// InitScene compiles both shader programs, loads every texture the scene
// references from assetDir and uploads the camera matrices and color.
func (r *Renderer) InitScene(s *scene.Scene, assetDir string) error {
	var err error
	r.texProgram, err = shader.Load(assetDir, TexturedVertexShader, TexturedFragmentShader)
	if err != nil {
		return fmt.Errorf("textured program: %w", err)
	}
	r.flatProgram, err = shader.Load(assetDir, FlatVertexShader, FlatFragmentShader)
	if err != nil {
		return fmt.Errorf("flat program: %w", err)
	}

	for _, name := range s.Textures() {
		tex, err := texture.Load(assetDir, name)
		if err != nil {
			return fmt.Errorf("failed to load texture: %w", err)
		}
		r.textures[name] = tex
	}

	for _, p := range []*shader.Program{r.texProgram, r.flatProgram} {
		p.Use()
		p.SetProjectionMatrix(s.Projection)
		p.SetViewMatrix(s.View)
		p.SetColor(s.Color[0], s.Color[1], s.Color[2], s.Color[3])
	}
	return nil
}

// RenderFrame clears the target and issues one draw per shape in order.
func (r *Renderer) RenderFrame(s *scene.Scene) {
	if r.offscreen != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.offscreen.fbo)
		gl.Viewport(0, 0, int32(r.width), int32(r.height))
	} else {
		fbWidth, fbHeight := r.context.GetFramebufferSize()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	}
	gl.Clear(gl.COLOR_BUFFER_BIT)

	for _, shape := range s.Shapes {
		if !shape.Textured() {
			r.DrawFlat(shape.Model, shape.Vertices, shape.VertexCount())
			continue
		}
		// InitScene loaded every name in s.Textures().
		r.DrawTexturedQuad(r.textures[shape.Texture], shape.Model, shape.Vertices, shape.TexCoords, shape.VertexCount())
	}

	if r.offscreen != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
}

// DrawTexturedQuad draws count 2D vertices with tex applied through the
// textured program.
func (r *Renderer) DrawTexturedQuad(tex *texture.Texture, model mgl32.Mat4, vertices, texCoords []float32, count int32) {
	p := r.texProgram
	p.Use()
	p.SetModelMatrix(model)
	tex.Bind()

	gl.BindVertexArray(r.vao)
	streamAttribute(r.positionVBO, p.PositionAttribute, vertices)
	streamAttribute(r.texCoordVBO, p.TexCoordAttribute, texCoords)

	gl.DrawArrays(gl.TRIANGLES, 0, count)

	disableAttribute(p.PositionAttribute)
	disableAttribute(p.TexCoordAttribute)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// DrawFlat draws count 2D vertices in the program's flat color.
func (r *Renderer) DrawFlat(model mgl32.Mat4, vertices []float32, count int32) {
	p := r.flatProgram
	p.Use()
	p.SetModelMatrix(model)

	gl.BindVertexArray(r.vao)
	streamAttribute(r.positionVBO, p.PositionAttribute, vertices)

	gl.DrawArrays(gl.TRIANGLES, 0, count)

	disableAttribute(p.PositionAttribute)
	gl.BindVertexArray(0)
}

// ReadFrame returns the last offscreen frame as bottom-up RGBA rows.
func (r *Renderer) ReadFrame() ([]byte, error) {
	if r.offscreen == nil {
		return nil, fmt.Errorf("renderer is not in record mode")
	}
	return r.offscreen.ReadPixels()
}

func (r *Renderer) Shutdown() {
	for name, tex := range r.textures {
		tex.Destroy()
		delete(r.textures, name)
	}
	if r.texProgram != nil {
		r.texProgram.Destroy()
	}
	if r.flatProgram != nil {
		r.flatProgram.Destroy()
	}
	if r.offscreen != nil {
		r.offscreen.Destroy()
	}
	gl.DeleteBuffers(1, &r.positionVBO)
	gl.DeleteBuffers(1, &r.texCoordVBO)
	gl.DeleteVertexArrays(1, &r.vao)
}

func streamAttribute(vbo uint32, location int32, data []float32) {
	if location < 0 || len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STREAM_DRAW)
	gl.VertexAttribPointer(uint32(location), 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uint32(location))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func disableAttribute(location int32) {
	if location >= 0 {
		gl.DisableVertexAttribArray(uint32(location))
	}
}
