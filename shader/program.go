package shader

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	assets "github.com/richinsley/goquads/assets"
	xlate "github.com/richinsley/goquads/translator"
	gst "github.com/richinsley/goshadertranslator"
)

// Program is a linked vertex+fragment pair with the attribute and uniform
// locations the demo draws with. Locations are -1 when the linked program
// does not use them.
type Program struct {
	ID                uint32
	PositionAttribute int32
	TexCoordAttribute int32

	modelLoc      int32
	viewLoc       int32
	projectionLoc int32
	colorLoc      int32
	diffuseLoc    int32
}

// Load reads a GLSL ES 3.00 shader pair from dir, translates both stages to
// desktop GLSL 4.10 and links them. Missing files surface as
// assets.ErrNotFound.
func Load(dir, vertexPath, fragmentPath string) (*Program, error) {
	vertexSource, err := assets.ReadText(dir, vertexPath)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	fragmentSource, err := assets.ReadText(dir, fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}

	translator, err := xlate.GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}
	vsShader, err := translator.TranslateShader(vertexSource, "vertex", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("vertex shader translation failed (%s): %w", vertexPath, err)
	}
	fsShader, err := translator.TranslateShader(fragmentSource, "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed (%s): %w", fragmentPath, err)
	}

	id, err := newProgram(vsShader.Code, fsShader.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program (%s, %s): %w", vertexPath, fragmentPath, err)
	}

	uniform := func(name string) int32 {
		return gl.GetUniformLocation(id, gl.Str(xlate.MappedName(name, vsShader, fsShader)+"\x00"))
	}
	attrib := func(name string) int32 {
		return gl.GetAttribLocation(id, gl.Str(xlate.MappedName(name, vsShader, fsShader)+"\x00"))
	}

	p := &Program{
		ID:                id,
		PositionAttribute: attrib("position"),
		TexCoordAttribute: attrib("texCoord"),
		modelLoc:          uniform("modelMatrix"),
		viewLoc:           uniform("viewMatrix"),
		projectionLoc:     uniform("projectionMatrix"),
		colorLoc:          uniform("color"),
		diffuseLoc:        uniform("diffuse"),
	}
	if p.PositionAttribute < 0 {
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("program %s has no position attribute", vertexPath)
	}

	gl.UseProgram(id)
	if p.diffuseLoc != -1 {
		gl.Uniform1i(p.diffuseLoc, 0)
	}
	log.Printf("Loaded shader program %d (%s, %s)", id, vertexPath, fragmentPath)
	return p, nil
}

// Use makes the program current. Setters below act on the current program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

func (p *Program) SetModelMatrix(m mgl32.Mat4) {
	setMatrix(p.modelLoc, m)
}

func (p *Program) SetViewMatrix(m mgl32.Mat4) {
	setMatrix(p.viewLoc, m)
}

func (p *Program) SetProjectionMatrix(m mgl32.Mat4) {
	setMatrix(p.projectionLoc, m)
}

func (p *Program) SetColor(r, g, b, a float32) {
	if p.colorLoc != -1 {
		gl.Uniform4f(p.colorLoc, r, g, b, a)
	}
}

func (p *Program) Destroy() {
	gl.DeleteProgram(p.ID)
}

func setMatrix(loc int32, m mgl32.Mat4) {
	if loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
