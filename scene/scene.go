// Package scene holds the animated shapes of the demo and the fixed camera
// matrices. It has no GL dependency; the renderer reads it to issue draws.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// World extents of the orthographic camera. 10 units across and 7.5 up
// keeps the 4:3 ratio of a 640x480 window.
const (
	OrthoLeft   = -5.0
	OrthoRight  = 5.0
	OrthoBottom = -3.75
	OrthoTop    = 3.75
	OrthoNear   = -1.0
	OrthoFar    = 1.0
)

var (
	QuadVertices = []float32{
		-0.5, -0.5, 0.5, -0.5, 0.5, 0.5,
		-0.5, -0.5, 0.5, 0.5, -0.5, 0.5,
	}
	QuadTexCoords = []float32{
		0.0, 1.0, 1.0, 1.0, 1.0, 0.0,
		0.0, 1.0, 1.0, 0.0, 0.0, 0.0,
	}
	TriangleVertices = []float32{
		0.5, -0.5, 0.0, 0.5, -0.5, -0.5,
	}
)

// Shape is one animated primitive. Position[0] and Angle are the only
// values carried from frame to frame; Model is rebuilt from them.
type Shape struct {
	Name string
	// Texture is the asset name of the image; empty means flat colored.
	Texture   string
	Vertices  []float32
	TexCoords []float32

	Position        mgl32.Vec3
	Velocity        float32 // world units per second along X
	Angle           float32 // degrees about Z
	AngularVelocity float32 // degrees per second
	Offset          mgl32.Vec3

	Model mgl32.Mat4
}

// Textured reports whether the shape samples a texture.
func (s *Shape) Textured() bool {
	return s.Texture != ""
}

// VertexCount is the number of 2D vertices in the shape.
func (s *Shape) VertexCount() int32 {
	return int32(len(s.Vertices) / 2)
}

// Update advances the shape by dt seconds with a single Euler step and
// rebuilds its model matrix.
func (s *Shape) Update(dt float32) {
	s.Position[0] += s.Velocity * dt
	s.Angle += s.AngularVelocity * dt
	s.Model = s.Transform()
}

// Transform returns Translate(Position) * Translate(Offset) * RotateZ(Angle).
func (s *Shape) Transform() mgl32.Mat4 {
	m := mgl32.Translate3D(s.Position.X(), s.Position.Y(), s.Position.Z())
	m = m.Mul4(mgl32.Translate3D(s.Offset.X(), s.Offset.Y(), s.Offset.Z()))
	return m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(s.Angle)))
}

// Scene is the complete application state that the frame loop mutates.
type Scene struct {
	Shapes     []*Shape
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Color      mgl32.Vec4
}

// Default builds the demo scene: a box and a slime sliding right at
// slightly different speeds, and a spinning white triangle.
func Default() *Scene {
	s := &Scene{
		Shapes: []*Shape{
			{
				Name:      "box",
				Texture:   "not_snake.png",
				Vertices:  QuadVertices,
				TexCoords: QuadTexCoords,
				Position:  mgl32.Vec3{-5.0, 0, -0.2},
				Velocity:  1.1,
				Offset:    mgl32.Vec3{0, 1, 0},
			},
			{
				Name:      "slime",
				Texture:   "slime.png",
				Vertices:  QuadVertices,
				TexCoords: QuadTexCoords,
				Position:  mgl32.Vec3{-6.0, 0, -0.2},
				Velocity:  1.0,
				Offset:    mgl32.Vec3{0, 1, 0},
			},
			{
				Name:            "triangle",
				Vertices:        TriangleVertices,
				AngularVelocity: 45.0,
			},
		},
		View:       mgl32.Ident4(),
		Projection: mgl32.Ortho(OrthoLeft, OrthoRight, OrthoBottom, OrthoTop, OrthoNear, OrthoFar),
		Color:      mgl32.Vec4{1, 1, 1, 1},
	}
	for _, shape := range s.Shapes {
		shape.Model = shape.Transform()
	}
	return s
}

// Update advances every shape by dt seconds, in draw order.
func (s *Scene) Update(dt float32) {
	for _, shape := range s.Shapes {
		shape.Update(dt)
	}
}

// shape returns the shape with the given name, or nil.
func (s *Scene) shape(name string) *Shape {
	for _, shape := range s.Shapes {
		if shape.Name == name {
			return shape
		}
	}
	return nil
}

// Textures lists the distinct texture assets the scene references.
func (s *Scene) Textures() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, shape := range s.Shapes {
		if !shape.Textured() {
			continue
		}
		if _, ok := seen[shape.Texture]; ok {
			continue
		}
		seen[shape.Texture] = struct{}{}
		names = append(names, shape.Texture)
	}
	return names
}
