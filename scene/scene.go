// Package scene builds the solar system: bodies on a line, Saturn's rings,
// a cloud layer over the Earth, a random starfield and two lights.
//
// The scene is retained: it is built once, textures are attached by a Loader,
// and RunFrame advances every body's spin once per frame.
package scene

import (
	"image"
	"image/color"
	"math/rand"
)

// Vec3 is a point or direction in world space.
type Vec3 struct{ X, Y, Z float64 }

// Material describes a surface. A nil Texture means Color is used flat.
type Material struct {
	Color       color.NRGBA
	Texture     image.Image
	TextureName string // asset name the Loader resolves, e.g. "earth"
	Lit         bool   // shaded by the lights; unlit surfaces show raw color
	Transparent bool   // blended using the texture's alpha (or Color.A)
}

// Ring is a flat annulus around its parent, tilted about the X axis.
type Ring struct {
	Radius   float64 // distance from the center to the middle of the band
	Tube     float64 // half width of the band
	TiltX    float64
	Material Material
}

// Inner returns the inner radius of the band.
func (r Ring) Inner() float64 { return r.Radius - r.Tube }

// Outer returns the outer radius of the band.
func (r Ring) Outer() float64 { return r.Radius + r.Tube }

// Body is a sphere with an optional set of rings that spin with it.
type Body struct {
	Name      string
	Radius    float64
	Position  Vec3
	RotationY float64
	Spin      float64 // radians added to RotationY per frame
	Material  Material
	Rings     []Ring
}

// Star is one point of the background field.
type Star struct {
	Position Vec3
	Radius   float64
}

// Light is a white light. A point light has a Position; an ambient light
// lights every surface equally.
type Light struct {
	Position  Vec3
	Intensity float64
	Ambient   bool
}

// Scene is the full retained scene.
type Scene struct {
	Bodies     []*Body
	Stars      []Star
	Lights     []Light
	Background Material
	frames     uint64
}

// RunFrame is the rotation updater: it advances every body's spin by its
// per-frame increment. Angles are never wrapped.
func (s *Scene) RunFrame() {
	for _, b := range s.Bodies {
		b.RotationY += b.Spin
	}
	s.frames++
}

// Frames returns how many times RunFrame has run.
func (s *Scene) Frames() uint64 { return s.frames }

// Body returns the body with the given name, or nil.
func (s *Scene) Body(name string) *Body {
	for _, b := range s.Bodies {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Add appends bodies to the scene.
func (s *Scene) Add(bodies ...*Body) {
	s.Bodies = append(s.Bodies, bodies...)
}

// Starfield scatters count stars uniformly in a cube of side spread centered
// on the origin. The same seed always yields the same field.
func Starfield(count int, spread, radius float64, seed int64) []Star {
	rng := rand.New(rand.NewSource(seed))
	stars := make([]Star, count)
	for i := range stars {
		stars[i] = Star{
			Position: Vec3{
				X: (rng.Float64() - 0.5) * spread,
				Y: (rng.Float64() - 0.5) * spread,
				Z: (rng.Float64() - 0.5) * spread,
			},
			Radius: radius,
		}
	}
	return stars
}
