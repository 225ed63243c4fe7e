// Package camera turns slide indices into camera positions and animates the
// viewpoint between them.
package camera

import (
	"time"

	"github.com/teranos/orrery/navigator"
)

// Layout places slides along the X axis: slide i is framed from
// i*Spacing - Offset.
type Layout struct {
	Spacing float64
	Offset  float64
}

// DefaultLayout matches the spacing of the bodies in the default system.
var DefaultLayout = Layout{Spacing: 20, Offset: 4}

// TargetX returns the camera X position that frames slide i.
func (l Layout) TargetX(i int) float64 {
	return float64(i)*l.Spacing - l.Offset
}

// Camera is a perspective viewpoint looking down -Z.
type Camera struct {
	X, Y, Z float64
	FOV     float64 // vertical field of view in degrees
	Aspect  float64
	Near    float64
	Far     float64
}

// Default returns the viewpoint of the reference scene.
func Default() Camera {
	return Camera{X: -3, FOV: 75, Aspect: 16.0 / 9.0, Near: 0.1, Far: 1000}
}

// SetAspect updates the aspect ratio from a viewport size. Degenerate sizes
// are ignored.
func (c *Camera) SetAspect(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = width / height
}

// Rig animates a Camera's X position in response to slide moves.
type Rig struct {
	Layout Layout
	Camera Camera
	tween  Tween
	now    func() time.Time
}

// NewRig creates a rig resting at cam's current position.
func NewRig(layout Layout, cam Camera) *Rig {
	return &Rig{
		Layout: layout,
		Camera: cam,
		tween:  NewTween(cam.X, Power1Out),
		now:    time.Now,
	}
}

// WithClock replaces the rig's time source.
func (r *Rig) WithClock(now func() time.Time) *Rig {
	r.now = now
	return r
}

// MoveCamera implements navigator.Mover. It retargets the X tween from its
// current value towards the slide's position.
func (r *Rig) MoveCamera(cmd navigator.MoveCommand) {
	r.tween.Retarget(r.Layout.TargetX(cmd.TargetIndex), cmd.Duration, r.now())
}

// Step writes the tweened position for now into the camera and returns it.
func (r *Rig) Step(now time.Time) Camera {
	r.Camera.X = r.tween.Value(now)
	return r.Camera
}

// Settled reports whether the camera has reached its target at now.
func (r *Rig) Settled(now time.Time) bool { return r.tween.Done(now) }

// TargetX returns the X position the rig is heading to.
func (r *Rig) TargetX() float64 { return r.tween.Target() }

// Jump places the camera on slide i immediately.
func (r *Rig) Jump(i int) {
	x := r.Layout.TargetX(i)
	r.tween = NewTween(x, r.tween.ease)
	r.Camera.X = x
}
