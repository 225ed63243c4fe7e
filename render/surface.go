// Package render draws the scene: a software ray caster into image buffers,
// a half-block terminal blit, and PNG frame capture with a text overlay.
package render

import (
	"image"

	"github.com/teranos/orrery/camera"
	"github.com/teranos/orrery/scene"
)

// Surface is a display surface bound to a viewport size in pixels.
type Surface struct {
	width  int
	height int
}

// NewSurface creates a surface of the given size.
func NewSurface(width, height int) *Surface {
	s := &Surface{}
	s.Resize(width, height)
	return s
}

// Resize changes the output size. Negative sizes are treated as zero.
func (s *Surface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.width, s.height = width, height
}

// Size returns the output size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Draw renders the scene from cam into a new image of the surface's size.
func (s *Surface) Draw(sc *scene.Scene, cam camera.Camera) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	Draw(img, sc, cam)
	return img
}
