package render

import (
	"testing"

	"github.com/muesli/termenv"

	"github.com/teranos/orrery/camera"
	"github.com/teranos/orrery/scene"
)

// BenchmarkDraw renders an 80x40 terminal's worth of pixels with the full
// starfield.
func BenchmarkDraw(b *testing.B) {
	s := scene.DefaultSystem(scene.DefaultOptions())
	surface := NewSurface(80, 80)
	cam := cameraAt(camera.DefaultLayout.TargetX(3))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.RunFrame()
		surface.Draw(s, cam)
	}
}

func BenchmarkTerminal(b *testing.B) {
	img := NewSurface(80, 80).Draw(starlessSystem(), cameraAt(-4))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Terminal(img, termenv.TrueColor)
	}
}
