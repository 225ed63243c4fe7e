package scene

import (
	"image/color"
	"strings"
)

// Options tune the default system.
type Options struct {
	BodySpin    float64
	CloudSpin   float64
	StarCount   int
	StarSpread  float64
	StarRadius  float64
	StarSeed    int64
	BodySpacing float64
}

// DefaultOptions returns the values of the reference scene.
func DefaultOptions() Options {
	return Options{
		BodySpin:    0.005,
		CloudSpin:   0.008,
		StarCount:   2000,
		StarSpread:  500,
		StarRadius:  0.25,
		StarSeed:    1,
		BodySpacing: 20,
	}
}

// Clouds is the name of the cloud layer over the Earth. It is an overlay, not
// a stop on the tour.
const Clouds = "clouds"

type planet struct {
	name    string
	radius  float64
	z       float64
	lit     bool
	texture string
	color   color.NRGBA
}

var planets = []planet{
	{"sun", 6, -8, true, "sun", color.NRGBA{0xff, 0xb3, 0x2e, 0xff}},
	{"mercury", 1.5, -8, true, "mercury", color.NRGBA{0x9c, 0x95, 0x8f, 0xff}},
	{"venus", 2.5, -8, true, "venus", color.NRGBA{0xd9, 0xb3, 0x6c, 0xff}},
	{"earth", 3, -8, true, "earth", color.NRGBA{0x2f, 0x6f, 0xc8, 0xff}},
	{"mars", 1.5, -8, true, "mars", color.NRGBA{0xc1, 0x44, 0x0e, 0xff}},
	{"jupiter", 5, -8, true, "jupiter", color.NRGBA{0xc8, 0x9b, 0x6d, 0xff}},
	{"saturn", 4, -10, false, "saturn", color.NRGBA{0xe3, 0xcb, 0x8f, 0xff}},
	{"uranus", 3, -8, true, "uranus", color.NRGBA{0x9f, 0xd8, 0xe0, 0xff}},
	{"neptune", 2.5, -8, true, "neptune", color.NRGBA{0x3b, 0x5b, 0xd6, 0xff}},
	{"pluto", 1.5, -8, true, "pluto", color.NRGBA{0xc9, 0xb2, 0x99, 0xff}},
}

// DefaultSystem builds the reference solar system: ten bodies spaced along
// X, rings around Saturn, a cloud layer over the Earth, a starfield and a
// point plus ambient light.
func DefaultSystem(opts Options) *Scene {
	s := &Scene{
		Lights: []Light{
			{Position: Vec3{5, 5, 5}, Intensity: 1},
			{Ambient: true, Intensity: 0.4},
		},
		Background: Material{TextureName: "bg", Color: color.NRGBA{0, 0, 0, 0xff}},
		Stars:      Starfield(opts.StarCount, opts.StarSpread, opts.StarRadius, opts.StarSeed),
	}

	for i, p := range planets {
		b := &Body{
			Name:     p.name,
			Radius:   p.radius,
			Position: Vec3{X: float64(i) * opts.BodySpacing, Z: p.z},
			Spin:     opts.BodySpin,
			Material: Material{Color: p.color, TextureName: p.texture, Lit: p.lit},
		}
		if p.name == "saturn" {
			b.Rings = saturnRings()
		}
		s.Add(b)
	}

	earth := s.Body("earth")
	s.Add(&Body{
		Name:     Clouds,
		Radius:   3.01,
		Position: earth.Position,
		Spin:     opts.CloudSpin,
		Material: Material{
			Color:       color.NRGBA{0xff, 0xff, 0xff, 0x40},
			TextureName: "clouds",
			Transparent: true,
		},
	})
	return s
}

func saturnRings() []Ring {
	names := []string{"rings1", "rings2", "rings3"}
	radii := []float64{5.1, 6.9, 8.5}
	colors := []color.NRGBA{
		{0xc2, 0xa8, 0x7a, 0xb0},
		{0xa8, 0x90, 0x68, 0x90},
		{0x8a, 0x78, 0x5c, 0x70},
	}

	rings := make([]Ring, len(radii))
	for i := range radii {
		rings[i] = Ring{
			Radius: radii[i],
			Tube:   0.7,
			TiltX:  -1.7,
			Material: Material{
				Color:       colors[i],
				TextureName: names[i],
				Transparent: true,
			},
		}
	}
	return rings
}

// Stops returns the bodies the tour visits, in order: every body except
// overlays such as the cloud layer.
func (s *Scene) Stops() []*Body {
	stops := make([]*Body, 0, len(s.Bodies))
	for _, b := range s.Bodies {
		if b.Name == Clouds {
			continue
		}
		stops = append(stops, b)
	}
	return stops
}

// Title returns a display name for a body.
func Title(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
