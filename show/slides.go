package show

import (
	"github.com/teranos/orrery/camera"
	"github.com/teranos/orrery/config"
	"github.com/teranos/orrery/navigator"
	"github.com/teranos/orrery/scene"
)

var captions = map[string]string{
	"sun":     "A G-type main-sequence star holding 99.8% of the system's mass.",
	"mercury": "The smallest planet, with no moons and almost no atmosphere.",
	"venus":   "A runaway greenhouse hidden under sulphuric acid clouds.",
	"earth":   "The only world known to carry liquid water oceans on its surface.",
	"mars":    "A cold desert with the tallest volcano in the system.",
	"jupiter": "A gas giant whose Great Red Spot has raged for centuries.",
	"saturn":  "Rings of ice and rock spread wider than sixty Earths.",
	"uranus":  "An ice giant rolling on its side around the Sun.",
	"neptune": "The windiest planet, with storms faster than sound.",
	"pluto":   "A dwarf planet at the edge of the Kuiper belt.",
}

// Slides returns the deck configured in cfg, or one slide per tour stop
// of sc when none is configured.
func Slides(cfg *config.Config, sc *scene.Scene) []navigator.Slide {
	if len(cfg.Slides) > 0 {
		slides := make([]navigator.Slide, len(cfg.Slides))
		for i, s := range cfg.Slides {
			slides[i] = navigator.Slide{Title: s.Title, Body: s.Body}
		}
		return slides
	}

	stops := sc.Stops()
	slides := make([]navigator.Slide, len(stops))
	for i, b := range stops {
		slides[i] = navigator.Slide{Title: scene.Title(b.Name), Body: captions[b.Name]}
	}
	return slides
}

// SceneOptions maps cfg onto the default system's options.
func SceneOptions(cfg *config.Config) scene.Options {
	return scene.Options{
		BodySpin:    cfg.Spin.Body,
		CloudSpin:   cfg.Spin.Clouds,
		StarCount:   cfg.Stars.Count,
		StarSpread:  cfg.Stars.Spread,
		StarRadius:  cfg.Stars.Radius,
		StarSeed:    cfg.Stars.Seed,
		BodySpacing: cfg.Camera.Spacing,
	}
}

// Viewpoint returns the slide layout and the starting camera of cfg.
func Viewpoint(cfg *config.Config) (camera.Layout, camera.Camera) {
	layout := camera.Layout{Spacing: cfg.Camera.Spacing, Offset: cfg.Camera.Offset}
	cam := camera.Camera{
		X:      cfg.Camera.StartX,
		FOV:    cfg.Camera.FOV,
		Aspect: 16.0 / 9.0,
		Near:   cfg.Camera.Near,
		Far:    cfg.Camera.Far,
	}
	return layout, cam
}
