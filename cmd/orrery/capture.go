package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/orrery/camera"
	"github.com/teranos/orrery/config"
	"github.com/teranos/orrery/navigator"
	"github.com/teranos/orrery/render"
	"github.com/teranos/orrery/report"
	"github.com/teranos/orrery/scene"
	"github.com/teranos/orrery/show"
	"github.com/teranos/orrery/trip"
)

var (
	captureOut    string
	captureWidth  int
	captureHeight int
	captureReport bool

	initForce bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Render one PNG per slide",
	Long: `Walks the deck from the first slide to the last without a terminal and
writes each settled frame, captioned with the slide text, to the output
directory.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := config.Save(config.Default(), configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
		return nil
	},
}

func runCapture(cmd *cobra.Command, args []string) error {
	if captureWidth <= 0 || captureHeight <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", captureWidth, captureHeight)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sc := scene.DefaultSystem(show.SceneOptions(cfg))
	handler := trip.NewHandler("capture", nil, logger)
	scene.NewLoader(cfg.Assets.Dir, handler, logger).LoadAll(sc).Apply(sc)

	layout, cam := show.Viewpoint(cfg)
	cam.SetAspect(float64(captureWidth), float64(captureHeight))
	rig := camera.NewRig(layout, cam)
	rig.Jump(0)

	nav, err := navigator.New(show.Slides(cfg, sc),
		navigator.WithMover(navigator.MoverFunc(func(c navigator.MoveCommand) {
			rig.Jump(c.TargetIndex)
		})))
	if err != nil {
		return err
	}

	surface := render.NewSurface(captureWidth, captureHeight)
	film := render.NewFilm(render.DefaultFilmConfig(captureOut))
	var rep *report.Report
	if captureReport {
		rep = report.New("capture")
		rep.Metadata["assets"] = cfg.Assets.Dir
		rep.Metadata["size"] = fmt.Sprintf("%dx%d", captureWidth, captureHeight)
	}

	for {
		slide := nav.Current()
		img := surface.Draw(sc, rig.Camera)
		film.Caption(img, []string{
			fmt.Sprintf("%d/%d  %s", nav.Active()+1, nav.Len(), slide.Title),
			slide.Body,
		})
		path, err := film.CaptureFrame(img, slug(slide.Title, nav.Active()))
		if err != nil {
			return err
		}
		logger.Info("frame captured",
			zap.Int("slide", nav.Active()),
			zap.Float64("camera_x", rig.Camera.X),
			zap.String("path", path))
		if rep != nil {
			if err := rep.AddFrame(path); err != nil {
				return err
			}
			rep.AddAction(time.Now(), "frame", path)
		}

		if _, ok := nav.Advance(); !ok {
			break
		}
	}

	if handler.HasStumbles() {
		logger.Warn("captured with missing textures", zap.String("summary", handler.Summary()))
	}
	if !handler.ShouldContinue() {
		return errors.New(handler.Summary())
	}
	if rep != nil {
		rep.Trips = handler.DetailedReport()
		path, err := report.NewWriter(captureOut).Write(rep)
		if err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", path))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "captured %d frames to %s\n", film.Frames(), captureOut)
	return nil
}

// slug turns a slide title into a file name fragment.
func slug(title string, i int) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, title)
	if s = strings.Trim(s, "-"); s == "" {
		return fmt.Sprintf("slide%d", i)
	}
	return s
}
