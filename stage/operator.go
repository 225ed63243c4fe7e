package stage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
	"time"

	"github.com/teranos/orrery/render"
	"github.com/teranos/orrery/report"
	"github.com/teranos/orrery/trip"
)

// Operator extends StageDirector with frame capture: every tracking shot
// writes the rendered scene with its HUD caption to a PNG file.
type Operator struct {
	*StageDirector
	film   *render.Film
	frames []string
}

// NewOperator creates a director that captures tracking shots into outputDir.
func NewOperator(t testing.TB, model Performer, outputDir string) *Operator {
	return &Operator{
		StageDirector: NewStageDirector(t, model),
		film:          render.NewFilm(render.DefaultFilmConfig(outputDir)),
	}
}

// WithFilmConfig customizes the look of captured frames.
func (op *Operator) WithFilmConfig(config render.FilmConfig) *Operator {
	op.film = render.NewFilm(config)
	return op
}

// WithTimeout wraps the base WithTimeout method to return *Operator.
func (op *Operator) WithTimeout(timeout time.Duration) *Operator {
	op.StageDirector.WithTimeout(timeout)
	return op
}

// Start wraps the base Start method to return *Operator.
func (op *Operator) Start() *Operator {
	op.StageDirector.Start()
	return op
}

// WaitForSlide wraps the base method to return *Operator.
func (op *Operator) WaitForSlide(index int) *Operator {
	op.StageDirector.WaitForSlide(index)
	return op
}

// WaitForCondition wraps the base method to return *Operator.
func (op *Operator) WaitForCondition(condition string) *Operator {
	op.StageDirector.WaitForCondition(condition)
	return op
}

// Frames returns the paths of every captured frame, in order.
func (op *Operator) Frames() []string { return op.frames }

// CaptureTrackingShot writes the current frame to the film directory.
// Performers that are not Filmable are captured as their text view.
func (op *Operator) CaptureTrackingShot(label string) *Operator {
	var frame *image.RGBA
	var caption []string

	if f, ok := op.getCurrent().(Filmable); ok && f.Frame() != nil && !f.Frame().Bounds().Empty() {
		src := f.Frame()
		frame = image.NewRGBA(src.Bounds())
		draw.Draw(frame, frame.Bounds(), src, src.Bounds().Min, draw.Src)
		caption = f.Caption()
	} else {
		caption = strings.Split(op.getCurrentView(), "\n")
		frame = image.NewRGBA(image.Rect(0, 0, 640, 16*len(caption)+8))
		draw.Draw(frame, frame.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	op.film.Caption(frame, caption)

	path, err := op.film.CaptureFrame(frame, label)
	if err != nil {
		op.recordTrip(newStageTrip(trip.TypeRender, "Failed to capture frame", map[string]interface{}{
			"label": label,
		}).WithSeverity(trip.Stumble).WithCause(err))
		return op
	}

	op.frames = append(op.frames, path)
	op.recordStageAction("tracking_shot", path)
	return op
}

// PressRightWithTrackingShot advances, waits for the camera and captures.
func (op *Operator) PressRightWithTrackingShot(label string) *Operator {
	op.PressRight()
	op.StageDirector.WaitForCondition("camera_settled")
	return op.CaptureTrackingShot(label)
}

// PressLeftWithTrackingShot retreats, waits for the camera and captures.
func (op *Operator) PressLeftWithTrackingShot(label string) *Operator {
	op.PressLeft()
	op.StageDirector.WaitForCondition("camera_settled")
	return op.CaptureTrackingShot(label)
}

// Report builds an HTML report of result with every captured frame and the
// snapshot views. Frames that can no longer be read are left out and
// returned as an error alongside the report.
func (op *Operator) Report(name string, result *StageResult) (*report.Report, error) {
	r := report.New(name)
	r.Success = result.Success
	r.Duration = result.Duration
	r.Error = result.ErrorMessage
	r.Trips = result.TripReport
	r.Metadata["frames"] = fmt.Sprintf("%d", len(op.frames))
	r.Metadata["snapshots"] = fmt.Sprintf("%d", len(result.Snapshots))

	for _, s := range result.Snapshots {
		r.AddView(s.Timestamp, s.Slide, s.CameraX, s.View)
	}
	for _, a := range result.Actions {
		r.AddAction(a.Timestamp, a.Type, a.Details)
	}

	var errs []error
	for _, path := range op.frames {
		if err := r.AddFrame(path); err != nil {
			errs = append(errs, err)
		}
	}
	return r, errors.Join(errs...)
}
