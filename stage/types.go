// Package stage drives the show headlessly for end-to-end tests.
//
// A StageDirector runs a show model inside a Bubble Tea program with no
// terminal attached, feeds it key presses, clicks and resizes, and waits on
// or asserts the slide and camera state it reports.
//
// Basic usage:
//
//	model, _ := show.New(config.Default(), show.WithoutTextures())
//
//	result := stage.NewStageDirector(t, model).
//		WithTimeout(5 * time.Second).
//		Start().
//		PressRight().
//		WaitForSlide(1).
//		WaitForCondition("camera_settled").
//		AssertViewContains("Mercury").
//		Stop()
//
//	assert.True(t, result.Success)
//
// For captured frames:
//
//	stage.NewOperator(t, model, "film/").
//		Start().
//		CaptureTrackingShot("sun").
//		PressRightWithTrackingShot("mercury").
//		Stop()
package stage

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/orrery/show"
	"github.com/teranos/orrery/trip"
)

// modelUpdate represents a timestamped model state change with sequence tracking.
// A non-zero cue marks the update that answers a director cue.
type modelUpdate struct {
	model     Performer
	sequence  int64
	cue       int64
	timestamp time.Time
}

// cueMsg is sent after every interaction. It reaches the model wrapper only
// after the interaction itself has been handled.
type cueMsg struct{ id int64 }

// Performer is a show model the director can inspect.
//
// Required methods:
//   - ActiveSlide() returns the index of the current slide
//   - SlideCount() returns the number of slides
//   - CameraX() returns the camera position of the last frame
//   - CheckCondition() enables custom wait conditions and assertions
type Performer interface {
	tea.Model
	ActiveSlide() int
	SlideCount() int
	CameraX() float64
	CheckCondition(condition string) bool
}

// Clickable performers expose where their controls are drawn.
type Clickable interface {
	ControlAt(c show.Control) (x, y int, ok bool)
}

// Filmable performers expose the rendered scene for frame capture.
type Filmable interface {
	Frame() *image.RGBA
	Caption() []string
}

// StageDirector orchestrates headless runs of a show.
//
// Errors are collected and returned in the final StageResult rather than
// immediately failing the test; falls are also reported through t.Error.
type StageDirector struct {
	t       testing.TB
	model   Performer
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	interactions []StageAction
	snapshots    []StageSnapshot

	tripHandler *trip.Handler
	lastTrip    *trip.Trip
	failed      bool

	updateMu sync.Mutex

	modelChan        chan modelUpdate
	latestModel      Performer
	modelMu          sync.RWMutex
	updateSeq        int64 // atomic counter for update ordering
	lastProcessedSeq int64 // atomic
	lastCue          int64 // atomic, highest cue answered
	cueSeq           int64 // atomic, highest cue sent
	droppedUpdates   int64 // atomic

	updatesSent      int64 // atomic
	updatesProcessed int64 // atomic
	bufferOverflows  int64 // atomic
	sequenceGaps     int64 // atomic
	duplicateUpdates int64 // atomic

	config  StageConfig
	started bool
}

// stageModelWrapper wraps the performer to sync updates with the director.
type stageModelWrapper struct {
	Performer
	director *StageDirector
}

// StageAction records a single interaction with the show.
type StageAction struct {
	Timestamp time.Time
	Type      string      // "keypress", "click", "resize", "wait", "assertion", "tracking_shot"
	Details   interface{} // Specific interaction details
}

// StageSnapshot captures the state of the show at one moment.
type StageSnapshot struct {
	Timestamp time.Time
	View      string
	Slide     int
	CameraX   float64
}

// StageResult contains the results of a stage session.
type StageResult struct {
	Actions      []StageAction
	Snapshots    []StageSnapshot
	Success      bool
	Duration     time.Duration
	ErrorMessage string
	Error        error
	ErrorDetails string
	TripReport   string
}

// newStageTrip creates a new trip for stage errors.
func newStageTrip(errorType, message string, context map[string]interface{}) *trip.Trip {
	tripContext := make(trip.Context)
	for k, v := range context {
		tripContext[k] = v
	}
	return trip.NewTrip(errorType, message, tripContext)
}

// StageConfig configures a StageDirector.
type StageConfig struct {
	// Timeout for waits and for the whole session
	Timeout time.Duration
	// KeyDelay is slept after every interaction (0 = no delay)
	KeyDelay time.Duration
	// CaptureViews enables automatic snapshots
	CaptureViews bool
	// SettleTimeout caps how long an interaction waits for its cue
	SettleTimeout time.Duration
}

// DefaultStageConfig returns a StageConfig with sensible defaults.
func DefaultStageConfig() StageConfig {
	return StageConfig{
		Timeout:       30 * time.Second,
		KeyDelay:      0,
		CaptureViews:  true,
		SettleTimeout: time.Second,
	}
}

// NewStageDirector creates a director with default configuration. Call
// Start before interacting and Stop to collect results.
func NewStageDirector(t testing.TB, model Performer) *StageDirector {
	return NewStageDirectorWithConfig(t, model, DefaultStageConfig())
}

// NewStageDirectorWithConfig creates a director with custom configuration.
func NewStageDirectorWithConfig(t testing.TB, model Performer, config StageConfig) *StageDirector {
	if config.SettleTimeout <= 0 {
		config.SettleTimeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)

	director := &StageDirector{
		t:            t,
		model:        model,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		interactions: make([]StageAction, 0),
		snapshots:    make([]StageSnapshot, 0),
		config:       config,
		modelChan:    make(chan modelUpdate, 64),
		latestModel:  model,
		tripHandler:  trip.NewHandler("stage_director", trip.DefaultPolicy(), zaptest.NewLogger(t)),
	}

	return director
}
