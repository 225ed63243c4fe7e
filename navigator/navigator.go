// Package navigator implements the slide deck state machine that drives the
// camera.
//
// A Navigator holds a fixed, ordered list of slides and exactly one active
// index. Advance and Retreat move the index by one and emit a MoveCommand for
// the camera; at the ends of the deck they are silent no-ops.
//
// Basic usage:
//
//	nav, err := navigator.New(slides, navigator.WithMover(rig))
//	if err != nil {
//		return err
//	}
//	nav.Advance() // rig.MoveCamera(MoveCommand{TargetIndex: 1, ...})
package navigator

import (
	"errors"
	"time"
)

// DefaultMoveDuration is how long a camera move takes unless configured.
const DefaultMoveDuration = 500 * time.Millisecond

// ErrNoSlides is returned by New when the deck is empty.
var ErrNoSlides = errors.New("navigator: at least one slide is required")

// Slide is one navigable panel.
type Slide struct {
	Index int
	Title string
	Body  string
}

// MoveCommand asks the camera to travel to the position of a slide.
// It is consumed once and not retained.
type MoveCommand struct {
	TargetIndex int
	Duration    time.Duration
}

// Mover consumes camera move commands.
type Mover interface {
	MoveCamera(cmd MoveCommand)
}

// MoverFunc adapts a function to the Mover interface.
type MoverFunc func(cmd MoveCommand)

// MoveCamera calls f(cmd).
func (f MoverFunc) MoveCamera(cmd MoveCommand) { f(cmd) }

// Option configures a Navigator.
type Option func(*Navigator)

// WithMover delivers every emitted command to m.
func WithMover(m Mover) Option {
	return func(n *Navigator) { n.mover = m }
}

// WithDuration sets the duration carried by emitted commands.
func WithDuration(d time.Duration) Option {
	return func(n *Navigator) {
		if d >= 0 {
			n.duration = d
		}
	}
}

// Navigator is the slide state machine. States are the values of the active
// index; from i, Advance goes to i+1 unless i is the last slide, and Retreat
// goes to i-1 unless i is zero.
//
// A Navigator is not safe for concurrent use. It is meant to be owned by the
// single event loop that also handles input and frames.
type Navigator struct {
	slides   []Slide
	active   int
	duration time.Duration
	mover    Mover
}

// New creates a Navigator positioned on the first slide. Slides are
// re-indexed 0..N-1 in the order given.
func New(slides []Slide, opts ...Option) (*Navigator, error) {
	if len(slides) == 0 {
		return nil, ErrNoSlides
	}

	owned := make([]Slide, len(slides))
	for i, s := range slides {
		s.Index = i
		owned[i] = s
	}

	n := &Navigator{
		slides:   owned,
		duration: DefaultMoveDuration,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Advance moves to the next slide. It reports false, and emits nothing, when
// the last slide is already active.
func (n *Navigator) Advance() (MoveCommand, bool) {
	if n.active >= len(n.slides)-1 {
		return MoveCommand{}, false
	}
	n.active++
	return n.emit(), true
}

// Retreat moves to the previous slide. It reports false, and emits nothing,
// when the first slide is already active.
func (n *Navigator) Retreat() (MoveCommand, bool) {
	if n.active <= 0 {
		return MoveCommand{}, false
	}
	n.active--
	return n.emit(), true
}

func (n *Navigator) emit() MoveCommand {
	cmd := MoveCommand{TargetIndex: n.active, Duration: n.duration}
	if n.mover != nil {
		n.mover.MoveCamera(cmd)
	}
	return cmd
}

// Active returns the active slide index.
func (n *Navigator) Active() int { return n.active }

// Len returns the number of slides.
func (n *Navigator) Len() int { return len(n.slides) }

// Current returns the active slide.
func (n *Navigator) Current() Slide { return n.slides[n.active] }

// Slide returns the slide at index i. It panics if i is out of range.
func (n *Navigator) Slide(i int) Slide { return n.slides[i] }

// Slides returns a copy of the deck.
func (n *Navigator) Slides() []Slide {
	out := make([]Slide, len(n.slides))
	copy(out, n.slides)
	return out
}

// Clone returns an independent copy sharing no mutable state with n. The
// mover is not carried over.
func (n *Navigator) Clone() *Navigator {
	c := *n
	c.slides = n.Slides()
	c.mover = nil
	return &c
}
