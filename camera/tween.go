package camera

import "time"

// Ease maps linear progress p in [0,1] to eased progress.
type Ease func(p float64) float64

// Linear is the identity easing.
func Linear(p float64) float64 { return p }

// Power1Out decelerates quadratically towards the target.
func Power1Out(p float64) float64 {
	q := 1 - p
	return 1 - q*q
}

// Tween interpolates one value towards a target over a fixed duration.
// The zero Tween is idle and holds the value 0.
type Tween struct {
	from     float64
	to       float64
	start    time.Time
	duration time.Duration
	ease     Ease
}

// NewTween returns an idle tween resting at v.
func NewTween(v float64, ease Ease) Tween {
	if ease == nil {
		ease = Power1Out
	}
	return Tween{from: v, to: v, ease: ease}
}

// Start begins a move from one value to another at now.
func (tw *Tween) Start(from, to float64, d time.Duration, now time.Time) {
	tw.from = from
	tw.to = to
	tw.start = now
	tw.duration = d
}

// Retarget starts a new move to `to` from wherever the tween is at now.
// An in-flight move is superseded without a jump.
func (tw *Tween) Retarget(to float64, d time.Duration, now time.Time) {
	tw.Start(tw.Value(now), to, d, now)
}

// Value returns the interpolated value at now.
func (tw *Tween) Value(now time.Time) float64 {
	p := tw.progress(now)
	if p >= 1 {
		return tw.to
	}
	ease := tw.ease
	if ease == nil {
		ease = Power1Out
	}
	return tw.from + (tw.to-tw.from)*ease(p)
}

// Done reports whether the tween has reached its target at now.
func (tw *Tween) Done(now time.Time) bool { return tw.progress(now) >= 1 }

// Target returns the value the tween is heading to.
func (tw *Tween) Target() float64 { return tw.to }

func (tw *Tween) progress(now time.Time) float64 {
	if tw.duration <= 0 {
		return 1
	}
	elapsed := now.Sub(tw.start)
	if elapsed <= 0 {
		return 0
	}
	p := float64(elapsed) / float64(tw.duration)
	if p > 1 {
		return 1
	}
	return p
}
