package navigator

// State is the presentation state of a slide relative to the active one.
type State int

const (
	// Upcoming slides come after the active slide.
	Upcoming State = iota
	// Current is the active slide. Exactly one slide is Current.
	Current
	// Passed slides come before the active slide.
	Passed
)

func (s State) String() string {
	switch s {
	case Upcoming:
		return "upcoming"
	case Current:
		return "current"
	case Passed:
		return "passed"
	default:
		return "unknown"
	}
}

// Class returns the presentation class a slide in this state carries.
// Upcoming slides carry none.
func (s State) Class() string {
	switch s {
	case Current:
		return "current"
	case Passed:
		return "passed"
	default:
		return ""
	}
}

// StateAt derives the state of slide i from the active index alone.
func StateAt(i, active int) State {
	switch {
	case i < active:
		return Passed
	case i == active:
		return Current
	default:
		return Upcoming
	}
}

// StateOf returns the state of slide i.
func (n *Navigator) StateOf(i int) State { return StateAt(i, n.active) }

// States returns the state of every slide, in order.
func (n *Navigator) States() []State {
	out := make([]State, len(n.slides))
	for i := range out {
		out[i] = StateAt(i, n.active)
	}
	return out
}
