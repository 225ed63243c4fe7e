package stage

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teranos/orrery/show"
	"github.com/teranos/orrery/trip"
)

// PressRight simulates the right arrow key, which advances the deck.
func (d *StageDirector) PressRight() *StageDirector {
	d.sendMessage(tea.KeyMsg{Type: tea.KeyRight})
	d.recordStageAction("keypress", "right")
	return d
}

// PressLeft simulates the left arrow key, which retreats the deck.
func (d *StageDirector) PressLeft() *StageDirector {
	d.sendMessage(tea.KeyMsg{Type: tea.KeyLeft})
	d.recordStageAction("keypress", "left")
	return d
}

// PressKey simulates any key. Named keys use their tea.KeyType; anything
// else is sent as runes.
//
// Example:
//
//	director.PressKey(tea.KeyMsg{Type: tea.KeyUp})
func (d *StageDirector) PressKey(msg tea.KeyMsg) *StageDirector {
	d.sendMessage(msg)
	d.recordStageAction("keypress", msg.String())
	return d
}

// Type sends text one rune at a time.
func (d *StageDirector) Type(text string) *StageDirector {
	for _, r := range text {
		d.PressKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return d
}

// ClickControl left-clicks a HUD control of a Clickable performer.
func (d *StageDirector) ClickControl(c show.Control) *StageDirector {
	clickable, ok := d.getCurrent().(Clickable)
	if !ok {
		d.recordTrip(newStageTrip(trip.TypeAssertion, "Performer has no clickable controls", map[string]interface{}{
			"control":    string(c),
			"model_type": fmt.Sprintf("%T", d.model),
		}))
		return d
	}
	x, y, ok := clickable.ControlAt(c)
	if !ok {
		d.recordTrip(newStageTrip(trip.TypeAssertion, "Unknown control: "+string(c), nil))
		return d
	}
	return d.Click(x, y)
}

// Click sends a left-button press at a cell.
func (d *StageDirector) Click(x, y int) *StageDirector {
	d.sendMessage(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	d.recordStageAction("click", fmt.Sprintf("%d,%d", x, y))
	return d
}

// Resize simulates a terminal resize.
func (d *StageDirector) Resize(width, height int) *StageDirector {
	d.sendMessage(tea.WindowSizeMsg{Width: width, Height: height})
	d.recordStageAction("resize", fmt.Sprintf("%dx%d", width, height))
	return d
}

// Wait pauses the stage, for example to let a camera move run.
func (d *StageDirector) Wait(duration time.Duration) *StageDirector {
	time.Sleep(duration)
	d.recordStageAction("wait", duration)
	d.captureSnapshot("wait")
	return d
}

// AssertSlide verifies the active slide.
func (d *StageDirector) AssertSlide(expected int) *StageDirector {
	actual := d.getCurrent().ActiveSlide()
	if actual != expected {
		d.recordTrip(newStageTrip(trip.TypeAssertion, fmt.Sprintf("Expected slide %d, got %d", expected, actual), map[string]interface{}{
			"expected": expected,
			"actual":   actual,
		}))
		return d
	}
	d.recordStageAction("assertion", fmt.Sprintf("slide=%d", expected))
	return d
}

// AssertViewContains verifies that the view contains text.
func (d *StageDirector) AssertViewContains(text string) *StageDirector {
	view := d.getCurrentView()
	if !strings.Contains(view, text) {
		d.recordTrip(newStageTrip(trip.TypeAssertion, "View does not contain expected text: "+text, map[string]interface{}{
			"expected":    text,
			"actual_view": d.truncateString(view, 200),
		}))
		return d
	}
	d.recordStageAction("assertion", "contains="+text)
	return d
}

// AssertCondition verifies a named performer condition.
func (d *StageDirector) AssertCondition(condition string) *StageDirector {
	if !d.getCurrent().CheckCondition(condition) {
		d.recordTrip(newStageTrip(trip.TypeAssertion, "Condition does not hold: "+condition, map[string]interface{}{
			"condition": condition,
			"slide":     d.getCurrent().ActiveSlide(),
		}))
		return d
	}
	d.recordStageAction("assertion", "condition="+condition)
	return d
}

// sendMessage delivers msg and waits until the performer has handled it.
func (d *StageDirector) sendMessage(msg tea.Msg) {
	if d.program == nil || d.HasFailed() {
		return
	}
	d.t.Logf("[TRACE] sendMessage: type=%T", msg)

	sendStart := time.Now()
	d.program.Send(msg)
	id := d.cue()
	if !d.waitForCue(id, d.config.SettleTimeout) {
		d.t.Logf("[TRACE] sendMessage: no cue after %v", time.Since(sendStart))
	}
	if d.config.KeyDelay > 0 {
		time.Sleep(d.config.KeyDelay)
	}
	d.captureSnapshot("interaction")
}

// recordStageAction logs an interaction step.
func (d *StageDirector) recordStageAction(actionType string, details interface{}) {
	d.updateMu.Lock()
	defer d.updateMu.Unlock()
	d.interactions = append(d.interactions, StageAction{
		Timestamp: time.Now(),
		Type:      actionType,
		Details:   details,
	})
}

// captureSnapshot captures the current state of the show.
func (d *StageDirector) captureSnapshot(reason string) {
	if !d.config.CaptureViews {
		return
	}

	current := d.getCurrent()
	snapshot := StageSnapshot{
		Timestamp: time.Now(),
		View:      d.getCurrentView(),
		Slide:     current.ActiveSlide(),
		CameraX:   current.CameraX(),
	}

	d.updateMu.Lock()
	d.snapshots = append(d.snapshots, snapshot)
	d.updateMu.Unlock()
}

// recordTrip records a trip and marks the stage failed when it cannot be
// recovered from.
func (d *StageDirector) recordTrip(t *trip.Trip) {
	d.tripHandler.Record(t)

	d.updateMu.Lock()
	d.lastTrip = t
	if !t.CanRecover() {
		d.failed = true
	}
	d.updateMu.Unlock()

	if d.t != nil {
		d.t.Helper()
		if t.IsFall() {
			d.t.Error(t)
		} else {
			d.t.Log(t.DetailedString())
		}
	}
}

// HasFailed returns true if the stage has encountered a non-recoverable trip.
func (d *StageDirector) HasFailed() bool {
	d.updateMu.Lock()
	failed := d.failed
	d.updateMu.Unlock()
	return failed || !d.tripHandler.ShouldContinue()
}

// GetError returns the last trip.
func (d *StageDirector) GetError() error {
	d.updateMu.Lock()
	defer d.updateMu.Unlock()
	return d.getError()
}

// GetTripHandler returns the trip handler for detailed error analysis.
func (d *StageDirector) GetTripHandler() *trip.Handler {
	return d.tripHandler
}
