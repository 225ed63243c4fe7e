package stage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teranos/orrery/trip"
)

// syncModelUpdates processes model updates in order with duplicate detection.
func (d *StageDirector) syncModelUpdates(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.t.Logf("🚨 Model sync goroutine panicked: %v", r)
		}
	}()

	for {
		select {
		case update := <-d.modelChan:
			currentSeq := atomic.LoadInt64(&d.lastProcessedSeq)

			if update.sequence <= currentSeq {
				atomic.AddInt64(&d.duplicateUpdates, 1)
				continue
			}
			if update.sequence > currentSeq+1 {
				atomic.AddInt64(&d.sequenceGaps, 1)
			}

			d.modelMu.Lock()
			d.latestModel = update.model
			atomic.StoreInt64(&d.lastProcessedSeq, update.sequence)
			atomic.AddInt64(&d.updatesProcessed, 1)
			if update.cue > 0 {
				atomic.StoreInt64(&d.lastCue, update.cue)
			}
			d.modelMu.Unlock()

		case <-ctx.Done():
			return
		}
	}
}

// WithTimeout sets a custom timeout for the session.
// Must be called before Start.
func (d *StageDirector) WithTimeout(timeout time.Duration) *StageDirector {
	if d.started {
		d.t.Logf("⚠️ Cannot change timeout after director has started - ignoring WithTimeout(%v)", timeout)
		return d
	}

	if d.cancel != nil {
		d.cancel()
	}
	d.ctx, d.cancel = context.WithTimeout(context.Background(), timeout)
	d.config.Timeout = timeout
	return d
}

// WithViewCapture enables or disables automatic snapshots.
// Must be called before Start.
func (d *StageDirector) WithViewCapture(enabled bool) *StageDirector {
	if d.started {
		d.t.Logf("⚠️ Cannot change view capture after director has started - ignoring WithViewCapture(%v)", enabled)
		return d
	}
	d.config.CaptureViews = enabled
	return d
}

// Start runs the show in a headless program and waits for its first view.
func (d *StageDirector) Start() *StageDirector {
	if d.started {
		d.t.Logf("⚠️ StageDirector already started")
		return d
	}

	d.t.Logf("[TRACE] Start: Creating headless bubbletea program...")
	go d.syncModelUpdates(d.ctx)

	wrappedModel := stageModelWrapper{
		Performer: d.model,
		director:  d,
	}

	d.program = tea.NewProgram(wrappedModel,
		tea.WithContext(d.ctx),
		tea.WithoutRenderer(),
		tea.WithInput(nil),
		tea.WithOutput(nil),
		tea.WithoutSignalHandler(),
	)

	go func() {
		defer close(d.done)
		defer func() {
			if r := recover(); r != nil {
				d.t.Logf("🚨 Program goroutine panicked: %v", r)
			}
		}()

		if _, err := d.program.Run(); err != nil {
			d.t.Logf("[TRACE] Start: program.Run() returned with error=%v", err)
		}
	}()

	if err := d.waitForProgramReady(); err != nil {
		d.recordTrip(newStageTrip(trip.TypeSystem, err.Error(), map[string]interface{}{
			"error": err.Error(),
		}).WithSeverity(trip.Fall))
		return d
	}

	d.started = true
	d.captureSnapshot("start")

	d.t.Logf("[TRACE] Start: program ready with %d slides", d.getCurrent().SlideCount())
	return d
}

// Stop ends the session and returns the results.
func (d *StageDirector) Stop() *StageResult {
	startTime := time.Now()

	if d.started {
		d.captureSnapshot("stop")
	}

	if d.program != nil {
		d.program.Quit()
		select {
		case <-d.done:
		case <-time.After(d.config.SettleTimeout):
			d.t.Logf("[TRACE] Stop: program did not exit within %v", d.config.SettleTimeout)
		}
	}
	if d.cancel != nil {
		d.cancel()
	}

	duration := time.Since(startTime)

	d.updateMu.Lock()
	defer d.updateMu.Unlock()
	success := !d.failed && (d.lastTrip == nil)

	var errorDetails strings.Builder
	var tripReport string

	if d.lastTrip != nil {
		tripReport = d.tripHandler.DetailedReport()

		errorDetails.WriteString(fmt.Sprintf("Trip Type: %s\n", d.lastTrip.Type))
		errorDetails.WriteString(fmt.Sprintf("Error: %s\n", d.lastTrip.Message))
		errorDetails.WriteString(fmt.Sprintf("Timestamp: %s\n", d.lastTrip.Timestamp.Format(time.RFC3339)))

		if len(d.lastTrip.Context) > 0 {
			keys := make([]string, 0, len(d.lastTrip.Context))
			for key := range d.lastTrip.Context {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			errorDetails.WriteString("Context:\n")
			for _, key := range keys {
				errorDetails.WriteString(fmt.Sprintf("  %s: %v\n", key, d.lastTrip.Context[key]))
			}
		}

		if d.HasDroppedUpdates() {
			errorDetails.WriteString("\nSynchronization Issues:\n")
			stats := d.GetSynchronizationStats()
			for _, key := range []string{"updates_dropped", "buffer_overflows", "sequence_gaps"} {
				if stats[key] > 0 {
					errorDetails.WriteString(fmt.Sprintf("  %s: %d\n", key, stats[key]))
				}
			}
		}
	}

	return &StageResult{
		Actions:      d.interactions,
		Snapshots:    d.snapshots,
		Success:      success,
		Duration:     duration,
		ErrorMessage: d.getErrorMessage(),
		Error:        d.getError(),
		ErrorDetails: errorDetails.String(),
		TripReport:   tripReport,
	}
}

// waitFor polls check until it holds or the session timeout passes. On
// timeout it records a trip built by onTimeout.
func (d *StageDirector) waitFor(check func(Performer) bool, onTimeout func(Performer) map[string]interface{}, what string) *StageDirector {
	if d.HasFailed() {
		return d
	}

	timeout := time.NewTimer(d.config.Timeout)
	defer timeout.Stop()

	for {
		current := d.getCurrent()
		if check(current) {
			d.recordStageAction("wait", what)
			return d
		}
		select {
		case <-timeout.C:
		case <-d.ctx.Done():
		case <-time.After(5 * time.Millisecond):
			continue
		}
		d.recordTrip(newStageTrip(trip.TypeAssertion, "Timeout waiting for "+what, onTimeout(current)))
		return d
	}
}

// WaitForSlide waits for the show to reach slide index.
func (d *StageDirector) WaitForSlide(index int) *StageDirector {
	return d.waitFor(
		func(p Performer) bool { return p.ActiveSlide() == index },
		func(p Performer) map[string]interface{} {
			return map[string]interface{}{"expected_slide": index, "current_slide": p.ActiveSlide()}
		},
		fmt.Sprintf("slide %d", index))
}

// WaitForCondition waits for a named performer condition, such as
// "camera_settled" or "textures_loaded".
func (d *StageDirector) WaitForCondition(condition string) *StageDirector {
	return d.waitFor(
		func(p Performer) bool { return p.CheckCondition(condition) },
		func(p Performer) map[string]interface{} {
			return map[string]interface{}{"condition": condition, "current_slide": p.ActiveSlide()}
		},
		"condition "+condition)
}

// WaitForText waits for text to appear in the view.
func (d *StageDirector) WaitForText(text string) *StageDirector {
	return d.waitFor(
		func(p Performer) bool { return strings.Contains(p.View(), text) },
		func(p Performer) map[string]interface{} {
			return map[string]interface{}{"expected_text": text, "current_view": d.truncateString(p.View(), 200)}
		},
		fmt.Sprintf("text %q", text))
}

// waitForProgramReady waits for the program to produce its first update.
func (d *StageDirector) waitForProgramReady() error {
	d.t.Logf("[TRACE] waitForProgramReady: Starting wait with timeout=%v", d.config.Timeout)

	id := d.cue()
	if !d.waitForCue(id, d.config.Timeout) {
		return fmt.Errorf("program never became ready")
	}
	if len(d.getCurrent().View()) == 0 {
		return fmt.Errorf("program rendered an empty view")
	}
	return nil
}

// cue sends a cue message and returns its id.
func (d *StageDirector) cue() int64 {
	id := atomic.AddInt64(&d.cueSeq, 1)
	go d.program.Send(cueMsg{id: id})
	return id
}

// waitForCue blocks until the performer has answered cue id.
func (d *StageDirector) waitForCue(id int64, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for atomic.LoadInt64(&d.lastCue) < id {
		select {
		case <-timer.C:
			d.t.Logf("[TRACE] waitForCue: TIMEOUT waiting for cue %d", id)
			return false
		case <-d.ctx.Done():
			return false
		case <-d.done:
			return false
		case <-time.After(time.Millisecond):
		}
	}
	return true
}

// getCurrent returns the latest performer state.
func (d *StageDirector) getCurrent() Performer {
	d.modelMu.RLock()
	defer d.modelMu.RUnlock()
	return d.latestModel
}

// getCurrentView safely retrieves the current view content.
func (d *StageDirector) getCurrentView() string {
	var view string
	func() {
		defer func() {
			if r := recover(); r != nil {
				view = fmt.Sprintf("ERROR: Could not get view due to panic: %v", r)
			}
		}()
		view = d.getCurrent().View()
	}()
	return view
}

// Current returns the latest performer state for direct inspection.
func (d *StageDirector) Current() Performer { return d.getCurrent() }

// GetLatestSnapshot returns the most recent snapshot.
func (d *StageDirector) GetLatestSnapshot() StageSnapshot {
	d.updateMu.Lock()
	defer d.updateMu.Unlock()
	if len(d.snapshots) == 0 {
		return StageSnapshot{}
	}
	return d.snapshots[len(d.snapshots)-1]
}

// GetStageActionCount returns the number of recorded interactions.
func (d *StageDirector) GetStageActionCount() int {
	d.updateMu.Lock()
	defer d.updateMu.Unlock()
	return len(d.interactions)
}

// getErrorMessage must be called with updateMu held.
func (d *StageDirector) getErrorMessage() string {
	if d.lastTrip != nil {
		return fmt.Sprintf("[%s] %s", strings.ToLower(d.lastTrip.Type), d.lastTrip.Message)
	}
	return ""
}

// getError must be called with updateMu held.
func (d *StageDirector) getError() error {
	if d.lastTrip != nil {
		return d.lastTrip
	}
	return nil
}
