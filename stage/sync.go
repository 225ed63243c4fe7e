package stage

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teranos/orrery/trip"
)

// Update intercepts model updates to keep the director in sync.
func (w stageModelWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			if w.director != nil {
				w.director.handleModelPanic(r, msg)
			}
		}
	}()

	if cue, ok := msg.(cueMsg); ok {
		w.director.publish(w.Performer, cue.id)
		return w, nil
	}

	newModel, cmd := w.Performer.Update(msg)

	if newModel == nil {
		w.director.handleInvalidModelState("Update returned nil model", msg)
		return w, cmd
	}

	performer, ok := newModel.(Performer)
	if !ok {
		w.director.handleInvalidModelState(fmt.Sprintf("Update returned %T, not a Performer", newModel), msg)
		return w, cmd
	}

	w.director.publish(performer, 0)
	return stageModelWrapper{
		Performer: performer,
		director:  w.director,
	}, cmd
}

// publish sends an update to the sync goroutine without blocking.
func (d *StageDirector) publish(model Performer, cue int64) {
	if d == nil || d.modelChan == nil {
		return
	}
	seq := atomic.AddInt64(&d.updateSeq, 1)

	select {
	case d.modelChan <- modelUpdate{model: model, sequence: seq, cue: cue, timestamp: time.Now()}:
		atomic.AddInt64(&d.updatesSent, 1)
	default:
		atomic.AddInt64(&d.bufferOverflows, 1)
		atomic.AddInt64(&d.droppedUpdates, 1)
	}
}

// GetSynchronizationStats returns synchronization counters.
func (d *StageDirector) GetSynchronizationStats() map[string]int64 {
	return map[string]int64{
		"updates_generated": atomic.LoadInt64(&d.updateSeq),
		"updates_sent":      atomic.LoadInt64(&d.updatesSent),
		"updates_processed": atomic.LoadInt64(&d.updatesProcessed),
		"buffer_overflows":  atomic.LoadInt64(&d.bufferOverflows),
		"sequence_gaps":     atomic.LoadInt64(&d.sequenceGaps),
		"duplicate_updates": atomic.LoadInt64(&d.duplicateUpdates),
		"updates_dropped":   atomic.LoadInt64(&d.droppedUpdates),
		"cues_sent":         atomic.LoadInt64(&d.cueSeq),
		"cues_answered":     atomic.LoadInt64(&d.lastCue),
		"buffer_length":     int64(len(d.modelChan)),
		"buffer_capacity":   int64(cap(d.modelChan)),
	}
}

// HasDroppedUpdates returns true if any updates have been dropped.
func (d *StageDirector) HasDroppedUpdates() bool {
	return atomic.LoadInt64(&d.droppedUpdates) > 0 ||
		atomic.LoadInt64(&d.bufferOverflows) > 0 ||
		atomic.LoadInt64(&d.sequenceGaps) > 0
}

// GetBufferUtilization returns current buffer usage as a percentage.
func (d *StageDirector) GetBufferUtilization() float64 {
	if cap(d.modelChan) == 0 {
		return 0.0
	}
	return float64(len(d.modelChan)) / float64(cap(d.modelChan)) * 100.0
}

func (d *StageDirector) truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// handleModelPanic fails the stage when the performer panics in Update.
func (d *StageDirector) handleModelPanic(panicValue interface{}, msg tea.Msg) {
	d.t.Logf("🚨 FAIL-FAST: Model panic detected: %v", panicValue)

	d.captureErrorSnapshot("model_panic", fmt.Sprintf("Panic: %v", panicValue))

	d.recordTrip(newStageTrip(trip.TypeSystem, fmt.Sprintf("Model panic during Update: %v", panicValue), map[string]interface{}{
		"panic_value": panicValue,
		"tea_msg":     fmt.Sprintf("%T: %+v", msg, msg),
		"model_type":  fmt.Sprintf("%T", d.model),
	}).WithSeverity(trip.Fall))

	if d.cancel != nil {
		d.cancel()
	}
}

// handleInvalidModelState fails the stage when Update returns something
// the director cannot track.
func (d *StageDirector) handleInvalidModelState(reason string, msg tea.Msg) {
	d.t.Logf("🚨 FAIL-FAST: Invalid model state detected: %s", reason)

	d.captureErrorSnapshot("invalid_model_state", reason)

	d.recordTrip(newStageTrip(trip.TypeSystem, reason, map[string]interface{}{
		"tea_msg":    fmt.Sprintf("%T: %+v", msg, msg),
		"model_type": fmt.Sprintf("%T", d.model),
	}).WithSeverity(trip.Fall))

	if d.cancel != nil {
		d.cancel()
	}
}

// captureErrorSnapshot records the last known view next to the error.
func (d *StageDirector) captureErrorSnapshot(errorType, errorMessage string) {
	current := d.getCurrent()
	d.updateMu.Lock()
	defer d.updateMu.Unlock()
	d.snapshots = append(d.snapshots, StageSnapshot{
		Timestamp: time.Now(),
		View:      fmt.Sprintf("ERROR STATE (%s)\n%s\n\nLast View:\n%s", errorType, errorMessage, d.getCurrentView()),
		Slide:     current.ActiveSlide(),
		CameraX:   current.CameraX(),
	})
}
