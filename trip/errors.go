// Package trip provides error handling for the orrery scene and its stage
// harness.
//
// The trip package uses stumbling metaphors - when the show encounters an
// issue it "trips up" or "stumbles", then keeps going where it can. A missing
// planet texture is a stumble: the body is drawn in a flat color and the
// slides keep moving.
package trip

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Trip types.
const (
	TypeAsset     = "asset"
	TypeConfig    = "config"
	TypeRender    = "render"
	TypeAssertion = "assertion"
	TypeSystem    = "system"
)

// Trip represents an error with rich context.
//
// Error types:
//   - "asset": textures or backgrounds that could not be loaded
//   - "config": invalid or unreadable configuration
//   - "render": frame capture or display failures
//   - "assertion": stage expectations that did not hold
//   - "system": infrastructure and startup failures
type Trip struct {
	Type      string    // Error category for systematic handling
	Message   string    // Human-readable description
	Context   Context   // Additional debugging information
	Timestamp time.Time // When the error occurred
	Severity  Severity  // How serious this error is
	Err       error     // Underlying cause, if any
}

// Context provides structured debugging information for trips.
type Context map[string]interface{}

// Severity indicates how serious a trip is and how it should be handled.
type Severity int

const (
	// Stumble indicates a minor issue the show recovers from.
	// Examples: a texture failed to decode, a frame capture failed
	Stumble Severity = iota

	// Error indicates a significant issue that affects results.
	// Examples: assertion failures, unexpected slide positions
	Error

	// Fall indicates a serious issue that stops the show.
	// Examples: the program could not start
	Fall
)

func (s Severity) String() string {
	switch s {
	case Stumble:
		return "stumble"
	case Error:
		return "error"
	case Fall:
		return "fall"
	default:
		return "unknown"
	}
}

// NewTrip creates a new trip with the current timestamp.
func NewTrip(errorType, message string, context Context) *Trip {
	return &Trip{
		Type:      errorType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Error,
	}
}

// NewStumble creates a new trip with Stumble severity.
func NewStumble(errorType, message string, context Context) *Trip {
	return NewTrip(errorType, message, context).WithSeverity(Stumble)
}

// NewFall creates a new trip with Fall severity.
func NewFall(errorType, message string, context Context) *Trip {
	return NewTrip(errorType, message, context).WithSeverity(Fall)
}

// WithSeverity sets the severity level for this error.
func (t *Trip) WithSeverity(severity Severity) *Trip {
	t.Severity = severity
	return t
}

// WithCause attaches the underlying error.
func (t *Trip) WithCause(err error) *Trip {
	t.Err = err
	return t
}

// Error implements the error interface.
func (t *Trip) Error() string {
	return fmt.Sprintf("[%s:%s] %s", t.Type, t.Severity, t.Message)
}

// Unwrap returns the underlying cause.
func (t *Trip) Unwrap() error { return t.Err }

// CanRecover returns true if the show can continue despite this error.
func (t *Trip) CanRecover() bool {
	return t.Severity == Stumble
}

// IsFall returns true if this error should immediately stop the show.
func (t *Trip) IsFall() bool {
	return t.Severity == Fall
}

// GetContext returns a specific context value if it exists.
func (t *Trip) GetContext(key string) (interface{}, bool) {
	if t.Context == nil {
		return nil, false
	}
	val, exists := t.Context[key]
	return val, exists
}

// DetailedString returns a comprehensive error description with context.
// Context keys are printed in sorted order.
func (t *Trip) DetailedString() string {
	var details strings.Builder

	details.WriteString(t.Error())
	details.WriteString(fmt.Sprintf("\n  Time: %s", t.Timestamp.Format("15:04:05.000")))
	if t.Err != nil {
		details.WriteString(fmt.Sprintf("\n  Cause: %v", t.Err))
	}

	if len(t.Context) > 0 {
		keys := make([]string, 0, len(t.Context))
		for key := range t.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		details.WriteString("\n  Context:")
		for _, key := range keys {
			details.WriteString(fmt.Sprintf("\n    %s: %v", key, t.Context[key]))
		}
	}

	return details.String()
}

// AssetLoadError reports a texture that could not be loaded. It is always
// recoverable.
type AssetLoadError struct {
	Asset string // logical name, e.g. "earth"
	Path  string
	Err   error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load asset %q from %s: %v", e.Asset, e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Trip converts the error into a Stumble.
func (e *AssetLoadError) Trip() *Trip {
	return NewStumble(TypeAsset, e.Error(), Context{
		"asset": e.Asset,
		"path":  e.Path,
	}).WithCause(e)
}

// From converts any error into a trip. Trips pass through unchanged,
// AssetLoadErrors become stumbles and everything else becomes a system error.
func From(err error) *Trip {
	if err == nil {
		return nil
	}
	var t *Trip
	if errors.As(err, &t) {
		return t
	}
	var assetErr *AssetLoadError
	if errors.As(err, &assetErr) {
		return assetErr.Trip()
	}
	return NewTrip(TypeSystem, err.Error(), nil).WithCause(err)
}

// Handler collects trips for one component and logs each through zap.
//
// Handler is safe for concurrent use: textures may be reported from loader
// callbacks while the stage director records assertions.
type Handler struct {
	component string
	logger    *zap.Logger
	policy    *Policy

	mu       sync.Mutex
	trips    []*Trip // errors and falls in chronological order
	stumbles []*Trip // minor issues in chronological order
	seen     map[string]struct{}
}

// Policy defines how different types and severities of errors are handled.
type Policy struct {
	// StopOnFall determines if the show should stop on fall errors
	StopOnFall bool

	// MaxStumbles sets a limit on accumulated stumbles before giving up
	MaxStumbles int

	// RecoverableTypes lists error types that are considered recoverable
	RecoverableTypes []string
}

// DefaultPolicy returns a sensible default error handling policy.
func DefaultPolicy() *Policy {
	return &Policy{
		StopOnFall:       true,
		MaxStumbles:      32,
		RecoverableTypes: []string{TypeAsset, TypeRender},
	}
}

// NewHandler creates a new error handler for a specific component. A nil
// logger discards log output.
func NewHandler(component string, policy *Policy, logger *zap.Logger) *Handler {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		component: component,
		logger:    logger.With(zap.String("component", component)),
		policy:    policy,
		trips:     make([]*Trip, 0),
		stumbles:  make([]*Trip, 0),
		seen:      make(map[string]struct{}),
	}
}

// Record adds a trip to the handler's collection and logs it.
func (h *Handler) Record(trip *Trip) {
	if trip == nil {
		return
	}

	h.mu.Lock()
	if trip.Severity == Stumble {
		h.stumbles = append(h.stumbles, trip)
	} else {
		h.trips = append(h.trips, trip)
	}
	h.mu.Unlock()

	fields := []zap.Field{
		zap.String("type", trip.Type),
		zap.Stringer("severity", trip.Severity),
	}
	if trip.Err != nil {
		fields = append(fields, zap.NamedError("cause", trip.Err))
	}
	switch trip.Severity {
	case Stumble:
		h.logger.Warn(trip.Message, fields...)
	default:
		h.logger.Error(trip.Message, fields...)
	}
}

// Once records trip only the first time key is seen and reports whether it
// was recorded.
func (h *Handler) Once(key string, trip *Trip) bool {
	h.mu.Lock()
	if _, dup := h.seen[key]; dup {
		h.mu.Unlock()
		return false
	}
	h.seen[key] = struct{}{}
	h.mu.Unlock()

	h.Record(trip)
	return true
}

// ShouldContinue determines if the show should continue based on current errors.
func (h *Handler) ShouldContinue() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.policy.StopOnFall {
		for _, trip := range h.trips {
			if trip.IsFall() {
				return false
			}
		}
	}

	if h.policy.MaxStumbles > 0 && len(h.stumbles) > h.policy.MaxStumbles {
		return false
	}

	return true
}

// HasTrips returns true if any errors (non-stumbles) have been recorded.
func (h *Handler) HasTrips() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.trips) > 0
}

// HasStumbles returns true if any stumbles have been recorded.
func (h *Handler) HasStumbles() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stumbles) > 0
}

// GetTrips returns all recorded errors.
func (h *Handler) GetTrips() []*Trip {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Trip(nil), h.trips...)
}

// GetStumbles returns all recorded stumbles.
func (h *Handler) GetStumbles() []*Trip {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Trip(nil), h.stumbles...)
}

// CanRecover returns true if the given error type is considered recoverable.
func (h *Handler) CanRecover(errorType string) bool {
	for _, recoverableType := range h.policy.RecoverableTypes {
		if recoverableType == errorType {
			return true
		}
	}
	return false
}

// Summary provides a concise overview of all errors and stumbles.
func (h *Handler) Summary() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.trips) == 0 && len(h.stumbles) == 0 {
		return fmt.Sprintf("[%s] No issues", h.component)
	}

	return fmt.Sprintf("[%s] %d trips, %d stumbles",
		h.component, len(h.trips), len(h.stumbles))
}

// DetailedReport provides a comprehensive report of all issues.
func (h *Handler) DetailedReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("=== %s Component Report ===\n", h.component))
	report.WriteString(h.Summary() + "\n")

	trips := h.GetTrips()
	if len(trips) > 0 {
		report.WriteString("\nTrips:\n")
		for i, trip := range trips {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, trip.DetailedString()))
		}
	}

	stumbles := h.GetStumbles()
	if len(stumbles) > 0 {
		report.WriteString("\nStumbles:\n")
		for i, stumble := range stumbles {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, stumble.DetailedString()))
		}
	}

	return report.String()
}
