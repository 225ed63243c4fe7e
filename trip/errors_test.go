package trip

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestTrip_Core tests core Trip functionality
func TestTrip_Core(t *testing.T) {
	context := Context{
		"component": "render",
		"operation": "capture",
	}

	trip := NewTrip(TypeRender, "Failed to capture", context)

	assert.Equal(t, TypeRender, trip.Type)
	assert.Equal(t, "Failed to capture", trip.Message)
	assert.Equal(t, context, trip.Context)
	assert.Equal(t, Error, trip.Severity)
	assert.WithinDuration(t, time.Now(), trip.Timestamp, time.Second)

	assert.Contains(t, trip.Error(), "Failed to capture")
	assert.Contains(t, trip.Error(), "render")
	assert.Contains(t, trip.Error(), "error")
}

// TestTrip_Severities tests different severity levels
func TestTrip_Severities(t *testing.T) {
	stumble := NewStumble(TypeAsset, "Missing texture", nil)
	error_ := NewTrip(TypeAssertion, "Wrong slide", nil)
	fall := NewFall(TypeSystem, "Program did not start", nil)

	assert.Equal(t, Stumble, stumble.Severity)
	assert.Equal(t, Error, error_.Severity)
	assert.Equal(t, Fall, fall.Severity)

	assert.True(t, stumble.CanRecover())
	assert.False(t, error_.CanRecover())
	assert.False(t, fall.CanRecover())

	assert.False(t, stumble.IsFall())
	assert.False(t, error_.IsFall())
	assert.True(t, fall.IsFall())
}

// TestTrip_Methods tests trip methods
func TestTrip_Methods(t *testing.T) {
	cause := errors.New("boom")
	trip := NewTrip("test", "Test message", Context{"b": 2, "a": 1}).WithCause(cause)

	trip.WithSeverity(Fall)
	assert.Equal(t, Fall, trip.Severity)
	assert.ErrorIs(t, trip, cause)

	val, exists := trip.GetContext("a")
	assert.True(t, exists)
	assert.Equal(t, 1, val)

	_, exists = trip.GetContext("missing")
	assert.False(t, exists)

	detailed := trip.DetailedString()
	assert.Contains(t, detailed, "Test message")
	assert.Contains(t, detailed, "Cause: boom")
	assert.Regexp(t, `(?s)a: 1.*b: 2`, detailed)
}

func TestAssetLoadError(t *testing.T) {
	err := &AssetLoadError{Asset: "mars", Path: "assets/mars.webp", Err: fs.ErrNotExist}

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "mars")

	tr := From(err)
	require.NotNil(t, tr)
	assert.Equal(t, TypeAsset, tr.Type)
	assert.True(t, tr.CanRecover())
	assert.ErrorIs(t, tr, fs.ErrNotExist)

	path, ok := tr.GetContext("path")
	assert.True(t, ok)
	assert.Equal(t, "assets/mars.webp", path)
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	existing := NewFall(TypeSystem, "down", nil)
	assert.Same(t, existing, From(existing))

	plain := From(errors.New("plain"))
	assert.Equal(t, TypeSystem, plain.Type)
	assert.Equal(t, Error, plain.Severity)
}

// TestHandler_Basic tests basic Handler functionality
func TestHandler_Basic(t *testing.T) {
	handler := NewHandler("test_component", DefaultPolicy(), nil)

	assert.True(t, handler.ShouldContinue())
	assert.Contains(t, handler.Summary(), "No issues")

	handler.Record(NewStumble("minor", "Minor issue", nil))
	assert.True(t, handler.ShouldContinue())
	assert.True(t, handler.HasStumbles())
	assert.False(t, handler.HasTrips())

	handler.Record(NewFall("critical", "Critical error", nil))
	assert.False(t, handler.ShouldContinue())
	assert.Contains(t, handler.DetailedReport(), "Critical error")
}

func TestHandler_TooManyStumbles(t *testing.T) {
	handler := NewHandler("loader", &Policy{MaxStumbles: 2}, nil)
	for i := 0; i < 3; i++ {
		handler.Record(NewStumble(TypeAsset, "missing", nil))
	}
	assert.False(t, handler.ShouldContinue())
}

func TestHandler_OnceLogsOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := NewHandler("loader", nil, zap.New(core))

	err := &AssetLoadError{Asset: "earth", Path: "earth.jpg", Err: fs.ErrNotExist}
	assert.True(t, handler.Once("earth", err.Trip()))
	assert.False(t, handler.Once("earth", err.Trip()))
	assert.True(t, handler.Once("moon", NewStumble(TypeAsset, "moon", nil)))

	assert.Len(t, handler.GetStumbles(), 2)
	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "loader", entry.ContextMap()["component"])
	assert.Equal(t, TypeAsset, entry.ContextMap()["type"])
}

// TestPolicy_Default tests default policy
func TestPolicy_Default(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.StopOnFall)
	assert.Equal(t, 32, policy.MaxStumbles)
	assert.Contains(t, policy.RecoverableTypes, TypeAsset)

	handler := NewHandler("x", policy, nil)
	assert.True(t, handler.CanRecover(TypeAsset))
	assert.False(t, handler.CanRecover(TypeSystem))
}

// TestSeverity_String tests severity string representation
func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "stumble", Stumble.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "fall", Fall.String())
}
