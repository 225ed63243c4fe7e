package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/orrery/navigator"
)

func TestLayout_TargetX(t *testing.T) {
	assert.Equal(t, -4.0, DefaultLayout.TargetX(0))
	assert.Equal(t, 56.0, DefaultLayout.TargetX(3))
	assert.Equal(t, 176.0, DefaultLayout.TargetX(9))
}

func TestTween_EasesToTarget(t *testing.T) {
	t0 := time.Unix(0, 0)
	tw := NewTween(0, nil)
	tw.Start(0, 10, time.Second, t0)

	assert.Equal(t, 0.0, tw.Value(t0))
	assert.InDelta(t, 7.5, tw.Value(t0.Add(500*time.Millisecond)), 1e-9)
	assert.False(t, tw.Done(t0.Add(999*time.Millisecond)))
	assert.Equal(t, 10.0, tw.Value(t0.Add(time.Second)))
	assert.True(t, tw.Done(t0.Add(2*time.Second)))
}

func TestTween_Monotonic(t *testing.T) {
	t0 := time.Unix(0, 0)
	tw := NewTween(0, Power1Out)
	tw.Start(-4, 56, 500*time.Millisecond, t0)

	prev := tw.Value(t0)
	for ms := 10; ms <= 600; ms += 10 {
		v := tw.Value(t0.Add(time.Duration(ms) * time.Millisecond))
		require.GreaterOrEqual(t, v, prev)
		prev = v
	}
	assert.Equal(t, 56.0, prev)
}

func TestTween_RetargetStartsFromCurrentValue(t *testing.T) {
	t0 := time.Unix(0, 0)
	tw := NewTween(0, Linear)
	tw.Start(0, 100, time.Second, t0)

	mid := t0.Add(250 * time.Millisecond)
	tw.Retarget(0, time.Second, mid)

	assert.InDelta(t, 25, tw.Value(mid), 1e-9)
	assert.InDelta(t, 12.5, tw.Value(mid.Add(500*time.Millisecond)), 1e-9)
	assert.Equal(t, 0.0, tw.Value(mid.Add(time.Second)))
}

func TestTween_ZeroDurationJumps(t *testing.T) {
	tw := NewTween(3, nil)
	tw.Start(3, 9, 0, time.Now())
	assert.Equal(t, 9.0, tw.Value(time.Now()))
}

func TestRig_FollowsNavigator(t *testing.T) {
	now := time.Unix(100, 0)
	rig := NewRig(DefaultLayout, Default()).WithClock(func() time.Time { return now })
	assert.Equal(t, -3.0, rig.Step(now).X)

	nav, err := navigator.New(make([]navigator.Slide, 10), navigator.WithMover(rig))
	require.NoError(t, err)

	nav.Advance()
	assert.Equal(t, 16.0, rig.TargetX())
	assert.False(t, rig.Settled(now))

	now = now.Add(navigator.DefaultMoveDuration)
	assert.Equal(t, 16.0, rig.Step(now).X)
	assert.True(t, rig.Settled(now))
}

func TestRig_RetargetMidFlight(t *testing.T) {
	now := time.Unix(100, 0)
	rig := NewRig(DefaultLayout, Default()).WithClock(func() time.Time { return now })

	rig.MoveCamera(navigator.MoveCommand{TargetIndex: 1, Duration: time.Second})
	now = now.Add(500 * time.Millisecond)
	x := rig.Step(now).X
	require.Greater(t, x, -3.0)
	require.Less(t, x, 16.0)

	rig.MoveCamera(navigator.MoveCommand{TargetIndex: 2, Duration: time.Second})
	assert.InDelta(t, x, rig.Step(now).X, 1e-9)
	now = now.Add(time.Second)
	assert.Equal(t, 36.0, rig.Step(now).X)
}

func TestRig_Jump(t *testing.T) {
	rig := NewRig(DefaultLayout, Default())
	rig.Jump(4)
	assert.Equal(t, 76.0, rig.Camera.X)
	assert.True(t, rig.Settled(time.Now()))
}

func TestCamera_SetAspect(t *testing.T) {
	c := Default()
	c.SetAspect(200, 100)
	assert.Equal(t, 2.0, c.Aspect)
	c.SetAspect(0, 100)
	assert.Equal(t, 2.0, c.Aspect)
}
