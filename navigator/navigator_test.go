package navigator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func deck(n int) []Slide {
	slides := make([]Slide, n)
	for i := range slides {
		slides[i] = Slide{Index: 100 + i, Title: "slide"}
	}
	return slides
}

// recorder collects every command delivered to it.
type recorder struct {
	cmds []MoveCommand
}

func (r *recorder) MoveCamera(cmd MoveCommand) { r.cmds = append(r.cmds, cmd) }

func requirePartition(t *testing.T, n *Navigator) {
	t.Helper()
	currents := 0
	for i, s := range n.States() {
		switch {
		case i < n.Active():
			require.Equal(t, Passed, s, "slide %d", i)
		case i == n.Active():
			require.Equal(t, Current, s, "slide %d", i)
			currents++
		default:
			require.Equal(t, Upcoming, s, "slide %d", i)
		}
	}
	require.Equal(t, 1, currents)
}

func TestNew_EmptyDeck(t *testing.T) {
	n, err := New(nil)
	assert.Nil(t, n)
	assert.ErrorIs(t, err, ErrNoSlides)
}

func TestNew_ReindexesSlides(t *testing.T) {
	n, err := New(deck(3))
	require.NoError(t, err)

	assert.Equal(t, 0, n.Active())
	assert.Equal(t, 3, n.Len())
	for i := 0; i < n.Len(); i++ {
		assert.Equal(t, i, n.Slide(i).Index)
	}
	assert.Equal(t, Current, n.StateOf(0))
	requirePartition(t, n)
}

func TestAdvance_EmitsOneCommand(t *testing.T) {
	rec := &recorder{}
	n, err := New(deck(4), WithMover(rec), WithDuration(250*time.Millisecond))
	require.NoError(t, err)

	cmd, ok := n.Advance()
	require.True(t, ok)
	assert.Equal(t, MoveCommand{TargetIndex: 1, Duration: 250 * time.Millisecond}, cmd)
	assert.Equal(t, []MoveCommand{cmd}, rec.cmds)
	assert.Equal(t, Passed, n.StateOf(0))
	assert.Equal(t, Current, n.StateOf(1))
}

func TestBoundaries_AreSilentNoOps(t *testing.T) {
	rec := &recorder{}
	n, err := New(deck(2), WithMover(rec))
	require.NoError(t, err)

	_, ok := n.Retreat()
	assert.False(t, ok)
	assert.Equal(t, 0, n.Active())
	assert.Empty(t, rec.cmds)

	_, ok = n.Advance()
	require.True(t, ok)
	before := n.States()

	_, ok = n.Advance()
	assert.False(t, ok)
	assert.Equal(t, 1, n.Active())
	assert.Equal(t, before, n.States())
	assert.Len(t, rec.cmds, 1)
}

func TestSingleSlide(t *testing.T) {
	n, err := New(deck(1))
	require.NoError(t, err)

	_, ok := n.Advance()
	assert.False(t, ok)
	_, ok = n.Retreat()
	assert.False(t, ok)
	assert.Equal(t, []State{Current}, n.States())
}

func TestRoundTrip_RestoresState(t *testing.T) {
	for start := 1; start < 8; start++ {
		n, err := New(deck(10))
		require.NoError(t, err)
		for i := 0; i < start; i++ {
			n.Advance()
		}
		states := n.States()

		_, ok := n.Advance()
		require.True(t, ok)
		_, ok = n.Retreat()
		require.True(t, ok)

		assert.Equal(t, start, n.Active())
		assert.Equal(t, states, n.States())
	}
}

func TestRandomWalk_KeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for size := 1; size <= 12; size++ {
		rec := &recorder{}
		n, err := New(deck(size), WithMover(rec))
		require.NoError(t, err)

		for step := 0; step < 200; step++ {
			prev := n.Active()
			var (
				cmd MoveCommand
				ok  bool
			)
			if rng.Intn(2) == 0 {
				cmd, ok = n.Advance()
			} else {
				cmd, ok = n.Retreat()
			}

			require.GreaterOrEqual(t, n.Active(), 0)
			require.LessOrEqual(t, n.Active(), size-1)
			requirePartition(t, n)
			if ok {
				require.NotEqual(t, prev, n.Active())
				require.Equal(t, n.Active(), cmd.TargetIndex)
				require.Equal(t, cmd, rec.cmds[len(rec.cmds)-1])
			} else {
				require.Equal(t, prev, n.Active())
			}
		}
	}
}

func TestTenSlideTour(t *testing.T) {
	rec := &recorder{}
	n, err := New(deck(10), WithMover(rec))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, ok := n.Advance()
		require.True(t, ok)
	}
	assert.Equal(t, 3, n.Active())
	for i := 0; i < 3; i++ {
		assert.Equal(t, Passed, n.StateOf(i))
	}
	assert.Equal(t, Current, n.StateOf(3))
	for i := 4; i < 10; i++ {
		assert.Equal(t, Upcoming, n.StateOf(i))
	}
	assert.Equal(t, 3, rec.cmds[len(rec.cmds)-1].TargetIndex)

	_, ok := n.Retreat()
	require.True(t, ok)
	assert.Equal(t, 2, n.Active())
	assert.Equal(t, Current, n.StateOf(2))
	assert.Equal(t, Passed, n.StateOf(0))
	assert.Equal(t, Passed, n.StateOf(1))
	assert.Equal(t, 2, rec.cmds[len(rec.cmds)-1].TargetIndex)

	for i := 0; i < 7; i++ {
		_, ok := n.Advance()
		require.True(t, ok, "advance %d", i)
	}
	assert.Equal(t, 9, n.Active())

	emitted := len(rec.cmds)
	_, ok = n.Advance()
	assert.False(t, ok)
	assert.Equal(t, 9, n.Active())
	assert.Len(t, rec.cmds, emitted)
	requirePartition(t, n)
}

func TestStateClass(t *testing.T) {
	assert.Equal(t, "current", Current.Class())
	assert.Equal(t, "passed", Passed.Class())
	assert.Equal(t, "", Upcoming.Class())
	assert.Equal(t, "upcoming", Upcoming.String())
}

func TestClone_IsIndependent(t *testing.T) {
	rec := &recorder{}
	n, err := New(deck(3), WithMover(rec))
	require.NoError(t, err)

	c := n.Clone()
	c.Advance()
	assert.Equal(t, 0, n.Active())
	assert.Equal(t, 1, c.Active())
	assert.Empty(t, rec.cmds)
}
