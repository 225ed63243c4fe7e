package show

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/orrery/config"
	"github.com/teranos/orrery/scene"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Stars.Count = 200
	return cfg
}

func newTestModel(t *testing.T, clk *fakeClock, opts ...Option) Model {
	t.Helper()
	base := []Option{
		WithoutTextures(),
		WithSize(40, 15),
		WithProfile(termenv.Ascii),
		WithClock(clk.Now),
	}
	m, err := New(testConfig(), append(base, opts...)...)
	require.NoError(t, err)
	return m
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func keyMsg(k tea.KeyType) tea.Msg { return tea.KeyMsg{Type: k} }

func runeMsg(r rune) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func times(n int, msg tea.Msg) []tea.Msg {
	msgs := make([]tea.Msg, n)
	for i := range msgs {
		msgs[i] = msg
	}
	return msgs
}

func TestNew_DefaultDeck(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})

	assert.Equal(t, 10, m.SlideCount())
	assert.Equal(t, 0, m.ActiveSlide())
	assert.Equal(t, -3.0, m.CameraX())
	assert.True(t, m.CheckCondition("at_first"))
	assert.True(t, m.CheckCondition("textures_loaded"))

	view := m.View()
	assert.Contains(t, view, "Sun")
	assert.Contains(t, view, "1/10")
	assert.Contains(t, view, prevLabel)
	assert.Contains(t, view, nextLabel)
	assert.Len(t, strings.Split(view, "\n"), 15)
}

func TestNew_CustomSlides(t *testing.T) {
	cfg := testConfig()
	cfg.Slides = []config.SlideEntry{
		{Title: "Intro", Body: "hello"},
		{Title: "Middle"},
		{Title: "Outro"},
	}
	m, err := New(cfg, WithoutTextures(), WithProfile(termenv.Ascii))
	require.NoError(t, err)

	assert.Equal(t, 3, m.SlideCount())
	assert.Contains(t, m.View(), "Intro")
	assert.Contains(t, m.View(), "1/3")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Frame.FPS = 0

	_, err := New(cfg, WithoutTextures())
	assert.Error(t, err)
}

func TestKeys_AdvanceTweensCamera(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	m := newTestModel(t, clk)

	m = send(m, keyMsg(tea.KeyRight))
	assert.Equal(t, 1, m.ActiveSlide())
	assert.Contains(t, m.View(), "Mercury")
	assert.Equal(t, -3.0, m.CameraX(), "camera moves on the next frame")
	assert.False(t, m.CheckCondition("camera_settled"))

	clk.Advance(250 * time.Millisecond)
	m = m.RunFrame(clk.Now())
	assert.InDelta(t, 11.25, m.CameraX(), 1e-9)

	clk.Advance(250 * time.Millisecond)
	m = m.RunFrame(clk.Now())
	assert.InDelta(t, 16.0, m.CameraX(), 1e-9)
	assert.True(t, m.CheckCondition("camera_settled"))
}

func TestKeys_BoundariesAreSilent(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	m := newTestModel(t, clk)

	m = send(m, keyMsg(tea.KeyLeft))
	assert.Equal(t, 0, m.ActiveSlide())
	assert.True(t, m.CheckCondition("camera_settled"), "no move was issued")

	m = send(m, times(12, keyMsg(tea.KeyRight))...)
	assert.Equal(t, 9, m.ActiveSlide())
	assert.True(t, m.CheckCondition("at_last"))
	assert.Contains(t, m.View(), "10/10")
}

func TestKeys_OtherKeysIgnored(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})

	m = send(m,
		keyMsg(tea.KeyUp), keyMsg(tea.KeyDown), keyMsg(tea.KeyEnter),
		keyMsg(tea.KeySpace), runeMsg('l'), runeMsg('h'), runeMsg('n'))

	assert.Equal(t, 0, m.ActiveSlide())
	assert.False(t, m.CheckCondition("quitting"))
}

func TestKeys_TenSlideTour(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	m := newTestModel(t, clk)

	m = send(m, times(3, keyMsg(tea.KeyRight))...)
	assert.Equal(t, 3, m.ActiveSlide())

	m = send(m, keyMsg(tea.KeyLeft))
	assert.Equal(t, 2, m.ActiveSlide())

	m = send(m, times(7, keyMsg(tea.KeyRight))...)
	assert.Equal(t, 9, m.ActiveSlide())

	m = send(m, keyMsg(tea.KeyRight))
	assert.Equal(t, 9, m.ActiveSlide())

	clk.Advance(time.Second)
	m = m.RunFrame(clk.Now())
	assert.InDelta(t, 176.0, m.CameraX(), 1e-9)
	assert.Contains(t, m.View(), "Pluto")
}

func TestKeys_MidFlightRetarget(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	m := newTestModel(t, clk)

	m = send(m, keyMsg(tea.KeyRight))
	clk.Advance(250 * time.Millisecond)
	m = m.RunFrame(clk.Now())
	mid := m.CameraX()

	m = send(m, keyMsg(tea.KeyRight))
	m = m.RunFrame(clk.Now())
	assert.InDelta(t, mid, m.CameraX(), 1e-9, "retarget starts from the current position")

	clk.Advance(500 * time.Millisecond)
	m = m.RunFrame(clk.Now())
	assert.InDelta(t, 36.0, m.CameraX(), 1e-9)
}

func TestHUD_MarkersFollowActiveSlide(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})
	m = send(m, keyMsg(tea.KeyRight), keyMsg(tea.KeyRight))

	markers := m.Caption()[0]
	assert.Equal(t, 2, strings.Count(markers, "•"))
	assert.Equal(t, 1, strings.Count(markers, "●"))
	assert.Equal(t, 7, strings.Count(markers, "○"))
	assert.Contains(t, markers, "3/10")
}

func TestMouse_Controls(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})

	nx, ny, ok := m.ControlAt(ControlNext)
	require.True(t, ok)
	px, py, ok := m.ControlAt(ControlPrev)
	require.True(t, ok)
	assert.Equal(t, 13, ny)
	assert.Equal(t, ny, py)

	click := func(x, y int) tea.Msg {
		return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
	}

	m = send(m, click(nx, ny), click(nx+2, ny))
	assert.Equal(t, 2, m.ActiveSlide())

	m = send(m, click(px+1, py))
	assert.Equal(t, 1, m.ActiveSlide())

	m = send(m,
		click(nx-1, ny),
		click(nx, ny-1),
		tea.MouseMsg{X: nx, Y: ny, Button: tea.MouseButtonRight, Action: tea.MouseActionPress},
		tea.MouseMsg{X: nx, Y: ny, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease},
	)
	assert.Equal(t, 1, m.ActiveSlide())

	_, _, ok = m.ControlAt("close")
	assert.False(t, ok)
}

func TestResize_LeavesNavigationAlone(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})
	m = send(m, keyMsg(tea.KeyRight), keyMsg(tea.KeyRight))

	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, 2, m.ActiveSlide())
	assert.Equal(t, image.Rect(0, 0, 100, 50), m.Frame().Bounds())
	assert.Len(t, strings.Split(m.View(), "\n"), 30)
	_, y, _ := m.ControlAt(ControlNext)
	assert.Equal(t, 28, y)

	m = send(m, tea.WindowSizeMsg{Width: 20, Height: 3})
	assert.True(t, m.Frame().Bounds().Empty())
	assert.Len(t, strings.Split(m.View(), "\n"), hudHeight)
}

func TestRunFrame_SpinsBodies(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})
	for i := 0; i < 10; i++ {
		m = m.RunFrame(time.Unix(0, 0))
	}

	assert.Equal(t, uint64(10), m.Frames())
	assert.True(t, m.CheckCondition("animating"))
	assert.InDelta(t, 0.05, m.scene.Body("earth").RotationY, 1e-9)
	assert.InDelta(t, 0.08, m.scene.Body(scene.Clouds).RotationY, 1e-9)
}

func TestUpdate_FrameSchedulesNextTick(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})

	next, cmd := m.Update(frameMsg(time.Unix(0, 0)))
	assert.NotNil(t, cmd)
	assert.Equal(t, uint64(1), next.(Model).Frames())
	assert.NotNil(t, m.Init())
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(t, &fakeClock{now: time.Unix(0, 0)})

	next, cmd := m.Update(runeMsg('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, next.(Model).CheckCondition("quitting"))
	assert.Empty(t, next.(Model).View())
}

func TestTextures_MissingAssetsAreRecoverable(t *testing.T) {
	dir := t.TempDir()
	sun := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			sun.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "sun.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, sun))
	require.NoError(t, f.Close())

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	clk := &fakeClock{now: time.Unix(0, 0)}
	m, err := New(testConfig(),
		WithLogger(logger),
		WithLoader(scene.NewLoader(dir, nil, logger)),
		WithProfile(termenv.Ascii),
		WithClock(clk.Now))
	require.NoError(t, err)
	assert.False(t, m.CheckCondition("textures_loaded"))

	m = send(m, keyMsg(tea.KeyRight))
	m = send(m, m.loadTextures()())
	m = send(m, m.loadTextures()())

	assert.True(t, m.CheckCondition("textures_loaded"))
	assert.Equal(t, 1, m.ActiveSlide(), "navigation survives failed assets")
	assert.NotNil(t, m.scene.Body("sun").Material.Texture)
	assert.Nil(t, m.scene.Body("earth").Material.Texture)
	assert.Equal(t, 14, logs.FilterLevelExact(zapcore.WarnLevel).Len(), "each missing asset logged once")
	assert.Equal(t, 2, logs.FilterMessage("textures loaded").Len())
}
