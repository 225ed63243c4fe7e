// Package show is the interactive front end: a Bubble Tea model that owns the
// slide navigator, the camera rig and the scene, renders the scene into the
// terminal and maps keys and clicks onto slide moves.
package show

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/teranos/orrery/camera"
	"github.com/teranos/orrery/config"
	"github.com/teranos/orrery/navigator"
	"github.com/teranos/orrery/render"
	"github.com/teranos/orrery/scene"
)

// hudHeight is the number of text rows below the scene.
const hudHeight = 5

// Control names the clickable controls of the HUD.
type Control string

const (
	ControlNone Control = ""
	ControlPrev Control = "prev"
	ControlNext Control = "next"
)

const (
	prevLabel  = "‹ prev"
	nextLabel  = "next ›"
	controlGap = 3
)

type frameMsg time.Time

type texturesMsg struct {
	textures scene.Textures
}

// Model is the show's tea.Model. Collaborators are shared by pointer between
// copies; everything View and the accessors read is cached by value at the
// end of each Update.
type Model struct {
	nav     *navigator.Navigator
	rig     *camera.Rig
	scene   *scene.Scene
	surface *render.Surface
	loader  *scene.Loader

	logger   *zap.Logger
	keys     KeyMap
	help     help.Model
	styles   Styles
	profile  termenv.Profile
	clock    func() time.Time
	interval time.Duration

	width, height int
	textures      bool
	loaded        bool
	quitting      bool

	img     *image.RGBA
	drawnAt time.Time
	frame   string
	hud     []string
	view    string
	state   snapshot
}

type snapshot struct {
	active  int
	count   int
	cameraX float64
	settled bool
	frames  uint64
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithClock replaces the time source used for camera moves and frames.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.clock = now }
}

// WithProfile sets the color profile of the scene blit.
func WithProfile(p termenv.Profile) Option {
	return func(m *Model) { m.profile = p }
}

// WithLoader sets the texture loader.
func WithLoader(l *scene.Loader) Option {
	return func(m *Model) { m.loader = l }
}

// WithoutTextures keeps every body on its flat color.
func WithoutTextures() Option {
	return func(m *Model) { m.textures = false }
}

// WithSize sets the initial viewport size in cells.
func WithSize(width, height int) Option {
	return func(m *Model) { m.width, m.height = width, height }
}

// New builds the scene, deck and camera described by cfg.
func New(cfg *config.Config, opts ...Option) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}

	m := Model{
		logger:   zap.NewNop(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		styles:   DefaultStyles(),
		profile:  termenv.EnvColorProfile(),
		clock:    time.Now,
		interval: cfg.Frame.Interval(),
		width:    80,
		height:   24,
		textures: true,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.scene = scene.DefaultSystem(SceneOptions(cfg))
	layout, cam := Viewpoint(cfg)
	m.rig = camera.NewRig(layout, cam).WithClock(m.clock)

	nav, err := navigator.New(Slides(cfg, m.scene),
		navigator.WithMover(m.rig),
		navigator.WithDuration(cfg.Camera.MoveDuration()))
	if err != nil {
		return Model{}, fmt.Errorf("failed to build slide deck: %w", err)
	}
	m.nav = nav

	if !m.textures {
		m.loader = nil
		m.loaded = true
	} else if m.loader == nil {
		m.loader = scene.NewLoader(cfg.Assets.Dir, nil, m.logger)
	}

	m.surface = render.NewSurface(0, 0)
	m.resize(m.width, m.height)
	m.draw(m.clock())
	return m.refresh(), nil
}

// Init starts the frame loop and texture loading.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.loadTextures())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) loadTextures() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	loader, sc := m.loader, m.scene
	return func() tea.Msg {
		return texturesMsg{textures: loader.LoadAll(sc)}
	}
}

// Update handles input, resizes, frames and loaded textures.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m.refresh(), tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.advance()
		case key.Matches(msg, m.keys.Prev):
			m.retreat()
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			break
		}
		switch m.controlAt(msg.X, msg.Y) {
		case ControlPrev:
			m.retreat()
		case ControlNext:
			m.advance()
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.draw(m.clock())

	case frameMsg:
		m = m.RunFrame(m.clock())
		return m, m.tick()

	case texturesMsg:
		msg.textures.Apply(m.scene)
		m.loaded = true
		m.logger.Info("textures loaded",
			zap.Int("loaded", len(msg.textures)),
			zap.Int("wanted", len(m.scene.TextureNames())))
	}

	return m.refresh(), nil
}

// RunFrame advances one animation frame: spin every body, step the camera
// tween and redraw.
func (m Model) RunFrame(now time.Time) Model {
	m.scene.RunFrame()
	m.draw(now)
	return m.refresh()
}

func (m *Model) advance() {
	if cmd, ok := m.nav.Advance(); ok {
		m.logger.Debug("advance",
			zap.Int("slide", cmd.TargetIndex),
			zap.Float64("target_x", m.rig.TargetX()))
	}
}

func (m *Model) retreat() {
	if cmd, ok := m.nav.Retreat(); ok {
		m.logger.Debug("retreat",
			zap.Int("slide", cmd.TargetIndex),
			zap.Float64("target_x", m.rig.TargetX()))
	}
}

// resize adapts the viewpoint and display surface. Navigation is untouched.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	rows := height - hudHeight
	if rows < 0 {
		rows = 0
	}
	m.surface.Resize(width, rows*2)
	m.rig.Camera.SetAspect(float64(width), float64(rows*2))
	m.help.Width = width
	m.logger.Debug("resize", zap.Int("width", width), zap.Int("height", height))
}

func (m *Model) draw(now time.Time) {
	cam := m.rig.Step(now)
	m.drawnAt = now
	m.img = m.surface.Draw(m.scene, cam)
	m.frame = render.Terminal(m.img, m.profile)
}

// refresh caches the HUD, the view and the state the accessors report. The
// camera counts as settled once a frame has been drawn at its target.
func (m Model) refresh() Model {
	m.state = snapshot{
		active:  m.nav.Active(),
		count:   m.nav.Len(),
		cameraX: m.rig.Camera.X,
		settled: m.rig.Settled(m.drawnAt) && m.rig.Camera.X == m.rig.TargetX(),
		frames:  m.scene.Frames(),
	}
	m.hud = m.renderHUD()

	if m.quitting {
		m.view = ""
		return m
	}
	var sb strings.Builder
	if m.frame != "" {
		sb.WriteString(m.frame)
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Join(m.hud, "\n"))
	m.view = sb.String()
	return m
}

func (m Model) renderHUD() []string {
	var markers strings.Builder
	for i, st := range m.nav.States() {
		if i > 0 {
			markers.WriteByte(' ')
		}
		markers.WriteString(m.styles.Marker(st))
	}
	counter := m.styles.Counter.Render(fmt.Sprintf("%d/%d", m.nav.Active()+1, m.nav.Len()))

	slide := m.nav.Current()
	line := lipgloss.NewStyle().Inline(true).MaxWidth(max(m.width, 1))

	prev, next := m.styles.Control, m.styles.Control
	if m.nav.Active() == 0 {
		prev = m.styles.ControlDisabled
	}
	if m.nav.Active() == m.nav.Len()-1 {
		next = m.styles.ControlDisabled
	}

	return []string{
		line.Render(markers.String() + "  " + counter),
		line.Render(m.styles.Title.Render(slide.Title)),
		line.Render(m.styles.Body.Render(slide.Body)),
		prev.Render(prevLabel) + strings.Repeat(" ", controlGap) + next.Render(nextLabel),
		line.Render(m.help.View(m.keys)),
	}
}

// frameRows is the number of text rows the scene occupies.
func (m Model) frameRows() int {
	_, h := m.surface.Size()
	return h / 2
}

// ControlAt returns the cell of the first column of a control.
func (m Model) ControlAt(c Control) (x, y int, ok bool) {
	y = m.frameRows() + 3
	switch c {
	case ControlPrev:
		return 0, y, true
	case ControlNext:
		return lipgloss.Width(prevLabel) + controlGap, y, true
	}
	return 0, 0, false
}

func (m Model) controlAt(x, y int) Control {
	for _, c := range []Control{ControlPrev, ControlNext} {
		cx, cy, _ := m.ControlAt(c)
		label := prevLabel
		if c == ControlNext {
			label = nextLabel
		}
		if y == cy && x >= cx && x < cx+lipgloss.Width(label) {
			return c
		}
	}
	return ControlNone
}

// View returns the cached screen.
func (m Model) View() string { return m.view }

// ActiveSlide returns the index of the current slide.
func (m Model) ActiveSlide() int { return m.state.active }

// SlideCount returns the number of slides.
func (m Model) SlideCount() int { return m.state.count }

// CameraX returns the camera position of the last drawn frame.
func (m Model) CameraX() float64 { return m.state.cameraX }

// Frames returns how many animation frames have run.
func (m Model) Frames() uint64 { return m.state.frames }

// Frame returns the last rendered scene image.
func (m Model) Frame() *image.RGBA { return m.img }

// Caption returns the HUD lines of the last update.
func (m Model) Caption() []string { return m.hud }

// CheckCondition reports named conditions for test harnesses.
func (m Model) CheckCondition(condition string) bool {
	switch condition {
	case "camera_settled":
		return m.state.settled
	case "textures_loaded":
		return m.loaded
	case "at_first":
		return m.state.active == 0
	case "at_last":
		return m.state.active == m.state.count-1
	case "animating":
		return m.state.frames > 0
	case "quitting":
		return m.quitting
	}
	return false
}
