// Package tui hosts the sandbox in the terminal: the bubbletea loop is the
// frame loop, the mouse is the pointer and the keyboard is the debug panel.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rigidbox/internal/audio"
	"github.com/san-kum/rigidbox/internal/config"
	"github.com/san-kum/rigidbox/internal/render"
	"github.com/san-kum/rigidbox/internal/sandbox"
)

const (
	frameInterval = 16 * time.Millisecond
	historyLen    = 120
	strengthStep  = 10.0
	bounceStep    = 0.05

	// rows taken by the header above the canvas and the panel below it
	headerRows = 2
	panelRows  = 11
	marginCols = 2
)

// Options wires the pieces the TUI drives. Sound and Watcher may be nil.
type Options struct {
	Sandbox  *sandbox.Sandbox
	Terminal *render.Terminal
	Sound    *audio.HitSound
	Watcher  *config.Watcher
	Profile  string
}

type model struct {
	sb      *sandbox.Sandbox
	term    *render.Terminal
	sound   *audio.HitSound
	watcher *config.Watcher
	profile string

	frame     sandbox.Frame
	history   []float64
	paused    bool
	status    string
	lastFrame time.Time
	fps       float64

	// peak of the hit sound over the last frame
	soundLevel float64

	width  int
	height int
}

type tickMsg time.Time

type reloadMsg struct{ cfg *config.Config }

type reloadErrMsg struct{ err error }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func newModel(opts Options) model {
	m := model{
		sb:      opts.Sandbox,
		term:    opts.Terminal,
		sound:   opts.Sound,
		watcher: opts.Watcher,
		profile: opts.Profile,
		history: make([]float64, 0, historyLen),
		width:   80,
		height:  24,
	}
	if m.term == nil {
		m.term = render.NewTerminal(1, 1)
	}
	m.resize()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitReload())
}

// waitReload blocks on the config watcher and turns its next result into a
// message.
func (m model) waitReload() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		select {
		case cfg, ok := <-w.Updates:
			if !ok {
				return nil
			}
			return reloadMsg{cfg}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return reloadErrMsg{err}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tickMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
				m.fps = 1.0 / dt
			}
		}
		m.lastFrame = now
		if !m.paused {
			m.step()
		}
		return m, tick()
	case reloadMsg:
		t := msg.cfg.Tunables()
		m.sb.SetStrength(t.Strength)
		m.sb.SetBounce(t.Restitution)
		m.sb.SetSpeedCap(t.SpeedCap)
		m.status = "config reloaded"
		m.sb.Logger().Info("config reloaded", "strength", t.Strength, "restitution", t.Restitution, "speed_cap", t.SpeedCap)
		return m, m.waitReload()
	case reloadErrMsg:
		m.status = "reload failed: " + msg.err.Error()
		m.sb.Logger().Warn("config reload", "err", msg.err)
		return m, m.waitReload()
	}
	return m, nil
}

func (m *model) step() {
	m.frame = m.sb.Tick()
	if m.sound != nil {
		m.soundLevel = m.sound.Render(time.Duration(m.frame.Delta * float64(time.Second)))
	}
	if len(m.history) == historyLen {
		m.history = m.history[1:]
	}
	m.history = append(m.history, float64(len(m.frame.Objects)))
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "s":
		m.spawn(m.sb.SpawnRandomSphere)
	case "b":
		m.spawn(m.sb.SpawnRandomBox)
	case "r":
		n := m.sb.Reset()
		m.status = fmt.Sprintf("removed %d", n)
	case "+", "=":
		m.sb.SetStrength(m.sb.Strength() + strengthStep)
	case "-", "_":
		m.sb.SetStrength(m.sb.Strength() - strengthStep)
	case "]":
		m.sb.SetBounce(m.sb.Bounce() + bounceStep)
	case "[":
		m.sb.SetBounce(m.sb.Bounce() - bounceStep)
	}
	return m, nil
}

func (m *model) spawn(fn func() (*sandbox.TrackedObject, error)) {
	obj, err := fn()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("spawned %s #%d", obj.Body.Shape.Kind(), obj.Body.ID)
}

// handleMouse maps cells over the canvas to the pointer. A left press also
// clicks whatever the last tick found under the pointer.
func (m model) handleMouse(msg tea.MouseMsg) model {
	cols, rows := m.term.Size()
	x := float64(msg.X-marginCols) + 0.5
	y := float64(msg.Y-headerRows) + 0.5
	if x < 0 || y < 0 || x > float64(cols) || y > float64(rows) {
		return m
	}
	p := sandbox.ScreenToPointer(x, y, float64(cols), float64(rows))
	m.sb.SetPointer(p.X, p.Y)

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if m.sb.Click() {
			m.status = fmt.Sprintf("pushed #%d", m.frame.Hovered)
		}
	}
	return m
}

func (m *model) resize() {
	cols := m.width - 2*marginCols
	rows := m.height - headerRows - panelRows
	if cols < 20 {
		cols = 20
	}
	if rows < 6 {
		rows = 6
	}
	m.term.Resize(cols, rows)
	m.sb.SetAspect(m.term.Aspect())
}

// Run starts the interactive sandbox and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
