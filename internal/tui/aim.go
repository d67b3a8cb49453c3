package tui

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/game"
	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/model"
)

// AimModel is the Bubble Tea screen of the target drill. The crosshair follows
// the mouse or the arrow keys; a click or space fires at it.
type AimModel struct {
	session *game.AimSession
	opts    Options
	ev      events
	clock   clock

	width  int
	height int
	aimX   int
	aimY   int

	recording bool
	summary   *backend.Summary
}

// NewAimModel constructs an aim screen.
func NewAimModel(cfg game.AimConfig, gen *generator.Generator, opts Options) *AimModel {
	m := &AimModel{opts: opts}
	m.session = game.NewAimSession(cfg, gen, m.ev.observer())
	return m
}

// Session exposes the underlying session.
func (m *AimModel) Session() *game.AimSession { return m.session }

// Init implements tea.Model.
func (m *AimModel) Init() tea.Cmd {
	return frame()
}

// Update implements tea.Model.
func (m *AimModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.aimX, m.aimY = m.fieldWidth()/2, m.fieldHeight()/2
	case frameMsg:
		m.session.Advance(m.clock.tick(time.Time(msg)))
		cmds = append(cmds, frame())
	case recordedMsg:
		m.recording = false
		m.summary = &msg.summary
		logRecorded(m.opts, msg.summary)
	case tea.KeyMsg:
		m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	if m.ev.ended != nil {
		m.recording = m.opts.Recorder != nil
		m.summary = nil
	}
	cmds = append(cmds, m.ev.drain(m.opts, true)...)
	return m, tea.Batch(cmds...)
}

func (m *AimModel) handleKey(msg tea.KeyMsg) {
	key := msg.String()
	if key == "ctrl+c" {
		m.session.Exit()
		return
	}
	switch m.session.Phase() {
	case model.PhaseIdle, model.PhaseEnded:
		switch key {
		case "enter", " ":
			m.start()
		case "q", "esc":
			m.session.Exit()
		}
	case model.PhaseCountdown:
		if key == "q" {
			m.session.Exit()
		}
	case model.PhaseActive:
		switch key {
		case " ", "f", "enter":
			m.fire()
		case "esc", "p":
			m.session.TogglePause()
		case "r":
			m.session.Restart()
		case "q":
			m.session.Exit()
		case "left", "h":
			m.moveAim(-2, 0)
		case "right", "l":
			m.moveAim(2, 0)
		case "up", "k":
			m.moveAim(0, -1)
		case "down", "j":
			m.moveAim(0, 1)
		}
	case model.PhasePaused:
		switch key {
		case "esc", "p":
			m.session.TogglePause()
		case "q":
			m.session.Exit()
		}
	}
}

func (m *AimModel) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X, msg.Y-1
	if msg.Action == tea.MouseActionMotion || msg.Action == tea.MouseActionPress {
		m.aimX, m.aimY = x, y
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	switch m.session.Phase() {
	case model.PhaseActive:
		m.fire()
	case model.PhaseIdle, model.PhaseEnded:
		m.start()
	}
}

func (m *AimModel) start() {
	if m.session.Start() {
		m.summary = nil
		m.recording = false
	}
}

func (m *AimModel) fire() {
	snap := m.session.Snapshot()
	m.session.Shoot(HitTest(snap.Targets, m.aimX, m.aimY, m.fieldWidth(), m.fieldHeight()))
}

func (m *AimModel) moveAim(dx, dy int) {
	m.aimX = max(0, min(m.aimX+dx, m.fieldWidth()-1))
	m.aimY = max(0, min(m.aimY+dy, m.fieldHeight()-1))
}

// The field sits between the HUD line and the footer line.
func (m *AimModel) fieldWidth() int  { return m.width }
func (m *AimModel) fieldHeight() int { return max(m.height-2, 1) }

// View implements tea.Model.
func (m *AimModel) View() string {
	snap := m.session.Snapshot()
	switch snap.Phase {
	case model.PhaseIdle:
		return panel(m.width, m.height,
			titleStyle.Render("AIM DRILL"),
			"",
			"Hit as many targets as you can before the clock runs out.",
			"Aim with the mouse or arrow keys, click or press space to fire.",
			"",
			footerStyle.Render("enter start · q quit"),
		)
	case model.PhaseCountdown:
		return panel(m.width, m.height, titleStyle.Render(fmt.Sprintf("Get ready %d", snap.Countdown)))
	case model.PhasePaused:
		return panel(m.width, m.height,
			titleStyle.Render("PAUSED"),
			fmt.Sprintf("Time %d  Score %d", snap.Remaining, snap.Score),
			"",
			footerStyle.Render("esc resume · q quit"),
		)
	case model.PhaseEnded:
		return m.endView(snap)
	}
	return m.hud(snap) + "\n" + m.field(snap).String() + "\n" + footer(m.width, "space fire · esc pause · r restart · q quit")
}

func (m *AimModel) hud(snap game.AimSnapshot) string {
	return hudStyle.Render(fmt.Sprintf("Time %02d  Score %d  Hits %d/%d  Accuracy %d%%",
		snap.Remaining, snap.Score, snap.Hits, snap.Attempts, snap.Accuracy))
}

// field draws targets far to near so closer ones cover farther ones.
func (m *AimModel) field(snap game.AimSnapshot) *canvas {
	w, h := m.fieldWidth(), m.fieldHeight()
	c := newCanvas(w, h)
	spots := make([]Spot, len(snap.Targets))
	for i, p := range snap.Targets {
		spots[i] = Project(p, w, h)
	}
	sort.Slice(spots, func(i, j int) bool { return spots[i].Depth > spots[j].Depth })
	for _, s := range spots {
		for y := s.Row - s.RY; y <= s.Row+s.RY; y++ {
			for x := s.Col - s.RX; x <= s.Col+s.RX; x++ {
				if s.Contains(x, y) {
					c.set(x, y, '█', styleTarget)
				}
			}
		}
		c.set(s.Col, s.Row, '@', styleTargetCore)
	}
	c.set(m.aimX, m.aimY, '+', styleCrosshair)
	return c
}

func (m *AimModel) endView(snap game.AimSnapshot) string {
	lines := []string{titleStyle.Render("TIME'S UP"), ""}
	if r := snap.Result; r != nil {
		lines = append(lines,
			fmt.Sprintf("Score %d", r.Score),
			fmt.Sprintf("Hits %d of %d shots", r.Hits, r.Attempts),
			fmt.Sprintf("Accuracy %d%%", r.Accuracy),
		)
	}
	if extra := summaryLines(m.summary, m.recording); len(extra) > 0 {
		lines = append(append(lines, ""), extra...)
	}
	lines = append(lines, "", footerStyle.Render("enter play again · q quit"))
	return panel(m.width, m.height, lines...)
}
