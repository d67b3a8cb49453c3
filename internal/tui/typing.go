package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/game"
	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/stats"
)

// TypingModel is the Bubble Tea screen of the zombie typing drill.
type TypingModel struct {
	session *game.TypingSession
	opts    Options
	ev      events
	clock   clock

	width  int
	height int
	health progress.Model
	boss   progress.Model

	recording bool
	summary   *backend.Summary
}

// NewTypingModel constructs a typing screen.
func NewTypingModel(cfg game.TypingConfig, gen *generator.Generator, opts Options) *TypingModel {
	m := &TypingModel{
		opts:   opts,
		health: progress.New(progress.WithGradient("#FF4D4F", "#52C41A"), progress.WithWidth(20), progress.WithoutPercentage()),
		boss:   progress.New(progress.WithSolidFill("#9254DE"), progress.WithWidth(30), progress.WithoutPercentage()),
	}
	m.session = game.NewTypingSession(cfg, gen, m.ev.observer())
	return m
}

// Session exposes the underlying session.
func (m *TypingModel) Session() *game.TypingSession { return m.session }

// Init implements tea.Model.
func (m *TypingModel) Init() tea.Cmd {
	return frame()
}

// Update implements tea.Model.
func (m *TypingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.boss.Width = max(10, min(40, m.width/3))
	case frameMsg:
		m.session.Advance(m.clock.tick(time.Time(msg)))
		cmds = append(cmds, frame())
	case recordedMsg:
		m.recording = false
		m.summary = &msg.summary
		logRecorded(m.opts, msg.summary)
	case tea.KeyMsg:
		m.handleKey(msg)
	}
	if m.ev.ended != nil {
		m.recording = m.opts.Recorder != nil
		m.summary = nil
	}
	cmds = append(cmds, m.ev.drain(m.opts, false)...)
	return m, tea.Batch(cmds...)
}

func (m *TypingModel) handleKey(msg tea.KeyMsg) {
	if msg.Type == tea.KeyCtrlC {
		m.session.Exit()
		return
	}
	switch m.session.Phase() {
	case model.PhaseIdle, model.PhaseEnded:
		switch msg.String() {
		case "enter":
			if m.session.Start() {
				m.summary = nil
				m.recording = false
			}
		case "q", "esc":
			m.session.Exit()
		}
	case model.PhaseCountdown:
		if msg.Type == tea.KeyEsc {
			m.session.Exit()
		}
	case model.PhaseActive:
		switch msg.Type {
		case tea.KeyEsc:
			m.session.TogglePause()
		case tea.KeyCtrlR:
			m.session.Restart()
		case tea.KeySpace:
			m.session.KeyTyped(' ')
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.session.KeyTyped(r)
			}
		}
	case model.PhasePaused:
		switch msg.String() {
		case "esc":
			m.session.TogglePause()
		case "q":
			m.session.Exit()
		}
	}
}

// View implements tea.Model.
func (m *TypingModel) View() string {
	snap := m.session.Snapshot()
	switch snap.Phase {
	case model.PhaseIdle:
		return panel(m.width, m.height,
			titleStyle.Render("TYPING DRILL"),
			"",
			"Type the word above a zombie to take it down before it reaches you.",
			"Every tenth wave a boss arrives: type its whole paragraph.",
			"",
			footerStyle.Render("enter start · q quit"),
		)
	case model.PhaseCountdown:
		return panel(m.width, m.height, titleStyle.Render(fmt.Sprintf("Wave %d in %d", snap.Wave, snap.Countdown)))
	case model.PhasePaused:
		return panel(m.width, m.height,
			titleStyle.Render("PAUSED"),
			fmt.Sprintf("Wave %d  Score %d", snap.Wave, snap.Score),
			"",
			footerStyle.Render("esc resume · q quit"),
		)
	case model.PhaseEnded:
		return m.endView(snap)
	}

	hud := m.hud(snap)
	help := footer(m.width, "type to shoot · esc pause · ctrl+r restart")
	bodyHeight := max(m.height-lipgloss.Height(hud)-1, 3)
	var body string
	switch {
	case snap.Cleared != nil:
		body = m.clearedView(snap.Cleared, bodyHeight)
	case snap.Boss != nil:
		body = m.bossView(snap.Boss, bodyHeight)
	default:
		body = m.field(snap, bodyHeight).String()
	}
	return hud + "\n" + body + "\n" + help
}

func (m *TypingModel) hud(snap game.TypingSnapshot) string {
	stat := fmt.Sprintf("Wave %d  Score %d  Kills %d  Accuracy %d%%  ", snap.Wave, snap.Score, snap.Kills, snap.Accuracy)
	bar := m.health.ViewAs(float64(snap.Health) / float64(stats.MaxHealth))
	return hudStyle.Render(stat) + "HP " + bar + fmt.Sprintf(" %d", snap.Health)
}

// field places zombies by lane and depth. The bottom row is the player line;
// zombies still beyond the spawn depth are only counted.
func (m *TypingModel) field(snap game.TypingSnapshot, height int) *canvas {
	c := newCanvas(m.width, height)
	playerRow := height - 1
	for x := range m.width {
		c.set(x, playerRow, '─', stylePlayerLine)
	}
	incoming := 0
	for i, z := range snap.Zombies {
		if z.Dead {
			continue
		}
		if z.Z < game.ZombieSpawnZ {
			incoming++
			continue
		}
		row := zombieRow(z.Z, playerRow)
		col := m.width/2 + int(math.Round(z.X/(game.ZombieLaneWidth/2)*float64(m.width/2-12)))
		label := z.Word
		col -= len(label) / 2
		style := styleZombie
		if i == snap.Active {
			style = styleZombieActive
			c.text(col, row, label[:z.Typed], styleTyped)
			c.text(col+z.Typed, row, label[z.Typed:], style)
		} else {
			c.text(col, row, label, style)
		}
		c.set(col+len(label)/2, row+1, 'Z', style)
	}
	if incoming > 0 {
		c.text(0, 0, fmt.Sprintf("+%d incoming", incoming), styleZombie)
	}
	return c
}

// zombieRow maps depth onto rows 0..playerRow-2, leaving room for the body glyph.
func zombieRow(z float64, playerRow int) int {
	span := game.ZombieReachZ - game.ZombieSpawnZ
	pos := (z - game.ZombieSpawnZ) / span
	return max(0, min(int(math.Round(pos*float64(playerRow-2))), playerRow-2))
}

func (m *TypingModel) bossView(b *game.Boss, height int) string {
	width := max(20, m.width*7/10)
	distance := max(0, game.BossReachZ-b.Z)
	lines := []string{
		warningStyle.Render("BOSS") + "  " + m.boss.ViewAs(b.Health/100) + fmt.Sprintf(" %.0f%%", b.Health),
		footerStyle.Render(fmt.Sprintf("distance %.1f", distance)),
		"",
		lipgloss.NewStyle().Width(width).Render(wrapStyledRunes(buildStyledRunes([]rune(b.Paragraph), b.Typed), width)),
	}
	content := strings.Join(lines, "\n")
	if m.width == 0 {
		return content
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *TypingModel) clearedView(c *game.WaveClear, height int) string {
	title := fmt.Sprintf("WAVE %d CLEARED", c.Wave)
	if c.Boss {
		title = "BOSS DEFEATED"
	}
	content := titleStyle.Render(title) + "\n" + fmt.Sprintf("+%d points", c.Points)
	if m.width == 0 {
		return content
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *TypingModel) endView(snap game.TypingSnapshot) string {
	lines := []string{warningStyle.Render("GAME OVER"), ""}
	if r := snap.Result; r != nil {
		lines = append(lines,
			fmt.Sprintf("Score %d", r.Score),
			fmt.Sprintf("Wave %d  Kills %d", r.Wave, r.Kills),
			fmt.Sprintf("Accuracy %d%%", r.Accuracy),
		)
	}
	if extra := summaryLines(m.summary, m.recording); len(extra) > 0 {
		lines = append(append(lines, ""), extra...)
	}
	lines = append(lines, "", footerStyle.Render("enter play again · q quit"))
	return panel(m.width, m.height, lines...)
}
