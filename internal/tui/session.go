// Package tui provides the Bubble Tea game screens for both drills.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/game"
	"github.com/verte-zerg/tuidrill/internal/model"
)

const frameInterval = time.Second / 30

// Recorder stores a finished session.
type Recorder interface {
	Finish(ctx context.Context, user model.User, r model.Result) backend.Summary
}

// Sound is the gun shot effect.
type Sound interface {
	Play() bool
}

// Options are the collaborators of a game screen. Nil fields disable the
// matching side effect.
type Options struct {
	User     model.User
	Recorder Recorder
	Sound    Sound
	Log      *log.Logger
}

type frameMsg time.Time

type recordedMsg struct {
	summary backend.Summary
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// events collects observer callbacks raised during one Update so they can be
// turned into commands afterwards.
type events struct {
	capture *bool
	shots   int
	ended   *model.Result
	exited  bool
}

func (e *events) observer() game.Observer {
	return game.ObserverFuncs{
		OnInputCapture: func(on bool) { e.capture = &on },
		OnShot:         func() { e.shots++ },
		OnEnded:        func(r model.Result) { e.ended = &r },
		OnExit:         func() { e.exited = true },
	}
}

// drain turns collected events into commands and resets them. mouse selects
// whether input capture toggles mouse reporting.
func (e *events) drain(opts Options, mouse bool) []tea.Cmd {
	var cmds []tea.Cmd
	if e.capture != nil && mouse {
		if *e.capture {
			cmds = append(cmds, tea.EnableMouseAllMotion)
		} else {
			cmds = append(cmds, tea.DisableMouse)
		}
	}
	if opts.Sound != nil {
		for range e.shots {
			opts.Sound.Play()
		}
	}
	if e.ended != nil {
		cmds = append(cmds, record(opts, *e.ended))
	}
	if e.exited {
		cmds = append(cmds, tea.Quit)
	}
	*e = events{}
	return cmds
}

func record(opts Options, r model.Result) tea.Cmd {
	if opts.Recorder == nil {
		return nil
	}
	return func() tea.Msg {
		return recordedMsg{summary: opts.Recorder.Finish(context.Background(), opts.User, r)}
	}
}

func logRecorded(opts Options, sum backend.Summary) {
	if opts.Log == nil {
		return
	}
	switch {
	case sum.Entry == nil:
		opts.Log.Warn("score not saved", "user", opts.User.DisplayName, "failures", sum.Failures)
	case sum.Failures > 0:
		opts.Log.Warn("session partly recorded", "user", opts.User.DisplayName, "failures", sum.Failures)
	default:
		opts.Log.Debug("session recorded", "user", opts.User.DisplayName, "score", sum.Entry.Score)
	}
}

// clock converts frame timestamps into elapsed game time.
type clock struct {
	last time.Time
}

func (c *clock) tick(t time.Time) time.Duration {
	if c.last.IsZero() || t.Before(c.last) {
		c.last = t
		return 0
	}
	dt := t.Sub(c.last)
	c.last = t
	return dt
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	hudStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(1, 3)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
)

// summaryLines describes what was recorded after a session.
func summaryLines(sum *backend.Summary, recording bool) []string {
	if sum == nil {
		if recording {
			return []string{footerStyle.Render("Saving score...")}
		}
		return nil
	}
	var lines []string
	if sum.Entry == nil {
		lines = append(lines, warningStyle.Render("Score not saved"))
	}
	for _, a := range sum.Unlocked {
		lines = append(lines, titleStyle.Render(fmt.Sprintf("Achievement unlocked: %s (+%d)", a.Title, a.CoinReward)))
	}
	if coins := sum.Coins + sum.TaskCoins; coins > 0 {
		lines = append(lines, fmt.Sprintf("Coins earned: %d", coins))
	}
	return lines
}

func panel(width, height int, lines ...string) string {
	box := panelStyle.Render(strings.Join(lines, "\n"))
	if width == 0 || height == 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func footer(width int, text string) string {
	line := footerStyle.Render(text)
	if width == 0 {
		return line
	}
	return lipgloss.Place(width, 1, lipgloss.Center, lipgloss.Center, line)
}
