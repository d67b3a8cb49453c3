package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type cell struct {
	r     rune
	style int
}

const (
	styleNone = iota
	styleTarget
	styleTargetCore
	styleCrosshair
	styleZombie
	styleZombieActive
	styleTyped
	stylePlayerLine
)

var cellStyles = map[int]lipgloss.Style{
	styleTarget:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	styleTargetCore:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#FF4D4F")),
	styleCrosshair:    lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
	styleZombie:       lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	styleZombieActive: lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
	styleTyped:        lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Underline(true),
	stylePlayerLine:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
}

// canvas is a fixed grid of single-width cells.
type canvas struct {
	width  int
	height int
	cells  [][]cell
}

func newCanvas(width, height int) *canvas {
	width, height = max(width, 0), max(height, 0)
	cells := make([][]cell, height)
	for y := range cells {
		row := make([]cell, width)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		cells[y] = row
	}
	return &canvas{width: width, height: height, cells: cells}
}

func (c *canvas) set(x, y int, r rune, style int) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = cell{r: r, style: style}
}

// text writes s from x, clipping at the edges. Wide runes are replaced.
func (c *canvas) text(x, y int, s string, style int) {
	for _, r := range s {
		if runewidth.RuneWidth(r) != 1 {
			r = '?'
		}
		c.set(x, y, r, style)
		x++
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].style == row[start].style {
				continue
			}
			b.WriteString(renderRun(row[start:x]))
			start = x
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func renderRun(run []cell) string {
	if len(run) == 0 {
		return ""
	}
	runes := make([]rune, len(run))
	for i, c := range run {
		runes[i] = c.r
	}
	style, ok := cellStyles[run[0].style]
	if !ok {
		return string(runes)
	}
	return style.Render(string(runes))
}

// plain returns the canvas text without styling.
func (c *canvas) plain() []string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		runes := make([]rune, len(row))
		for x, cl := range row {
			runes[x] = cl.r
		}
		lines[y] = string(runes)
	}
	return lines
}
