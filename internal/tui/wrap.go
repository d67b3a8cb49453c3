package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = currentWordStyle.Underline(true)
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles a paragraph of which the first typed runes are done.
// The word under the cursor is highlighted and the cursor rune underlined.
func buildStyledRunes(text []rune, typed int) []styledRune {
	cursor := -1
	if typed < len(text) {
		cursor = typed
	}
	current := wordForCursor(findWords(text), cursor)

	out := make([]styledRune, 0, len(text))
	for i, r := range text {
		style := pendingStyle
		switch {
		case i < typed:
			style = correctStyle
		case i == cursor:
			style = cursorStyle
		case current != nil && i >= current.start && i < current.end:
			style = currentWordStyle
		}
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(text []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(text)})
	}
	return words
}

// wordForCursor returns the word containing the cursor, or the next one when
// the cursor sits on a space. A negative cursor selects nothing.
func wordForCursor(words []wordRange, cursor int) *wordRange {
	if cursor < 0 {
		return nil
	}
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return nil
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at spaces so no line exceeds width cells. A
// word longer than width is split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
