package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultChartHeight  = 8
	minChartWidth       = 10
	axisSeparator       = " │ "
	terminalWidthBackup = 80
	barColor            = "\x1b[36m"
	colorReset          = "\x1b[0m"
)

// eighth blocks, index 0 is empty.
var barBlocks = []rune(" ▁▂▃▄▅▆▇█")

// PlotBars renders values as a column chart, one column per value after
// resampling to width. Width 0 fits the terminal.
func PlotBars(w io.Writer, title string, values []float64, width, height int, useColor bool) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	_, hi := minMax(values)
	label := fmt.Sprintf("%.0f", hi)
	if width <= 0 {
		width = ChartWidthFor(terminalWidth(), len(label))
	}
	width = max(width, minChartWidth)
	cols := resample(values, width)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	levels := height * 8
	for row := height - 1; row >= 0; row-- {
		axis := ""
		switch row {
		case height - 1:
			axis = label
		case 0:
			axis = "0"
		}
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%*s%s", len(label), axis, axisSeparator))
		if useColor {
			b.WriteString(barColor)
		}
		for _, v := range cols {
			filled := 0
			if hi > 0 {
				filled = int(math.Round(v / hi * float64(levels)))
			}
			cell := max(0, min(filled-row*8, 8))
			b.WriteRune(barBlocks[cell])
		}
		if useColor {
			b.WriteString(colorReset)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

// ChartWidthFor computes the chart width left after the axis labels.
func ChartWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	return max(totalWidth-labelWidth-len([]rune(axisSeparator)), minChartWidth)
}

// resample averages values down to n columns. Shorter series keep their length.
func resample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	step := float64(len(values)) / float64(n)
	for i := range out {
		start := int(float64(i) * step)
		end := max(int(float64(i+1)*step), start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
