package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Player", "Score", "Mode"}
	rows := [][]string{
		{"ann", "1250", "typing"},
		{"björn", "9", "aim"},
	}
	rightAlign := map[int]bool{1: true}

	lines := FormatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Player Score Mode" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "ann     1250 typing" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "björn      9 aim" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesCellWidth(t *testing.T) {
	lines := FormatTable([]string{"Name", "Coins"}, [][]string{{"忍者", "5"}}, nil)
	if lines[1] != "忍者 5" {
		t.Fatalf("expected wide runes counted as two cells, got %q", lines[1])
	}
}
