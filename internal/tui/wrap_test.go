package tui

import (
	"strings"
	"testing"
)

func TestBuildStyledRunesCursor(t *testing.T) {
	runes := buildStyledRunes([]rune("AB"), 1)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("A") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != cursorStyle.Render("B") {
		t.Fatalf("expected cursor style for second rune")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	runes := buildStyledRunes([]rune("A"), 1)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("A") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	runes := buildStyledRunes([]rune("ONE TWO"), 1)
	if runes[0].s != correctStyle.Render("O") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[1].s != cursorStyle.Render("N") {
		t.Fatalf("expected cursor style at the next rune")
	}
	if runes[2].s != currentWordStyle.Render("E") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("T") {
		t.Fatalf("expected pending style for next word")
	}
	if runes[6].s != pendingStyle.Render("O") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesCursorOnSpaceHighlightsNextWord(t *testing.T) {
	runes := buildStyledRunes([]rune("ONE TWO"), 3)
	if runes[4].s != currentWordStyle.Render("T") {
		t.Fatalf("expected the upcoming word highlighted")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	plain := func(text string) []styledRune {
		out := make([]styledRune, 0, len(text))
		for _, r := range text {
			out = append(out, styledRune{s: string(r), width: 1, isSpace: r == ' '})
		}
		return out
	}
	got := wrapStyledRunes(plain("ZOMBIE HORDE INCOMING"), 13)
	if got != "ZOMBIE HORDE\nINCOMING" {
		t.Fatalf("unexpected wrap %q", got)
	}
	got = wrapStyledRunes(plain("BARRICADE"), 4)
	if lines := strings.Split(got, "\n"); len(lines) != 3 || lines[0] != "BARR" {
		t.Fatalf("expected long word split, got %q", got)
	}
}
