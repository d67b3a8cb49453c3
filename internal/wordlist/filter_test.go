package wordlist

import "testing"

func TestNormalizeWord(t *testing.T) {
	got, ok := NormalizeWord(" zombie ")
	if !ok || got != "ZOMBIE" {
		t.Fatalf("expected ZOMBIE, got %q ok=%v", got, ok)
	}
	for _, word := range []string{"", "résumé", "naïve", "don’t", "co-op", "abc1"} {
		if _, ok := NormalizeWord(word); ok {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestNormalizeParagraph(t *testing.T) {
	got, ok := NormalizeParagraph("  the   undead\trise ")
	if !ok || got != "THE UNDEAD RISE" {
		t.Fatalf("unexpected paragraph %q ok=%v", got, ok)
	}
	if _, ok := NormalizeParagraph("run, now!"); ok {
		t.Fatalf("expected punctuation to be rejected")
	}
}
