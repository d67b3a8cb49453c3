package wordlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPoolForWaveTiers(t *testing.T) {
	v := Default()
	cases := []struct {
		wave int
		want int
	}{
		{1, len(v.Easy) + 10},
		{2, len(v.Easy) + 10},
		{3, 5 + len(v.Medium) + 15},
		{5, 5 + len(v.Medium) + 15},
		{6, len(v.Medium) + len(v.Hard)},
		{42, len(v.Medium) + len(v.Hard)},
	}
	for _, tc := range cases {
		if got := len(v.PoolForWave(tc.wave)); got != tc.want {
			t.Fatalf("wave %d: pool size %d, want %d", tc.wave, got, tc.want)
		}
	}
	if v.PoolForWave(1)[0] != "AIM" {
		t.Fatalf("expected easy words first in the early pool")
	}
}

func TestDefaultReturnsCopies(t *testing.T) {
	v := Default()
	v.Easy[0] = "CHANGED"
	if Default().Easy[0] != "AIM" {
		t.Fatalf("default vocabulary was mutated through a copy")
	}
}

func TestLoadVocabularyTiersAndFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	body := "# custom\nrot\nfang\nfang\nwerewolf\n> the moon is full tonight\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}
	if len(v.Easy) != 1 || v.Easy[0] != "ROT" {
		t.Fatalf("unexpected easy tier: %v", v.Easy)
	}
	if len(v.Medium) != 1 || v.Medium[0] != "FANG" {
		t.Fatalf("unexpected medium tier: %v", v.Medium)
	}
	if len(v.Hard) != 1 || v.Hard[0] != "WEREWOLF" {
		t.Fatalf("unexpected hard tier: %v", v.Hard)
	}
	if len(v.Paragraphs) != 1 || v.Paragraphs[0] != "THE MOON IS FULL TONIGHT" {
		t.Fatalf("unexpected paragraphs: %v", v.Paragraphs)
	}

	onlyWords := filepath.Join(t.TempDir(), "short.txt")
	if err := os.WriteFile(onlyWords, []byte("cat\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	v, err = LoadVocabulary(onlyWords)
	if err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}
	if len(v.Hard) != len(Default().Hard) || len(v.Paragraphs) != len(Default().Paragraphs) {
		t.Fatalf("expected empty tiers to fall back to defaults")
	}
}

func TestLoadVocabularyErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n# nothing\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadVocabulary(empty); err == nil {
		t.Fatalf("expected empty list error")
	}
	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte("ok\nnot-ok\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadVocabulary(bad); err == nil {
		t.Fatalf("expected invalid word error")
	}
	if _, err := LoadVocabulary(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
