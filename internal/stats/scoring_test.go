package stats

import "testing"

func TestAccuracy(t *testing.T) {
	cases := []struct {
		hits, attempts, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{7, 10, 70},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
		{12, 10, 100},
		{-1, 4, 0},
	}
	for _, tc := range cases {
		if got := Accuracy(tc.hits, tc.attempts); got != tc.want {
			t.Fatalf("Accuracy(%d,%d)=%d want %d", tc.hits, tc.attempts, got, tc.want)
		}
	}
}

func TestWordAndBossPoints(t *testing.T) {
	if got := WordPoints("GUN"); got != 130 {
		t.Fatalf("GUN should be worth 130, got %d", got)
	}
	if got := WordPoints("APOCALYPSE"); got != 200 {
		t.Fatalf("APOCALYPSE should be worth 200, got %d", got)
	}
	paragraph := make([]byte, 70)
	for i := range paragraph {
		paragraph[i] = 'A'
	}
	if got := BossPoints(string(paragraph)); got != 850 {
		t.Fatalf("70-char boss should be worth 850, got %d", got)
	}
	if got := BossDamagePerChar("ABCD"); got != 25 {
		t.Fatalf("expected 25%% per char, got %v", got)
	}
	if got := BossDamagePerChar(""); got != 100 {
		t.Fatalf("expected full damage for empty paragraph, got %v", got)
	}
}
