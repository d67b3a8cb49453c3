package stats

import "math"

// Scoring rules of the typing drill.
const (
	WordBasePoints   = 100
	WordLetterPoints = 10
	BossCharPoints   = 5
	BossDefeatBonus  = 500
	ZombieDamage     = 20
	BossDamage       = 50
	MaxHealth        = 100
	AimPointsPerHit  = 1
	BossMaxHealthPct = 100.0
)

// Accuracy returns round(100*hits/attempts), or 0 when nothing was attempted.
// The result is clamped to [0,100].
func Accuracy(hits, attempts int) int {
	if attempts <= 0 || hits <= 0 {
		return 0
	}
	if hits > attempts {
		hits = attempts
	}
	return int(math.Round(100 * float64(hits) / float64(attempts)))
}

// WordPoints returns the award for completing a word.
func WordPoints(word string) int {
	return WordBasePoints + WordLetterPoints*len(word)
}

// BossPoints returns the total award for typing a whole boss paragraph.
func BossPoints(paragraph string) int {
	return BossCharPoints*len(paragraph) + BossDefeatBonus
}

// BossDamagePerChar returns the boss health percentage removed per typed character.
func BossDamagePerChar(paragraph string) float64 {
	if len(paragraph) == 0 {
		return BossMaxHealthPct
	}
	return BossMaxHealthPct / float64(len(paragraph))
}
