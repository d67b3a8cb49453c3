// Package generator plans target placements and typing drill word waves.
package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/wordlist"
)

// Aim corridor bounds and placement policy.
const (
	MinX = -2.5
	MaxX = 2.5
	MinY = 1.0
	MaxY = 1.8
	MinZ = -8.0
	MaxZ = 0.0

	MinTargetDistance = 3.5
	MaxPlacementTries = 20
)

// Zone restricts the horizontal band of a placement.
type Zone int

const (
	ZoneAny Zone = iota - 1
	ZoneLeft
	ZoneCenter
	ZoneRight
)

// Generator produces randomized placements and word selections.
type Generator struct {
	rnd   *rand.Rand
	vocab wordlist.Vocabulary
}

// New returns a Generator seeded with the current time.
func New(vocab wordlist.Vocabulary) *Generator {
	return NewSeeded(vocab, time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(vocab wordlist.Vocabulary, seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), vocab: vocab}
}

// Placement is the outcome of one target placement.
type Placement struct {
	Pos model.Vec3
	// Exhausted is set when every try was too close to an existing target and the
	// last candidate was accepted anyway.
	Exhausted bool
	Tries     int
}

// Place picks a position inside the corridor, optionally limited to a zone, at least
// MinTargetDistance away from every existing position. After MaxPlacementTries
// rejected candidates the last one is accepted.
func (g *Generator) Place(zone Zone, existing []model.Vec3) Placement {
	var pos model.Vec3
	for try := 1; try <= MaxPlacementTries; try++ {
		pos = model.Vec3{
			X: g.zoneX(zone),
			Y: g.rnd.Float64()*(MaxY-MinY) + MinY,
			Z: g.rnd.Float64()*(MaxZ-MinZ) + MinZ,
		}
		if !tooClose(pos, existing) {
			return Placement{Pos: pos, Tries: try}
		}
	}
	return Placement{Pos: pos, Exhausted: true, Tries: MaxPlacementTries}
}

func (g *Generator) zoneX(zone Zone) float64 {
	switch zone {
	case ZoneLeft:
		return g.rnd.Float64()*1.2 - 2.5
	case ZoneCenter:
		return g.rnd.Float64()*1.4 - 0.7
	case ZoneRight:
		return g.rnd.Float64()*1.2 + 1.3
	default:
		return g.rnd.Float64()*(MaxX-MinX) + MinX
	}
}

// InitialTargets places count targets. The first three go to the left, center and
// right zones in that order; any further targets use the whole width.
func (g *Generator) InitialTargets(count int) []model.Vec3 {
	out := make([]model.Vec3, 0, count)
	for i := 0; i < count; i++ {
		zone := ZoneAny
		if i < 3 {
			zone = Zone(i)
		}
		out = append(out, g.Place(zone, out).Pos)
	}
	return out
}

// Reposition places a replacement for the target at index, avoiding the others.
func (g *Generator) Reposition(targets []model.Vec3, index int) Placement {
	others := lo.Filter(targets, func(_ model.Vec3, i int) bool { return i != index })
	return g.Place(ZoneAny, others)
}

// Distance returns the euclidean distance between two positions.
func Distance(a, b model.Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func tooClose(pos model.Vec3, existing []model.Vec3) bool {
	return lo.SomeBy(existing, func(other model.Vec3) bool {
		return Distance(pos, other) < MinTargetDistance
	})
}

// WordsPerWave returns how many zombies a normal wave spawns.
func WordsPerWave(wave int) int {
	return wave + 1
}

// IsBossWave reports whether the wave is a boss encounter.
func IsBossWave(wave int) bool {
	return wave > 0 && wave%10 == 0
}

// WaveWords selects WordsPerWave(wave) words from the wave's tier, skipping words in
// used and adding the picks to it. When fewer eligible words remain than needed,
// used is cleared and the whole tier is eligible again; the second return value
// reports that reset.
func (g *Generator) WaveWords(wave int, used map[string]struct{}) ([]string, bool) {
	need := WordsPerWave(wave)
	pool := g.vocab.PoolForWave(wave)
	available := lo.Filter(pool, func(w string, _ int) bool {
		_, seen := used[w]
		return !seen
	})
	reset := false
	if len(available) < need {
		clear(used)
		available = pool
		reset = true
	}
	shuffled := append([]string(nil), available...)
	g.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if need > len(shuffled) {
		need = len(shuffled)
	}
	words := shuffled[:need]
	for _, w := range words {
		used[w] = struct{}{}
	}
	return words, reset
}

// BossParagraph picks a paragraph uniformly at random.
func (g *Generator) BossParagraph() string {
	if len(g.vocab.Paragraphs) == 0 {
		return ""
	}
	return g.vocab.Paragraphs[g.rnd.Intn(len(g.vocab.Paragraphs))]
}

// Float64 exposes the generator's source for lane jitter and similar cosmetic values.
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}
