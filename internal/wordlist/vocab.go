package wordlist

// Vocabulary holds the difficulty tiers of the typing drill and its boss paragraphs.
type Vocabulary struct {
	Easy       []string
	Medium     []string
	Hard       []string
	Paragraphs []string
}

var defaultEasy = []string{
	"AIM", "GUN", "HIT", "RUN", "DIE", "WAR", "END", "WIN", "RED", "CUT",
	"JAW", "AXE", "BOW", "FLY", "JAB", "ZAP", "VEX", "FOX", "HEX", "MIX",
}

var defaultMedium = []string{
	"BRAIN", "SHOOT", "BLAST", "QUICK", "DEATH", "UNDEAD", "HORDE", "SPAWN",
	"SKULL", "GRAVE", "CRYPT", "FLESH", "DECAY", "TOXIC", "VIRUS", "PLAGUE",
	"CHAOS", "STORM", "NIGHT", "DEMON", "GHOST", "CORPSE", "BONES", "BLOOD",
	"FRENZY", "HORROR", "TERROR", "MUTANT", "ATTACK", "DEFEND", "ESCAPE",
}

var defaultHard = []string{
	"ZOMBIE", "SURVIVE", "HEADSHOT", "RAMPAGE", "OUTBREAK", "INFECTED",
	"APOCALYPSE", "NIGHTMARE", "SLAUGHTER", "MASSACRE", "DESTROYER",
	"CARNAGE", "VENGEANCE", "DECIMATION", "ANNIHILATE", "OBLITERATE",
	"EXTERMINATE", "EVISCERATE", "CATASTROPHE", "DEVASTATION", "REANIMATED",
	"NECROMANCER", "GRAVEYARD", "CEMETERY", "INFECTION", "QUARANTINE",
	"BIOHAZARD", "PANDEMIC", "CONTAGION", "EPIDEMIC", "CONTAMINATE",
}

var defaultParagraphs = []string{
	"THE UNDEAD RISE FROM THEIR GRAVES SEEKING VENGEANCE UPON THE LIVING",
	"DARKNESS CONSUMES ALL WHO DARE TO FACE THE ZOMBIE HORDE ALONE",
	"SURVIVE THE NIGHT OR BECOME ONE OF THE WALKING DEAD FOREVER",
	"THE APOCALYPSE HAS BEGUN AND ONLY THE FASTEST FINGERS WILL LIVE",
	"FEAR THE REAPER FOR HE COMMANDS AN ARMY OF ROTTING CORPSES",
	"TYPE FAST OR DIE SLOW IN THIS HELLSCAPE OF UNDEAD NIGHTMARES",
	"THE BOSS ZOMBIE HUNGERS FOR YOUR BRAIN TYPE TO DESTROY IT NOW",
	"INFECTED BLOOD RUNS THROUGH THE VEINS OF THIS MONSTROUS BEAST",
	"ANNIHILATE THE NECROMANCER BEFORE HE RAISES MORE UNDEAD MINIONS",
	"CATASTROPHIC DESTRUCTION AWAITS THOSE WHO FAIL TO TYPE QUICKLY",
}

// Default returns the built-in vocabulary. The slices are copies.
func Default() Vocabulary {
	return Vocabulary{
		Easy:       append([]string(nil), defaultEasy...),
		Medium:     append([]string(nil), defaultMedium...),
		Hard:       append([]string(nil), defaultHard...),
		Paragraphs: append([]string(nil), defaultParagraphs...),
	}
}

// PoolForWave returns the full word pool for a wave. Waves 1-2 draw from easy words
// and the first ten medium words, waves 3-5 mix in the first fifteen hard words, and
// later waves use medium and hard words only.
func (v Vocabulary) PoolForWave(wave int) []string {
	var pool []string
	switch {
	case wave <= 2:
		pool = append(pool, v.Easy...)
		pool = append(pool, head(v.Medium, 10)...)
	case wave <= 5:
		pool = append(pool, head(v.Easy, 5)...)
		pool = append(pool, v.Medium...)
		pool = append(pool, head(v.Hard, 15)...)
	default:
		pool = append(pool, v.Medium...)
		pool = append(pool, v.Hard...)
	}
	return pool
}

func head(words []string, n int) []string {
	if n > len(words) {
		n = len(words)
	}
	return words[:n]
}
