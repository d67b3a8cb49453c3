package game

import (
	"time"
	"unicode"

	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/schedule"
	"github.com/verte-zerg/tuidrill/internal/stats"
)

// Typing drill timing and movement.
const (
	MoveTick       = 50 * time.Millisecond
	WaveClearDelay = 2000 * time.Millisecond
	BossClearDelay = 2500 * time.Millisecond

	ZombieSpawnZ    = -8.0
	ZombieSpacing   = 2.5
	ZombieReachZ    = 6.0
	ZombieLaneWidth = 6.0
	BossSpawnZ      = -15.0
	BossReachZ      = 5.0
)

// ZombieSpeed is the approach speed in units per second for a wave.
func ZombieSpeed(wave int) float64 {
	return 1.5 + min(0.15*float64(wave), 1.5)
}

// BossSpeed is the boss approach speed in units per second for a wave.
func BossSpeed(wave int) float64 {
	return 0.8 + 0.05*float64(wave)
}

// TypingConfig tunes a typing session.
type TypingConfig struct {
	Countdown int
}

// DefaultTypingConfig returns the standard three second countdown.
func DefaultTypingConfig() TypingConfig {
	return TypingConfig{Countdown: 3}
}

// Zombie is one word-carrying enemy.
type Zombie struct {
	ID        int
	Word      string
	Typed     int
	X         float64
	Z         float64
	Dead      bool
	HitPlayer bool
}

// Remaining returns the untyped suffix of the word.
func (z Zombie) Remaining() string {
	return z.Word[z.Typed:]
}

// Boss is the paragraph enemy of every tenth wave.
type Boss struct {
	Paragraph string
	Typed     int
	Health    float64
	Z         float64
}

// WaveClear describes the interlude between a cleared wave and the next one.
type WaveClear struct {
	Wave   int
	Points int
	Boss   bool
}

// TypingSnapshot is a read-only copy of a typing session.
type TypingSnapshot struct {
	Phase     model.Phase
	Countdown int
	Score     int
	Health    int
	Wave      int
	Kills     int
	Accuracy  int
	Zombies   []Zombie
	Active    int
	Boss      *Boss
	Cleared   *WaveClear
	Result    *model.Result
}

// TypingSession runs the endless zombie wave drill.
type TypingSession struct {
	cfg   TypingConfig
	gen   *generator.Generator
	sched *schedule.Scheduler
	obs   Observer
	now   func() time.Time

	phase      model.Phase
	countdown  int
	score      int
	health     int
	wave       int
	wavePoints int
	kills      int
	keystrokes int
	correct    int
	elapsed    time.Duration

	zombies []Zombie
	active  int
	boss    *Boss
	used    map[string]struct{}
	nextID  int
	cleared *WaveClear
	move    schedule.Handle
	result  *model.Result
}

// NewTypingSession returns an idle typing session.
func NewTypingSession(cfg TypingConfig, gen *generator.Generator, obs Observer) *TypingSession {
	if cfg.Countdown < 0 {
		cfg.Countdown = 0
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &TypingSession{
		cfg:    cfg,
		gen:    gen,
		sched:  schedule.New(),
		obs:    obs,
		now:    time.Now,
		phase:  model.PhaseIdle,
		active: -1,
		used:   map[string]struct{}{},
	}
}

// Phase returns the current phase.
func (s *TypingSession) Phase() model.Phase { return s.phase }

// Start begins a new session from Idle or Ended.
func (s *TypingSession) Start() bool {
	if s.phase != model.PhaseIdle && s.phase != model.PhaseEnded {
		return false
	}
	s.begin()
	return true
}

// Restart starts over, but only while Active.
func (s *TypingSession) Restart() bool {
	if s.phase != model.PhaseActive {
		return false
	}
	s.begin()
	return true
}

func (s *TypingSession) begin() {
	s.sched.CancelAll()
	s.score, s.wavePoints, s.kills = 0, 0, 0
	s.keystrokes, s.correct = 0, 0
	s.health = stats.MaxHealth
	s.wave = 1
	s.elapsed = 0
	s.cleared = nil
	s.result = nil
	clear(s.used)
	s.spawnWave(s.wave)

	s.countdown = s.cfg.Countdown
	if s.countdown == 0 {
		s.activate()
		return
	}
	s.phase = model.PhaseCountdown
	var h schedule.Handle
	h = s.sched.Every(time.Second, func() {
		s.countdown--
		if s.countdown <= 0 {
			h.Cancel()
			s.activate()
		}
	})
}

func (s *TypingSession) activate() {
	s.phase = model.PhaseActive
	s.obs.InputCapture(true)
	s.move = s.sched.Every(MoveTick, s.step)
}

func (s *TypingSession) spawnWave(wave int) {
	s.zombies = nil
	s.boss = nil
	s.active = -1
	if generator.IsBossWave(wave) {
		s.boss = &Boss{Paragraph: s.gen.BossParagraph(), Health: stats.BossMaxHealthPct, Z: BossSpawnZ}
		return
	}
	words, _ := s.gen.WaveWords(wave, s.used)
	s.zombies = make([]Zombie, 0, len(words))
	for i, w := range words {
		s.nextID++
		s.zombies = append(s.zombies, Zombie{
			ID:   s.nextID,
			Word: w,
			X:    (s.gen.Float64() - 0.5) * ZombieLaneWidth,
			Z:    ZombieSpawnZ - float64(i)*ZombieSpacing,
		})
	}
	if len(s.zombies) > 0 {
		s.active = 0
	}
}

// step advances enemies by one movement tick.
func (s *TypingSession) step() {
	s.elapsed += MoveTick
	if s.cleared != nil {
		return
	}
	dt := MoveTick.Seconds()

	if s.boss != nil {
		s.boss.Z += BossSpeed(s.wave) * dt
		if s.boss.Z > BossReachZ {
			s.boss.Z = BossSpawnZ
			s.damage(stats.BossDamage)
		}
		return
	}

	speed := ZombieSpeed(s.wave)
	for i := range s.zombies {
		z := &s.zombies[i]
		if z.Dead {
			continue
		}
		z.Z += speed * dt
		if z.Z > ZombieReachZ {
			z.Dead = true
			z.HitPlayer = true
			s.damage(stats.ZombieDamage)
			if s.phase == model.PhaseEnded {
				return
			}
		}
	}
	if s.active >= 0 && s.zombies[s.active].Dead {
		s.selectNext()
	}
	if s.active < 0 && len(s.zombies) > 0 {
		s.waveCleared(false)
	}
}

func (s *TypingSession) damage(amount int) {
	s.health = max(0, s.health-amount)
	if s.health == 0 {
		s.end()
	}
}

func (s *TypingSession) selectNext() {
	s.active = -1
	for i, z := range s.zombies {
		if !z.Dead {
			s.active = i
			return
		}
	}
}

// KeyTyped feeds one keystroke. Keys outside Active or during the wave-clear
// interlude are ignored. It reports whether the key matched the next character.
func (s *TypingSession) KeyTyped(r rune) bool {
	if s.phase != model.PhaseActive || s.cleared != nil {
		return false
	}
	r = unicode.ToUpper(r)

	if s.boss != nil {
		s.keystrokes++
		text := []rune(s.boss.Paragraph)
		if s.boss.Typed >= len(text) || text[s.boss.Typed] != r {
			return false
		}
		s.hit()
		s.boss.Typed++
		s.boss.Health = max(0, s.boss.Health-stats.BossDamagePerChar(s.boss.Paragraph))
		s.award(stats.BossCharPoints)
		if s.boss.Typed == len(text) {
			s.boss.Health = 0
			s.kills++
			s.award(stats.BossDefeatBonus)
			s.waveCleared(true)
		}
		return true
	}

	if s.active < 0 {
		return false
	}
	s.keystrokes++
	z := &s.zombies[s.active]
	word := []rune(z.Word)
	if word[z.Typed] != r {
		return false
	}
	s.hit()
	z.Typed++
	if z.Typed == len(word) {
		z.Dead = true
		s.kills++
		s.award(stats.WordPoints(z.Word))
		s.selectNext()
		if s.active < 0 {
			s.waveCleared(false)
		}
	}
	return true
}

func (s *TypingSession) hit() {
	s.correct++
	s.obs.Shot()
}

func (s *TypingSession) award(points int) {
	s.score += points
	s.wavePoints += points
}

func (s *TypingSession) waveCleared(boss bool) {
	s.cleared = &WaveClear{Wave: s.wave, Points: s.wavePoints, Boss: boss}
	delay := WaveClearDelay
	if boss {
		delay = BossClearDelay
	}
	s.sched.After(delay, s.nextWave)
}

func (s *TypingSession) nextWave() {
	s.cleared = nil
	s.wave++
	s.wavePoints = 0
	s.spawnWave(s.wave)
}

// Pause suspends an active session. It is ignored during the wave-clear interlude.
func (s *TypingSession) Pause() bool {
	if s.phase != model.PhaseActive || s.cleared != nil {
		return false
	}
	s.phase = model.PhasePaused
	s.move.Cancel()
	s.obs.InputCapture(false)
	return true
}

// Resume continues a paused session.
func (s *TypingSession) Resume() bool {
	if s.phase != model.PhasePaused {
		return false
	}
	s.phase = model.PhaseActive
	s.obs.InputCapture(true)
	s.move = s.sched.Every(MoveTick, s.step)
	return true
}

// TogglePause pauses an active session or resumes a paused one.
func (s *TypingSession) TogglePause() bool {
	if s.phase == model.PhasePaused {
		return s.Resume()
	}
	return s.Pause()
}

// Exit abandons the session from any phase.
func (s *TypingSession) Exit() {
	s.sched.CancelAll()
	s.phase = model.PhaseIdle
	s.zombies = nil
	s.boss = nil
	s.active = -1
	s.cleared = nil
	s.obs.InputCapture(false)
	s.obs.Exited()
}

func (s *TypingSession) end() {
	s.sched.CancelAll()
	s.phase = model.PhaseEnded
	s.cleared = nil
	s.obs.InputCapture(false)
	result := model.Result{
		Mode:     model.ModeTyping,
		Score:    s.score,
		Accuracy: stats.Accuracy(s.correct, s.keystrokes),
		Wave:     s.wave,
		Kills:    s.kills,
		Hits:     s.correct,
		Attempts: s.keystrokes,
		Duration: s.elapsed,
		EndedAt:  s.now(),
	}
	s.result = &result
	s.obs.SessionEnded(result)
}

// Advance moves the session clock forward.
func (s *TypingSession) Advance(dt time.Duration) {
	s.sched.Advance(dt)
}

// Snapshot copies the current state.
func (s *TypingSession) Snapshot() TypingSnapshot {
	snap := TypingSnapshot{
		Phase:     s.phase,
		Countdown: s.countdown,
		Score:     s.score,
		Health:    s.health,
		Wave:      s.wave,
		Kills:     s.kills,
		Accuracy:  stats.Accuracy(s.correct, s.keystrokes),
		Zombies:   append([]Zombie(nil), s.zombies...),
		Active:    s.active,
	}
	if s.boss != nil {
		b := *s.boss
		snap.Boss = &b
	}
	if s.cleared != nil {
		c := *s.cleared
		snap.Cleared = &c
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}
