package game

import (
	"time"

	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/schedule"
	"github.com/verte-zerg/tuidrill/internal/stats"
)

// AimConfig tunes an aim session.
type AimConfig struct {
	Duration  time.Duration
	Countdown int
	Targets   int
}

// DefaultAimConfig returns a one minute session with three targets.
func DefaultAimConfig() AimConfig {
	return AimConfig{Duration: 60 * time.Second, Countdown: 3, Targets: 3}
}

// AimSnapshot is a read-only copy of an aim session.
type AimSnapshot struct {
	Phase     model.Phase
	Countdown int
	Remaining int
	Score     int
	Hits      int
	Attempts  int
	Accuracy  int
	Targets   []model.Vec3
	Result    *model.Result
}

// AimSession runs the timed target drill.
type AimSession struct {
	cfg   AimConfig
	gen   *generator.Generator
	sched *schedule.Scheduler
	obs   Observer
	now   func() time.Time

	phase     model.Phase
	countdown int
	remaining int
	score     int
	hits      int
	attempts  int
	targets   []model.Vec3
	exhausted int
	clock     schedule.Handle
	result    *model.Result
}

// NewAimSession returns an idle aim session.
func NewAimSession(cfg AimConfig, gen *generator.Generator, obs Observer) *AimSession {
	def := DefaultAimConfig()
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}
	if cfg.Targets <= 0 {
		cfg.Targets = def.Targets
	}
	if cfg.Countdown < 0 {
		cfg.Countdown = 0
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &AimSession{
		cfg:   cfg,
		gen:   gen,
		sched: schedule.New(),
		obs:   obs,
		now:   time.Now,
		phase: model.PhaseIdle,
	}
}

// Phase returns the current phase.
func (s *AimSession) Phase() model.Phase { return s.phase }

// Start begins a new session from Idle or Ended. Restart covers Active.
func (s *AimSession) Start() bool {
	if s.phase != model.PhaseIdle && s.phase != model.PhaseEnded {
		return false
	}
	s.begin()
	return true
}

// Restart starts over, but only while Active.
func (s *AimSession) Restart() bool {
	if s.phase != model.PhaseActive {
		return false
	}
	s.begin()
	return true
}

func (s *AimSession) begin() {
	s.sched.CancelAll()
	s.score, s.hits, s.attempts, s.exhausted = 0, 0, 0, 0
	s.remaining = int(s.cfg.Duration / time.Second)
	if s.remaining <= 0 {
		s.remaining = 1
	}
	s.result = nil
	s.targets = s.gen.InitialTargets(s.cfg.Targets)
	s.startCountdown()
}

func (s *AimSession) startCountdown() {
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

func (s *AimSession) activate() {
	s.phase = model.PhaseActive
	s.obs.InputCapture(true)
	s.armClock()
}

func (s *AimSession) armClock() {
	s.clock = s.sched.Every(time.Second, func() {
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = 0
			s.end()
		}
	})
}

// Pause suspends an active session; the clock stops.
func (s *AimSession) Pause() bool {
	if s.phase != model.PhaseActive {
		return false
	}
	s.phase = model.PhasePaused
	s.clock.Cancel()
	s.obs.InputCapture(false)
	return true
}

// Resume continues a paused session.
func (s *AimSession) Resume() bool {
	if s.phase != model.PhasePaused {
		return false
	}
	s.phase = model.PhaseActive
	s.obs.InputCapture(true)
	s.armClock()
	return true
}

// TogglePause pauses an active session or resumes a paused one.
func (s *AimSession) TogglePause() bool {
	if s.phase == model.PhasePaused {
		return s.Resume()
	}
	return s.Pause()
}

// Shoot records a shot. target is the index of the hit target, or -1 for a
// miss. Shots outside Active are ignored. It reports whether a target was hit.
func (s *AimSession) Shoot(target int) bool {
	if s.phase != model.PhaseActive {
		return false
	}
	s.attempts++
	s.obs.Shot()
	if target < 0 || target >= len(s.targets) {
		return false
	}
	s.hits++
	s.score += stats.AimPointsPerHit
	p := s.gen.Reposition(s.targets, target)
	if p.Exhausted {
		s.exhausted++
	}
	s.targets[target] = p.Pos
	return true
}

// Exit abandons the session from any phase.
func (s *AimSession) Exit() {
	s.sched.CancelAll()
	s.phase = model.PhaseIdle
	s.targets = nil
	s.obs.InputCapture(false)
	s.obs.Exited()
}

func (s *AimSession) end() {
	s.sched.CancelAll()
	s.phase = model.PhaseEnded
	s.obs.InputCapture(false)
	elapsed := s.cfg.Duration - time.Duration(s.remaining)*time.Second
	result := model.Result{
		Mode:     model.ModeAim,
		Score:    s.score,
		Accuracy: stats.Accuracy(s.hits, s.attempts),
		Kills:    s.hits,
		Hits:     s.hits,
		Attempts: s.attempts,
		Duration: elapsed,
		EndedAt:  s.now(),
	}
	s.result = &result
	s.obs.SessionEnded(result)
}

// Advance moves the session clock forward.
func (s *AimSession) Advance(dt time.Duration) {
	s.sched.Advance(dt)
}

// Exhausted counts replacement placements that gave up on the minimum distance.
func (s *AimSession) Exhausted() int { return s.exhausted }

// Snapshot copies the current state.
func (s *AimSession) Snapshot() AimSnapshot {
	snap := AimSnapshot{
		Phase:     s.phase,
		Countdown: s.countdown,
		Remaining: s.remaining,
		Score:     s.score,
		Hits:      s.hits,
		Attempts:  s.attempts,
		Accuracy:  stats.Accuracy(s.hits, s.attempts),
		Targets:   append([]model.Vec3(nil), s.targets...),
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}
