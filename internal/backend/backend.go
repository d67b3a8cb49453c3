// Package backend is the persistence facade used when a session ends: score
// submission, stats and achievements, coins, daily tasks, leaderboards and friends.
package backend

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/rewards"
	"github.com/verte-zerg/tuidrill/internal/store"
)

// Service wraps the store with the game's bookkeeping rules. It is safe for
// concurrent use; read-modify-write sequences are serialized.
type Service struct {
	store *store.Store
	log   *log.Logger
	now   func() time.Time

	mu        sync.Mutex
	rnd       *rand.Rand
	listeners []func(model.LeaderboardEntry)
}

// New returns a Service over st.
func New(st *store.Store, logger *log.Logger) *Service {
	return &Service{
		store: st,
		log:   logger,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// OnScore registers fn to receive every submitted leaderboard entry.
func (s *Service) OnScore(fn func(model.LeaderboardEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// EnsureUser returns the player with the given display name, creating it on first use.
func (s *Service) EnsureUser(ctx context.Context, name string) (model.User, error) {
	user, err := s.store.EnsureUser(ctx, name)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to resolve player %q: %w", name, err)
	}
	return user, nil
}

// GameStatsFor maps a result onto achievement input. Wave and kills only count
// for the typing drill.
func GameStatsFor(r model.Result) model.GameStats {
	gs := model.GameStats{
		Accuracy:        r.Accuracy,
		DurationSeconds: int((r.Duration + time.Second/2) / time.Second),
	}
	if r.Mode == model.ModeTyping {
		gs.Wave = r.Wave
		gs.Kills = r.Kills
	}
	return gs
}

// SubmitScore stores the result on the leaderboard and notifies OnScore listeners.
func (s *Service) SubmitScore(ctx context.Context, user model.User, r model.Result) (model.LeaderboardEntry, error) {
	entry := model.LeaderboardEntry{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Score:       r.Score,
		Accuracy:    r.Accuracy,
		GameType:    r.Mode.String(),
		CreatedAt:   r.EndedAt,
	}
	if r.Mode == model.ModeTyping {
		wave, kills := r.Wave, r.Kills
		entry.Wave = &wave
		entry.Kills = &kills
	}
	return s.InsertEntry(ctx, entry)
}

// InsertEntry stores a prepared leaderboard entry and notifies listeners.
func (s *Service) InsertEntry(ctx context.Context, entry model.LeaderboardEntry) (model.LeaderboardEntry, error) {
	saved, err := s.store.InsertScore(ctx, entry)
	if err != nil {
		return model.LeaderboardEntry{}, fmt.Errorf("failed to submit score: %w", err)
	}
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(saved)
	}
	return saved, nil
}

// Progress returns the stats and full achievement list of a user.
func (s *Service) Progress(ctx context.Context, userID string) (model.Progress, error) {
	p, _, err := s.store.LoadProgress(ctx, userID)
	if err != nil {
		return model.Progress{}, err
	}
	p.UserID = userID
	return rewards.Hydrate(p), nil
}

// UpdateStats folds a finished game into the user's stats, unlocks achievements
// and pays out their coin rewards. It returns the newly unlocked achievements.
func (s *Service) UpdateStats(ctx context.Context, userID string, r model.Result) ([]model.Achievement, error) {
	unlocked, _, err := s.updateStats(ctx, userID, r)
	return unlocked, err
}

// updateStats also reports the coins actually credited for the unlocks.
func (s *Service) updateStats(ctx context.Context, userID string, r model.Result) ([]model.Achievement, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Progress(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load progress: %w", err)
	}
	unlocked := rewards.RecordGame(&p, r.Mode, GameStatsFor(r), s.now())
	if err := s.store.SaveProgress(ctx, p); err != nil {
		return nil, 0, fmt.Errorf("failed to save progress: %w", err)
	}
	return unlocked, s.payAchievements(ctx, userID, unlocked), nil
}

// payAchievements credits the coin rewards and returns the amount paid.
func (s *Service) payAchievements(ctx context.Context, userID string, unlocked []model.Achievement) int {
	paid := 0
	for _, a := range unlocked {
		if a.CoinReward > 0 && s.AwardCurrency(ctx, userID, a.CoinReward, "Achievement: "+a.Title) {
			paid += a.CoinReward
		}
	}
	return paid
}

// AwardCurrency credits coins and reports whether it succeeded. Failures are logged.
func (s *Service) AwardCurrency(ctx context.Context, userID string, amount int, reason string) bool {
	if _, err := s.store.AddCoins(ctx, userID, amount, reason); err != nil {
		s.log.Error("failed to award coins", "user", userID, "amount", amount, "reason", reason, "err", err)
		return false
	}
	return true
}

// SpendCoins debits coins; store.ErrInsufficientCoins reports a short balance.
func (s *Service) SpendCoins(ctx context.Context, userID string, amount int, reason string) (model.Currency, error) {
	return s.store.SpendCoins(ctx, userID, amount, reason)
}

// Currency returns the coin balance of a user.
func (s *Service) Currency(ctx context.Context, userID string) (model.Currency, error) {
	return s.store.GetCurrency(ctx, userID)
}

// Ledger returns the latest coin transactions of a user.
func (s *Service) Ledger(ctx context.Context, userID string, limit int) ([]model.CoinTransaction, error) {
	return s.store.Ledger(ctx, userID, limit)
}

// DailyTasks returns today's task set, drawing a new one on the first call of a day.
func (s *Service) DailyTasks(ctx context.Context, userID string) (model.DailyTasks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyTasks(ctx, userID)
}

func (s *Service) dailyTasks(ctx context.Context, userID string) (model.DailyTasks, error) {
	daily, found, err := s.store.LoadDailyTasks(ctx, userID)
	if err != nil {
		return model.DailyTasks{}, fmt.Errorf("failed to load daily tasks: %w", err)
	}
	now := s.now()
	if found && !rewards.NeedsReset(daily, now) {
		return daily, nil
	}
	daily = rewards.NewDailyTasks(s.rnd, daily.Streak, now)
	if err := s.store.SaveDailyTasks(ctx, userID, daily); err != nil {
		return model.DailyTasks{}, fmt.Errorf("failed to save daily tasks: %w", err)
	}
	return daily, nil
}

// CheckDailyTasks advances today's tasks with a finished game, pays completed
// task rewards and returns the coins earned.
func (s *Service) CheckDailyTasks(ctx context.Context, userID string, r model.Result) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	daily, err := s.dailyTasks(ctx, userID)
	if err != nil {
		return 0, err
	}
	gs := GameStatsFor(r)
	completed := rewards.ApplyGame(&daily, rewards.GameOutcome{
		Mode:     r.Mode,
		Score:    r.Score,
		Wave:     gs.Wave,
		Kills:    gs.Kills,
		Accuracy: r.Accuracy,
	})
	if err := s.store.SaveDailyTasks(ctx, userID, daily); err != nil {
		return 0, fmt.Errorf("failed to save daily tasks: %w", err)
	}
	earned := 0
	for _, task := range completed {
		if s.AwardCurrency(ctx, userID, task.Reward, "Daily Task: "+task.Title) {
			earned += task.Reward
		}
	}
	return earned, nil
}

// Summary reports what Finish managed to record.
type Summary struct {
	Entry     *model.LeaderboardEntry
	Unlocked  []model.Achievement
	Coins     int
	TaskCoins int
	Failures  int
}

// Finish records a finished session: leaderboard entry, stats and achievements,
// daily tasks. Each step is best-effort; failures are logged and counted but
// never stop the remaining steps.
func (s *Service) Finish(ctx context.Context, user model.User, r model.Result) Summary {
	var sum Summary
	if entry, err := s.SubmitScore(ctx, user, r); err != nil {
		s.log.Error("score submission failed", "user", user.DisplayName, "err", err)
		sum.Failures++
	} else {
		sum.Entry = &entry
	}
	if unlocked, coins, err := s.updateStats(ctx, user.ID, r); err != nil {
		s.log.Error("stats update failed", "user", user.DisplayName, "err", err)
		sum.Failures++
	} else {
		sum.Unlocked = unlocked
		sum.Coins = coins
	}
	if coins, err := s.CheckDailyTasks(ctx, user.ID, r); err != nil {
		s.log.Error("daily task check failed", "user", user.DisplayName, "err", err)
		sum.Failures++
	} else {
		sum.TaskCoins = coins
	}
	s.log.Info("session recorded",
		"user", user.DisplayName,
		"mode", r.Mode,
		"score", r.Score,
		"accuracy", r.Accuracy,
		"unlocked", len(sum.Unlocked),
	)
	return sum
}
