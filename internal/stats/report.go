package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/store"
)

// Source is the read side of the backend needed to build a report.
type Source interface {
	Progress(ctx context.Context, userID string) (model.Progress, error)
	Currency(ctx context.Context, userID string) (model.Currency, error)
	DailyTasks(ctx context.Context, userID string) (model.DailyTasks, error)
	UserBest(ctx context.Context, userID, gameType string) (model.LeaderboardEntry, error)
	History(ctx context.Context, userID, gameType string, limit int) ([]model.LeaderboardEntry, error)
}

// Report contains precomputed data for profile rendering.
type Report struct {
	User     model.User
	Progress model.Progress
	Currency model.Currency
	Daily    model.DailyTasks
	// Best holds the best entry per game type; missing types have no games.
	Best    map[model.Mode]model.LeaderboardEntry
	History map[model.Mode][]model.LeaderboardEntry
}

// BuildReport loads everything shown for a player. last bounds each history.
func BuildReport(ctx context.Context, src Source, user model.User, last int) (Report, error) {
	progress, err := src.Progress(ctx, user.ID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load progress: %w", err)
	}
	cur, err := src.Currency(ctx, user.ID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load currency: %w", err)
	}
	daily, err := src.DailyTasks(ctx, user.ID)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		User:     user,
		Progress: progress,
		Currency: cur,
		Daily:    daily,
		Best:     map[model.Mode]model.LeaderboardEntry{},
		History:  map[model.Mode][]model.LeaderboardEntry{},
	}
	for _, mode := range []model.Mode{model.ModeTyping, model.ModeAim} {
		best, err := src.UserBest(ctx, user.ID, mode.String())
		switch {
		case errors.Is(err, store.ErrNotFound):
			continue
		case err != nil:
			return Report{}, fmt.Errorf("failed to load best %s score: %w", mode, err)
		}
		report.Best[mode] = best
		history, err := src.History(ctx, user.ID, mode.String(), last)
		if err != nil {
			return Report{}, fmt.Errorf("failed to load %s history: %w", mode, err)
		}
		report.History[mode] = history
	}
	return report, nil
}
