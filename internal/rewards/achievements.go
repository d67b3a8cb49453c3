// Package rewards evaluates achievements and daily tasks against finished games.
// It is pure bookkeeping; persistence and coin payouts live in the backend.
package rewards

import (
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// Achievement categories.
const (
	CategoryTyping  = "typing"
	CategoryAim     = "aim"
	CategoryGeneral = "general"
	CategorySocial  = "social"
)

// SpeedDemonMaxSeconds is the longest aim session that still unlocks aim_speed_demon.
const SpeedDemonMaxSeconds = 30

// MarathonSeconds is the total play time that unlocks general_5_hours.
const MarathonSeconds = 5 * 60 * 60

var catalog = []model.AchievementDef{
	{ID: "typing_first_game", Title: "First Words", Description: "Complete your first typing drill game", Category: CategoryTyping, Target: 1, CoinReward: 50},
	{ID: "typing_wave_5", Title: "Survivor", Description: "Survive to wave 5 in typing drill", Category: CategoryTyping, Target: 5, CoinReward: 100},
	{ID: "typing_wave_10", Title: "Boss Slayer", Description: "Defeat your first boss (wave 10)", Category: CategoryTyping, Target: 10, CoinReward: 200},
	{ID: "typing_wave_20", Title: "Unstoppable", Description: "Reach wave 20 in typing drill", Category: CategoryTyping, Target: 20, CoinReward: 500},
	{ID: "typing_100_kills", Title: "Zombie Hunter", Description: "Kill 100 zombies total", Category: CategoryTyping, Target: 100, CoinReward: 150},
	{ID: "typing_500_kills", Title: "Exterminator", Description: "Kill 500 zombies total", Category: CategoryTyping, Target: 500, CoinReward: 300},

	{ID: "aim_first_game", Title: "First Shot", Description: "Complete your first aim drill game", Category: CategoryAim, Target: 1, CoinReward: 50},
	{ID: "aim_95_accuracy", Title: "Accuracy Master", Description: "Achieve 95% accuracy in aim drill", Category: CategoryAim, Target: 1, CoinReward: 150},
	{ID: "aim_perfect", Title: "Perfect Shot", Description: "Get 100% accuracy in aim drill", Category: CategoryAim, Target: 1, CoinReward: 250},
	{ID: "aim_speed_demon", Title: "Speed Demon", Description: "Finish an aim drill of 30 seconds or less", Category: CategoryAim, Target: 1, CoinReward: 200},

	{ID: "general_10_games", Title: "Getting Started", Description: "Play 10 games total", Category: CategoryGeneral, Target: 10, CoinReward: 100},
	{ID: "general_50_games", Title: "Dedicated Player", Description: "Play 50 games total", Category: CategoryGeneral, Target: 50, CoinReward: 300},
	{ID: "general_100_games", Title: "Veteran", Description: "Play 100 games total", Category: CategoryGeneral, Target: 100, CoinReward: 500},
	{ID: "general_5_hours", Title: "Marathon Runner", Description: "Play for 5 hours total", Category: CategoryGeneral, Target: MarathonSeconds, CoinReward: 400},

	{ID: "social_first_friend", Title: "Making Friends", Description: "Add your first friend", Category: CategorySocial, Target: 1, CoinReward: 75},
	{ID: "social_5_friends", Title: "Popular", Description: "Have 5 friends", Category: CategorySocial, Target: 5, CoinReward: 200},
	{ID: "social_10_friends", Title: "Social Butterfly", Description: "Have 10 friends", Category: CategorySocial, Target: 10, CoinReward: 350},
}

// Catalog returns a copy of every achievement definition.
func Catalog() []model.AchievementDef {
	out := make([]model.AchievementDef, len(catalog))
	copy(out, catalog)
	return out
}

// Hydrate merges stored achievement states with the catalog. The result follows
// catalog order; missing entries start locked and stored ids no longer in the
// catalog are dropped.
func Hydrate(p model.Progress) model.Progress {
	stored := lo.SliceToMap(p.Achievements, func(a model.Achievement) (string, model.Achievement) {
		return a.ID, a
	})
	out := make([]model.Achievement, 0, len(catalog))
	for _, def := range catalog {
		a := stored[def.ID]
		a.AchievementDef = def
		out = append(out, a)
	}
	p.Achievements = out
	return p
}

// RecordGame folds a finished game into the stats and returns the achievements
// it unlocked. p must be hydrated.
func RecordGame(p *model.Progress, mode model.Mode, gs model.GameStats, now time.Time) []model.Achievement {
	st := &p.Stats
	st.TotalGamesPlayed++
	st.TotalPlayTime += gs.DurationSeconds
	st.HighestWave = max(st.HighestWave, gs.Wave)
	st.TotalKills += gs.Kills
	st.BestAccuracy = max(st.BestAccuracy, gs.Accuracy)
	if gs.Accuracy == 100 {
		st.PerfectGames++
	}
	if gs.Accuracy >= 95 {
		st.GamesOver95Accuracy++
	}

	return evaluate(p, now, func(a *model.Achievement) bool {
		return gameRule(a, *st, mode, gs)
	})
}

// RecordFriends stores the current friend count and returns the social
// achievements it unlocked. p must be hydrated.
func RecordFriends(p *model.Progress, count int, now time.Time) []model.Achievement {
	p.Stats.TotalFriends = count
	return evaluate(p, now, func(a *model.Achievement) bool {
		if a.Category != CategorySocial {
			return false
		}
		a.Progress = count
		return count >= a.Target
	})
}

// evaluate applies rule to every locked achievement; rule updates progress and
// reports whether the achievement unlocks.
func evaluate(p *model.Progress, now time.Time, rule func(a *model.Achievement) bool) []model.Achievement {
	var unlocked []model.Achievement
	for i := range p.Achievements {
		a := &p.Achievements[i]
		if a.Unlocked {
			continue
		}
		if rule(a) {
			at := now
			a.Unlocked = true
			a.UnlockedAt = &at
			unlocked = append(unlocked, *a)
		}
	}
	p.UpdatedAt = now
	return unlocked
}

func gameRule(a *model.Achievement, st model.PlayerStats, mode model.Mode, gs model.GameStats) bool {
	switch a.ID {
	case "typing_first_game":
		return once(a, mode == model.ModeTyping)
	case "typing_wave_5", "typing_wave_10", "typing_wave_20":
		if mode != model.ModeTyping || gs.Wave < a.Target {
			return false
		}
		a.Progress = max(a.Progress, gs.Wave)
		return true
	case "typing_100_kills", "typing_500_kills":
		a.Progress = st.TotalKills
		return st.TotalKills >= a.Target
	case "aim_first_game":
		return once(a, mode == model.ModeAim)
	case "aim_95_accuracy":
		return once(a, mode == model.ModeAim && gs.Accuracy >= 95)
	case "aim_perfect":
		return once(a, mode == model.ModeAim && gs.Accuracy == 100)
	case "aim_speed_demon":
		return once(a, mode == model.ModeAim && gs.DurationSeconds <= SpeedDemonMaxSeconds)
	case "general_10_games", "general_50_games", "general_100_games":
		a.Progress = st.TotalGamesPlayed
		return st.TotalGamesPlayed >= a.Target
	case "general_5_hours":
		a.Progress = st.TotalPlayTime
		return st.TotalPlayTime >= a.Target
	}
	return false
}

func once(a *model.Achievement, met bool) bool {
	if met {
		a.Progress = 1
	}
	return met
}

// CoinsFor sums the coin rewards of the given achievements.
func CoinsFor(achievements []model.Achievement) int {
	return lo.SumBy(achievements, func(a model.Achievement) int { return a.CoinReward })
}
