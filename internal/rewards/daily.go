package rewards

import (
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// DailyTaskCount is how many tasks are drawn from the pool each day.
const DailyTaskCount = 4

var dailyPool = []model.DailyTask{
	{ID: "play_3_games", Title: "Play 3 Games", Description: "Complete 3 games of any type", Reward: 50, Target: 3, Category: CategoryGeneral},
	{ID: "reach_wave_5", Title: "Reach Wave 5", Description: "Survive to wave 5 in any game mode", Reward: 75, Target: 1, Category: CategoryGeneral},
	{ID: "score_1000_aim", Title: "Score 1000 in Aim", Description: "Score at least 1000 points in the aim trainer", Reward: 100, Target: 1, Category: CategoryAim},
	{ID: "score_1000_typing", Title: "Score 1000 in Typing", Description: "Score at least 1000 points in the typing drill", Reward: 100, Target: 1, Category: CategoryTyping},
	{ID: "kill_50_zombies", Title: "Kill 50 Zombies", Description: "Eliminate 50 zombies across all games", Reward: 80, Target: 50, Category: CategoryGeneral},
	{ID: "accuracy_90", Title: "90% Accuracy", Description: "Complete a game with 90%+ accuracy", Reward: 120, Target: 1, Category: CategoryGeneral},
	{ID: "win_streak_3", Title: "Win Streak", Description: "Complete 3 games in a row", Reward: 150, Target: 3, Category: CategoryGeneral},
}

// DailyPool returns a copy of every daily task template.
func DailyPool() []model.DailyTask {
	out := make([]model.DailyTask, len(dailyPool))
	copy(out, dailyPool)
	return out
}

// NewDailyTasks draws a fresh task set, keeping the streak.
func NewDailyTasks(rnd *rand.Rand, streak int, now time.Time) model.DailyTasks {
	pool := DailyPool()
	rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return model.DailyTasks{
		Tasks:     pool[:DailyTaskCount],
		LastReset: now,
		Streak:    streak,
	}
}

// NeedsReset reports whether the task set was drawn on an earlier calendar day
// in now's location.
func NeedsReset(daily model.DailyTasks, now time.Time) bool {
	if daily.LastReset.IsZero() || len(daily.Tasks) == 0 {
		return true
	}
	last := daily.LastReset.In(now.Location())
	y1, m1, d1 := last.Date()
	y2, m2, d2 := now.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

// GameOutcome is what daily tasks look at after a game.
type GameOutcome struct {
	Mode     model.Mode
	Score    int
	Wave     int
	Kills    int
	Accuracy int
}

// ApplyGame advances the daily tasks with a finished game and returns the tasks
// completed by it. Completing the last open task bumps the streak.
func ApplyGame(daily *model.DailyTasks, out GameOutcome) []model.DailyTask {
	var completed []model.DailyTask
	for i := range daily.Tasks {
		task := &daily.Tasks[i]
		if task.Completed {
			continue
		}
		inc, ok := taskIncrement(task.ID, out)
		if !ok {
			continue
		}
		task.Progress = min(task.Progress+inc, task.Target)
		if task.Progress >= task.Target {
			task.Completed = true
			completed = append(completed, *task)
			if lo.EveryBy(daily.Tasks, func(t model.DailyTask) bool { return t.Completed }) {
				daily.Streak++
			}
		}
	}
	return completed
}

func taskIncrement(id string, out GameOutcome) (int, bool) {
	switch id {
	case "play_3_games", "win_streak_3":
		return 1, true
	case "reach_wave_5":
		return 1, out.Wave >= 5
	case "score_1000_aim":
		return 1, out.Mode == model.ModeAim && out.Score >= 1000
	case "score_1000_typing":
		return 1, out.Mode == model.ModeTyping && out.Score >= 1000
	case "kill_50_zombies":
		return out.Kills, true
	case "accuracy_90":
		return 1, out.Accuracy >= 90
	}
	return 0, false
}

// TaskRewards sums the coin rewards of the given tasks.
func TaskRewards(tasks []model.DailyTask) int {
	return lo.SumBy(tasks, func(t model.DailyTask) int { return t.Reward })
}
