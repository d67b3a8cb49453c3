package rewards

import (
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/tuidrill/internal/model"
)

var testNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func findAchievement(t *testing.T, p model.Progress, id string) model.Achievement {
	t.Helper()
	for _, a := range p.Achievements {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("achievement %s missing", id)
	return model.Achievement{}
}

func ids(as []model.Achievement) map[string]bool {
	out := map[string]bool{}
	for _, a := range as {
		out[a.ID] = true
	}
	return out
}

func TestHydrateFollowsCatalogAndKeepsState(t *testing.T) {
	p := Hydrate(model.Progress{Achievements: []model.Achievement{
		{AchievementDef: model.AchievementDef{ID: "aim_perfect"}, Progress: 1, Unlocked: true},
		{AchievementDef: model.AchievementDef{ID: "retired"}, Progress: 9},
	}})
	if len(p.Achievements) != len(Catalog()) {
		t.Fatalf("expected %d achievements, got %d", len(Catalog()), len(p.Achievements))
	}
	perfect := findAchievement(t, p, "aim_perfect")
	if !perfect.Unlocked || perfect.Title != "Perfect Shot" || perfect.CoinReward != 250 {
		t.Fatalf("unexpected merge: %+v", perfect)
	}
	for _, a := range p.Achievements {
		if a.ID == "retired" {
			t.Fatalf("expected retired achievement to be dropped")
		}
	}
}

func TestRecordGameUpdatesStats(t *testing.T) {
	p := Hydrate(model.Progress{})
	RecordGame(&p, model.ModeTyping, model.GameStats{Wave: 6, Kills: 20, Accuracy: 96, DurationSeconds: 90}, testNow)
	RecordGame(&p, model.ModeAim, model.GameStats{Accuracy: 100, DurationSeconds: 60}, testNow)
	st := p.Stats
	if st.TotalGamesPlayed != 2 || st.TotalPlayTime != 150 || st.HighestWave != 6 || st.TotalKills != 20 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.BestAccuracy != 100 || st.PerfectGames != 1 || st.GamesOver95Accuracy != 2 {
		t.Fatalf("unexpected accuracy stats: %+v", st)
	}
}

func TestRecordGameUnlocksTypingAchievements(t *testing.T) {
	p := Hydrate(model.Progress{})
	unlocked := RecordGame(&p, model.ModeTyping, model.GameStats{Wave: 11, Kills: 120, Accuracy: 80, DurationSeconds: 300}, testNow)
	got := ids(unlocked)
	for _, id := range []string{"typing_first_game", "typing_wave_5", "typing_wave_10", "typing_100_kills"} {
		if !got[id] {
			t.Fatalf("expected %s unlocked, got %v", id, got)
		}
	}
	for _, id := range []string{"typing_wave_20", "typing_500_kills", "aim_first_game"} {
		if got[id] {
			t.Fatalf("did not expect %s", id)
		}
	}
	if a := findAchievement(t, p, "typing_500_kills"); a.Progress != 120 {
		t.Fatalf("expected kill progress 120, got %d", a.Progress)
	}
	if CoinsFor(unlocked) != 50+100+200+150 {
		t.Fatalf("unexpected coin total %d", CoinsFor(unlocked))
	}

	again := RecordGame(&p, model.ModeTyping, model.GameStats{Wave: 11, Kills: 1}, testNow)
	if ids(again)["typing_first_game"] {
		t.Fatalf("achievement unlocked twice")
	}
}

func TestRecordGameAimAchievements(t *testing.T) {
	p := Hydrate(model.Progress{})
	unlocked := ids(RecordGame(&p, model.ModeAim, model.GameStats{Accuracy: 95, DurationSeconds: 60}, testNow))
	if !unlocked["aim_first_game"] || !unlocked["aim_95_accuracy"] || unlocked["aim_perfect"] || unlocked["aim_speed_demon"] {
		t.Fatalf("unexpected aim unlocks: %v", unlocked)
	}
	unlocked = ids(RecordGame(&p, model.ModeAim, model.GameStats{Accuracy: 100, DurationSeconds: 30}, testNow))
	if !unlocked["aim_perfect"] || !unlocked["aim_speed_demon"] {
		t.Fatalf("expected perfect and speed demon, got %v", unlocked)
	}
	if a := findAchievement(t, p, "aim_perfect"); a.UnlockedAt == nil || !a.UnlockedAt.Equal(testNow) {
		t.Fatalf("expected unlock time recorded, got %+v", a)
	}
}

func TestGeneralAchievementsUseTotals(t *testing.T) {
	p := Hydrate(model.Progress{Stats: model.PlayerStats{TotalGamesPlayed: 9, TotalPlayTime: MarathonSeconds - 10}})
	unlocked := ids(RecordGame(&p, model.ModeAim, model.GameStats{Accuracy: 50, DurationSeconds: 60}, testNow))
	if !unlocked["general_10_games"] || !unlocked["general_5_hours"] || unlocked["general_50_games"] {
		t.Fatalf("unexpected general unlocks: %v", unlocked)
	}
	if a := findAchievement(t, p, "general_50_games"); a.Progress != 10 {
		t.Fatalf("expected progress 10, got %d", a.Progress)
	}
}

func TestRecordFriends(t *testing.T) {
	p := Hydrate(model.Progress{})
	unlocked := ids(RecordFriends(&p, 5, testNow))
	if !unlocked["social_first_friend"] || !unlocked["social_5_friends"] || unlocked["social_10_friends"] {
		t.Fatalf("unexpected social unlocks: %v", unlocked)
	}
	if p.Stats.TotalFriends != 5 {
		t.Fatalf("expected friend count stored")
	}
	if len(RecordFriends(&p, 3, testNow)) != 0 {
		t.Fatalf("dropping friends must not unlock anything")
	}
	if a := findAchievement(t, p, "social_first_friend"); !a.Unlocked {
		t.Fatalf("unlocked achievements stay unlocked")
	}
}

func TestNewDailyTasks(t *testing.T) {
	daily := NewDailyTasks(rand.New(rand.NewSource(1)), 3, testNow)
	if len(daily.Tasks) != DailyTaskCount || daily.Streak != 3 || !daily.LastReset.Equal(testNow) {
		t.Fatalf("unexpected daily tasks: %+v", daily)
	}
	seen := map[string]bool{}
	for _, task := range daily.Tasks {
		if seen[task.ID] || task.Progress != 0 || task.Completed {
			t.Fatalf("unexpected task %+v", task)
		}
		seen[task.ID] = true
	}
}

func TestNeedsReset(t *testing.T) {
	daily := model.DailyTasks{Tasks: DailyPool()[:1], LastReset: testNow}
	if NeedsReset(daily, testNow.Add(13*time.Hour)) {
		t.Fatalf("same day should not reset")
	}
	if !NeedsReset(daily, testNow.Add(14*time.Hour)) {
		t.Fatalf("next day should reset")
	}
	if !NeedsReset(model.DailyTasks{}, testNow) {
		t.Fatalf("empty task set should reset")
	}
}

func TestApplyGameProgressAndStreak(t *testing.T) {
	pool := DailyPool()
	byID := map[string]model.DailyTask{}
	for _, task := range pool {
		byID[task.ID] = task
	}
	daily := model.DailyTasks{
		LastReset: testNow,
		Streak:    1,
		Tasks: []model.DailyTask{
			byID["play_3_games"],
			byID["kill_50_zombies"],
			byID["score_1000_aim"],
			byID["accuracy_90"],
		},
	}

	done := ApplyGame(&daily, GameOutcome{Mode: model.ModeTyping, Score: 5000, Wave: 8, Kills: 30, Accuracy: 91})
	if len(done) != 1 || done[0].ID != "accuracy_90" {
		t.Fatalf("expected accuracy task completed, got %+v", done)
	}
	if daily.Tasks[1].Progress != 30 || daily.Tasks[2].Progress != 0 {
		t.Fatalf("unexpected progress: %+v", daily.Tasks)
	}

	done = ApplyGame(&daily, GameOutcome{Mode: model.ModeTyping, Kills: 40})
	if len(done) != 1 || done[0].ID != "kill_50_zombies" || daily.Tasks[1].Progress != 50 {
		t.Fatalf("expected kill task capped and completed, got %+v / %+v", done, daily.Tasks[1])
	}
	if TaskRewards(done) != 80 {
		t.Fatalf("unexpected reward %d", TaskRewards(done))
	}

	done = ApplyGame(&daily, GameOutcome{Mode: model.ModeAim, Score: 1200, Accuracy: 10})
	if len(done) != 2 || daily.Streak != 2 {
		t.Fatalf("expected all tasks complete and streak bumped, done=%+v streak=%d", done, daily.Streak)
	}
	if len(ApplyGame(&daily, GameOutcome{Mode: model.ModeAim, Score: 5000})) != 0 || daily.Streak != 2 {
		t.Fatalf("completed tasks must not progress further")
	}
}
