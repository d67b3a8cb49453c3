package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/tuidrill/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tuidrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func mustUser(t *testing.T, st *Store, name string) model.User {
	t.Helper()
	u, err := st.EnsureUser(context.Background(), name)
	if err != nil {
		t.Fatalf("ensure user %s: %v", name, err)
	}
	return u
}

func intp(v int) *int { return &v }

func TestEnsureUserConcurrentFirstUse(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	const n = 16
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := st.EnsureUser(ctx, "racer")
			ids[i], errs[i] = u.ID, err
		}()
	}
	wg.Wait()
	for i := range n {
		if errs[i] != nil {
			t.Fatalf("ensure user %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("expected one user, got ids %q and %q", ids[0], ids[i])
		}
	}
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustUser(t, st, "alice")
	b := mustUser(t, st, "ALICE")
	if a.ID != b.ID {
		t.Fatalf("expected same user, got %s and %s", a.ID, b.ID)
	}
	got, err := st.GetUser(ctx, a.ID)
	if err != nil || got.DisplayName != "alice" {
		t.Fatalf("get user: %+v %v", got, err)
	}
	if _, err := st.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.EnsureUser(ctx, "  "); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestLeaderboardQueries(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	alice := mustUser(t, st, "alice")
	bob := mustUser(t, st, "bob")
	entries := []model.LeaderboardEntry{
		{UserID: alice.ID, DisplayName: "alice", Score: 30, Accuracy: 90, GameType: "aim", CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{UserID: alice.ID, DisplayName: "alice", Score: 12, Accuracy: 80, GameType: "aim", CreatedAt: now.Add(-time.Hour)},
		{UserID: bob.ID, DisplayName: "bob", Score: 900, Accuracy: 70, GameType: "typing", Wave: intp(4), Kills: intp(9), CreatedAt: now.Add(-3 * 24 * time.Hour)},
		{UserID: bob.ID, DisplayName: "bob", Score: 20, Accuracy: 99, GameType: "aim", CreatedAt: now.Add(-2 * time.Hour)},
	}
	for _, e := range entries {
		if _, err := st.InsertScore(ctx, e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := st.InsertScore(ctx, model.LeaderboardEntry{UserID: bob.ID, GameType: "chess"}); err == nil {
		t.Fatalf("expected unknown game type to fail")
	}

	global, err := st.TopScores(ctx, model.LeaderboardQuery{GameType: "aim"})
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if len(global) != 3 || global[0].Score != 30 || global[1].Score != 20 || global[2].Score != 12 {
		t.Fatalf("unexpected global order: %+v", global)
	}

	day := now.Add(-24 * time.Hour)
	daily, err := st.TopScores(ctx, model.LeaderboardQuery{GameType: "all", Since: &day})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(daily) != 2 || daily[0].Score != 20 {
		t.Fatalf("unexpected daily: %+v", daily)
	}

	week := now.Add(-7 * 24 * time.Hour)
	weekly, err := st.TopScores(ctx, model.LeaderboardQuery{Since: &week, Limit: 1})
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(weekly) != 1 || weekly[0].Score != 900 || weekly[0].Wave == nil || *weekly[0].Wave != 4 {
		t.Fatalf("unexpected weekly: %+v", weekly)
	}

	best, err := st.BestPerUser(ctx, []string{alice.ID, bob.ID, "ghost"}, "aim")
	if err != nil {
		t.Fatalf("best per user: %v", err)
	}
	if len(best) != 2 || best[0].UserID != alice.ID || best[1].UserID != bob.ID {
		t.Fatalf("unexpected best per user: %+v", best)
	}

	if _, err := st.UserBest(ctx, alice.ID, "typing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	history, err := st.UserHistory(ctx, alice.ID, "aim", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Score != 30 || history[1].Score != 12 {
		t.Fatalf("expected chronological history, got %+v", history)
	}
}

func TestProgressRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "alice")

	if _, found, err := st.LoadProgress(ctx, u.ID); err != nil || found {
		t.Fatalf("expected no progress, found=%v err=%v", found, err)
	}
	unlockedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := model.Progress{
		UserID: u.ID,
		Stats:  model.PlayerStats{TotalGamesPlayed: 3, TotalKills: 12, BestAccuracy: 88},
		Achievements: []model.Achievement{
			{AchievementDef: model.AchievementDef{ID: "aim_first_game"}, Progress: 1, Unlocked: true, UnlockedAt: &unlockedAt},
			{AchievementDef: model.AchievementDef{ID: "general_10_games"}, Progress: 3},
		},
	}
	if err := st.SaveProgress(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.Stats.TotalGamesPlayed = 4
	p.Achievements[1].Progress = 4
	if err := st.SaveProgress(ctx, p); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, found, err := st.LoadProgress(ctx, u.ID)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if got.Stats.TotalGamesPlayed != 4 || got.Stats.TotalKills != 12 {
		t.Fatalf("unexpected stats: %+v", got.Stats)
	}
	if len(got.Achievements) != 2 {
		t.Fatalf("expected 2 achievements, got %d", len(got.Achievements))
	}
	first := got.Achievements[0]
	if first.ID != "aim_first_game" || !first.Unlocked || first.UnlockedAt == nil || !first.UnlockedAt.Equal(unlockedAt) {
		t.Fatalf("unexpected achievement: %+v", first)
	}
	if got.Achievements[1].Progress != 4 || got.Achievements[1].Unlocked {
		t.Fatalf("unexpected achievement: %+v", got.Achievements[1])
	}
}

func TestCoins(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "alice")

	c, err := st.GetCurrency(ctx, u.ID)
	if err != nil || c.Coins != 0 {
		t.Fatalf("expected empty balance, got %+v %v", c, err)
	}
	if _, err := st.AddCoins(ctx, u.ID, 100, "achievement"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := st.SpendCoins(ctx, u.ID, 150, "skin"); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("expected ErrInsufficientCoins, got %v", err)
	}
	c, err = st.SpendCoins(ctx, u.ID, 40, "skin")
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if c.Coins != 60 || c.LifetimeEarned != 100 || c.LifetimeSpent != 40 {
		t.Fatalf("unexpected balance: %+v", c)
	}
	if _, err := st.AddCoins(ctx, u.ID, 0, "nothing"); err == nil {
		t.Fatalf("expected error for zero amount")
	}
	ledger, err := st.Ledger(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(ledger) != 2 || ledger[0].Amount != -40 || ledger[1].Amount != 100 || ledger[1].Reason != "achievement" {
		t.Fatalf("unexpected ledger: %+v", ledger)
	}
}

func TestDailyTasksRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "alice")

	if _, found, err := st.LoadDailyTasks(ctx, u.ID); err != nil || found {
		t.Fatalf("expected no tasks, found=%v err=%v", found, err)
	}
	reset := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	daily := model.DailyTasks{
		LastReset: reset,
		Streak:    2,
		Tasks: []model.DailyTask{
			{ID: "play_3_games", Title: "Play 3 games", Reward: 50, Target: 3, Category: "general", Progress: 1},
			{ID: "accuracy_90", Title: "Sharpshooter", Reward: 120, Target: 1, Category: "aim", Progress: 1, Completed: true},
		},
	}
	if err := st.SaveDailyTasks(ctx, u.ID, daily); err != nil {
		t.Fatalf("save: %v", err)
	}
	daily.Tasks = daily.Tasks[:1]
	if err := st.SaveDailyTasks(ctx, u.ID, daily); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, found, err := st.LoadDailyTasks(ctx, u.ID)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if got.Streak != 2 || !got.LastReset.Equal(reset) || len(got.Tasks) != 1 || got.Tasks[0].ID != "play_3_games" {
		t.Fatalf("unexpected tasks: %+v", got)
	}
}

func TestFriendRequests(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, st, "alice")
	bob := mustUser(t, st, "bob")
	carol := mustUser(t, st, "carol")

	if _, err := st.SendFriendRequest(ctx, alice.ID, alice.ID); !errors.Is(err, ErrSelfFriend) {
		t.Fatalf("expected ErrSelfFriend, got %v", err)
	}
	req, err := st.SendFriendRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if req.ID != alice.ID+"_"+bob.ID || req.FromName != "alice" || req.Status != model.RequestPending {
		t.Fatalf("unexpected request: %+v", req)
	}
	if _, err := st.SendFriendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, ErrRequestExists) {
		t.Fatalf("expected ErrRequestExists for reverse request, got %v", err)
	}

	pending, err := st.PendingRequests(ctx, bob.ID)
	if err != nil || len(pending) != 1 || pending[0].FromName != "alice" {
		t.Fatalf("unexpected pending: %+v %v", pending, err)
	}
	if _, err := st.RespondFriendRequest(ctx, req.ID, true); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := st.RespondFriendRequest(ctx, req.ID, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected answered request to be gone, got %v", err)
	}
	if _, err := st.SendFriendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("expected ErrAlreadyFriends, got %v", err)
	}

	for _, id := range []string{alice.ID, bob.ID} {
		n, err := st.FriendCount(ctx, id)
		if err != nil || n != 1 {
			t.Fatalf("friend count for %s: %d %v", id, n, err)
		}
	}
	friends, err := st.ListFriends(ctx, alice.ID)
	if err != nil || len(friends) != 1 || friends[0].DisplayName != "bob" {
		t.Fatalf("unexpected friends: %+v %v", friends, err)
	}

	rej, err := st.SendFriendRequest(ctx, carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got, err := st.RespondFriendRequest(ctx, rej.ID, false); err != nil || got.Status != model.RequestRejected {
		t.Fatalf("reject: %+v %v", got, err)
	}
	if n, _ := st.FriendCount(ctx, carol.ID); n != 0 {
		t.Fatalf("rejected request created a friendship")
	}

	if err := st.RemoveFriend(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := st.RemoveFriend(ctx, bob.ID, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
	if n, _ := st.FriendCount(ctx, alice.ID); n != 0 {
		t.Fatalf("expected friendship removed in both directions")
	}
}
