package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/logging"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuidrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	svc := backend.New(st, logging.Discard())

	ctx := context.Background()
	user, err := svc.EnsureUser(ctx, "dana")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	for i, score := range []int{300, 900, 500} {
		r := model.Result{
			Mode:     model.ModeTyping,
			Score:    score,
			Accuracy: 80 + i,
			Wave:     i + 1,
			Kills:    3 * (i + 1),
			Duration: time.Minute,
			EndedAt:  start.Add(time.Duration(i) * time.Hour),
		}
		svc.Finish(ctx, user, r)
	}

	report, err := BuildReport(ctx, svc, user, 2)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if _, ok := report.Best[model.ModeAim]; ok {
		t.Fatalf("expected no aim best without aim games")
	}
	if best := report.Best[model.ModeTyping]; best.Score != 900 {
		t.Fatalf("expected best typing score 900, got %d", best.Score)
	}
	history := report.History[model.ModeTyping]
	if len(history) != 2 || history[0].Score != 900 || history[1].Score != 500 {
		t.Fatalf("expected last two games in order, got %+v", history)
	}
	if report.Progress.Stats.TotalGamesPlayed != 3 {
		t.Fatalf("expected 3 games in progress, got %d", report.Progress.Stats.TotalGamesPlayed)
	}
	if report.Currency.Coins == 0 {
		t.Fatalf("expected coins from the first game achievement")
	}
	if len(report.Daily.Tasks) == 0 {
		t.Fatalf("expected daily tasks")
	}
}
