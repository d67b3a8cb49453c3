// Package stats holds the scoring rules and the plain-text reports printed by
// the CLI: leaderboards, player profiles, daily tasks and score history.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/tuidrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// ScoreSeries extracts scores and accuracies from leaderboard entries.
func ScoreSeries(entries []model.LeaderboardEntry) (scores, accuracy []float64) {
	scores = make([]float64, len(entries))
	accuracy = make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = float64(e.Score)
		accuracy[i] = float64(e.Accuracy)
	}
	return scores, accuracy
}

// RenderLeaderboard prints ranked entries. Wave and kills columns only show for
// typing entries.
func RenderLeaderboard(w io.Writer, title string, entries []model.LeaderboardEntry) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	headers := []string{"#", "Player", "Mode", "Score", "Accuracy", "Wave", "Kills", "Date"}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.DisplayName,
			e.GameType,
			fmt.Sprintf("%d", e.Score),
			fmt.Sprintf("%d%%", e.Accuracy),
			optionalInt(e.Wave),
			optionalInt(e.Kills),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return writeLines(w, FormatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true, 6: true}))
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// RenderProfile prints lifetime stats, coin balance and achievement progress.
func RenderProfile(w io.Writer, name string, p model.Progress, cur model.Currency) error {
	st := p.Stats
	lines := []string{
		fmt.Sprintf("Player: %s", name),
		fmt.Sprintf("Coins: %d (earned %d, spent %d)", cur.Coins, cur.LifetimeEarned, cur.LifetimeSpent),
		fmt.Sprintf("Games: %d  Highest wave: %d  Total kills: %d", st.TotalGamesPlayed, st.HighestWave, st.TotalKills),
		fmt.Sprintf("Best accuracy: %d%%  Perfect games: %d  Games over 95%%: %d", st.BestAccuracy, st.PerfectGames, st.GamesOver95Accuracy),
		fmt.Sprintf("Play time: %s  Friends: %d", (time.Duration(st.TotalPlayTime) * time.Second).String(), st.TotalFriends),
		"",
	}
	if err := writeLines(w, lines); err != nil {
		return err
	}
	return RenderAchievements(w, p.Achievements)
}

// RenderAchievements prints the achievement list with progress.
func RenderAchievements(w io.Writer, achievements []model.Achievement) error {
	unlocked := 0
	rows := make([][]string, 0, len(achievements))
	for _, a := range achievements {
		mark := " "
		if a.Unlocked {
			mark = "x"
			unlocked++
		}
		rows = append(rows, []string{
			"[" + mark + "]",
			a.Title,
			a.Category,
			fmt.Sprintf("%d/%d", min(a.Progress, a.Target), a.Target),
			fmt.Sprintf("%d", a.CoinReward),
		})
	}
	if _, err := fmt.Fprintf(w, "Achievements %d/%d\n", unlocked, len(achievements)); err != nil {
		return err
	}
	return writeLines(w, FormatTable([]string{"", "Title", "Category", "Progress", "Coins"}, rows, map[int]bool{3: true, 4: true}))
}

// RenderTasks prints today's daily tasks and the completion streak.
func RenderTasks(w io.Writer, daily model.DailyTasks) error {
	if _, err := fmt.Fprintf(w, "Daily tasks for %s (streak %d)\n", daily.LastReset.Format("2006-01-02"), daily.Streak); err != nil {
		return err
	}
	rows := make([][]string, 0, len(daily.Tasks))
	for _, t := range daily.Tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		rows = append(rows, []string{
			"[" + mark + "]",
			t.Title,
			fmt.Sprintf("%d/%d", t.Progress, t.Target),
			fmt.Sprintf("%d", t.Reward),
		})
	}
	return writeLines(w, FormatTable([]string{"", "Task", "Progress", "Coins"}, rows, map[int]bool{2: true, 3: true}))
}

// RenderLedger prints coin transactions, newest first.
func RenderLedger(w io.Writer, txs []model.CoinTransaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No transactions.")
		return err
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%+d", tx.Amount),
			tx.Reason,
		})
	}
	return writeLines(w, FormatTable([]string{"Date", "Amount", "Reason"}, rows, map[int]bool{1: true}))
}

// RenderHistory prints a score chart and an accuracy sparkline for a run of
// entries in chronological order.
func RenderHistory(w io.Writer, title string, entries []model.LeaderboardEntry, window, width, height int, useColor bool) error {
	if len(entries) == 0 {
		return nil
	}
	scores, accuracy := ScoreSeries(entries)
	if err := PlotBars(w, title, MovingAverage(scores, window), width, height, useColor); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Accuracy %s\n\n", Sparkline(MovingAverage(accuracy, window)))
	return err
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
