package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/stats"
	"github.com/verte-zerg/tuidrill/internal/statsui"
	"github.com/verte-zerg/tuidrill/internal/store"
)

const (
	defaultBoardLimit  = 10
	defaultLedgerLimit = 20
	defaultStatsLast   = 50
	defaultCurveWindow = 3
)

var (
	boardName  string
	boardMode  string
	boardLimit int

	statsPlain  bool
	statsLast   int
	statsWindow int

	ledgerLimit int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse profile, leaderboards, achievements and friends",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print the profile instead of opening the browser")
	cmd.Flags().IntVar(&statsLast, "last", defaultStatsLast, "games shown in the history charts")
	cmd.Flags().IntVar(&statsWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, !statsPlain)
	if err != nil {
		return err
	}
	defer a.close()

	if !statsPlain {
		program := tea.NewProgram(statsui.NewModel(a.svc, a.user), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	if statsLast <= 0 {
		return fmt.Errorf("--last must be > 0")
	}
	report, err := stats.BuildReport(context.Background(), a.svc, a.user, statsLast)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderProfile(out, a.user.DisplayName, report.Progress, report.Currency); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderAchievements(out, report.Progress.Achievements); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	useColor := stats.ShouldUseColor(os.Stdout)
	for _, mode := range []model.Mode{model.ModeTyping, model.ModeAim} {
		title := fmt.Sprintf("%s score (last %d)", mode, len(report.History[mode]))
		if err := stats.RenderHistory(out, title, report.History[mode], statsWindow, 0, 0, useColor); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print a leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&boardName, "board", string(backend.BoardGlobal), "global, daily, weekly or friends")
	cmd.Flags().StringVar(&boardMode, "mode", "all", "all, typing or aim")
	cmd.Flags().IntVar(&boardLimit, "limit", defaultBoardLimit, "number of entries")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	board, err := backend.ParseBoard(boardName)
	if err != nil {
		return err
	}
	mode := strings.ToLower(strings.TrimSpace(boardMode))
	if mode != "all" {
		if _, err := model.ParseMode(mode); err != nil {
			return err
		}
	}
	if boardLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.svc.Leaderboard(context.Background(), backend.LeaderboardRequest{
		Board:    board,
		GameType: mode,
		Limit:    boardLimit,
		UserID:   a.user.ID,
	})
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s leaderboard (%s)", strings.ToUpper(string(board[:1]))+string(board[1:]), mode)
	return stats.RenderLeaderboard(cmd.OutOrStdout(), title, entries)
}

func newFriendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "Manage friends",
		Args:  cobra.NoArgs,
		RunE:  runFriendsListCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List friends and pending requests",
		Args:  cobra.NoArgs,
		RunE:  runFriendsListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <player>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE:  runFriendsAddCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "accept <player>",
		Short: "Accept a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respondFriendRequest(cmd, args[0], true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reject <player>",
		Short: "Reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respondFriendRequest(cmd, args[0], false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <player>",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE:  runFriendsRemoveCmd,
	})
	return cmd
}

func runFriendsListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	friends, err := a.svc.Friends(ctx, a.user.ID)
	if err != nil {
		return err
	}
	pending, err := a.svc.PendingRequests(ctx, a.user.ID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(pending) > 0 {
		rows := lo.Map(pending, func(r model.FriendRequest, _ int) []string {
			return []string{r.FromName, r.CreatedAt.Local().Format("2006-01-02")}
		})
		if err := writeOut(out, "Pending requests\n%s\n\n", strings.Join(stats.FormatTable([]string{"From", "Sent"}, rows, nil), "\n")); err != nil {
			return err
		}
	}
	if len(friends) == 0 {
		return writeOut(out, "No friends yet. Add one with: tuidrill friends add <player>\n")
	}
	rows := lo.Map(friends, func(f model.Friend, _ int) []string {
		return []string{f.DisplayName, f.AddedAt.Local().Format("2006-01-02")}
	})
	return writeOut(out, "Friends\n%s\n", strings.Join(stats.FormatTable([]string{"Player", "Since"}, rows, nil), "\n"))
}

func runFriendsAddCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.svc.SendFriendRequest(context.Background(), a.user.ID, args[0]); err != nil {
		return err
	}
	return writeOut(cmd.OutOrStdout(), "Friend request sent to %s\n", args[0])
}

func respondFriendRequest(cmd *cobra.Command, name string, accept bool) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	pending, err := a.svc.PendingRequests(ctx, a.user.ID)
	if err != nil {
		return err
	}
	req, ok := lo.Find(pending, func(r model.FriendRequest) bool {
		return strings.EqualFold(r.FromName, name)
	})
	if !ok {
		return fmt.Errorf("no pending request from %q: %w", name, store.ErrNotFound)
	}
	if _, err := a.svc.RespondFriendRequest(ctx, a.user.ID, req.ID, accept); err != nil {
		return err
	}
	if accept {
		return writeOut(cmd.OutOrStdout(), "You are now friends with %s\n", req.FromName)
	}
	return writeOut(cmd.OutOrStdout(), "Rejected request from %s\n", req.FromName)
}

func runFriendsRemoveCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	friends, err := a.svc.Friends(ctx, a.user.ID)
	if err != nil {
		return err
	}
	friend, ok := lo.Find(friends, func(f model.Friend) bool {
		return strings.EqualFold(f.DisplayName, args[0])
	})
	if !ok {
		return fmt.Errorf("%q is not your friend: %w", args[0], store.ErrNotFound)
	}
	if err := a.svc.RemoveFriend(ctx, a.user.ID, friend.UserID); err != nil {
		return err
	}
	return writeOut(cmd.OutOrStdout(), "Removed %s\n", friend.DisplayName)
}

func newCoinsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coins",
		Short: "Show the coin balance and recent transactions",
		Args:  cobra.NoArgs,
		RunE:  runCoinsCmd,
	}
	cmd.Flags().IntVar(&ledgerLimit, "limit", defaultLedgerLimit, "transactions shown")
	return cmd
}

func runCoinsCmd(cmd *cobra.Command, _ []string) error {
	if ledgerLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	cur, err := a.svc.Currency(ctx, a.user.ID)
	if err != nil {
		return err
	}
	txs, err := a.svc.Ledger(ctx, a.user.ID, ledgerLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := writeOut(out, "Coins: %d (earned %d, spent %d)\n\n", cur.Coins, cur.LifetimeEarned, cur.LifetimeSpent); err != nil {
		return err
	}
	return stats.RenderLedger(out, txs)
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "Show today's daily tasks",
		Args:  cobra.NoArgs,
		RunE:  runTasksCmd,
	}
}

func runTasksCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	daily, err := a.svc.DailyTasks(context.Background(), a.user.ID)
	if err != nil {
		return err
	}
	return stats.RenderTasks(cmd.OutOrStdout(), daily)
}
