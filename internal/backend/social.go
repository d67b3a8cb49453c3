package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/rewards"
	"github.com/verte-zerg/tuidrill/internal/store"
)

// Board selects a leaderboard view.
type Board string

const (
	BoardGlobal  Board = "global"
	BoardDaily   Board = "daily"
	BoardWeekly  Board = "weekly"
	BoardFriends Board = "friends"
)

// Boards lists every leaderboard view in display order.
var Boards = []Board{BoardGlobal, BoardDaily, BoardWeekly, BoardFriends}

// ParseBoard parses a board name; empty means global.
func ParseBoard(v string) (Board, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return BoardGlobal, nil
	}
	if lo.Contains(Boards, Board(v)) {
		return Board(v), nil
	}
	return "", fmt.Errorf("unknown leaderboard %q", v)
}

// LeaderboardRequest selects entries for a board.
type LeaderboardRequest struct {
	Board    Board
	GameType string
	Limit    int
	// UserID anchors the friends board.
	UserID string
}

// Leaderboard returns the entries of a board, best first.
func (s *Service) Leaderboard(ctx context.Context, req LeaderboardRequest) ([]model.LeaderboardEntry, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = store.DefaultLeaderboardLimit
	}
	q := model.LeaderboardQuery{GameType: req.GameType, Limit: limit}
	switch req.Board {
	case BoardGlobal, "":
	case BoardDaily:
		since := s.now().Add(-24 * time.Hour)
		q.Since = &since
	case BoardWeekly:
		since := s.now().Add(-7 * 24 * time.Hour)
		q.Since = &since
	case BoardFriends:
		return s.friendsBoard(ctx, req.UserID, req.GameType, limit)
	default:
		return nil, fmt.Errorf("unknown leaderboard %q", req.Board)
	}
	entries, err := s.store.TopScores(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s leaderboard: %w", req.Board, err)
	}
	return entries, nil
}

func (s *Service) friendsBoard(ctx context.Context, userID, gameType string, limit int) ([]model.LeaderboardEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("friends leaderboard needs a player")
	}
	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	ids := append(lo.Map(friends, func(f model.Friend, _ int) string { return f.UserID }), userID)
	entries, err := s.store.BestPerUser(ctx, ids, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends leaderboard: %w", err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// UserBest returns the best entry of a user for a game type.
func (s *Service) UserBest(ctx context.Context, userID, gameType string) (model.LeaderboardEntry, error) {
	return s.store.UserBest(ctx, userID, gameType)
}

// History returns recent entries of a user in chronological order.
func (s *Service) History(ctx context.Context, userID, gameType string, limit int) ([]model.LeaderboardEntry, error) {
	return s.store.UserHistory(ctx, userID, gameType, limit)
}

// SendFriendRequest sends a request from a user to the player named toName.
func (s *Service) SendFriendRequest(ctx context.Context, fromID, toName string) (model.FriendRequest, error) {
	to, err := s.store.FindUserByName(ctx, toName)
	if err != nil {
		return model.FriendRequest{}, fmt.Errorf("failed to find player %q: %w", toName, err)
	}
	req, err := s.store.SendFriendRequest(ctx, fromID, to.ID)
	if err != nil {
		return model.FriendRequest{}, fmt.Errorf("failed to send friend request: %w", err)
	}
	return req, nil
}

// PendingRequests lists incoming friend requests of a user.
func (s *Service) PendingRequests(ctx context.Context, userID string) ([]model.FriendRequest, error) {
	return s.store.PendingRequests(ctx, userID)
}

// RespondFriendRequest lets the recipient accept or reject a request. Accepting
// refreshes the social achievements of both players.
func (s *Service) RespondFriendRequest(ctx context.Context, userID, requestID string, accept bool) (model.FriendRequest, error) {
	pending, err := s.store.PendingRequests(ctx, userID)
	if err != nil {
		return model.FriendRequest{}, fmt.Errorf("failed to load friend requests: %w", err)
	}
	if !lo.ContainsBy(pending, func(r model.FriendRequest) bool { return r.ID == requestID }) {
		return model.FriendRequest{}, fmt.Errorf("friend request %q: %w", requestID, store.ErrNotFound)
	}
	req, err := s.store.RespondFriendRequest(ctx, requestID, accept)
	if err != nil {
		return model.FriendRequest{}, fmt.Errorf("failed to answer friend request: %w", err)
	}
	if accept {
		s.refreshFriends(ctx, req.FromUserID)
		s.refreshFriends(ctx, req.ToUserID)
	}
	return req, nil
}

// Friends lists the friends of a user.
func (s *Service) Friends(ctx context.Context, userID string) ([]model.Friend, error) {
	return s.store.ListFriends(ctx, userID)
}

// RemoveFriend unlinks two players and refreshes both friend counts.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.store.RemoveFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	s.refreshFriends(ctx, userID)
	s.refreshFriends(ctx, friendID)
	return nil
}

// refreshFriends stores the friend count of a user and pays social
// achievements. Failures are logged.
func (s *Service) refreshFriends(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.FriendCount(ctx, userID)
	if err != nil {
		s.log.Error("failed to count friends", "user", userID, "err", err)
		return
	}
	p, err := s.Progress(ctx, userID)
	if err != nil {
		s.log.Error("failed to load progress", "user", userID, "err", err)
		return
	}
	unlocked := rewards.RecordFriends(&p, count, s.now())
	if err := s.store.SaveProgress(ctx, p); err != nil {
		s.log.Error("failed to save progress", "user", userID, "err", err)
		return
	}
	s.payAchievements(ctx, userID, unlocked)
}
