package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// DefaultLeaderboardLimit caps leaderboard reads when the query sets no limit.
const DefaultLeaderboardLimit = 100

const leaderboardColumns = `id, user_id, display_name, score, accuracy, game_type, wave, kills, created_at`

// InsertScore stores a leaderboard entry. Missing id and timestamp are filled in.
func (s *Store) InsertScore(ctx context.Context, entry model.LeaderboardEntry) (model.LeaderboardEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if _, err := model.ParseMode(entry.GameType); err != nil {
		return model.LeaderboardEntry{}, err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO leaderboard(`+leaderboardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.DisplayName,
		entry.Score,
		entry.Accuracy,
		entry.GameType,
		nullableInt(entry.Wave),
		nullableInt(entry.Kills),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return model.LeaderboardEntry{}, fmt.Errorf("failed to insert score: %w", err)
	}
	return entry, nil
}

// TopScores returns the highest scores matching the query, best first. Ties keep
// the earlier submission ahead.
func (s *Store) TopScores(ctx context.Context, q model.LeaderboardQuery) ([]model.LeaderboardEntry, error) {
	where, args := leaderboardFilter(q)
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard` + where + ` ORDER BY score DESC, created_at ASC LIMIT ?`
	args = append(args, limit)
	return s.queryEntries(ctx, query, args...)
}

// BestPerUser returns the single best entry of each listed user, best first.
// Users without entries are omitted.
func (s *Store) BestPerUser(ctx context.Context, userIDs []string, gameType string) ([]model.LeaderboardEntry, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	where, args := leaderboardFilter(model.LeaderboardQuery{GameType: gameType})
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(userIDs)), ", ")
	if where == "" {
		where = " WHERE "
	} else {
		where += " AND "
	}
	where += "user_id IN (" + placeholders + ")"
	for _, id := range userIDs {
		args = append(args, id)
	}
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard` + where + ` ORDER BY score DESC, created_at ASC`
	entries, err := s.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(userIDs))
	best := make([]model.LeaderboardEntry, 0, len(userIDs))
	for _, entry := range entries {
		if _, ok := seen[entry.UserID]; ok {
			continue
		}
		seen[entry.UserID] = struct{}{}
		best = append(best, entry)
	}
	return best, nil
}

// UserBest returns the best entry of a user for a game type.
func (s *Store) UserBest(ctx context.Context, userID, gameType string) (model.LeaderboardEntry, error) {
	entries, err := s.BestPerUser(ctx, []string{userID}, gameType)
	if err != nil {
		return model.LeaderboardEntry{}, err
	}
	if len(entries) == 0 {
		return model.LeaderboardEntry{}, ErrNotFound
	}
	return entries[0], nil
}

// UserHistory returns the most recent limit entries of a user in chronological order.
func (s *Store) UserHistory(ctx context.Context, userID, gameType string, limit int) ([]model.LeaderboardEntry, error) {
	where, args := leaderboardFilter(model.LeaderboardQuery{GameType: gameType})
	if where == "" {
		where = " WHERE user_id = ?"
	} else {
		where += " AND user_id = ?"
	}
	args = append(args, userID)
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	args = append(args, limit)
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard` + where + ` ORDER BY created_at DESC LIMIT ?`
	entries, err := s.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func leaderboardFilter(q model.LeaderboardQuery) (string, []any) {
	var clauses []string
	var args []any
	if q.GameType != "" && q.GameType != "all" {
		clauses = append(clauses, "game_type = ?")
		args = append(args, q.GameType)
	}
	if q.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*q.Since))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var entry model.LeaderboardEntry
		var wave, kills sql.NullInt64
		var created string
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.DisplayName,
			&entry.Score,
			&entry.Accuracy,
			&entry.GameType,
			&wave,
			&kills,
			&created,
		); err != nil {
			return nil, err
		}
		ts, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = ts
		entry.Wave = intPtr(wave)
		entry.Kills = intPtr(kills)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
