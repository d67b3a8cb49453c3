package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// LoadProgress returns the stored stats and achievement states of a user.
// Achievements carry only their id; callers merge them with the catalog.
// The bool result is false when the user has no stored progress yet.
func (s *Store) LoadProgress(ctx context.Context, userID string) (model.Progress, bool, error) {
	progress := model.Progress{UserID: userID}
	var updated string
	err := s.db.QueryRowContext(ctx, `SELECT total_games, total_play_time, highest_wave, total_kills,
		best_accuracy, perfect_games, games_over_95, total_friends, updated_at
		FROM player_stats WHERE user_id = ?`, userID).Scan(
		&progress.Stats.TotalGamesPlayed,
		&progress.Stats.TotalPlayTime,
		&progress.Stats.HighestWave,
		&progress.Stats.TotalKills,
		&progress.Stats.BestAccuracy,
		&progress.Stats.PerfectGames,
		&progress.Stats.GamesOver95Accuracy,
		&progress.Stats.TotalFriends,
		&updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return progress, false, nil
	}
	if err != nil {
		return model.Progress{}, false, fmt.Errorf("failed to load stats: %w", err)
	}
	if progress.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Progress{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT achievement_id, progress, unlocked, unlocked_at
		FROM achievements WHERE user_id = ? ORDER BY achievement_id`, userID)
	if err != nil {
		return model.Progress{}, false, fmt.Errorf("failed to load achievements: %w", err)
	}
	defer closeRows(rows)
	for rows.Next() {
		var a model.Achievement
		var unlocked int
		var unlockedAt sql.NullString
		if err := rows.Scan(&a.ID, &a.Progress, &unlocked, &unlockedAt); err != nil {
			return model.Progress{}, false, err
		}
		a.Unlocked = unlocked != 0
		if unlockedAt.Valid {
			ts, err := parseTime(unlockedAt.String)
			if err != nil {
				return model.Progress{}, false, err
			}
			a.UnlockedAt = &ts
		}
		progress.Achievements = append(progress.Achievements, a)
	}
	if err := rows.Err(); err != nil {
		return model.Progress{}, false, err
	}
	return progress, true, nil
}

// SaveProgress replaces the stored stats and achievement states of a user.
func (s *Store) SaveProgress(ctx context.Context, progress model.Progress) error {
	if progress.UpdatedAt.IsZero() {
		progress.UpdatedAt = s.now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	st := progress.Stats
	_, err = tx.ExecContext(ctx, `INSERT INTO player_stats(user_id, total_games, total_play_time, highest_wave,
		total_kills, best_accuracy, perfect_games, games_over_95, total_friends, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_games = excluded.total_games,
			total_play_time = excluded.total_play_time,
			highest_wave = excluded.highest_wave,
			total_kills = excluded.total_kills,
			best_accuracy = excluded.best_accuracy,
			perfect_games = excluded.perfect_games,
			games_over_95 = excluded.games_over_95,
			total_friends = excluded.total_friends,
			updated_at = excluded.updated_at`,
		progress.UserID,
		st.TotalGamesPlayed,
		st.TotalPlayTime,
		st.HighestWave,
		st.TotalKills,
		st.BestAccuracy,
		st.PerfectGames,
		st.GamesOver95Accuracy,
		st.TotalFriends,
		formatTime(progress.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO achievements(user_id, achievement_id, progress, unlocked, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, achievement_id) DO UPDATE SET
			progress = excluded.progress,
			unlocked = excluded.unlocked,
			unlocked_at = excluded.unlocked_at`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, a := range progress.Achievements {
		var unlockedAt any
		if a.UnlockedAt != nil {
			unlockedAt = formatTime(*a.UnlockedAt)
		}
		if _, err := stmt.ExecContext(ctx, progress.UserID, a.ID, a.Progress, boolInt(a.Unlocked), unlockedAt); err != nil {
			return fmt.Errorf("failed to save achievement %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}
