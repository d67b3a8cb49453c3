package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// LoadDailyTasks returns the stored daily task set of a user. The bool result is
// false when none was stored yet.
func (s *Store) LoadDailyTasks(ctx context.Context, userID string) (model.DailyTasks, bool, error) {
	var daily model.DailyTasks
	var lastReset string
	err := s.db.QueryRowContext(ctx, `SELECT last_reset, streak FROM daily_state WHERE user_id = ?`, userID).
		Scan(&lastReset, &daily.Streak)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DailyTasks{}, false, nil
	}
	if err != nil {
		return model.DailyTasks{}, false, fmt.Errorf("failed to load daily state: %w", err)
	}
	if daily.LastReset, err = parseTime(lastReset); err != nil {
		return model.DailyTasks{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT task_id, title, description, reward, target, category, progress, completed
		FROM daily_tasks WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return model.DailyTasks{}, false, fmt.Errorf("failed to load daily tasks: %w", err)
	}
	defer closeRows(rows)
	for rows.Next() {
		var task model.DailyTask
		var completed int
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Reward,
			&task.Target,
			&task.Category,
			&task.Progress,
			&completed,
		); err != nil {
			return model.DailyTasks{}, false, err
		}
		task.Completed = completed != 0
		daily.Tasks = append(daily.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return model.DailyTasks{}, false, err
	}
	return daily, true, nil
}

// SaveDailyTasks replaces the daily task set of a user.
func (s *Store) SaveDailyTasks(ctx context.Context, userID string, daily model.DailyTasks) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	_, err = tx.ExecContext(ctx, `INSERT INTO daily_state(user_id, last_reset, streak) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET last_reset = excluded.last_reset, streak = excluded.streak`,
		userID, formatTime(daily.LastReset), daily.Streak)
	if err != nil {
		return fmt.Errorf("failed to save daily state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_tasks WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for i, task := range daily.Tasks {
		_, err := tx.ExecContext(ctx, `INSERT INTO daily_tasks(user_id, position, task_id, title, description,
			reward, target, category, progress, completed) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID,
			i,
			task.ID,
			task.Title,
			task.Description,
			task.Reward,
			task.Target,
			task.Category,
			task.Progress,
			boolInt(task.Completed),
		)
		if err != nil {
			return fmt.Errorf("failed to save daily task %s: %w", task.ID, err)
		}
	}
	return tx.Commit()
}
