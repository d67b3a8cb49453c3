// Package store handles SQLite persistence.
package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Sentinel errors returned by Store methods.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrAlreadyFriends    = errors.New("already friends")
	ErrRequestExists     = errors.New("friend request already exists")
	ErrSelfFriend        = errors.New("cannot add yourself as a friend")
	ErrNameTaken         = errors.New("display name already taken")
)

// Store wraps SQLite access for players, scores and rewards.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The server shares one store across HTTP and SSH sessions; a single
	// connection serializes writers instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			display_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			game_type TEXT NOT NULL,
			wave INTEGER,
			kills INTEGER,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS player_stats (
			user_id TEXT PRIMARY KEY,
			total_games INTEGER NOT NULL,
			total_play_time INTEGER NOT NULL,
			highest_wave INTEGER NOT NULL,
			total_kills INTEGER NOT NULL,
			best_accuracy INTEGER NOT NULL,
			perfect_games INTEGER NOT NULL,
			games_over_95 INTEGER NOT NULL,
			total_friends INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id TEXT NOT NULL,
			achievement_id TEXT NOT NULL,
			progress INTEGER NOT NULL,
			unlocked INTEGER NOT NULL,
			unlocked_at TEXT,
			PRIMARY KEY (user_id, achievement_id)
		);`,
		`CREATE TABLE IF NOT EXISTS currency (
			user_id TEXT PRIMARY KEY,
			coins INTEGER NOT NULL,
			lifetime_earned INTEGER NOT NULL,
			lifetime_spent INTEGER NOT NULL,
			last_updated TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS coin_ledger (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			reason TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS daily_state (
			user_id TEXT PRIMARY KEY,
			last_reset TEXT NOT NULL,
			streak INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS daily_tasks (
			user_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			task_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			reward INTEGER NOT NULL,
			target INTEGER NOT NULL,
			category TEXT NOT NULL,
			progress INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			PRIMARY KEY (user_id, task_id)
		);`,
		`CREATE TABLE IF NOT EXISTS friends (
			user_id TEXT NOT NULL,
			friend_id TEXT NOT NULL,
			added_at TEXT NOT NULL,
			PRIMARY KEY (user_id, friend_id)
		);`,
		`CREATE TABLE IF NOT EXISTS friend_requests (
			id TEXT PRIMARY KEY,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_user ON leaderboard(user_id, game_type);`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_created_at ON leaderboard(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_friend_requests_to ON friend_requests(to_id, status);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// timeLayout has fixed-width fractions so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func rollback(tx *sql.Tx) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		// Best-effort rollback.
		_ = rerr
	}
}
