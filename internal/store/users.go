package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// EnsureUser returns the user with the given display name, creating it when missing.
func (s *Store) EnsureUser(ctx context.Context, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, errors.New("display name is required")
	}
	user, err := s.FindUserByName(ctx, name)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}
	user = model.User{ID: uuid.NewString(), DisplayName: name, CreatedAt: s.now()}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users(id, display_name, created_at) VALUES (?, ?, ?)`,
		user.ID, user.DisplayName, formatTime(user.CreatedAt))
	if err != nil {
		if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.User{}, fmt.Errorf("failed to create user: %w", err)
		}
		// Lost a race with another first use of the same name.
		existing, ferr := s.FindUserByName(ctx, name)
		if ferr != nil {
			return model.User{}, fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
		return existing, nil
	}
	return user, nil
}

// FindUserByName looks a user up by display name, case-insensitively.
func (s *Store) FindUserByName(ctx context.Context, name string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, created_at FROM users WHERE lower(display_name) = lower(?)`, strings.TrimSpace(name))
	return scanUser(row)
}

// GetUser looks a user up by id.
func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, display_name, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (model.User, error) {
	var user model.User
	var created string
	if err := row.Scan(&user.ID, &user.DisplayName, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	ts, err := parseTime(created)
	if err != nil {
		return model.User{}, err
	}
	user.CreatedAt = ts
	return user, nil
}
