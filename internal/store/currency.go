package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// GetCurrency returns the coin balance of a user. Users without a balance row
// have zero coins.
func (s *Store) GetCurrency(ctx context.Context, userID string) (model.Currency, error) {
	return getCurrency(ctx, s.db, userID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getCurrency(ctx context.Context, q queryRower, userID string) (model.Currency, error) {
	var c model.Currency
	var updated string
	err := q.QueryRowContext(ctx, `SELECT coins, lifetime_earned, lifetime_spent, last_updated
		FROM currency WHERE user_id = ?`, userID).Scan(&c.Coins, &c.LifetimeEarned, &c.LifetimeSpent, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Currency{}, nil
	}
	if err != nil {
		return model.Currency{}, fmt.Errorf("failed to load currency: %w", err)
	}
	if c.LastUpdated, err = parseTime(updated); err != nil {
		return model.Currency{}, err
	}
	return c, nil
}

// AddCoins credits a positive amount and records it in the ledger.
func (s *Store) AddCoins(ctx context.Context, userID string, amount int, reason string) (model.Currency, error) {
	if amount <= 0 {
		return model.Currency{}, fmt.Errorf("coin amount must be positive, got %d", amount)
	}
	return s.changeCoins(ctx, userID, amount, reason)
}

// SpendCoins debits amount, failing with ErrInsufficientCoins when the balance
// is too low. Nothing is written on failure.
func (s *Store) SpendCoins(ctx context.Context, userID string, amount int, reason string) (model.Currency, error) {
	if amount <= 0 {
		return model.Currency{}, fmt.Errorf("coin amount must be positive, got %d", amount)
	}
	return s.changeCoins(ctx, userID, -amount, reason)
}

func (s *Store) changeCoins(ctx context.Context, userID string, delta int, reason string) (model.Currency, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Currency{}, err
	}
	defer rollback(tx)

	c, err := getCurrency(ctx, tx, userID)
	if err != nil {
		return model.Currency{}, err
	}
	if delta < 0 && c.Coins < -delta {
		return model.Currency{}, ErrInsufficientCoins
	}
	c.Coins += delta
	if delta > 0 {
		c.LifetimeEarned += delta
	} else {
		c.LifetimeSpent -= delta
	}
	c.LastUpdated = s.now()

	_, err = tx.ExecContext(ctx, `INSERT INTO currency(user_id, coins, lifetime_earned, lifetime_spent, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			coins = excluded.coins,
			lifetime_earned = excluded.lifetime_earned,
			lifetime_spent = excluded.lifetime_spent,
			last_updated = excluded.last_updated`,
		userID, c.Coins, c.LifetimeEarned, c.LifetimeSpent, formatTime(c.LastUpdated))
	if err != nil {
		return model.Currency{}, fmt.Errorf("failed to update currency: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO coin_ledger(user_id, amount, reason, created_at) VALUES (?, ?, ?, ?)`,
		userID, delta, reason, formatTime(c.LastUpdated))
	if err != nil {
		return model.Currency{}, fmt.Errorf("failed to record coin transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Currency{}, err
	}
	return c, nil
}

// Ledger returns the latest coin transactions of a user, newest first.
func (s *Store) Ledger(ctx context.Context, userID string, limit int) ([]model.CoinTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT amount, reason, created_at FROM coin_ledger
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.CoinTransaction
	for rows.Next() {
		var tr model.CoinTransaction
		var created string
		if err := rows.Scan(&tr.Amount, &tr.Reason, &created); err != nil {
			return nil, err
		}
		if tr.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
