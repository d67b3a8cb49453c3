package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verte-zerg/tuidrill/internal/model"
)

// SendFriendRequest records a pending request from one user to another.
func (s *Store) SendFriendRequest(ctx context.Context, fromID, toID string) (model.FriendRequest, error) {
	if fromID == toID {
		return model.FriendRequest{}, ErrSelfFriend
	}
	from, err := s.GetUser(ctx, fromID)
	if err != nil {
		return model.FriendRequest{}, fmt.Errorf("failed to load sender: %w", err)
	}
	if _, err := s.GetUser(ctx, toID); err != nil {
		return model.FriendRequest{}, fmt.Errorf("failed to load recipient: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.FriendRequest{}, err
	}
	defer rollback(tx)

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM friends WHERE user_id = ? AND friend_id = ?`,
		fromID, toID).Scan(&n); err != nil {
		return model.FriendRequest{}, err
	}
	if n > 0 {
		return model.FriendRequest{}, ErrAlreadyFriends
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM friend_requests
		WHERE status = ? AND ((from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?))`,
		model.RequestPending, fromID, toID, toID, fromID).Scan(&n); err != nil {
		return model.FriendRequest{}, err
	}
	if n > 0 {
		return model.FriendRequest{}, ErrRequestExists
	}

	req := model.FriendRequest{
		ID:         fromID + "_" + toID,
		FromUserID: fromID,
		FromName:   from.DisplayName,
		ToUserID:   toID,
		Status:     model.RequestPending,
		CreatedAt:  s.now(),
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO friend_requests(id, from_id, to_id, status, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, created_at = excluded.created_at`,
		req.ID, req.FromUserID, req.ToUserID, req.Status, formatTime(req.CreatedAt))
	if err != nil {
		return model.FriendRequest{}, fmt.Errorf("failed to save friend request: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.FriendRequest{}, err
	}
	return req, nil
}

// PendingRequests returns the incoming pending requests of a user, oldest first.
func (s *Store) PendingRequests(ctx context.Context, userID string) ([]model.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, r.from_id, u.display_name, r.to_id, r.status, r.created_at
		FROM friend_requests r JOIN users u ON u.id = r.from_id
		WHERE r.to_id = ? AND r.status = ? ORDER BY r.created_at`, userID, model.RequestPending)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.FriendRequest
	for rows.Next() {
		var req model.FriendRequest
		var created string
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.FromName, &req.ToUserID, &req.Status, &created); err != nil {
			return nil, err
		}
		if req.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RespondFriendRequest accepts or rejects a pending request. Accepting links
// both users as friends.
func (s *Store) RespondFriendRequest(ctx context.Context, requestID string, accept bool) (model.FriendRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.FriendRequest{}, err
	}
	defer rollback(tx)

	var req model.FriendRequest
	var created string
	err = tx.QueryRowContext(ctx, `SELECT id, from_id, to_id, status, created_at FROM friend_requests WHERE id = ?`,
		requestID).Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &created)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && req.Status != model.RequestPending) {
		return model.FriendRequest{}, ErrNotFound
	}
	if err != nil {
		return model.FriendRequest{}, err
	}
	if req.CreatedAt, err = parseTime(created); err != nil {
		return model.FriendRequest{}, err
	}

	req.Status = model.RequestRejected
	if accept {
		req.Status = model.RequestAccepted
		added := formatTime(s.now())
		for _, pair := range [][2]string{{req.FromUserID, req.ToUserID}, {req.ToUserID, req.FromUserID}} {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO friends(user_id, friend_id, added_at) VALUES (?, ?, ?)`,
				pair[0], pair[1], added); err != nil {
				return model.FriendRequest{}, fmt.Errorf("failed to add friend: %w", err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE friend_requests SET status = ? WHERE id = ?`, req.Status, req.ID); err != nil {
		return model.FriendRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.FriendRequest{}, err
	}
	return req, nil
}

// ListFriends returns the friends of a user ordered by display name.
func (s *Store) ListFriends(ctx context.Context, userID string) ([]model.Friend, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT f.friend_id, u.display_name, f.added_at
		FROM friends f JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ? ORDER BY u.display_name`, userID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.Friend
	for rows.Next() {
		var f model.Friend
		var added string
		if err := rows.Scan(&f.UserID, &f.DisplayName, &added); err != nil {
			return nil, err
		}
		if f.AddedAt, err = parseTime(added); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveFriend unlinks two users in both directions.
func (s *Store) RemoveFriend(ctx context.Context, userID, friendID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM friends
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
		userID, friendID, friendID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FriendCount returns how many friends a user has.
func (s *Store) FriendCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM friends WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
