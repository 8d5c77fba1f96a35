package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/danielvr/mydays/internal/models"
)

// UpsertPending creates or refreshes a pending join request for the
// (group, user) pair. The insert and the fallback update are separate
// statements so the caller can tell a fresh request from a re-submission;
// only the former triggers an owner notification.
func (s *SQLiteStore) UpsertPending(ctx context.Context, req *models.PendingRequest) (bool, error) {
	if req.RequestedAt == 0 {
		req.RequestedAt = time.Now().Unix()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_requests (group_id, user_id, display_name, photo_url, requested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		req.GroupID, req.UserID, req.DisplayName, req.PhotoURL, req.RequestedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert pending request: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert pending request: %w", err)
	}
	if inserted > 0 {
		return true, nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE pending_requests
		SET display_name = ?, photo_url = ?, requested_at = ?
		WHERE group_id = ? AND user_id = ?`,
		req.DisplayName, req.PhotoURL, req.RequestedAt,
		req.GroupID, req.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to refresh pending request: %w", err)
	}
	return false, nil
}

// DeletePending removes a pending request. Deleting an absent record is not
// an error: accept and reject both issue this delete, and whichever lands
// second must still succeed.
func (s *SQLiteStore) DeletePending(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM pending_requests WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete pending request: %w", err)
	}
	return nil
}

// ListPending returns a group's pending requests, oldest first.
func (s *SQLiteStore) ListPending(ctx context.Context, groupID string) ([]*models.PendingRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_id, user_id, display_name, photo_url, requested_at
		FROM pending_requests
		WHERE group_id = ?
		ORDER BY requested_at ASC, user_id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.PendingRequest
	for rows.Next() {
		req := &models.PendingRequest{}
		if err := rows.Scan(&req.GroupID, &req.UserID, &req.DisplayName, &req.PhotoURL, &req.RequestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending requests: %w", err)
	}

	return requests, nil
}

// PendingExists reports whether a pending request exists for the
// (group, user) pair.
func (s *SQLiteStore) PendingExists(ctx context.Context, groupID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM pending_requests WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return n > 0, nil
}
