package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/storage"
)

const userColumns = `id, email, display_name, password_hash, photo_url, timezone,
	group_id, group_name, push_token, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.PhotoURL,
		&user.Timezone,
		&user.GroupID,
		&user.GroupName,
		&user.PushToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, photo_url, timezone,
			group_id, group_name, push_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.PhotoURL,
		user.Timezone,
		user.GroupID,
		user.GroupName,
		user.PushToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// ListUsersWithPointer returns every user whose group pointer is set.
func (s *SQLiteStore) ListUsersWithPointer(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE group_id != ''")
	if err != nil {
		return nil, fmt.Errorf("failed to list users with pointer: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.DisplayName,
			&user.PasswordHash,
			&user.PhotoURL,
			&user.Timezone,
			&user.GroupID,
			&user.GroupName,
			&user.PushToken,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetGroupPointer points a user's profile at a group.
func (s *SQLiteStore) SetGroupPointer(ctx context.Context, userID, groupID, groupName string) error {
	return s.updateUser(ctx,
		"UPDATE users SET group_id = ?, group_name = ?, updated_at = ? WHERE id = ?",
		groupID, groupName, time.Now().Unix(), userID)
}

// ClearGroupPointer unconditionally nulls a user's group pointer.
func (s *SQLiteStore) ClearGroupPointer(ctx context.Context, userID string) error {
	return s.updateUser(ctx,
		"UPDATE users SET group_id = '', group_name = '', updated_at = ? WHERE id = ?",
		time.Now().Unix(), userID)
}

// ClearGroupPointerIf nulls the pointer only while it still references
// groupID. A pointer that already moved on is left alone; that is not an
// error.
func (s *SQLiteStore) ClearGroupPointerIf(ctx context.Context, userID, groupID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET group_id = '', group_name = '', updated_at = ? WHERE id = ? AND group_id = ?",
		time.Now().Unix(), userID, groupID)
	if err != nil {
		return fmt.Errorf("failed to clear group pointer: %w", err)
	}
	return nil
}

// UpdatePushToken stores (or clears, with an empty token) a user's push
// registration token.
func (s *SQLiteStore) UpdatePushToken(ctx context.Context, userID, token string) error {
	return s.updateUser(ctx,
		"UPDATE users SET push_token = ?, updated_at = ? WHERE id = ?",
		token, time.Now().Unix(), userID)
}

// UpdateTimezone stores a user's reported IANA timezone.
func (s *SQLiteStore) UpdateTimezone(ctx context.Context, userID, timezone string) error {
	return s.updateUser(ctx,
		"UPDATE users SET timezone = ?, updated_at = ? WHERE id = ?",
		timezone, time.Now().Unix(), userID)
}

// UpdatePhotoURL stores a user's avatar URL.
func (s *SQLiteStore) UpdatePhotoURL(ctx context.Context, userID, photoURL string) error {
	return s.updateUser(ctx,
		"UPDATE users SET photo_url = ?, updated_at = ? WHERE id = ?",
		photoURL, time.Now().Unix(), userID)
}

// updateUser runs a single-row user update and maps a missing row to
// storage.ErrNotFound.
func (s *SQLiteStore) updateUser(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
