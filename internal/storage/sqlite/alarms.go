package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/storage"
)

// CreateAlarm persists an alarm. A NULL group_id marks a personal alarm;
// group alarms cascade away with their group.
func (s *SQLiteStore) CreateAlarm(ctx context.Context, alarm *models.Alarm) error {
	if alarm.ID == "" {
		alarm.ID = uuid.New().String()
	}
	if alarm.CreatedAt == 0 {
		alarm.CreatedAt = time.Now().Unix()
	}

	var groupID sql.NullString
	if alarm.GroupID != "" {
		groupID = sql.NullString{String: alarm.GroupID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alarms (id, group_id, datetime_utc, label, active, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		alarm.ID, groupID, alarm.DatetimeUTC, alarm.Label, alarm.Active, alarm.CreatedBy, alarm.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alarm: %w", err)
	}
	return nil
}

// GetAlarm retrieves an alarm by ID.
func (s *SQLiteStore) GetAlarm(ctx context.Context, alarmID string) (*models.Alarm, error) {
	alarm := &models.Alarm{}
	var groupID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, datetime_utc, label, active, created_by, created_at
		FROM alarms WHERE id = ?`,
		alarmID,
	).Scan(&alarm.ID, &groupID, &alarm.DatetimeUTC, &alarm.Label, &alarm.Active, &alarm.CreatedBy, &alarm.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alarm: %w", err)
	}
	alarm.GroupID = groupID.String
	return alarm, nil
}

// ListPersonalAlarms returns a user's personal alarms, newest first.
func (s *SQLiteStore) ListPersonalAlarms(ctx context.Context, userID string) ([]*models.Alarm, error) {
	return s.listAlarms(ctx, `
		SELECT id, group_id, datetime_utc, label, active, created_by, created_at
		FROM alarms WHERE group_id IS NULL AND created_by = ?
		ORDER BY created_at DESC`,
		userID)
}

// ListGroupAlarms returns a group's alarms, newest first.
func (s *SQLiteStore) ListGroupAlarms(ctx context.Context, groupID string) ([]*models.Alarm, error) {
	return s.listAlarms(ctx, `
		SELECT id, group_id, datetime_utc, label, active, created_by, created_at
		FROM alarms WHERE group_id = ?
		ORDER BY created_at DESC`,
		groupID)
}

func (s *SQLiteStore) listAlarms(ctx context.Context, query string, arg any) ([]*models.Alarm, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}
	defer rows.Close()

	var alarms []*models.Alarm
	for rows.Next() {
		alarm := &models.Alarm{}
		var groupID sql.NullString
		if err := rows.Scan(&alarm.ID, &groupID, &alarm.DatetimeUTC, &alarm.Label, &alarm.Active, &alarm.CreatedBy, &alarm.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alarm: %w", err)
		}
		alarm.GroupID = groupID.String
		alarms = append(alarms, alarm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alarms: %w", err)
	}

	return alarms, nil
}

// DeleteAlarm removes an alarm by ID.
func (s *SQLiteStore) DeleteAlarm(ctx context.Context, alarmID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM alarms WHERE id = ?", alarmID)
	if err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
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
