// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/danielvr/mydays/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert collides with an existing
	// key (group code collision, email already registered).
	ErrDuplicate = errors.New("record already exists")
)

// Store defines the interface for MyDays persistence. The abstraction allows
// swapping storage backends (SQLite, PostgreSQL, etc.) without changing the
// service layer.
//
// The group pointer on users is deliberately NOT foreign-keyed to groups: a
// stale pointer after a rejection or a group deletion is part of the data
// model, and the membership reconciler is responsible for clearing it.
type Store interface {
	// CreateGroup inserts a new group with its initial member set.
	// Returns ErrDuplicate if the group code is already taken.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members by join code.
	// Returns ErrNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// DeleteGroup removes a group. Pending requests and group alarms are
	// removed with it; member pointers are left untouched.
	// Returns ErrNotFound if absent.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember adds a user to a group's member set. Idempotent.
	AddMember(ctx context.Context, groupID, userID string) error

	// ListGroupsByOwner returns the groups owned by a user, newest first.
	ListGroupsByOwner(ctx context.Context, ownerID string) ([]*models.Group, error)

	// UpsertPending creates or refreshes a pending join request. It
	// reports whether the request was newly created, as opposed to a
	// re-submission refreshing an existing one.
	UpsertPending(ctx context.Context, req *models.PendingRequest) (created bool, err error)

	// DeletePending removes a pending request. Idempotent: deleting an
	// absent record is not an error, so that a reject racing an accept
	// converges instead of failing.
	DeletePending(ctx context.Context, groupID, userID string) error

	// ListPending returns a group's pending requests, oldest first.
	ListPending(ctx context.Context, groupID string) ([]*models.PendingRequest, error)

	// PendingExists reports whether a pending request exists for the
	// (group, user) pair.
	PendingExists(ctx context.Context, groupID, userID string) (bool, error)

	// CreateUser inserts a new user. Returns ErrDuplicate if the email
	// is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if
	// absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// SetGroupPointer points a user's profile at a group.
	SetGroupPointer(ctx context.Context, userID, groupID, groupName string) error

	// ClearGroupPointer unconditionally nulls a user's group pointer.
	ClearGroupPointer(ctx context.Context, userID string) error

	// ListUsersWithPointer returns every user whose group pointer is set.
	// The pointer janitor sweeps these for staleness.
	ListUsersWithPointer(ctx context.Context) ([]*models.User, error)

	// ClearGroupPointerIf nulls a user's group pointer only if it still
	// references groupID. Used by group deletion so a pointer that moved
	// on to another group is not clobbered.
	ClearGroupPointerIf(ctx context.Context, userID, groupID string) error

	// UpdatePushToken stores (or clears, with an empty token) a user's
	// push registration token.
	UpdatePushToken(ctx context.Context, userID, token string) error

	// UpdateTimezone stores a user's reported IANA timezone.
	UpdateTimezone(ctx context.Context, userID, timezone string) error

	// UpdatePhotoURL stores a user's avatar URL.
	UpdatePhotoURL(ctx context.Context, userID, photoURL string) error

	// CreateAlarm persists an alarm, personal or group-owned. The ID and
	// CreatedAt fields are populated if unset.
	CreateAlarm(ctx context.Context, alarm *models.Alarm) error

	// GetAlarm retrieves an alarm by ID. Returns ErrNotFound if absent.
	GetAlarm(ctx context.Context, alarmID string) (*models.Alarm, error)

	// ListPersonalAlarms returns a user's personal alarms, newest first.
	ListPersonalAlarms(ctx context.Context, userID string) ([]*models.Alarm, error)

	// ListGroupAlarms returns a group's alarms, newest first.
	ListGroupAlarms(ctx context.Context, groupID string) ([]*models.Alarm, error)

	// DeleteAlarm removes an alarm. Returns ErrNotFound if absent.
	DeleteAlarm(ctx context.Context, alarmID string) error

	// Close releases any resources held by the store.
	Close() error
}
