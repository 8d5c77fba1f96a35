package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account plus its profile fields. A single row backs
// both the authentication identity and the profile pointer; the Profile view
// below is the subset the membership flows read and write.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is the name shown to other group members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// PhotoURL is the user's avatar URL, empty if none.
	PhotoURL string

	// Timezone is the user's IANA timezone (e.g. "Europe/Madrid"),
	// refreshed on login. Stored for the scheduling layer; not
	// interpreted here.
	Timezone string

	// GroupID is the join code of the group the user currently views or
	// has requested. Empty means no group. At most one at a time.
	GroupID string

	// GroupName caches the display name of that group so the client can
	// render it without a second lookup.
	GroupName string

	// PushToken is the user's push registration token, empty if the
	// device never registered. Cleared best-effort when a delivery
	// failure reports it unregistered.
	PushToken string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Profile is the per-user record the membership flows observe: identity
// fields plus the single group pointer.
type Profile struct {
	UserID      string
	DisplayName string
	PhotoURL    string
	GroupID     string
	GroupName   string
	PushToken   string
}

// Profile returns the profile view of the user.
func (u *User) Profile() Profile {
	return Profile{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		GroupID:     u.GroupID,
		GroupName:   u.GroupName,
		PushToken:   u.PushToken,
	}
}
