package models

// Alarm is a scheduled alarm, either personal (GroupID empty) or shared with
// a group. Visibility of group alarms is gated on membership; the scheduling
// and display of alarms is handled by the client.
type Alarm struct {
	// ID is the unique identifier for the alarm (UUID format).
	ID string

	// GroupID is the owning group's join code, or empty for a personal
	// alarm.
	GroupID string

	// DatetimeUTC is the alarm time in RFC 3339 UTC
	// (e.g. "2024-01-15T14:30:00Z").
	DatetimeUTC string

	// Label is the user-visible description.
	Label string

	// Active reports whether the alarm is enabled.
	Active bool

	// CreatedBy is the user ID of the creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the alarm was created.
	CreatedAt int64
}
