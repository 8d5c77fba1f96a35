package models

// DefaultDisplayName is substituted for a blank requester name at the boundary.
const DefaultDisplayName = "Someone"

// PendingRequest is a queued, unapproved join request. One exists per
// (group, user) pair; the record's existence IS the pending state, there is
// no separate status field. It is destroyed by accept (paired with adding the
// user to the member set) or by reject (alone).
type PendingRequest struct {
	// GroupID is the join code of the group being requested.
	GroupID string

	// UserID is the requesting user. Doubles as the record key within
	// the group's pending namespace.
	UserID string

	// DisplayName is the requester's name as shown to the owner.
	DisplayName string

	// PhotoURL is the requester's avatar URL, empty if none.
	PhotoURL string

	// RequestedAt is the Unix timestamp of the request. Owner views are
	// ordered by this, oldest first.
	RequestedAt int64
}
