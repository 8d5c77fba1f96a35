package models

// DefaultGroupName is substituted for a blank group name at the boundary.
const DefaultGroupName = "My Group"

// Group is a shared alarm group, identified by its 6-character join code.
type Group struct {
	// ID is the 6-character join code (upper-case, unambiguous alphabet).
	ID string

	// Name is the display name of the group.
	Name string

	// Owner is the user ID of the creator. The owner is the only party
	// allowed to accept/reject join requests and to delete the group.
	Owner string

	// Members is the set of user IDs with full access to the group.
	// Invariant: Owner is always present. Members are only ever added
	// (via accept); there is no removal path short of deleting the group.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID is in the member set.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// DisplayName returns the group name, falling back to DefaultGroupName.
func (g *Group) DisplayName() string {
	if g.Name == "" {
		return DefaultGroupName
	}
	return g.Name
}
