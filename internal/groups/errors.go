package groups

import "errors"

// Error taxonomy for membership operations. These surface verbatim to the
// client as actionable guidance, so the messages are user-facing.
var (
	// ErrGroupNotFound: the join code does not match any group.
	ErrGroupNotFound = errors.New("no group exists with that code")

	// ErrForbidden: the caller is not the group owner.
	ErrForbidden = errors.New("only the group owner can do that")

	// ErrAlreadyMember: a join was requested by an existing member.
	ErrAlreadyMember = errors.New("you are already a member of this group")

	// ErrNotMember: the caller is not in the group's member set.
	ErrNotMember = errors.New("you are not a member of this group")

	// ErrCodeConflict: code generation exhausted its retries without
	// finding a free code.
	ErrCodeConflict = errors.New("could not allocate a unique group code, try again")

	// ErrUnavailable: the backing store could not be reached. Transient;
	// the caller may retry. No operation retries itself.
	ErrUnavailable = errors.New("connection failed, check your network and try again")
)
