package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/danielvr/mydays/internal/groups"
)

// asConnectError maps domain errors to Connect codes. The messages travel to
// the client verbatim: NotFound/Forbidden/AlreadyMember are terminal for the
// call and shown as actionable guidance, Unavailable signals the client to
// offer a retry.
func asConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, groups.ErrGroupNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, groups.ErrForbidden), errors.Is(err, groups.ErrNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, groups.ErrAlreadyMember):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, groups.ErrCodeConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, groups.ErrUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
