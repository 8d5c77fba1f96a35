package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/danielvr/mydays/internal/groups"
	"github.com/danielvr/mydays/internal/middleware"
	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/rpc"
	"github.com/danielvr/mydays/internal/watch"
)

// WatchService implements the mydays.v1.WatchService server streams. Each
// stream follows the same shape: subscribe to a hub topic, send the current
// snapshot, then re-read and resend on every signal until the client goes
// away. Signals carry no payload, so a burst of writes coalesces into a
// single re-read and the client always sees the latest state.
type WatchService struct {
	groups *groups.Service
	hub    *watch.Hub
	logger *slog.Logger
}

var _ rpc.WatchHandler = (*WatchService)(nil)

// NewWatchService creates a new subscription service.
func NewWatchService(membership *groups.Service, hub *watch.Hub, logger *slog.Logger) *WatchService {
	return &WatchService{groups: membership, hub: hub, logger: logger}
}

// WatchGroup streams snapshots of a single group. A nil group in the response
// means the group does not exist, which after a non-nil snapshot means it was
// deleted; the stream stays open either way since deletion is a state the
// client must observe, not an error.
func (s *WatchService) WatchGroup(ctx context.Context, req *connect.Request[rpc.WatchGroupRequest], stream *connect.ServerStream[rpc.WatchGroupResponse]) error {
	id := groups.NormalizeCode(req.Msg.GroupID)
	signals, cancel := s.hub.Subscribe(watch.GroupTopic(id))
	defer cancel()

	s.logger.Info("group watch started", "group_id", id)
	defer s.logger.Info("group watch ended", "group_id", id)

	send := func() error {
		group, err := s.groups.GetGroup(ctx, id)
		if err != nil && !errors.Is(err, groups.ErrGroupNotFound) {
			return asConnectError(err)
		}
		res := &rpc.WatchGroupResponse{}
		if group != nil {
			wire := wireGroup(group)
			res.Group = &wire
		}
		return stream.Send(res)
	}

	if err := send(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signals:
			if err := send(); err != nil {
				return err
			}
		}
	}
}

// WatchMyPendingStatus streams whether the caller's join request for the
// group is still queued. A pending=false after pending=true means the
// request was resolved; which way is learned from the group watch.
func (s *WatchService) WatchMyPendingStatus(ctx context.Context, req *connect.Request[rpc.WatchMyPendingStatusRequest], stream *connect.ServerStream[rpc.WatchMyPendingStatusResponse]) error {
	userID := middleware.GetUserID(ctx)
	id := groups.NormalizeCode(req.Msg.GroupID)
	signals, cancel := s.hub.Subscribe(watch.PendingUserTopic(id, userID))
	defer cancel()

	s.logger.Info("pending status watch started", "group_id", id, "user_id", userID)

	send := func() error {
		pending, err := s.groups.PendingExists(ctx, id, userID)
		if err != nil {
			return asConnectError(err)
		}
		return stream.Send(&rpc.WatchMyPendingStatusResponse{Pending: pending})
	}

	if err := send(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signals:
			if err := send(); err != nil {
				return err
			}
		}
	}
}

// WatchPendingRequests streams the group's join queue, oldest first. Owner
// only; a non-owner is refused before the first snapshot. If the group is
// deleted mid-stream the queue reads as empty rather than erroring, and the
// owner learns of the deletion from their group watch.
func (s *WatchService) WatchPendingRequests(ctx context.Context, req *connect.Request[rpc.WatchPendingRequestsRequest], stream *connect.ServerStream[rpc.WatchPendingRequestsResponse]) error {
	userID := middleware.GetUserID(ctx)
	id := groups.NormalizeCode(req.Msg.GroupID)

	// Ownership is checked once, on subscribe. Ownership never transfers,
	// so the check cannot go stale while the stream is open.
	if _, err := s.groups.ListPending(ctx, userID, id); err != nil {
		return asConnectError(err)
	}

	signals, cancel := s.hub.Subscribe(watch.PendingListTopic(id))
	defer cancel()

	s.logger.Info("pending queue watch started", "group_id", id, "owner", userID)

	send := func() error {
		reqs, err := s.groups.ListPending(ctx, userID, id)
		if err != nil {
			if errors.Is(err, groups.ErrGroupNotFound) {
				reqs = nil
			} else {
				return asConnectError(err)
			}
		}
		return stream.Send(&rpc.WatchPendingRequestsResponse{Requests: wirePendingRequests(reqs)})
	}

	if err := send(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signals:
			if err := send(); err != nil {
				return err
			}
		}
	}
}

// WatchMyGroups streams the set of groups the caller owns, newest first.
func (s *WatchService) WatchMyGroups(ctx context.Context, req *connect.Request[rpc.WatchMyGroupsRequest], stream *connect.ServerStream[rpc.WatchMyGroupsResponse]) error {
	userID := middleware.GetUserID(ctx)
	signals, cancel := s.hub.Subscribe(watch.OwnerGroupsTopic(userID))
	defer cancel()

	s.logger.Info("owned groups watch started", "user_id", userID)

	send := func() error {
		owned, err := s.groups.ListOwnedGroups(ctx, userID)
		if err != nil {
			return asConnectError(err)
		}
		out := make([]rpc.Group, 0, len(owned))
		for _, g := range owned {
			out = append(out, wireGroup(g))
		}
		return stream.Send(&rpc.WatchMyGroupsResponse{Groups: out})
	}

	if err := send(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signals:
			if err := send(); err != nil {
				return err
			}
		}
	}
}

func wirePendingRequests(reqs []*models.PendingRequest) []rpc.PendingRequest {
	out := make([]rpc.PendingRequest, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, rpc.PendingRequest{
			UserID:      r.UserID,
			DisplayName: r.DisplayName,
			PhotoURL:    r.PhotoURL,
			RequestedAt: r.RequestedAt,
		})
	}
	return out
}
