package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/danielvr/mydays/internal/groups"
	"github.com/danielvr/mydays/internal/middleware"
	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/rpc"
	"github.com/danielvr/mydays/internal/storage"
)

// GroupService implements the mydays.v1.GroupService RPC interface on top of
// the membership core.
type GroupService struct {
	groups *groups.Service
	store  storage.Store
	logger *slog.Logger
}

var _ rpc.GroupHandler = (*GroupService)(nil)

// NewGroupService creates a new group membership service.
func NewGroupService(membership *groups.Service, store storage.Store, logger *slog.Logger) *GroupService {
	return &GroupService{groups: membership, store: store, logger: logger}
}

func wireGroup(group *models.Group) rpc.Group {
	return rpc.Group{
		ID:        group.ID,
		Name:      group.Name,
		Owner:     group.Owner,
		Members:   group.Members,
		CreatedAt: group.CreatedAt,
	}
}

// CreateGroup creates a group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[rpc.CreateGroupRequest]) (*connect.Response[rpc.CreateGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.Info("CreateGroup request", "user_id", userID)

	groupID, groupName, err := s.groups.CreateGroup(ctx, userID, req.Msg.Name)
	if err != nil {
		return nil, asConnectError(err)
	}

	return connect.NewResponse(&rpc.CreateGroupResponse{
		GroupID:   groupID,
		GroupName: groupName,
	}), nil
}

// JoinGroup queues a join request against the group identified by the code.
// The caller's stored profile supplies the name and photo shown to the owner.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[rpc.JoinGroupRequest]) (*connect.Response[rpc.JoinGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.Info("JoinGroup request", "user_id", userID, "code", req.Msg.Code)

	var displayName, photoURL string
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		// The request can still be queued; the owner sees a placeholder
		// name instead of the profile one.
		s.logger.Warn("failed to load requester profile", "user_id", userID, "error", err)
	} else {
		displayName = user.DisplayName
		photoURL = user.PhotoURL
	}

	groupName, err := s.groups.JoinGroup(ctx, userID, req.Msg.Code, displayName, photoURL)
	if err != nil {
		return nil, asConnectError(err)
	}

	return connect.NewResponse(&rpc.JoinGroupResponse{GroupName: groupName}), nil
}

// AcceptMember grants membership to a pending requester. Owner only.
func (s *GroupService) AcceptMember(ctx context.Context, req *connect.Request[rpc.AcceptMemberRequest]) (*connect.Response[rpc.AcceptMemberResponse], error) {
	adminID := middleware.GetUserID(ctx)
	s.logger.Info("AcceptMember request", "admin", adminID, "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	if err := s.groups.AcceptMember(ctx, adminID, req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&rpc.AcceptMemberResponse{}), nil
}

// RejectMember discards a pending request. Owner only.
func (s *GroupService) RejectMember(ctx context.Context, req *connect.Request[rpc.RejectMemberRequest]) (*connect.Response[rpc.RejectMemberResponse], error) {
	adminID := middleware.GetUserID(ctx)
	s.logger.Info("RejectMember request", "admin", adminID, "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	if err := s.groups.RejectMember(ctx, adminID, req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&rpc.RejectMemberResponse{}), nil
}

// DeleteGroup removes a group the caller owns.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[rpc.DeleteGroupRequest]) (*connect.Response[rpc.DeleteGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.Info("DeleteGroup request", "user_id", userID, "group_id", req.Msg.GroupID)

	if err := s.groups.DeleteGroup(ctx, userID, req.Msg.GroupID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&rpc.DeleteGroupResponse{}), nil
}

// ClearMyGroup nulls the caller's own group pointer.
func (s *GroupService) ClearMyGroup(ctx context.Context, req *connect.Request[rpc.ClearMyGroupRequest]) (*connect.Response[rpc.ClearMyGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.Info("ClearMyGroup request", "user_id", userID)

	if err := s.groups.ClearMyGroup(ctx, userID); err != nil {
		// A missing user row means the token outlived the account; the
		// pointer is gone either way.
		if connectErr := asConnectError(err); connectErr.Code() != connect.CodeNotFound {
			return nil, connectErr
		}
	}
	return connect.NewResponse(&rpc.ClearMyGroupResponse{}), nil
}

// GetGroup reads a one-shot group snapshot. Members and users holding the
// join code may read it; the snapshot is what the watch stream would have
// sent first.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[rpc.GetGroupRequest]) (*connect.Response[rpc.GetGroupResponse], error) {
	group, err := s.groups.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&rpc.GetGroupResponse{Group: wireGroup(group)}), nil
}
