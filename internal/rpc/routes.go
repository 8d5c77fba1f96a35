package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// AuthHandler is the server surface of mydays.v1.AuthService.
type AuthHandler interface {
	Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
	UpdatePushToken(ctx context.Context, req *connect.Request[UpdatePushTokenRequest]) (*connect.Response[UpdatePushTokenResponse], error)
}

// GroupHandler is the server surface of mydays.v1.GroupService.
type GroupHandler interface {
	CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error)
	AcceptMember(ctx context.Context, req *connect.Request[AcceptMemberRequest]) (*connect.Response[AcceptMemberResponse], error)
	RejectMember(ctx context.Context, req *connect.Request[RejectMemberRequest]) (*connect.Response[RejectMemberResponse], error)
	DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
	ClearMyGroup(ctx context.Context, req *connect.Request[ClearMyGroupRequest]) (*connect.Response[ClearMyGroupResponse], error)
	GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
}

// WatchHandler is the server surface of mydays.v1.WatchService.
type WatchHandler interface {
	WatchGroup(ctx context.Context, req *connect.Request[WatchGroupRequest], stream *connect.ServerStream[WatchGroupResponse]) error
	WatchMyPendingStatus(ctx context.Context, req *connect.Request[WatchMyPendingStatusRequest], stream *connect.ServerStream[WatchMyPendingStatusResponse]) error
	WatchPendingRequests(ctx context.Context, req *connect.Request[WatchPendingRequestsRequest], stream *connect.ServerStream[WatchPendingRequestsResponse]) error
	WatchMyGroups(ctx context.Context, req *connect.Request[WatchMyGroupsRequest], stream *connect.ServerStream[WatchMyGroupsResponse]) error
}

// AlarmHandler is the server surface of mydays.v1.AlarmService.
type AlarmHandler interface {
	CreateAlarm(ctx context.Context, req *connect.Request[CreateAlarmRequest]) (*connect.Response[CreateAlarmResponse], error)
	ListAlarms(ctx context.Context, req *connect.Request[ListAlarmsRequest]) (*connect.Response[ListAlarmsResponse], error)
	DeleteAlarm(ctx context.Context, req *connect.Request[DeleteAlarmRequest]) (*connect.Response[DeleteAlarmResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSONCodec()}, opts...)
}

// RegisterAuthService mounts the auth procedures on mux.
func RegisterAuthService(mux *http.ServeMux, svc AuthHandler, opts ...connect.HandlerOption) {
	opts = handlerOptions(opts)
	mux.Handle(AuthRegisterProcedure, connect.NewUnaryHandler(AuthRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthLoginProcedure, connect.NewUnaryHandler(AuthLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthGetCurrentUserProcedure, connect.NewUnaryHandler(AuthGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	mux.Handle(AuthUpdatePushTokenProcedure, connect.NewUnaryHandler(AuthUpdatePushTokenProcedure, svc.UpdatePushToken, opts...))
}

// RegisterGroupService mounts the membership procedures on mux.
func RegisterGroupService(mux *http.ServeMux, svc GroupHandler, opts ...connect.HandlerOption) {
	opts = handlerOptions(opts)
	mux.Handle(GroupCreateProcedure, connect.NewUnaryHandler(GroupCreateProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupJoinProcedure, connect.NewUnaryHandler(GroupJoinProcedure, svc.JoinGroup, opts...))
	mux.Handle(GroupAcceptMemberProcedure, connect.NewUnaryHandler(GroupAcceptMemberProcedure, svc.AcceptMember, opts...))
	mux.Handle(GroupRejectMemberProcedure, connect.NewUnaryHandler(GroupRejectMemberProcedure, svc.RejectMember, opts...))
	mux.Handle(GroupDeleteProcedure, connect.NewUnaryHandler(GroupDeleteProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupClearMyGroupProcedure, connect.NewUnaryHandler(GroupClearMyGroupProcedure, svc.ClearMyGroup, opts...))
	mux.Handle(GroupGetProcedure, connect.NewUnaryHandler(GroupGetProcedure, svc.GetGroup, opts...))
}

// RegisterWatchService mounts the subscription streams on mux.
func RegisterWatchService(mux *http.ServeMux, svc WatchHandler, opts ...connect.HandlerOption) {
	opts = handlerOptions(opts)
	mux.Handle(WatchGroupProcedure, connect.NewServerStreamHandler(WatchGroupProcedure, svc.WatchGroup, opts...))
	mux.Handle(WatchMyPendingStatusProcedure, connect.NewServerStreamHandler(WatchMyPendingStatusProcedure, svc.WatchMyPendingStatus, opts...))
	mux.Handle(WatchPendingRequestsProcedure, connect.NewServerStreamHandler(WatchPendingRequestsProcedure, svc.WatchPendingRequests, opts...))
	mux.Handle(WatchMyGroupsProcedure, connect.NewServerStreamHandler(WatchMyGroupsProcedure, svc.WatchMyGroups, opts...))
}

// RegisterAlarmService mounts the alarm procedures on mux.
func RegisterAlarmService(mux *http.ServeMux, svc AlarmHandler, opts ...connect.HandlerOption) {
	opts = handlerOptions(opts)
	mux.Handle(AlarmCreateProcedure, connect.NewUnaryHandler(AlarmCreateProcedure, svc.CreateAlarm, opts...))
	mux.Handle(AlarmListProcedure, connect.NewUnaryHandler(AlarmListProcedure, svc.ListAlarms, opts...))
	mux.Handle(AlarmDeleteProcedure, connect.NewUnaryHandler(AlarmDeleteProcedure, svc.DeleteAlarm, opts...))
}
