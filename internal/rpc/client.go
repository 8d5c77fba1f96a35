package rpc

import (
	"context"

	"connectrpc.com/connect"
)

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSONCodec()}, opts...)
}

// AuthServiceClient calls mydays.v1.AuthService.
type AuthServiceClient struct {
	register        *connect.Client[RegisterRequest, AuthResponse]
	login           *connect.Client[LoginRequest, AuthResponse]
	getCurrentUser  *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
	updatePushToken *connect.Client[UpdatePushTokenRequest, UpdatePushTokenResponse]
}

// NewAuthServiceClient creates a client for the auth procedures.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = clientOptions(opts)
	return &AuthServiceClient{
		register:        connect.NewClient[RegisterRequest, AuthResponse](httpClient, baseURL+AuthRegisterProcedure, opts...),
		login:           connect.NewClient[LoginRequest, AuthResponse](httpClient, baseURL+AuthLoginProcedure, opts...),
		getCurrentUser:  connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthGetCurrentUserProcedure, opts...),
		updatePushToken: connect.NewClient[UpdatePushTokenRequest, UpdatePushTokenResponse](httpClient, baseURL+AuthUpdatePushTokenProcedure, opts...),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *AuthServiceClient) UpdatePushToken(ctx context.Context, req *connect.Request[UpdatePushTokenRequest]) (*connect.Response[UpdatePushTokenResponse], error) {
	return c.updatePushToken.CallUnary(ctx, req)
}

// GroupServiceClient calls mydays.v1.GroupService.
type GroupServiceClient struct {
	createGroup  *connect.Client[CreateGroupRequest, CreateGroupResponse]
	joinGroup    *connect.Client[JoinGroupRequest, JoinGroupResponse]
	acceptMember *connect.Client[AcceptMemberRequest, AcceptMemberResponse]
	rejectMember *connect.Client[RejectMemberRequest, RejectMemberResponse]
	deleteGroup  *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
	clearMyGroup *connect.Client[ClearMyGroupRequest, ClearMyGroupResponse]
	getGroup     *connect.Client[GetGroupRequest, GetGroupResponse]
}

// NewGroupServiceClient creates a client for the membership procedures.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:  connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupCreateProcedure, opts...),
		joinGroup:    connect.NewClient[JoinGroupRequest, JoinGroupResponse](httpClient, baseURL+GroupJoinProcedure, opts...),
		acceptMember: connect.NewClient[AcceptMemberRequest, AcceptMemberResponse](httpClient, baseURL+GroupAcceptMemberProcedure, opts...),
		rejectMember: connect.NewClient[RejectMemberRequest, RejectMemberResponse](httpClient, baseURL+GroupRejectMemberProcedure, opts...),
		deleteGroup:  connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupDeleteProcedure, opts...),
		clearMyGroup: connect.NewClient[ClearMyGroupRequest, ClearMyGroupResponse](httpClient, baseURL+GroupClearMyGroupProcedure, opts...),
		getGroup:     connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupGetProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AcceptMember(ctx context.Context, req *connect.Request[AcceptMemberRequest]) (*connect.Response[AcceptMemberResponse], error) {
	return c.acceptMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RejectMember(ctx context.Context, req *connect.Request[RejectMemberRequest]) (*connect.Response[RejectMemberResponse], error) {
	return c.rejectMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ClearMyGroup(ctx context.Context, req *connect.Request[ClearMyGroupRequest]) (*connect.Response[ClearMyGroupResponse], error) {
	return c.clearMyGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

// WatchServiceClient calls mydays.v1.WatchService.
type WatchServiceClient struct {
	watchGroup           *connect.Client[WatchGroupRequest, WatchGroupResponse]
	watchMyPendingStatus *connect.Client[WatchMyPendingStatusRequest, WatchMyPendingStatusResponse]
	watchPendingRequests *connect.Client[WatchPendingRequestsRequest, WatchPendingRequestsResponse]
	watchMyGroups        *connect.Client[WatchMyGroupsRequest, WatchMyGroupsResponse]
}

// NewWatchServiceClient creates a client for the subscription streams.
func NewWatchServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *WatchServiceClient {
	opts = clientOptions(opts)
	return &WatchServiceClient{
		watchGroup:           connect.NewClient[WatchGroupRequest, WatchGroupResponse](httpClient, baseURL+WatchGroupProcedure, opts...),
		watchMyPendingStatus: connect.NewClient[WatchMyPendingStatusRequest, WatchMyPendingStatusResponse](httpClient, baseURL+WatchMyPendingStatusProcedure, opts...),
		watchPendingRequests: connect.NewClient[WatchPendingRequestsRequest, WatchPendingRequestsResponse](httpClient, baseURL+WatchPendingRequestsProcedure, opts...),
		watchMyGroups:        connect.NewClient[WatchMyGroupsRequest, WatchMyGroupsResponse](httpClient, baseURL+WatchMyGroupsProcedure, opts...),
	}
}

func (c *WatchServiceClient) WatchGroup(ctx context.Context, req *connect.Request[WatchGroupRequest]) (*connect.ServerStreamForClient[WatchGroupResponse], error) {
	return c.watchGroup.CallServerStream(ctx, req)
}

func (c *WatchServiceClient) WatchMyPendingStatus(ctx context.Context, req *connect.Request[WatchMyPendingStatusRequest]) (*connect.ServerStreamForClient[WatchMyPendingStatusResponse], error) {
	return c.watchMyPendingStatus.CallServerStream(ctx, req)
}

func (c *WatchServiceClient) WatchPendingRequests(ctx context.Context, req *connect.Request[WatchPendingRequestsRequest]) (*connect.ServerStreamForClient[WatchPendingRequestsResponse], error) {
	return c.watchPendingRequests.CallServerStream(ctx, req)
}

func (c *WatchServiceClient) WatchMyGroups(ctx context.Context, req *connect.Request[WatchMyGroupsRequest]) (*connect.ServerStreamForClient[WatchMyGroupsResponse], error) {
	return c.watchMyGroups.CallServerStream(ctx, req)
}

// AlarmServiceClient calls mydays.v1.AlarmService.
type AlarmServiceClient struct {
	createAlarm *connect.Client[CreateAlarmRequest, CreateAlarmResponse]
	listAlarms  *connect.Client[ListAlarmsRequest, ListAlarmsResponse]
	deleteAlarm *connect.Client[DeleteAlarmRequest, DeleteAlarmResponse]
}

// NewAlarmServiceClient creates a client for the alarm procedures.
func NewAlarmServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AlarmServiceClient {
	opts = clientOptions(opts)
	return &AlarmServiceClient{
		createAlarm: connect.NewClient[CreateAlarmRequest, CreateAlarmResponse](httpClient, baseURL+AlarmCreateProcedure, opts...),
		listAlarms:  connect.NewClient[ListAlarmsRequest, ListAlarmsResponse](httpClient, baseURL+AlarmListProcedure, opts...),
		deleteAlarm: connect.NewClient[DeleteAlarmRequest, DeleteAlarmResponse](httpClient, baseURL+AlarmDeleteProcedure, opts...),
	}
}

func (c *AlarmServiceClient) CreateAlarm(ctx context.Context, req *connect.Request[CreateAlarmRequest]) (*connect.Response[CreateAlarmResponse], error) {
	return c.createAlarm.CallUnary(ctx, req)
}

func (c *AlarmServiceClient) ListAlarms(ctx context.Context, req *connect.Request[ListAlarmsRequest]) (*connect.Response[ListAlarmsResponse], error) {
	return c.listAlarms.CallUnary(ctx, req)
}

func (c *AlarmServiceClient) DeleteAlarm(ctx context.Context, req *connect.Request[DeleteAlarmRequest]) (*connect.Response[DeleteAlarmResponse], error) {
	return c.deleteAlarm.CallUnary(ctx, req)
}
