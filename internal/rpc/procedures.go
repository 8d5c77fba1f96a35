package rpc

// Procedure names, in Connect's /package.Service/Method form. These are the
// URL paths the handlers mount at and the clients call.
const (
	AuthRegisterProcedure        = "/mydays.v1.AuthService/Register"
	AuthLoginProcedure           = "/mydays.v1.AuthService/Login"
	AuthGetCurrentUserProcedure  = "/mydays.v1.AuthService/GetCurrentUser"
	AuthUpdatePushTokenProcedure = "/mydays.v1.AuthService/UpdatePushToken"

	GroupCreateProcedure       = "/mydays.v1.GroupService/CreateGroup"
	GroupJoinProcedure         = "/mydays.v1.GroupService/JoinGroup"
	GroupAcceptMemberProcedure = "/mydays.v1.GroupService/AcceptMember"
	GroupRejectMemberProcedure = "/mydays.v1.GroupService/RejectMember"
	GroupDeleteProcedure       = "/mydays.v1.GroupService/DeleteGroup"
	GroupClearMyGroupProcedure = "/mydays.v1.GroupService/ClearMyGroup"
	GroupGetProcedure          = "/mydays.v1.GroupService/GetGroup"

	WatchGroupProcedure           = "/mydays.v1.WatchService/WatchGroup"
	WatchMyPendingStatusProcedure = "/mydays.v1.WatchService/WatchMyPendingStatus"
	WatchPendingRequestsProcedure = "/mydays.v1.WatchService/WatchPendingRequests"
	WatchMyGroupsProcedure        = "/mydays.v1.WatchService/WatchMyGroups"

	AlarmCreateProcedure = "/mydays.v1.AlarmService/CreateAlarm"
	AlarmListProcedure   = "/mydays.v1.AlarmService/ListAlarms"
	AlarmDeleteProcedure = "/mydays.v1.AlarmService/DeleteAlarm"
)
