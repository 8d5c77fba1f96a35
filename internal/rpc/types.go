package rpc

// Wire representations. Field names are camelCase on the wire to match what
// the web client expects from the original Firestore document shapes.

// User is the wire form of an account/profile.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	GroupID     string `json:"groupId,omitempty"`
	GroupName   string `json:"groupName,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// Group is the wire form of a group record.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Owner     string   `json:"owner"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

// PendingRequest is the wire form of a queued join request.
type PendingRequest struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	RequestedAt int64  `json:"requestedAt"`
}

// Alarm is the wire form of an alarm.
type Alarm struct {
	ID          string `json:"id"`
	GroupID     string `json:"groupId,omitempty"`
	DatetimeUTC string `json:"datetimeUtc"`
	Label       string `json:"label"`
	Active      bool   `json:"active"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   int64  `json:"createdAt"`
}

// Auth service messages.

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Timezone, when set, refreshes the stored profile timezone (the
	// user may have travelled since last login).
	Timezone string `json:"timezone,omitempty"`
}

// AuthResponse is shared by Register and Login.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

type UpdatePushTokenRequest struct {
	// Token is the push registration token; empty clears it.
	Token string `json:"token"`
}

type UpdatePushTokenResponse struct{}

// Group service messages.

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
}

type JoinGroupRequest struct {
	// Code is the 6-character join code, case-insensitive.
	Code string `json:"code"`
}

type JoinGroupResponse struct {
	GroupName string `json:"groupName"`
}

type AcceptMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type AcceptMemberResponse struct{}

type RejectMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RejectMemberResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type ClearMyGroupRequest struct{}

type ClearMyGroupResponse struct{}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

// Watch service messages. Each watch is a server stream: one snapshot on
// subscribe, then one per observed change (coalesced under bursts).

type WatchGroupRequest struct {
	GroupID string `json:"groupId"`
}

type WatchGroupResponse struct {
	// Group is nil when the group does not exist or has been deleted.
	Group *Group `json:"group"`
}

type WatchMyPendingStatusRequest struct {
	GroupID string `json:"groupId"`
}

type WatchMyPendingStatusResponse struct {
	Pending bool `json:"pending"`
}

type WatchPendingRequestsRequest struct {
	GroupID string `json:"groupId"`
}

type WatchPendingRequestsResponse struct {
	Requests []PendingRequest `json:"requests"`
}

type WatchMyGroupsRequest struct{}

type WatchMyGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// Alarm service messages.

type CreateAlarmRequest struct {
	// GroupID targets a group alarm; empty creates a personal alarm.
	GroupID     string `json:"groupId,omitempty"`
	DatetimeUTC string `json:"datetimeUtc"`
	Label       string `json:"label"`
	Active      bool   `json:"active"`
}

type CreateAlarmResponse struct {
	Alarm Alarm `json:"alarm"`
}

type ListAlarmsRequest struct {
	// GroupID lists a group's alarms; empty lists the caller's personal
	// alarms.
	GroupID string `json:"groupId,omitempty"`
}

type ListAlarmsResponse struct {
	Alarms []Alarm `json:"alarms"`
}

type DeleteAlarmRequest struct {
	AlarmID string `json:"alarmId"`
}

type DeleteAlarmResponse struct{}
