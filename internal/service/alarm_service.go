package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/danielvr/mydays/internal/groups"
	"github.com/danielvr/mydays/internal/middleware"
	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/rpc"
	"github.com/danielvr/mydays/internal/storage"
)

// AlarmService implements the mydays.v1.AlarmService RPC interface. Group
// alarms are gated on current membership; personal alarms belong to their
// creator alone.
type AlarmService struct {
	store  storage.Store
	logger *slog.Logger
}

var _ rpc.AlarmHandler = (*AlarmService)(nil)

// NewAlarmService creates a new alarm service.
func NewAlarmService(store storage.Store, logger *slog.Logger) *AlarmService {
	return &AlarmService{store: store, logger: logger}
}

func wireAlarm(alarm *models.Alarm) rpc.Alarm {
	return rpc.Alarm{
		ID:          alarm.ID,
		GroupID:     alarm.GroupID,
		DatetimeUTC: alarm.DatetimeUTC,
		Label:       alarm.Label,
		Active:      alarm.Active,
		CreatedBy:   alarm.CreatedBy,
		CreatedAt:   alarm.CreatedAt,
	}
}

// requireMember loads the group and checks the caller against its member set.
func (s *AlarmService) requireMember(ctx context.Context, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groups.NormalizeCode(groupID))
	if errors.Is(err, storage.ErrNotFound) {
		return asConnectError(groups.ErrGroupNotFound)
	}
	if err != nil {
		s.logger.Error("failed to load group for alarm access", "group_id", groupID, "error", err)
		return asConnectError(groups.ErrUnavailable)
	}
	if !group.HasMember(userID) {
		return asConnectError(groups.ErrNotMember)
	}
	return nil
}

// CreateAlarm creates a personal alarm, or a group alarm if the caller is a
// member of the target group.
func (s *AlarmService) CreateAlarm(ctx context.Context, req *connect.Request[rpc.CreateAlarmRequest]) (*connect.Response[rpc.CreateAlarmResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.Info("CreateAlarm request", "user_id", userID, "group_id", req.Msg.GroupID)

	when, err := time.Parse(time.RFC3339, req.Msg.DatetimeUTC)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			errors.New("datetimeUtc must be an RFC 3339 timestamp"))
	}

	groupID := ""
	if req.Msg.GroupID != "" {
		groupID = groups.NormalizeCode(req.Msg.GroupID)
		if err := s.requireMember(ctx, groupID, userID); err != nil {
			return nil, err
		}
	}

	alarm := &models.Alarm{
		GroupID:     groupID,
		DatetimeUTC: when.UTC().Format(time.RFC3339),
		Label:       strings.TrimSpace(req.Msg.Label),
		Active:      req.Msg.Active,
		CreatedBy:   userID,
	}
	if err := s.store.CreateAlarm(ctx, alarm); err != nil {
		s.logger.Error("failed to create alarm", "user_id", userID, "error", err)
		return nil, asConnectError(groups.ErrUnavailable)
	}

	s.logger.Info("alarm created", "alarm_id", alarm.ID, "user_id", userID, "group_id", groupID)
	return connect.NewResponse(&rpc.CreateAlarmResponse{Alarm: wireAlarm(alarm)}), nil
}

// ListAlarms lists a group's alarms (members only) or the caller's personal
// alarms when no group is given.
func (s *AlarmService) ListAlarms(ctx context.Context, req *connect.Request[rpc.ListAlarmsRequest]) (*connect.Response[rpc.ListAlarmsResponse], error) {
	userID := middleware.GetUserID(ctx)

	var (
		alarms []*models.Alarm
		err    error
	)
	if req.Msg.GroupID != "" {
		groupID := groups.NormalizeCode(req.Msg.GroupID)
		if err := s.requireMember(ctx, groupID, userID); err != nil {
			return nil, err
		}
		alarms, err = s.store.ListGroupAlarms(ctx, groupID)
	} else {
		alarms, err = s.store.ListPersonalAlarms(ctx, userID)
	}
	if err != nil {
		s.logger.Error("failed to list alarms", "user_id", userID, "error", err)
		return nil, asConnectError(groups.ErrUnavailable)
	}

	out := make([]rpc.Alarm, 0, len(alarms))
	for _, a := range alarms {
		out = append(out, wireAlarm(a))
	}
	return connect.NewResponse(&rpc.ListAlarmsResponse{Alarms: out}), nil
}

// DeleteAlarm removes an alarm. Personal alarms may only be deleted by their
// creator; group alarms by any current member.
func (s *AlarmService) DeleteAlarm(ctx context.Context, req *connect.Request[rpc.DeleteAlarmRequest]) (*connect.Response[rpc.DeleteAlarmResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.Info("DeleteAlarm request", "user_id", userID, "alarm_id", req.Msg.AlarmID)

	alarm, err := s.store.GetAlarm(ctx, req.Msg.AlarmID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("no such alarm"))
	}
	if err != nil {
		s.logger.Error("failed to load alarm", "alarm_id", req.Msg.AlarmID, "error", err)
		return nil, asConnectError(groups.ErrUnavailable)
	}

	if alarm.GroupID == "" {
		if alarm.CreatedBy != userID {
			return nil, asConnectError(groups.ErrForbidden)
		}
	} else if err := s.requireMember(ctx, alarm.GroupID, userID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteAlarm(ctx, req.Msg.AlarmID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("failed to delete alarm", "alarm_id", req.Msg.AlarmID, "error", err)
		return nil, asConnectError(groups.ErrUnavailable)
	}

	s.logger.Info("alarm deleted", "alarm_id", req.Msg.AlarmID, "user_id", userID)
	return connect.NewResponse(&rpc.DeleteAlarmResponse{}), nil
}
