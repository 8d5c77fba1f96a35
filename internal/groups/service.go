// Package groups implements the group membership core: the group registry,
// the pending-request queue and the profile pointer writes, plus the change
// signals that drive every live subscription.
//
// There is no cross-store transaction anywhere here. Every multi-step
// operation is a sequence of independently idempotent writes with a defined
// read rule (the member set is authoritative over pending existence), and
// the per-client reconciler in internal/membership is what makes observers
// converge.
package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/storage"
	"github.com/danielvr/mydays/internal/watch"
)

// createAttempts bounds the generate-and-insert loop for join codes. With a
// 32^6 code space collisions are vanishingly rare; the loop exists for
// correctness, not load.
const createAttempts = 5

// JoinRequestEvent describes a freshly queued join request, for the
// notification dispatcher.
type JoinRequestEvent struct {
	GroupID     string
	GroupName   string
	UserID      string
	DisplayName string
}

// Notifier receives join-request events. Implementations must not block;
// delivery is fire-and-forget from the service's point of view.
type Notifier interface {
	JoinRequested(ev JoinRequestEvent)
}

// NopNotifier discards events. Used when dispatch is disabled and in tests.
type NopNotifier struct{}

func (NopNotifier) JoinRequested(JoinRequestEvent) {}

// Service implements the membership operations over a Store, signaling the
// hub after every mutation so live subscriptions re-read.
type Service struct {
	store    storage.Store
	hub      *watch.Hub
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a membership service.
func NewService(store storage.Store, hub *watch.Hub, notifier Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{store: store, hub: hub, notifier: notifier, logger: logger}
}

// CreateGroup creates a group owned by ownerID and points the owner's
// profile at it. The owner is the sole initial member.
//
// The two writes are not atomic: if the pointer update fails the group still
// exists, the error is surfaced, and the owner's client recovers by
// observing the group under its own subscription.
func (s *Service) CreateGroup(ctx context.Context, ownerID, name string) (groupID, groupName string, err error) {
	groupName = strings.TrimSpace(name)
	if groupName == "" {
		groupName = models.DefaultGroupName
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := NewCode()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate group code: %w", err)
		}

		group := &models.Group{
			ID:      code,
			Name:    groupName,
			Owner:   ownerID,
			Members: []string{ownerID},
		}
		err = s.store.CreateGroup(ctx, group)
		if errors.Is(err, storage.ErrDuplicate) {
			s.logger.Warn("group code collision, retrying", "code", code, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return "", "", s.unavailable("create group", err)
		}

		s.hub.Notify(watch.GroupTopic(code), watch.OwnerGroupsTopic(ownerID))

		if err := s.store.SetGroupPointer(ctx, ownerID, code, groupName); err != nil {
			// Group exists but the owner's pointer does not reference
			// it yet; the reconciler tolerates this split.
			s.logger.Error("group created but pointer update failed",
				"group_id", code, "owner", ownerID, "error", err)
			return "", "", s.unavailable("set group pointer", err)
		}
		s.hub.Notify(watch.ProfileTopic(ownerID))

		s.logger.Info("group created", "group_id", code, "name", groupName, "owner", ownerID)
		return code, groupName, nil
	}

	return "", "", ErrCodeConflict
}

// JoinGroup queues a join request for the group identified by code and
// optimistically points the caller's profile at it, before any admin action.
// The optimistic pointer lets the client show "pending" immediately; if the
// request is later rejected the pointer goes stale and the caller's
// reconciler clears it.
func (s *Service) JoinGroup(ctx context.Context, userID, code, displayName, photoURL string) (groupName string, err error) {
	id := NormalizeCode(code)

	group, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrGroupNotFound
	}
	if err != nil {
		return "", s.unavailable("get group", err)
	}
	if group.HasMember(userID) {
		return "", ErrAlreadyMember
	}

	groupName = group.DisplayName()
	if displayName == "" {
		displayName = models.DefaultDisplayName
	}

	req := &models.PendingRequest{
		GroupID:     id,
		UserID:      userID,
		DisplayName: displayName,
		PhotoURL:    photoURL,
	}
	created, err := s.store.UpsertPending(ctx, req)
	if err != nil {
		return "", s.unavailable("queue join request", err)
	}
	s.hub.Notify(watch.PendingListTopic(id), watch.PendingUserTopic(id, userID))

	if err := s.store.SetGroupPointer(ctx, userID, id, groupName); err != nil {
		return "", s.unavailable("set group pointer", err)
	}
	s.hub.Notify(watch.ProfileTopic(userID))

	// A re-submission refreshes the queued request without pushing another
	// notification at the owner.
	if created {
		s.notifier.JoinRequested(JoinRequestEvent{
			GroupID:     id,
			GroupName:   groupName,
			UserID:      userID,
			DisplayName: displayName,
		})
	}

	s.logger.Info("join requested", "group_id", id, "user_id", userID)
	return groupName, nil
}

// AcceptMember adds userID to the group's member set and removes their
// pending request. Owner only.
//
// The member-add is issued strictly before the pending-delete. If the second
// write fails the user is a member with a stale pending record; observers
// treat membership as authoritative, so they still converge to MEMBER.
func (s *Service) AcceptMember(ctx context.Context, adminID, groupID, userID string) error {
	id := NormalizeCode(groupID)

	group, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrGroupNotFound
	}
	if err != nil {
		return s.unavailable("get group", err)
	}
	if group.Owner != adminID {
		return ErrForbidden
	}

	if err := s.store.AddMember(ctx, id, userID); err != nil {
		return s.unavailable("add member", err)
	}
	s.hub.Notify(watch.GroupTopic(id))

	if err := s.store.DeletePending(ctx, id, userID); err != nil {
		return s.unavailable("delete pending request", err)
	}
	s.hub.Notify(watch.PendingListTopic(id), watch.PendingUserTopic(id, userID))

	s.logger.Info("member accepted", "group_id", id, "user_id", userID, "admin", adminID)
	return nil
}

// RejectMember removes userID's pending request without touching the member
// set. Owner only. The rejected user's pointer is deliberately left stale;
// their own reconciler detects "not pending and not a member" and clears it.
//
// Rejecting after an accept already landed is a no-op on membership:
// membership is monotonic once granted, and this delete only removes a
// possibly-already-absent pending record.
func (s *Service) RejectMember(ctx context.Context, adminID, groupID, userID string) error {
	id := NormalizeCode(groupID)

	group, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrGroupNotFound
	}
	if err != nil {
		return s.unavailable("get group", err)
	}
	if group.Owner != adminID {
		return ErrForbidden
	}

	if err := s.store.DeletePending(ctx, id, userID); err != nil {
		return s.unavailable("delete pending request", err)
	}
	s.hub.Notify(watch.PendingListTopic(id), watch.PendingUserTopic(id, userID))

	s.logger.Info("member rejected", "group_id", id, "user_id", userID, "admin", adminID)
	return nil
}

// DeleteGroup removes the group. Owner only. Only the deleter's own pointer
// is cleared server-side; every other member's client observes the group
// subscription go null and self-clears.
func (s *Service) DeleteGroup(ctx context.Context, requesterID, groupID string) error {
	id := NormalizeCode(groupID)

	group, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrGroupNotFound
	}
	if err != nil {
		return s.unavailable("get group", err)
	}
	if group.Owner != requesterID {
		return ErrForbidden
	}

	// Snapshot the queue before the cascade removes it, so each pending
	// user's status subscription is told their request is gone.
	pending, err := s.store.ListPending(ctx, id)
	if err != nil {
		return s.unavailable("list pending requests", err)
	}

	if err := s.store.DeleteGroup(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrGroupNotFound
		}
		return s.unavailable("delete group", err)
	}
	topics := []watch.Topic{
		watch.GroupTopic(id),
		watch.PendingListTopic(id),
		watch.OwnerGroupsTopic(requesterID),
	}
	for _, req := range pending {
		topics = append(topics, watch.PendingUserTopic(id, req.UserID))
	}
	s.hub.Notify(topics...)

	if err := s.store.ClearGroupPointerIf(ctx, requesterID, id); err != nil {
		return s.unavailable("clear group pointer", err)
	}
	s.hub.Notify(watch.ProfileTopic(requesterID))

	s.logger.Info("group deleted", "group_id", id, "owner", requesterID)
	return nil
}

// ClearMyGroup unconditionally nulls the caller's own group pointer. This is
// the only self-service exit from a pending or orphaned pointer; it does not
// remove the caller from any member set.
func (s *Service) ClearMyGroup(ctx context.Context, userID string) error {
	if err := s.store.ClearGroupPointer(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrGroupNotFound
		}
		return s.unavailable("clear group pointer", err)
	}
	s.hub.Notify(watch.ProfileTopic(userID))

	s.logger.Info("group pointer cleared", "user_id", userID)
	return nil
}

// GetGroup reads a group snapshot by (possibly unnormalized) code.
func (s *Service) GetGroup(ctx context.Context, code string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, NormalizeCode(code))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, s.unavailable("get group", err)
	}
	return group, nil
}

// ListPending reads a group's pending requests, oldest first. Owner only.
func (s *Service) ListPending(ctx context.Context, adminID, groupID string) ([]*models.PendingRequest, error) {
	id := NormalizeCode(groupID)

	group, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, s.unavailable("get group", err)
	}
	if group.Owner != adminID {
		return nil, ErrForbidden
	}

	reqs, err := s.store.ListPending(ctx, id)
	if err != nil {
		return nil, s.unavailable("list pending requests", err)
	}
	return reqs, nil
}

// PendingExists reports whether userID has a pending request in the group.
func (s *Service) PendingExists(ctx context.Context, groupID, userID string) (bool, error) {
	ok, err := s.store.PendingExists(ctx, NormalizeCode(groupID), userID)
	if err != nil {
		return false, s.unavailable("check pending request", err)
	}
	return ok, nil
}

// ListOwnedGroups reads the groups owned by userID, newest first.
func (s *Service) ListOwnedGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	gs, err := s.store.ListGroupsByOwner(ctx, userID)
	if err != nil {
		return nil, s.unavailable("list owned groups", err)
	}
	return gs, nil
}

// unavailable wraps an unexpected store error as ErrUnavailable. The backing
// store does not provide a structured connectivity error, so anything that
// is not one of the known sentinels is treated as transient and retryable by
// the caller.
func (s *Service) unavailable(op string, err error) error {
	s.logger.Error("store operation failed", "op", op, "error", err)
	return fmt.Errorf("%w (%s)", ErrUnavailable, op)
}
