// Package notify delivers join-request push notifications to group owners.
//
// The dispatcher is the server-side reactive half of the membership core's
// event contract: it fires exactly when a pending request is created, and
// its payload shape is part of what clients observe. Delivery itself is
// best-effort and fire-and-forget; nothing in the membership state machine
// depends on a push arriving.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/danielvr/mydays/internal/groups"
	"github.com/danielvr/mydays/internal/storage"
)

const (
	defaultQueueSize = 128
	sendRetries      = 4
	sendInitialWait  = 500 * time.Millisecond
	sendMaxWait      = 5 * time.Second
)

// Dispatcher consumes join-request events and pushes them to group owners.
type Dispatcher struct {
	store  storage.Store
	sender Sender
	logger *slog.Logger
	events chan groups.JoinRequestEvent
	pool   *pool.Pool
}

var _ groups.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with the given worker budget.
func NewDispatcher(store storage.Store, sender Sender, logger *slog.Logger, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{
		store:  store,
		sender: sender,
		logger: logger,
		events: make(chan groups.JoinRequestEvent, defaultQueueSize),
		pool:   pool.New().WithMaxGoroutines(workers),
	}
}

// JoinRequested enqueues an event. Never blocks: if the queue is full the
// event is dropped with a warning, since pushes are best-effort.
func (d *Dispatcher) JoinRequested(ev groups.JoinRequestEvent) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("notification queue full, dropping event",
			"group_id", ev.GroupID, "user_id", ev.UserID)
	}
}

// Run drains the event queue until ctx is cancelled, then waits for
// in-flight deliveries.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.pool.Wait()
			return
		case ev := <-d.events:
			d.pool.Go(func() {
				d.deliver(ctx, ev)
			})
		}
	}
}

// deliver resolves the group owner's token and sends the join-request push,
// retrying transient failures with exponential backoff. On a terminal
// unregistered-token failure the stored token is cleared, best-effort.
func (d *Dispatcher) deliver(ctx context.Context, ev groups.JoinRequestEvent) {
	group, err := d.store.GetGroup(ctx, ev.GroupID)
	if errors.Is(err, storage.ErrNotFound) {
		// Group deleted between the request and delivery; nothing to do.
		return
	}
	if err != nil {
		d.logger.Error("failed to load group for notification",
			"group_id", ev.GroupID, "error", err)
		return
	}

	owner, err := d.store.GetUserByID(ctx, group.Owner)
	if err != nil {
		d.logger.Error("failed to load group owner for notification",
			"group_id", ev.GroupID, "owner", group.Owner, "error", err)
		return
	}
	if owner.PushToken == "" {
		d.logger.Debug("owner has no push token, skipping",
			"group_id", ev.GroupID, "owner", group.Owner)
		return
	}

	n := Notification{
		Title: "New join request",
		Body:  fmt.Sprintf("%s wants to join %q. Open the app to approve or reject.", ev.DisplayName, ev.GroupName),
		Data: map[string]string{
			"type":        "join_request",
			"groupId":     ev.GroupID,
			"groupName":   ev.GroupName,
			"userId":      ev.UserID,
			"displayName": ev.DisplayName,
		},
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = sendInitialWait
	bo.MaxInterval = sendMaxWait

	err = backoff.Retry(func() error {
		err := d.sender.Send(ctx, owner.PushToken, n)
		if errors.Is(err, ErrUnregisteredToken) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, sendRetries), ctx))

	if err == nil {
		d.logger.Info("join-request push sent",
			"group_id", ev.GroupID, "owner", group.Owner, "user_id", ev.UserID)
		return
	}

	d.logger.Warn("join-request push failed",
		"group_id", ev.GroupID, "owner", group.Owner, "error", err)
	if errors.Is(err, ErrUnregisteredToken) {
		// Token is dead; clear it so future deliveries skip early.
		if err := d.store.UpdatePushToken(ctx, group.Owner, ""); err != nil {
			d.logger.Warn("failed to clear unregistered push token",
				"owner", group.Owner, "error", err)
		}
	}
}
