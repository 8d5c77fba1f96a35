// Package membership derives a user's effective membership status from three
// independently observed inputs: the group record, the user's own
// pending-request existence, and the user's profile pointer.
//
// The three stores are updated without cross-store transactions and their
// change notifications arrive in no guaranteed relative order, so the
// reconciler is written to be idempotent and convergent: replaying the same
// observations in any interleaving reaches the same terminal state. Two
// rules make that possible:
//
//   - membership is authoritative over pending existence (an accept whose
//     pending-delete has not landed yet still reads as MEMBER);
//   - orphan detection is debounced, so the gap between an optimistic join
//     pointer write and the pending record becoming visible never reads as
//     a rejection.
package membership

import (
	"context"
	"log/slog"
	"time"
)

// Status is the derived membership state of the observing user.
type Status int

const (
	// StatusNone: no group pointer. Initial state.
	StatusNone Status = iota

	// StatusPending: pointer set, join request awaiting approval (or not
	// yet fully observed).
	StatusPending

	// StatusMember: in the group's member set, not the owner.
	StatusMember

	// StatusOwner: in the member set and listed as owner.
	StatusOwner

	// StatusOrphaned: pointer references a group the user is neither
	// pending for nor a member of. Transient; the only valid action is
	// clearing the pointer.
	StatusOrphaned
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusPending:
		return "pending"
	case StatusMember:
		return "member"
	case StatusOwner:
		return "owner"
	case StatusOrphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

// DefaultSettleDelay gates orphan detection when no pending=true reading has
// been observed yet: a just-submitted join request sets the pointer before
// its pending record is visible, and that window must not read as a
// rejection.
const DefaultSettleDelay = 3 * time.Second

// GroupSnapshot is one observed state of the group record.
type GroupSnapshot struct {
	Name    string
	Owner   string
	Members []string
}

// HasMember reports whether userID is in the snapshot's member set.
func (g *GroupSnapshot) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Pointer is one observed state of the user's profile pointer.
type Pointer struct {
	GroupID   string
	GroupName string
}

// Actions is the corrective surface the reconciler may invoke. All of its
// own mutations funnel through here; it never writes store fields directly.
type Actions interface {
	// ClearMyGroup nulls the observing user's own group pointer.
	ClearMyGroup(ctx context.Context, userID string) error
}

// Reconciler is the per-client membership state machine. It is not safe for
// concurrent use: all Observe calls and Tick are expected from the client's
// single event goroutine, which matches how change notifications are
// delivered.
type Reconciler struct {
	uid     string
	actions Actions
	logger  *slog.Logger

	settle time.Duration
	now    func() time.Time

	// gen is the identity generation of the current pointer target.
	// Observations stamped with an older generation belong to
	// subscriptions of a previous group and are dropped.
	gen int

	pointer Pointer

	haveGroup bool
	group     *GroupSnapshot // nil after haveGroup means deleted/absent

	havePending bool
	pending     bool

	// conflictSince is when the current orphan-looking evidence was
	// first observed; zero when the evidence went away.
	conflictSince time.Time

	// cleared: the corrective ClearMyGroup for this generation was
	// issued and succeeded.
	cleared bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSettleDelay overrides the orphan settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Reconciler) { r.settle = d }
}

// WithClock overrides the time source. Tests use this to step through the
// settle window deterministically.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a reconciler for the given user.
func New(uid string, actions Actions, logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		uid:     uid,
		actions: actions,
		logger:  logger,
		settle:  DefaultSettleDelay,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generation returns the current identity generation. Subscription callbacks
// capture it at subscribe time and pass it back with each observation, so a
// snapshot from a subscription that outlived its group cannot overwrite
// state belonging to a newer one.
func (r *Reconciler) Generation() int {
	return r.gen
}

// GroupID returns the current pointer target, empty if none.
func (r *Reconciler) GroupID() string {
	return r.pointer.GroupID
}

// ObservePointer delivers a profile-pointer snapshot. A pointer change
// retargets the reconciler: per-group observations are discarded and the
// generation advances, invalidating in-flight callbacks for the old target.
func (r *Reconciler) ObservePointer(ctx context.Context, ptr Pointer) {
	if ptr.GroupID != r.pointer.GroupID {
		r.gen++
		r.haveGroup = false
		r.group = nil
		r.havePending = false
		r.pending = false
		r.conflictSince = time.Time{}
		r.cleared = false
	}
	r.pointer = ptr
	r.reconcile(ctx)
}

// ObserveGroup delivers a group snapshot (nil for deleted or not found) for
// the given generation.
func (r *Reconciler) ObserveGroup(ctx context.Context, gen int, snap *GroupSnapshot) {
	if gen != r.gen || r.pointer.GroupID == "" {
		return // stale subscription
	}
	r.haveGroup = true
	r.group = snap
	r.reconcile(ctx)
}

// ObservePendingStatus delivers the existence of the user's own pending
// request for the given generation.
func (r *Reconciler) ObservePendingStatus(ctx context.Context, gen int, exists bool) {
	if gen != r.gen || r.pointer.GroupID == "" {
		return // stale subscription
	}
	r.havePending = true
	r.pending = exists
	r.reconcile(ctx)
}

// Tick re-evaluates without new input. The client schedules one after the
// settle delay whenever NextTick reports a deadline, so an orphan gated on
// time alone is eventually confirmed.
func (r *Reconciler) Tick(ctx context.Context) {
	r.reconcile(ctx)
}

// NextTick returns the time at which a time-gated orphan decision matures,
// or the zero time if no tick is needed.
func (r *Reconciler) NextTick() time.Time {
	if r.conflictSince.IsZero() {
		return time.Time{}
	}
	return r.conflictSince.Add(r.settle)
}

// Status derives the current membership status.
func (r *Reconciler) Status() Status {
	if r.pointer.GroupID == "" {
		return StatusNone
	}
	if r.isMember() {
		if r.group.Owner == r.uid {
			return StatusOwner
		}
		return StatusMember
	}
	if r.orphanEvidence() && r.orphanConfirmed() {
		return StatusOrphaned
	}
	// Pointer set, membership not (yet) observed: awaiting approval.
	return StatusPending
}

// isMember reports whether the latest group snapshot lists the user.
// Membership wins over everything else: it is monotonic once granted, and a
// stale pending record left by a half-finished accept must not mask it.
func (r *Reconciler) isMember() bool {
	return r.haveGroup && r.group != nil && r.group.HasMember(r.uid)
}

// orphanEvidence reports whether current observations look orphaned:
// pointer set, user not a member, and either the group is gone or the
// pending record is absent.
func (r *Reconciler) orphanEvidence() bool {
	if r.isMember() {
		return false
	}
	if r.haveGroup && r.group == nil {
		return true // group deleted: definitive
	}
	return r.haveGroup && r.havePending && !r.pending
}

// orphanConfirmed applies the debounce. A deleted group confirms
// immediately: a join against an absent group would have failed, so a nil
// snapshot cannot be the optimistic-join gap. A missing pending record
// confirms only after the settle delay has held uninterrupted. The delay
// covers two distinct races with one rule: the gap between the optimistic
// pointer write and the pending record becoming visible, and an accept whose
// pending-delete is observed before its member-add. In both, the
// disconfirming observation (pending=true, or membership) arrives within
// moments and resets the window.
func (r *Reconciler) orphanConfirmed() bool {
	if r.haveGroup && r.group == nil {
		return true
	}
	return !r.conflictSince.IsZero() && r.now().Sub(r.conflictSince) >= r.settle
}

// reconcile updates the debounce window and fires the corrective action when
// an orphan is confirmed. Replaying it with unchanged inputs is a no-op.
func (r *Reconciler) reconcile(ctx context.Context) {
	if !r.orphanEvidence() {
		r.conflictSince = time.Time{}
		return
	}
	if r.conflictSince.IsZero() {
		r.conflictSince = r.now()
	}
	if !r.orphanConfirmed() || r.cleared {
		return
	}

	// Orphaned: the pointer references a group this user is neither
	// pending for nor a member of. The only valid move is clearing it.
	r.logger.Info("orphaned pointer detected, clearing",
		"user_id", r.uid, "group_id", r.pointer.GroupID)
	if err := r.actions.ClearMyGroup(ctx, r.uid); err != nil {
		// Leave cleared unset so the next observation retries.
		r.logger.Warn("failed to clear orphaned pointer",
			"user_id", r.uid, "group_id", r.pointer.GroupID, "error", err)
		return
	}
	r.cleared = true
}
