package membership

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingActions struct {
	attempts int
	cleared  []string
	err      error
}

func (a *recordingActions) ClearMyGroup(_ context.Context, userID string) error {
	a.attempts++
	if a.err != nil {
		return a.err
	}
	a.cleared = append(a.cleared, userID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReconciler(t *testing.T) (*Reconciler, *recordingActions, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	actions := &recordingActions{}
	r := New("alice", actions, testLogger(), WithClock(clock.Now))
	return r, actions, clock
}

func memberSnap(owner string, members ...string) *GroupSnapshot {
	return &GroupSnapshot{Name: "My Group", Owner: owner, Members: members}
}

func TestStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	r, actions, _ := newTestReconciler(t)

	assert.Equal(t, StatusNone, r.Status())

	// Optimistic join: pointer lands before anything else is visible.
	r.ObservePointer(ctx, Pointer{GroupID: "ABC234", GroupName: "My Group"})
	assert.Equal(t, StatusPending, r.Status())
	gen := r.Generation()

	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob"))
	r.ObservePendingStatus(ctx, gen, true)
	assert.Equal(t, StatusPending, r.Status())

	// Accept: membership shows up.
	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob", "alice"))
	assert.Equal(t, StatusMember, r.Status())

	assert.Zero(t, actions.attempts, "no corrective action on a clean path")
}

func TestOwnerStatus(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestReconciler(t)

	r.ObservePointer(ctx, Pointer{GroupID: "ABC234", GroupName: "My Group"})
	r.ObserveGroup(ctx, r.Generation(), memberSnap("alice", "alice"))
	assert.Equal(t, StatusOwner, r.Status())
}

func TestOptimisticJoinGapDoesNotOrphan(t *testing.T) {
	ctx := context.Background()
	r, actions, clock := newTestReconciler(t)

	r.ObservePointer(ctx, Pointer{GroupID: "ABC234"})
	gen := r.Generation()

	// The pending record is not visible yet: looks orphaned, but the
	// settle window has not elapsed.
	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob"))
	r.ObservePendingStatus(ctx, gen, false)
	assert.Equal(t, StatusPending, r.Status())
	assert.Zero(t, actions.attempts)

	// The pending write becomes visible within the window.
	clock.Advance(time.Second)
	r.ObservePendingStatus(ctx, gen, true)
	assert.Equal(t, StatusPending, r.Status())
	assert.True(t, r.NextTick().IsZero(), "confirming evidence must reset the window")

	// Time passing afterwards changes nothing.
	clock.Advance(time.Hour)
	r.Tick(ctx)
	assert.Equal(t, StatusPending, r.Status())
	assert.Zero(t, actions.attempts)
}

func TestAcceptObservedOutOfOrder(t *testing.T) {
	ctx := context.Background()
	r, actions, clock := newTestReconciler(t)

	r.ObservePointer(ctx, Pointer{GroupID: "ABC234"})
	gen := r.Generation()
	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob"))
	r.ObservePendingStatus(ctx, gen, true)

	// The accept's pending-delete arrives before its member-add.
	r.ObservePendingStatus(ctx, gen, false)
	assert.Equal(t, StatusPending, r.Status())

	clock.Advance(time.Second)
	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob", "alice"))
	assert.Equal(t, StatusMember, r.Status())

	// Membership is monotonic: a later stale pending reading cannot
	// demote it.
	clock.Advance(time.Hour)
	r.ObservePendingStatus(ctx, gen, false)
	r.Tick(ctx)
	assert.Equal(t, StatusMember, r.Status())
	assert.Zero(t, actions.attempts)
}

func TestRejectionOrphansAfterSettle(t *testing.T) {
	ctx := context.Background()
	r, actions, clock := newTestReconciler(t)

	r.ObservePointer(ctx, Pointer{GroupID: "ABC234"})
	gen := r.Generation()
	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob"))
	r.ObservePendingStatus(ctx, gen, true)

	// Owner rejects: the pending record disappears and nothing replaces it.
	r.ObservePendingStatus(ctx, gen, false)
	assert.Equal(t, StatusPending, r.Status(), "inside the settle window")
	require.False(t, r.NextTick().IsZero())

	clock.Advance(DefaultSettleDelay)
	r.Tick(ctx)
	assert.Equal(t, StatusOrphaned, r.Status())
	assert.Equal(t, []string{"alice"}, actions.cleared)

	// Idempotent: replaying ticks and observations does not clear twice.
	r.Tick(ctx)
	r.ObservePendingStatus(ctx, gen, false)
	assert.Equal(t, 1, actions.attempts)

	// The clear propagates back as an empty pointer.
	r.ObservePointer(ctx, Pointer{})
	assert.Equal(t, StatusNone, r.Status())
}

func TestGroupDeletedOrphansImmediately(t *testing.T) {
	ctx := context.Background()
	r, actions, _ := newTestReconciler(t)

	r.ObservePointer(ctx, Pointer{GroupID: "ABC234"})
	gen := r.Generation()
	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob", "alice"))
	assert.Equal(t, StatusMember, r.Status())

	// No settle delay for deletion: a nil snapshot cannot be the
	// optimistic-join gap.
	r.ObserveGroup(ctx, gen, nil)
	assert.Equal(t, StatusOrphaned, r.Status())
	assert.Equal(t, []string{"alice"}, actions.cleared)
}

func TestGenerationGuardDropsStaleObservations(t *testing.T) {
	ctx := context.Background()
	r, actions, clock := newTestReconciler(t)

	r.ObservePointer(ctx, Pointer{GroupID: "ABC234"})
	oldGen := r.Generation()

	// Retarget to another group; subscriptions for the old one are still
	// draining.
	r.ObservePointer(ctx, Pointer{GroupID: "XYZ789"})
	newGen := r.Generation()
	require.NotEqual(t, oldGen, newGen)

	// A nil snapshot from the old group's subscription must not orphan
	// the new pointer.
	r.ObserveGroup(ctx, oldGen, nil)
	r.ObservePendingStatus(ctx, oldGen, false)
	clock.Advance(time.Hour)
	r.Tick(ctx)
	assert.Equal(t, StatusPending, r.Status())
	assert.Zero(t, actions.attempts)

	// Fresh observations for the new target apply normally.
	r.ObserveGroup(ctx, newGen, memberSnap("bob", "bob", "alice"))
	assert.Equal(t, StatusMember, r.Status())
}

func TestClearRetriedAfterFailure(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	actions := &recordingActions{err: context.DeadlineExceeded}
	r := New("alice", actions, testLogger(), WithClock(clock.Now))

	r.ObservePointer(ctx, Pointer{GroupID: "ABC234"})
	gen := r.Generation()
	r.ObserveGroup(ctx, gen, memberSnap("bob", "bob"))
	r.ObservePendingStatus(ctx, gen, false)

	clock.Advance(DefaultSettleDelay)
	r.Tick(ctx)
	assert.Equal(t, 1, actions.attempts)
	assert.Empty(t, actions.cleared)

	// Store recovers; the next evaluation retries the clear.
	actions.err = nil
	r.Tick(ctx)
	assert.Equal(t, 2, actions.attempts)
	assert.Equal(t, []string{"alice"}, actions.cleared)
}

// TestConvergenceAnyInterleaving replays the same three observations in every
// order and expects the same terminal status from each.
func TestConvergenceAnyInterleaving(t *testing.T) {
	type obs func(ctx context.Context, r *Reconciler, gen int)

	group := func(snap *GroupSnapshot) obs {
		return func(ctx context.Context, r *Reconciler, gen int) { r.ObserveGroup(ctx, gen, snap) }
	}
	pending := func(exists bool) obs {
		return func(ctx context.Context, r *Reconciler, gen int) { r.ObservePendingStatus(ctx, gen, exists) }
	}

	cases := []struct {
		name string
		obs  [3]obs
		want Status
	}{
		{
			name: "accepted member",
			obs:  [3]obs{group(memberSnap("bob", "bob", "alice")), pending(false), pending(false)},
			want: StatusMember,
		},
		{
			name: "still queued",
			obs:  [3]obs{group(memberSnap("bob", "bob")), pending(true), pending(true)},
			want: StatusPending,
		},
		{
			name: "rejected",
			obs:  [3]obs{group(memberSnap("bob", "bob")), pending(false), pending(false)},
			want: StatusOrphaned,
		},
		{
			name: "group gone",
			obs:  [3]obs{group(nil), pending(false), pending(false)},
			want: StatusOrphaned,
		},
	}

	perms := [][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, p := range perms {
				ctx := context.Background()
				clock := newFakeClock()
				actions := &recordingActions{}
				r := New("alice", actions, testLogger(), WithClock(clock.Now))

				r.ObservePointer(ctx, Pointer{GroupID: "ABC234"})
				gen := r.Generation()
				for _, i := range p {
					tc.obs[i](ctx, r, gen)
				}
				clock.Advance(DefaultSettleDelay)
				r.Tick(ctx)

				assert.Equalf(t, tc.want, r.Status(),
					"order %v converged to %s, want %s", p, r.Status(), tc.want)
			}
		})
	}
}
