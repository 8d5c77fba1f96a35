package membership

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielvr/mydays/internal/storage"
)

// DefaultSweepInterval is how often the janitor re-reads the pointer set.
const DefaultSweepInterval = 30 * time.Second

// Janitor runs reconcilers server-side for users whose clients are not
// connected to do it themselves. A rejected user who never reopens the app
// would otherwise keep a stale pointer forever; the janitor sweeps all set
// pointers on an interval, feeds each user's reconciler fresh store reads,
// and lets the ordinary orphan logic clear the stale ones.
//
// The sweep is read-heavy and the pointer population is small (one row per
// user currently in or joining a group), so a full scan per interval is
// fine.
type Janitor struct {
	store   storage.Store
	actions Actions
	logger  *slog.Logger

	interval time.Duration
	settle   time.Duration
	now      func() time.Time

	recs map[string]*Reconciler
}

// JanitorOption configures a Janitor.
type JanitorOption func(*Janitor)

// WithSweepInterval overrides the sweep interval.
func WithSweepInterval(d time.Duration) JanitorOption {
	return func(j *Janitor) { j.interval = d }
}

// WithJanitorSettleDelay overrides the settle delay of the reconcilers the
// janitor creates.
func WithJanitorSettleDelay(d time.Duration) JanitorOption {
	return func(j *Janitor) { j.settle = d }
}

// WithJanitorClock overrides the time source.
func WithJanitorClock(now func() time.Time) JanitorOption {
	return func(j *Janitor) { j.now = now }
}

// NewJanitor creates a pointer janitor.
func NewJanitor(store storage.Store, actions Actions, logger *slog.Logger, opts ...JanitorOption) *Janitor {
	j := &Janitor{
		store:    store,
		actions:  actions,
		logger:   logger,
		interval: DefaultSweepInterval,
		settle:   DefaultSettleDelay,
		now:      time.Now,
		recs:     make(map[string]*Reconciler),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run sweeps until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("pointer janitor started", "interval", j.interval)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("pointer janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one pass: every set pointer gets a reconciler fed with the
// current group snapshot and pending status. Orphans whose settle window has
// elapsed across sweeps are cleared via Actions.
func (j *Janitor) Sweep(ctx context.Context) {
	users, err := j.store.ListUsersWithPointer(ctx)
	if err != nil {
		j.logger.Warn("pointer sweep failed", "error", err)
		return
	}

	seen := make(map[string]bool, len(users))
	for _, u := range users {
		seen[u.ID] = true
		j.sweepUser(ctx, u.ID, u.GroupID, u.GroupName)
	}

	// Pointers cleared since the last sweep (by the user's own client or
	// by us) no longer need a reconciler.
	for uid := range j.recs {
		if !seen[uid] {
			delete(j.recs, uid)
		}
	}
}

func (j *Janitor) sweepUser(ctx context.Context, userID, groupID, groupName string) {
	r, ok := j.recs[userID]
	if !ok {
		r = New(userID, j.actions, j.logger,
			WithSettleDelay(j.settle), WithClock(j.now))
		j.recs[userID] = r
	}

	r.ObservePointer(ctx, Pointer{GroupID: groupID, GroupName: groupName})
	gen := r.Generation()

	var snap *GroupSnapshot
	group, err := j.store.GetGroup(ctx, groupID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// snap stays nil: group is gone.
	case err != nil:
		j.logger.Warn("pointer sweep: group read failed",
			"user_id", userID, "group_id", groupID, "error", err)
		return
	default:
		snap = &GroupSnapshot{Name: group.Name, Owner: group.Owner, Members: group.Members}
	}
	r.ObserveGroup(ctx, gen, snap)

	if snap != nil && !snap.HasMember(userID) {
		pending, err := j.store.PendingExists(ctx, groupID, userID)
		if err != nil {
			j.logger.Warn("pointer sweep: pending read failed",
				"user_id", userID, "group_id", groupID, "error", err)
			return
		}
		r.ObservePendingStatus(ctx, gen, pending)
	}

	r.Tick(ctx)
}
