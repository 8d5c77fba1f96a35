package membership

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielvr/mydays/internal/groups"
	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/storage/sqlite"
	"github.com/danielvr/mydays/internal/watch"
)

func TestJanitorClearsRejectedPointer(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	svc := groups.NewService(store, watch.NewHub(), nil, logger)

	owner := models.NewUser("owner@example.com", "Owner", "x")
	joiner := models.NewUser("joiner@example.com", "Joiner", "x")
	require.NoError(t, store.CreateUser(ctx, owner))
	require.NoError(t, store.CreateUser(ctx, joiner))

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)

	_, err = svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
	require.NoError(t, err)
	require.NoError(t, svc.RejectMember(ctx, owner.ID, groupID, joiner.ID))

	// The rejected user's client never reconnects; only the janitor can
	// clean up the stale pointer.
	clock := newFakeClock()
	janitor := NewJanitor(store, svc, logger,
		WithJanitorSettleDelay(3*time.Second),
		WithJanitorClock(clock.Now))

	// First sweep opens the settle window, nothing is cleared yet.
	janitor.Sweep(ctx)
	u, err := store.GetUserByID(ctx, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, groupID, u.GroupID, "pointer must survive the settle window")

	clock.Advance(5 * time.Second)
	janitor.Sweep(ctx)

	u, err = store.GetUserByID(ctx, joiner.ID)
	require.NoError(t, err)
	assert.Empty(t, u.GroupID, "stale pointer should be cleared after the settle delay")

	// The owner's pointer is healthy and untouched.
	o, err := store.GetUserByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, groupID, o.GroupID)
}

func TestJanitorLeavesPendingAlone(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	svc := groups.NewService(store, watch.NewHub(), nil, logger)

	owner := models.NewUser("owner@example.com", "Owner", "x")
	joiner := models.NewUser("joiner@example.com", "Joiner", "x")
	require.NoError(t, store.CreateUser(ctx, owner))
	require.NoError(t, store.CreateUser(ctx, joiner))

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
	require.NoError(t, err)

	clock := newFakeClock()
	janitor := NewJanitor(store, svc, logger,
		WithJanitorSettleDelay(3*time.Second),
		WithJanitorClock(clock.Now))

	// A queued request is not an orphan, no matter how much time passes.
	for i := 0; i < 5; i++ {
		janitor.Sweep(ctx)
		clock.Advance(time.Minute)
	}

	u, err := store.GetUserByID(ctx, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, groupID, u.GroupID)
}

func TestJanitorClearsPointerToDeletedGroup(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	svc := groups.NewService(store, watch.NewHub(), nil, logger)

	owner := models.NewUser("owner@example.com", "Owner", "x")
	member := models.NewUser("member@example.com", "Member", "x")
	require.NoError(t, store.CreateUser(ctx, owner))
	require.NoError(t, store.CreateUser(ctx, member))

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, member.ID, groupID, "Member", "")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptMember(ctx, owner.ID, groupID, member.ID))

	// DeleteGroup clears only the deleter's pointer; the member's goes
	// stale.
	require.NoError(t, svc.DeleteGroup(ctx, owner.ID, groupID))

	clock := newFakeClock()
	janitor := NewJanitor(store, svc, logger, WithJanitorClock(clock.Now))

	// A missing group is definitive, one sweep is enough.
	janitor.Sweep(ctx)

	u, err := store.GetUserByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Empty(t, u.GroupID)
}
