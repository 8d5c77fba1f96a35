package groups

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/storage"
	"github.com/danielvr/mydays/internal/storage/sqlite"
	"github.com/danielvr/mydays/internal/watch"
)

type capturingNotifier struct {
	events []JoinRequestEvent
}

func (n *capturingNotifier) JoinRequested(ev JoinRequestEvent) {
	n.events = append(n.events, ev)
}

func newTestService(t *testing.T) (*Service, storage.Store, *watch.Hub, *capturingNotifier) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hub := watch.NewHub()
	notifier := &capturingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, hub, notifier, logger), store, hub, notifier
}

func createUser(t *testing.T, store storage.Store, email, name string) *models.User {
	t.Helper()
	u := models.NewUser(email, name, "hash")
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")

	groupID, groupName, err := svc.CreateGroup(ctx, owner.ID, "  Family  ")
	require.NoError(t, err)
	assert.Len(t, groupID, CodeLength)
	assert.Equal(t, "Family", groupName)

	// The owner is the sole initial member and listed as owner.
	group, err := svc.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, group.Owner)
	assert.Equal(t, []string{owner.ID}, group.Members)

	// The owner's pointer references the new group.
	u, err := store.GetUserByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, groupID, u.GroupID)
	assert.Equal(t, "Family", u.GroupName)
}

func TestCreateGroupDefaultsName(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")

	_, groupName, err := svc.CreateGroup(ctx, owner.ID, "   ")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGroupName, groupName)
}

func TestJoinGroup(t *testing.T) {
	ctx := context.Background()
	svc, store, _, notifier := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")
	joiner := createUser(t, store, "joiner@example.com", "Joiner")

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.JoinGroup(ctx, joiner.ID, "ZZZZZZ", "Joiner", "")
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("queues request and sets optimistic pointer", func(t *testing.T) {
		// The code is accepted case-insensitively.
		groupName, err := svc.JoinGroup(ctx, joiner.ID, "  "+strings.ToLower(groupID)+" ", "Joiner", "https://example.com/p.jpg")
		require.NoError(t, err)
		assert.Equal(t, "Family", groupName)

		pending, err := svc.PendingExists(ctx, groupID, joiner.ID)
		require.NoError(t, err)
		assert.True(t, pending)

		// Pointer is set before any admin decision.
		u, err := store.GetUserByID(ctx, joiner.ID)
		require.NoError(t, err)
		assert.Equal(t, groupID, u.GroupID)

		// Not a member yet.
		group, err := svc.GetGroup(ctx, groupID)
		require.NoError(t, err)
		assert.False(t, group.HasMember(joiner.ID))

		require.Len(t, notifier.events, 1)
		assert.Equal(t, groupID, notifier.events[0].GroupID)
		assert.Equal(t, joiner.ID, notifier.events[0].UserID)
		assert.Equal(t, "Joiner", notifier.events[0].DisplayName)
	})

	t.Run("re-join replaces the pending request", func(t *testing.T) {
		_, err := svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner Again", "")
		require.NoError(t, err)

		reqs, err := svc.ListPending(ctx, owner.ID, groupID)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, "Joiner Again", reqs[0].DisplayName)

		// Refreshing an existing request does not push a second
		// notification at the owner.
		assert.Len(t, notifier.events, 1)
	})

	t.Run("member cannot re-join", func(t *testing.T) {
		require.NoError(t, svc.AcceptMember(ctx, owner.ID, groupID, joiner.ID))
		_, err := svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})
}

func TestAcceptMember(t *testing.T) {
	ctx := context.Background()
	svc, store, hub, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")
	joiner := createUser(t, store, "joiner@example.com", "Joiner")
	stranger := createUser(t, store, "stranger@example.com", "Stranger")

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
	require.NoError(t, err)

	t.Run("only the owner may accept", func(t *testing.T) {
		err := svc.AcceptMember(ctx, stranger.ID, groupID, joiner.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("accept adds member and drains the queue", func(t *testing.T) {
		groupCh, cancelG := hub.Subscribe(watch.GroupTopic(groupID))
		defer cancelG()
		pendingCh, cancelP := hub.Subscribe(watch.PendingUserTopic(groupID, joiner.ID))
		defer cancelP()

		require.NoError(t, svc.AcceptMember(ctx, owner.ID, groupID, joiner.ID))

		group, err := svc.GetGroup(ctx, groupID)
		require.NoError(t, err)
		assert.True(t, group.HasMember(joiner.ID))

		pending, err := svc.PendingExists(ctx, groupID, joiner.ID)
		require.NoError(t, err)
		assert.False(t, pending)

		assertSignaled(t, groupCh, "group topic")
		assertSignaled(t, pendingCh, "pending topic")
	})

	t.Run("accept is idempotent", func(t *testing.T) {
		require.NoError(t, svc.AcceptMember(ctx, owner.ID, groupID, joiner.ID))

		group, err := svc.GetGroup(ctx, groupID)
		require.NoError(t, err)
		assert.Len(t, group.Members, 2, "joiner plus owner, no duplicate rows")
	})
}

func TestRejectMember(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")
	joiner := createUser(t, store, "joiner@example.com", "Joiner")

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
	require.NoError(t, err)

	t.Run("reject drains the queue and leaves the pointer stale", func(t *testing.T) {
		require.NoError(t, svc.RejectMember(ctx, owner.ID, groupID, joiner.ID))

		pending, err := svc.PendingExists(ctx, groupID, joiner.ID)
		require.NoError(t, err)
		assert.False(t, pending)

		// No server-side pointer write on rejection.
		u, err := store.GetUserByID(ctx, joiner.ID)
		require.NoError(t, err)
		assert.Equal(t, groupID, u.GroupID)

		// And no membership.
		group, err := svc.GetGroup(ctx, groupID)
		require.NoError(t, err)
		assert.False(t, group.HasMember(joiner.ID))
	})

	t.Run("reject after accept does not revoke membership", func(t *testing.T) {
		_, err = svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
		require.NoError(t, err)
		require.NoError(t, svc.AcceptMember(ctx, owner.ID, groupID, joiner.ID))

		// A racing reject lands after the accept: membership is
		// monotonic, only the (already absent) pending record goes.
		require.NoError(t, svc.RejectMember(ctx, owner.ID, groupID, joiner.ID))

		group, err := svc.GetGroup(ctx, groupID)
		require.NoError(t, err)
		assert.True(t, group.HasMember(joiner.ID))
	})
}

func TestDeleteGroup(t *testing.T) {
	ctx := context.Background()
	svc, store, hub, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")
	member := createUser(t, store, "member@example.com", "Member")
	waiting := createUser(t, store, "waiting@example.com", "Waiting")

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, member.ID, groupID, "Member", "")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptMember(ctx, owner.ID, groupID, member.ID))
	_, err = svc.JoinGroup(ctx, waiting.ID, groupID, "Waiting", "")
	require.NoError(t, err)

	t.Run("only the owner may delete", func(t *testing.T) {
		err := svc.DeleteGroup(ctx, member.ID, groupID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("delete clears only the deleter's pointer", func(t *testing.T) {
		pendingCh, cancelP := hub.Subscribe(watch.PendingUserTopic(groupID, waiting.ID))
		defer cancelP()

		require.NoError(t, svc.DeleteGroup(ctx, owner.ID, groupID))

		// The drained queue signals each pending user's status
		// subscription, not just the group topic.
		assertSignaled(t, pendingCh, "pending user topic")

		_, err := svc.GetGroup(ctx, groupID)
		assert.ErrorIs(t, err, ErrGroupNotFound)

		o, err := store.GetUserByID(ctx, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, o.GroupID)

		// The member's pointer goes stale; their reconciler clears it.
		m, err := store.GetUserByID(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, groupID, m.GroupID)
	})
}

func TestClearMyGroup(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")
	joiner := createUser(t, store, "joiner@example.com", "Joiner")

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
	require.NoError(t, err)

	require.NoError(t, svc.ClearMyGroup(ctx, joiner.ID))

	u, err := store.GetUserByID(ctx, joiner.ID)
	require.NoError(t, err)
	assert.Empty(t, u.GroupID)
	assert.Empty(t, u.GroupName)

	// Clearing does not withdraw the queued request; membership writes
	// and pointer writes are independent stores.
	pending, err := svc.PendingExists(ctx, groupID, joiner.ID)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestListOwnedGroups(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")
	other := createUser(t, store, "other@example.com", "Other")

	a, _, err := svc.CreateGroup(ctx, owner.ID, "First")
	require.NoError(t, err)
	b, _, err := svc.CreateGroup(ctx, owner.ID, "Second")
	require.NoError(t, err)
	_, _, err = svc.CreateGroup(ctx, other.ID, "Not mine")
	require.NoError(t, err)

	owned, err := svc.ListOwnedGroups(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	ids := []string{owned[0].ID, owned[1].ID}
	assert.ElementsMatch(t, []string{a, b}, ids)
}

func TestListPendingOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	owner := createUser(t, store, "owner@example.com", "Owner")
	joiner := createUser(t, store, "joiner@example.com", "Joiner")

	groupID, _, err := svc.CreateGroup(ctx, owner.ID, "Family")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, joiner.ID, groupID, "Joiner", "")
	require.NoError(t, err)

	_, err = svc.ListPending(ctx, joiner.ID, groupID)
	assert.ErrorIs(t, err, ErrForbidden)

	reqs, err := svc.ListPending(ctx, owner.ID, groupID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, joiner.ID, reqs[0].UserID)
}

func assertSignaled(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	default:
		t.Errorf("expected a signal on the %s", what)
	}
}

