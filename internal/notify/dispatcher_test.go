package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielvr/mydays/internal/groups"
	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/storage/sqlite"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []Notification
	fails int
	err   error
}

func (s *fakeSender) Send(_ context.Context, token string, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.fails > 0 {
		s.fails--
		return errors.New("transient send failure")
	}
	s.sent = append(s.sent, n)
	return nil
}

func setupDispatcher(t *testing.T, sender Sender) (*Dispatcher, *sqlite.SQLiteStore) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(store, sender, logger, 2), store
}

func seedGroupWithOwner(t *testing.T, store *sqlite.SQLiteStore, token string) (*models.User, *models.Group) {
	t.Helper()
	ctx := context.Background()

	owner := models.NewUser("owner@example.com", "Owner", "hash")
	require.NoError(t, store.CreateUser(ctx, owner))
	if token != "" {
		require.NoError(t, store.UpdatePushToken(ctx, owner.ID, token))
	}

	group := &models.Group{ID: "ABC234", Name: "Family", Owner: owner.ID, Members: []string{owner.ID}}
	require.NoError(t, store.CreateGroup(ctx, group))
	return owner, group
}

func TestDeliverSendsJoinRequestPush(t *testing.T) {
	sender := &fakeSender{}
	d, store := setupDispatcher(t, sender)
	_, group := seedGroupWithOwner(t, store, "tok-1")

	d.deliver(context.Background(), groups.JoinRequestEvent{
		GroupID:     group.ID,
		GroupName:   group.Name,
		UserID:      "u-joiner",
		DisplayName: "Joiner",
	})

	require.Len(t, sender.sent, 1)
	n := sender.sent[0]
	assert.Equal(t, "New join request", n.Title)
	assert.Contains(t, n.Body, "Joiner")
	assert.Contains(t, n.Body, "Family")
	assert.Equal(t, "join_request", n.Data["type"])
	assert.Equal(t, group.ID, n.Data["groupId"])
	assert.Equal(t, "u-joiner", n.Data["userId"])
	assert.Equal(t, "Joiner", n.Data["displayName"])
}

func TestDeliverSkipsWithoutToken(t *testing.T) {
	sender := &fakeSender{}
	d, store := setupDispatcher(t, sender)
	_, group := seedGroupWithOwner(t, store, "")

	d.deliver(context.Background(), groups.JoinRequestEvent{GroupID: group.ID, GroupName: group.Name})
	assert.Empty(t, sender.sent)
}

func TestDeliverSkipsDeletedGroup(t *testing.T) {
	sender := &fakeSender{}
	d, _ := setupDispatcher(t, sender)

	d.deliver(context.Background(), groups.JoinRequestEvent{GroupID: "ZZZZZZ", GroupName: "Gone"})
	assert.Empty(t, sender.sent)
}

func TestDeliverRetriesTransientFailure(t *testing.T) {
	sender := &fakeSender{fails: 1}
	d, store := setupDispatcher(t, sender)
	_, group := seedGroupWithOwner(t, store, "tok-1")

	d.deliver(context.Background(), groups.JoinRequestEvent{
		GroupID:   group.ID,
		GroupName: group.Name,
	})

	assert.Len(t, sender.sent, 1, "second attempt should have landed")
}

func TestDeliverClearsUnregisteredToken(t *testing.T) {
	sender := &fakeSender{err: ErrUnregisteredToken}
	d, store := setupDispatcher(t, sender)
	owner, group := seedGroupWithOwner(t, store, "dead-token")

	d.deliver(context.Background(), groups.JoinRequestEvent{
		GroupID:   group.ID,
		GroupName: group.Name,
	})

	assert.Empty(t, sender.sent)
	u, err := store.GetUserByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Empty(t, u.PushToken, "dead token should be cleared")
}

func TestJoinRequestedNeverBlocks(t *testing.T) {
	sender := &fakeSender{}
	d, _ := setupDispatcher(t, sender)

	// Nothing drains the queue here; overflow must drop, not block.
	for i := 0; i < defaultQueueSize+10; i++ {
		d.JoinRequested(groups.JoinRequestEvent{GroupID: "ABC234"})
	}
}
