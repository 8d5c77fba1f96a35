// Package watch provides in-process change notification for the stores.
//
// The hub carries no payloads. A mutation signals the topics it touched, and
// each subscriber re-reads its snapshot from storage before emitting to its
// client. Signals to the same subscriber coalesce (channel capacity 1), so a
// burst of writes yields at least one re-read of the final state rather than
// one delivery per write. Cross-topic ordering is explicitly not guaranteed;
// the membership reconciler is built to be correct under any interleaving.
package watch

import "sync"

// Topic names a watchable key. Topics are plain strings built by the
// constructors below; subscribers and notifiers must use the same
// constructor for the same logical key.
type Topic string

// GroupTopic signals changes to a single group record (including deletion).
func GroupTopic(groupID string) Topic { return Topic("group/" + groupID) }

// PendingListTopic signals changes to a group's pending-request list.
func PendingListTopic(groupID string) Topic { return Topic("pending/" + groupID) }

// PendingUserTopic signals changes to one user's pending record in a group.
func PendingUserTopic(groupID, userID string) Topic {
	return Topic("pending/" + groupID + "/" + userID)
}

// OwnerGroupsTopic signals changes to the set of groups a user owns.
func OwnerGroupsTopic(userID string) Topic { return Topic("owner/" + userID) }

// ProfileTopic signals changes to a user's profile (group pointer, token).
func ProfileTopic(userID string) Topic { return Topic("profile/" + userID) }

// Hub fans out change signals to subscribers.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic]map[int]chan struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[int]chan struct{})}
}

// Subscribe registers interest in a topic. The returned channel receives a
// signal whenever the topic is notified; the cancel func must be called when
// the subscriber goes away.
func (h *Hub) Subscribe(topic Topic) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan struct{}, 1)
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan struct{})
	}
	h.subs[topic][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[topic]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(h.subs, topic)
			}
		}
	}
	return ch, cancel
}

// Notify signals every subscriber of the given topics. Never blocks: a
// subscriber that already has a pending signal is skipped.
func (h *Hub) Notify(topics ...Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		for _, ch := range h.subs[topic] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
