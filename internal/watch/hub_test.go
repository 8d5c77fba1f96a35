package watch

import "testing"

func drained(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestHubNotifySubscribers(t *testing.T) {
	h := NewHub()

	a, cancelA := h.Subscribe(GroupTopic("ABC234"))
	defer cancelA()
	b, cancelB := h.Subscribe(GroupTopic("ABC234"))
	defer cancelB()
	other, cancelOther := h.Subscribe(GroupTopic("XYZ789"))
	defer cancelOther()

	h.Notify(GroupTopic("ABC234"))

	if !drained(a) {
		t.Error("first subscriber missed the signal")
	}
	if !drained(b) {
		t.Error("second subscriber missed the signal")
	}
	if drained(other) {
		t.Error("unrelated topic received a signal")
	}
}

func TestHubCoalescesSignals(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(PendingListTopic("ABC234"))
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Notify(PendingListTopic("ABC234"))
	}

	if !drained(ch) {
		t.Fatal("expected a pending signal")
	}
	if drained(ch) {
		t.Error("burst should coalesce into a single pending signal")
	}

	// A notify after draining is delivered again.
	h.Notify(PendingListTopic("ABC234"))
	if !drained(ch) {
		t.Error("signal after drain was lost")
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(ProfileTopic("u1"))
	cancel()

	h.Notify(ProfileTopic("u1"))
	if drained(ch) {
		t.Error("canceled subscription still received a signal")
	}

	// Canceling twice is harmless.
	cancel()
}

func TestHubNotifyMultipleTopics(t *testing.T) {
	h := NewHub()
	group, cancelG := h.Subscribe(GroupTopic("ABC234"))
	defer cancelG()
	profile, cancelP := h.Subscribe(ProfileTopic("u1"))
	defer cancelP()

	h.Notify(GroupTopic("ABC234"), ProfileTopic("u1"))

	if !drained(group) || !drained(profile) {
		t.Error("multi-topic notify missed a subscriber")
	}
}
