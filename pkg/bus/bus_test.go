package bus

import (
	"errors"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Unsubscribe()

	b.Publish(AsstCreated("helper", "asst_1"))

	select {
	case evt := <-sub.Events():
		if evt.Type != EventAsstCreated {
			t.Errorf("Type = %v, want %v", evt.Type, EventAsstCreated)
		}
		if evt.Name != "helper" || evt.ID != "asst_1" {
			t.Errorf("unexpected payload: %+v", evt)
		}
		if evt.Time.IsZero() {
			t.Error("event time should be stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPublishWithZeroSubscribers(t *testing.T) {
	b := New()
	defer b.Close()

	// Must be a successful no-op.
	b.Publish(InstUploaded())
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	b := New()
	defer b.Close()

	s1 := b.Subscribe()
	s2 := b.Subscribe()
	defer s1.Unsubscribe()
	defer s2.Unsubscribe()

	b.Publish(ConvCreated())

	for _, sub := range []*Subscription{s1, s2} {
		select {
		case evt := <-sub.Events():
			if evt.Type != EventConvCreated {
				t.Errorf("Type = %v, want %v", evt.Type, EventConvCreated)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestSlowSubscriberDropsWithoutBlocking(t *testing.T) {
	b := NewWithBuffer(2)
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			b.Publish(OrgFileUploading("bundle.md"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on slow subscriber")
	}

	// Only the buffered events survive.
	received := 0
	for {
		select {
		case <-sub.Events():
			received++
		default:
			if received != 2 {
				t.Errorf("received = %d, want 2", received)
			}
			return
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	b.Publish(ConvLoaded())

	if _, ok := <-sub.Events(); ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := New()
	sub := b.Subscribe()

	b.Close()
	b.Close() // idempotent

	if _, ok := <-sub.Events(); ok {
		t.Error("channel should be closed after bus Close")
	}

	// Publish and Subscribe after Close must not panic.
	b.Publish(InstUploaded())
	late := b.Subscribe()
	if _, ok := <-late.Events(); ok {
		t.Error("late subscription should be closed immediately")
	}
}

func TestEventConstructors(t *testing.T) {
	cause := errors.New("permission denied")

	evt := OrgFileCantDelete("bundle.md", "file_1", cause)
	if evt.Type != EventOrgFileCantDelete || evt.Cause != "permission denied" {
		t.Errorf("unexpected event: %+v", evt)
	}

	evt = AsstFileCantRemove("asst_1", "file_1", cause)
	if evt.AssistantID != "asst_1" || evt.ID != "file_1" {
		t.Errorf("unexpected event: %+v", evt)
	}

	evt = OrgFileUploaded("bundle.md", "file_2")
	if evt.Name != "bundle.md" || evt.ID != "file_2" {
		t.Errorf("unexpected event: %+v", evt)
	}
}
