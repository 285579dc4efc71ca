package events

import (
	"testing"
	"time"
)

func recv(t *testing.T, s *Subscription) LogoutEvent {
	t.Helper()
	select {
	case ev, ok := <-s.C:
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return LogoutEvent{}
}

func TestBus_BroadcastsToAllSubscribers(t *testing.T) {
	b := NewBus()
	a, c := b.Subscribe(1), b.Subscribe(1)
	defer a.Close()
	defer c.Close()

	b.Publish("session expired")

	if ev := recv(t, a); ev.Reason != "session expired" || ev.At.IsZero() {
		t.Fatalf("a got %+v", ev)
	}
	if ev := recv(t, c); ev.Reason != "session expired" {
		t.Fatalf("c got %+v", ev)
	}
}

func TestBus_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBus()
	s := b.Subscribe(1)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		b.Publish("one")
		b.Publish("two") // dropped
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Publish blocked")
	}
	if ev := recv(t, s); ev.Reason != "one" {
		t.Fatalf("got %+v", ev)
	}
}

func TestSubscription_CloseIsIdempotentAndStopsDelivery(t *testing.T) {
	b := NewBus()
	s := b.Subscribe(4)
	s.Close()
	s.Close()

	b.Publish("ignored")
	if _, ok := <-s.C; ok {
		t.Fatalf("expected closed channel")
	}
}

func TestBus_CloseClosesSubscribers(t *testing.T) {
	b := NewBus()
	s := b.Subscribe(1)
	b.Close()
	if _, ok := <-s.C; ok {
		t.Fatalf("expected closed channel after bus close")
	}
	s.Close() // no panic

	late := b.Subscribe(1)
	if _, ok := <-late.C; ok {
		t.Fatalf("subscribe after close should yield closed channel")
	}
	b.Publish("noop")
}
