package services

import (
	"sync"
	"testing"
	"time"
)

func TestBroker(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(MatchTopic("m1"))

	var mu sync.Mutex
	var heard []string
	b.Listen(func(topic string, ev LiveEvent) {
		mu.Lock()
		heard = append(heard, topic)
		mu.Unlock()
	})

	b.Publish(LiveEvent{Type: EventMessage, MatchID: "m1"}, MatchTopic("m1"), UserTopic("alice"))
	if ev := <-ch; ev.MatchID != "m1" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if len(heard) != 2 {
		t.Errorf("listener saw %v", heard)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	if n := b.Subscribers(MatchTopic("m1")); n != 0 {
		t.Errorf("subscribers = %d", n)
	}
	b.Publish(LiveEvent{Type: EventMessage}, MatchTopic("m1"))
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("t")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish(LiveEvent{Type: EventMessage}, "t")
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered %d events, want %d", len(ch), subscriberBuffer)
	}
}

func TestBrokerListenerCanUseBroker(t *testing.T) {
	b := NewBroker()
	b.Listen(func(topic string, ev LiveEvent) {
		if ev.Type != EventMatchCreated {
			return
		}
		_, cancel := b.Subscribe(MatchTopic(ev.MatchID))
		cancel()
		b.Publish(LiveEvent{Type: EventMessage, MatchID: ev.MatchID}, topic)
	})
	b.Listen(func(topic string, ev LiveEvent) {
		b.Listen(func(string, LiveEvent) {})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Publish(LiveEvent{Type: EventMatchCreated, MatchID: "m1"}, UserTopic("alice"))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish deadlocked on a listener that used the broker")
	}
}
