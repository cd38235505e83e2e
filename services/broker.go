package services

import (
	"log/slog"
	"sync"

	"eventfriend_server/models"
)

// Live event types.
const (
	EventMatchCreated = "match_created"
	EventMatchRemoved = "match_removed"
	EventMessage      = "message"
)

// LiveEvent is what the broker fans out to live subscribers.
type LiveEvent struct {
	Type    string          `json:"type"`
	MatchID string          `json:"matchId"`
	Match   *models.Match   `json:"match,omitempty"`
	Message *models.Message `json:"message,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}

// MatchTopic carries events for one match.
func MatchTopic(matchID string) string { return "match:" + matchID }

// UserTopic carries events that change one user's match list.
func UserTopic(userID string) string { return "user:" + userID }

const subscriberBuffer = 16

// Broker is an in-process topic pub/sub. Slow subscribers lose events
// rather than block publishers; live feeds re-read a snapshot on every
// event so a dropped event only delays an update.
type Broker struct {
	mu        sync.RWMutex
	topics    map[string]map[chan LiveEvent]struct{}
	listeners []func(topic string, ev LiveEvent)
}

func NewBroker() *Broker {
	return &Broker{topics: make(map[string]map[chan LiveEvent]struct{})}
}

// Subscribe registers a channel on topic. The returned cancel func
// unregisters and closes it.
func (b *Broker) Subscribe(topic string) (<-chan LiveEvent, func()) {
	ch := make(chan LiveEvent, subscriberBuffer)

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[chan LiveEvent]struct{})
	}
	b.topics[topic][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.topics[topic], ch)
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Listen registers fn for every published event. Listeners run
// synchronously on the publishing goroutine.
func (b *Broker) Listen(fn func(topic string, ev LiveEvent)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Publish delivers ev to every subscriber of each topic, then hands it to
// the listeners. Listeners are called without the broker lock held, so they
// may subscribe or publish themselves.
func (b *Broker) Publish(ev LiveEvent, topics ...string) {
	if b == nil {
		return
	}
	b.mu.RLock()
	for _, topic := range topics {
		for ch := range b.topics[topic] {
			select {
			case ch <- ev:
			default:
				slog.Warn("⚠️ Dropping live event for slow subscriber", "topic", topic, "type", ev.Type)
			}
		}
	}
	listeners := make([]func(string, LiveEvent), len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, topic := range topics {
		for _, fn := range listeners {
			fn(topic, ev)
		}
	}
}

// Subscribers returns the number of channels on topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
