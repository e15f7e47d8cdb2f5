package mocks

import (
	"sync"

	"github.com/Luiz-altf4/Rose-Forum/internal/subscription"
)

// MockPublisher records every published event so tests can inspect them.
type MockPublisher struct {
	mu     sync.Mutex
	events map[string][]subscription.Event // topic -> published events
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events: make(map[string][]subscription.Event),
	}
}

func (m *MockPublisher) Publish(event subscription.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[event.Topic] = append(m.events[event.Topic], event)
}

// EventsForTopic returns the events published on topic in order.
func (m *MockPublisher) EventsForTopic(topic string) []subscription.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.events[topic]
	out := make([]subscription.Event, len(events))
	copy(out, events)
	return out
}

func (m *MockPublisher) Kinds(topic string) []string {
	events := m.EventsForTopic(topic)
	kinds := make([]string, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}
