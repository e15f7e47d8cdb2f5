package subscription

import (
	"sync"
	"time"
)

// TopicPosts carries changes to the post collection.
const TopicPosts = "posts"

// PostTopic carries changes to the comments of one post.
func PostTopic(postID string) string {
	return "post:" + postID
}

// ChatTopic carries messages of one conversation.
func ChatTopic(with string) string {
	return "chat:" + with
}

const (
	PostCreated    = "post.created"
	PostUpdated    = "post.updated"
	PostDeleted    = "post.deleted"
	CommentCreated = "comment.created"
	CommentUpdated = "comment.updated"
	CommentDeleted = "comment.deleted"
	ChatMessage    = "chat.message"
)

// publishTimeout bounds how long Publish waits on a slow subscriber.
const publishTimeout = 500 * time.Millisecond

// Event tells a renderer that something under Topic changed.
type Event struct {
	Topic string
	Kind  string
	ID    string
}

// Publisher is what repositories depend on.
type Publisher interface {
	Publish(event Event)
}

type Manager interface {
	Publisher
	Subscribe(topic string) (<-chan Event, func())
}

type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[string][]chan Event // topic -> subscriber channels
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subs: make(map[string][]chan Event),
	}
}

func (m *SubscriptionManager) Subscribe(topic string) (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Event, 1)

	m.subs[topic] = append(m.subs[topic], ch)

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subscribers := m.subs[topic]
		for i, sub := range subscribers {
			if sub == ch {
				m.subs[topic] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
	}

	return ch, cancel
}

func (m *SubscriptionManager) Publish(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[event.Topic] {
		select {
		case sub <- event:
		case <-time.After(publishTimeout):
			// subscriber is not draining; drop the event for it
		}
	}
}

// Nop discards events. Repositories use it when no manager is wired.
type Nop struct{}

func (Nop) Publish(Event) {}
