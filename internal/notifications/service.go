// Package notifications fans domain events out to downstream subscribers.
package notifications

import (
	"context"
	"sync"
	"time"
)

type EventType string

const (
	RecipeCreated EventType = "recipe.created"
	RecipeDeleted EventType = "recipe.deleted"
	RecipeRated   EventType = "recipe.rated"
	CommentPosted EventType = "comment.posted"
	ReplyPosted   EventType = "reply.posted"
)

type Event struct {
	Type       EventType         `json:"type"`
	ResourceId string            `json:"resourceId"`
	ActorId    string            `json:"actorId"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Time       time.Time         `json:"time"`
}

// Publisher delivers one event. Events are published from the table stream
// after the write committed, and a failed record is redelivered, so
// subscribers can see an event more than once.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}

// MemoryPublisher keeps every event it receives, for tests and local runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemoryPublisher) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event{}, m.events...)
}
