package event

import (
	"context"
	"strings"
)

// Topic is a hierarchical event name using dot notation.
type Topic string

// Wildcards accepted in subscription patterns.
const (
	WildcardSingle = "*"
	WildcardMulti  = "**"
	Separator      = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Valid reports whether the topic has no empty segments.
func (t Topic) Valid() bool {
	if t == "" {
		return false
	}
	for _, seg := range strings.Split(string(t), Separator) {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether the concrete topic t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == t {
		return true
	}
	return matchSegments(strings.Split(string(t), Separator), strings.Split(string(pattern), Separator))
}

func matchSegments(topic, pattern []string) bool {
	for i, p := range pattern {
		if p == WildcardMulti {
			return true
		}
		if i >= len(topic) {
			return false
		}
		if p != WildcardSingle && p != topic[i] {
			return false
		}
	}
	return len(topic) == len(pattern)
}

// TopicProvider is implemented by events that know their own topic.
type TopicProvider interface {
	EventTopic() Topic
}

// Priority determines handler execution order. Lower values run first.
type Priority int

const (
	// PriorityCritical is for handlers that keep shared state consistent,
	// such as registry removal on window close.
	PriorityCritical Priority = 0

	// PriorityHigh runs before ordinary handlers.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 200

	// PriorityLow is for logging and metrics handlers.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler processes events. The event is type-erased; handlers type-assert.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Typed adapts a function taking a concrete event type. Events of other
// types are skipped.
func Typed[T any](fn func(ctx context.Context, event T) error) Handler {
	return HandlerFunc(func(ctx context.Context, event any) error {
		if e, ok := event.(T); ok {
			return fn(ctx, e)
		}
		return nil
	})
}

// FilterFunc is a predicate for filtering events.
type FilterFunc func(event any) bool

// Stats contains bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// PanicHandler is called when a handler panics.
type PanicHandler func(event any, recovered any, stack []byte)
