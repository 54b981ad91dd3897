package event

import "sync/atomic"

// Subscription represents an active event subscription.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic pattern.
	Topic() Topic

	// IsActive returns true until the subscription is cancelled.
	IsActive() bool

	// Cancel permanently stops delivery to this subscription.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Filter, if set, must return true for an event to be delivered.
	Filter FilterFunc

	// Once cancels the subscription after its first successful delivery.
	Once bool
}

// DefaultSubscriptionConfig returns a default subscription configuration.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{Priority: PriorityNormal}
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce sets the subscription to cancel after the first event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

type subscription struct {
	id        string
	seq       uint64
	topic     Topic
	handler   Handler
	config    SubscriptionConfig
	cancelled atomic.Bool
}

func newSubscription(id string, seq uint64, t Topic, h Handler, opts ...SubscriptionOption) *subscription {
	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &subscription{
		id:      id,
		seq:     seq,
		topic:   t,
		handler: h,
		config:  config,
	}
}

func (s *subscription) ID() string     { return s.id }
func (s *subscription) Topic() Topic   { return s.topic }
func (s *subscription) IsActive() bool { return !s.cancelled.Load() }
func (s *subscription) Cancel()        { s.cancelled.Store(true) }

func (s *subscription) shouldDeliver(t Topic, event any) bool {
	if !s.IsActive() || !t.Matches(s.topic) {
		return false
	}
	return s.config.Filter == nil || s.config.Filter(event)
}
