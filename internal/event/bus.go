package event

import (
	"context"
	"errors"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Bus is the event bus interface.
type Bus interface {
	// Publish delivers event to every matching subscription before returning.
	// Handler errors are joined into the returned error; delivery continues
	// past a failing handler.
	Publish(ctx context.Context, event any) error

	// Subscribe registers handler for topics matching pattern.
	Subscribe(pattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)

	// SubscribeFunc is Subscribe for a plain function.
	SubscribeFunc(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)

	// Unsubscribe cancels and removes a subscription.
	Unsubscribe(sub Subscription) error

	// Stats returns current bus counters.
	Stats() Stats
}

// BusOption configures a Bus.
type BusOption func(*bus)

// WithPanicHandler sets the function called when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *bus) {
		b.panicHandler = h
	}
}

type bus struct {
	mu   sync.RWMutex
	subs []*subscription
	seq  uint64

	panicHandler PanicHandler

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) Bus {
	b := &bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *bus) Subscribe(pattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.Valid() {
		return nil, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := newSubscription(uuid.NewString(), b.seq, pattern, handler, opts...)
	b.subs = append(b.subs, sub)
	return sub, nil
}

func (b *bus) SubscribeFunc(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.ID() {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

func (b *bus) Publish(ctx context.Context, event any) error {
	t := topicOf(event)
	if t == "" {
		return ErrInvalidEvent
	}
	b.eventsPublished.Add(1)

	// Handlers may subscribe or unsubscribe while we deliver, so work on a
	// snapshot and re-check cancellation per handler.
	matched := b.match(t, event)

	var errs []error
	for _, sub := range matched {
		if !sub.IsActive() {
			continue
		}
		if err := b.deliver(ctx, sub, t, event); err != nil {
			errs = append(errs, err)
			continue
		}
		if sub.config.Once {
			_ = b.Unsubscribe(sub)
		}
	}
	return errors.Join(errs...)
}

func (b *bus) match(t Topic, event any) []*subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []*subscription
	for _, sub := range b.subs {
		if sub.shouldDeliver(t, event) {
			matched = append(matched, sub)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].config.Priority < matched[j].config.Priority
	})
	return matched
}

func (b *bus) deliver(ctx context.Context, sub *subscription, t Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(event, r, debug.Stack())
			}
			err = &PanicError{SubscriptionID: sub.id, Topic: t, Value: r}
		}
	}()

	if herr := sub.handler.Handle(ctx, event); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: t, Err: herr}
	}
	b.eventsDelivered.Add(1)
	return nil
}

func (b *bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, sub := range b.subs {
		if sub.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}

func topicOf(event any) Topic {
	if tp, ok := event.(TopicProvider); ok {
		return tp.EventTopic()
	}
	return ""
}
