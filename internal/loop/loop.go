// Package loop provides the single-goroutine event loop on which all window
// coordination runs. Other goroutines hand work to it with Post.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Call when the loop has stopped.
var ErrStopped = errors.New("event loop stopped")

// Loop runs posted functions one at a time, in posting order, on the
// goroutine that called Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	panicHandler func(recovered any)
}

// Option configures a Loop.
type Option func(*Loop)

// WithPanicHandler sets the function called when a posted function panics.
// Without it the panic propagates and terminates Run's goroutine.
func WithPanicHandler(h func(recovered any)) Option {
	return func(l *Loop) {
		l.panicHandler = h
	}
}

// New creates a loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn. It never blocks and is safe to call from any goroutine,
// including the loop itself. Returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// AfterFunc posts fn once d has elapsed. The returned function cancels the
// timer; it reports false if fn was already posted.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// Call posts fn and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions until Stop is called or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.run(fn)
			if l.isStopped() {
				return nil
			}
		}

		select {
		case <-l.wake:
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		}
	}
}

// Stop makes Run return after the function currently executing, if any.
// Queued functions are discarded. Stop is idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

func (l *Loop) run(fn func()) {
	if l.panicHandler != nil {
		defer func() {
			if r := recover(); r != nil {
				l.panicHandler(r)
			}
		}()
	}
	fn()
}
