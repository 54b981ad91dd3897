package coordinator

import (
	"errors"
	"time"

	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/logging"
	"github.com/dshills/stormwin/internal/window"
)

// ErrStopped is returned by every entry point once the last window has
// closed and the quit callback has run.
var ErrStopped = errors.New("coordinator stopped")

// Factory constructs a new, not yet registered window.
type Factory func() window.Window

// Screen answers geometry questions for placement.
type Screen interface {
	// Pointer returns the current pointer position.
	Pointer() geom.Point

	// ScreenAt returns the bounds of the screen containing p.
	ScreenAt(p geom.Point) geom.Rect
}

// StaticScreen is a Screen with fixed geometry.
type StaticScreen struct {
	Bounds geom.Rect
	Cursor geom.Point
}

// Pointer implements Screen.
func (s StaticScreen) Pointer() geom.Point { return s.Cursor }

// ScreenAt implements Screen.
func (s StaticScreen) ScreenAt(geom.Point) geom.Rect { return s.Bounds }

// SessionStore lists the blank buffers saved by a previous session.
type SessionStore interface {
	// Entries returns the stored identifiers in restore order.
	Entries() ([]string, error)

	// Path returns the path to hand to Window.AddBlankTab for id.
	Path(id string) string
}

// Scheduler runs functions later on the coordinator's goroutine.
type Scheduler interface {
	// Post queues fn. It may be called from any goroutine.
	Post(fn func()) bool

	// AfterFunc posts fn after d and returns a function cancelling it.
	AfterFunc(d time.Duration, fn func()) func() bool
}

// Config holds placement and readiness settings.
type Config struct {
	// CascadeStep is the per-window diagonal offset of cascade placement.
	CascadeStep int

	// RestoreDelay is the fixed deferral used for windows that cannot report
	// readiness.
	RestoreDelay time.Duration

	// ReadyTimeout bounds the wait for a readiness signal. Operations queued
	// for the window run when it expires. Zero waits indefinitely.
	ReadyTimeout time.Duration
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		CascadeStep:  50,
		RestoreDelay: 50 * time.Millisecond,
		ReadyTimeout: 2 * time.Second,
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConfig replaces the default settings.
func WithConfig(cfg Config) Option {
	return func(c *Coordinator) {
		c.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSessionStore sets the store consulted for session restore.
func WithSessionStore(s SessionStore) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithQuit sets the function run when the last window closes.
func WithQuit(fn func()) Option {
	return func(c *Coordinator) {
		c.quit = fn
	}
}

// WithTheme sets the theme applied to windows as they are created.
func WithTheme(name string) Option {
	return func(c *Coordinator) {
		c.theme = name
	}
}
