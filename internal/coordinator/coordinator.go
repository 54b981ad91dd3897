package coordinator

import (
	"context"
	"time"

	"github.com/dshills/stormwin/internal/event"
	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/logging"
	"github.com/dshills/stormwin/internal/window"
)

// Coordinator is the single entry point for opening files into windows.
type Coordinator struct {
	factory Factory
	screen  Screen
	bus     event.Bus
	sched   Scheduler
	store   SessionStore
	quit    func()
	theme   string
	config  Config
	log     *logging.Logger

	windows []*entry
	stopped bool
}

// entry is a registered window together with everything whose lifetime is
// tied to its registration.
type entry struct {
	win  window.Window
	subs []event.Subscription

	// pending holds tab operations waiting for the window to become ready,
	// in request order.
	pending []func(window.Window)
	waiting bool
	cancel  func() bool

	closed bool
	done   chan struct{}
}

// New creates a coordinator. factory builds windows, screen answers placement
// queries, bus carries window notifications and sched runs deferred work on
// the coordinator's goroutine.
func New(factory Factory, screen Screen, bus event.Bus, sched Scheduler, opts ...Option) *Coordinator {
	c := &Coordinator{
		factory: factory,
		screen:  screen,
		bus:     bus,
		sched:   sched,
		config:  DefaultConfig(),
		log:     logging.Null(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.screen == nil {
		c.screen = StaticScreen{}
	}
	return c
}

// Len returns the number of registered windows.
func (c *Coordinator) Len() int {
	return len(c.windows)
}

// Windows returns the registered windows in creation order.
func (c *Coordinator) Windows() []window.Window {
	out := make([]window.Window, len(c.windows))
	for i, e := range c.windows {
		out[i] = e.win
	}
	return out
}

// Stopped reports whether the last window has closed.
func (c *Coordinator) Stopped() bool {
	return c.stopped
}

// Snapshot describes every registered window in creation order.
func (c *Coordinator) Snapshot() []window.Info {
	out := make([]window.Info, len(c.windows))
	for i, e := range c.windows {
		out[i] = e.win.Info()
	}
	return out
}

// Locate finds the window and tab showing path. The scan follows registry
// order and stops at the first match.
func (c *Coordinator) Locate(path string) window.Location {
	for i, e := range c.windows {
		if tab := e.win.LocateTab(path); tab >= 0 {
			return window.Location{Window: i, Tab: tab}
		}
	}
	return window.NoLocation
}

// OpenInNewOrExistingWindow opens each path in a window of its own unless it
// is already open somewhere, in which case that tab is focused. With no
// paths it opens a new window holding one blank tab.
func (c *Coordinator) OpenInNewOrExistingWindow(paths []string) error {
	if c.stopped {
		return ErrStopped
	}

	if len(paths) == 0 {
		w := c.createWindow(false).win
		w.AddBlankTab("")
		w.BringToForeground()
		return nil
	}

	for _, path := range paths {
		if c.focus(path) {
			continue
		}
		c.createWindow(false).win.AddTab(path)
		c.log.Debug("open %s in new window", path)
	}
	return nil
}

// OpenInTabOfSharedWindow opens each path as a tab of the first window
// unless it is already open somewhere. On a cold start it creates a centered
// window; with no paths that window restores the previous session's blank
// buffers.
func (c *Coordinator) OpenInTabOfSharedWindow(paths []string) error {
	if c.stopped {
		return ErrStopped
	}

	if len(paths) == 0 {
		if len(c.windows) == 0 {
			c.restoreSession(c.createWindow(true))
			return nil
		}
		// Creating rather than focusing windows[0] matches the established
		// behaviour of this entry point.
		w := c.createWindow(false).win
		w.BringToForeground()
		w.AddBlankTab("")
		return nil
	}

	for _, path := range paths {
		if c.focus(path) {
			c.log.Debug("open %s in existing tab", path)
			continue
		}

		if len(c.windows) == 0 {
			e := c.createWindow(true)
			c.whenReady(e, c.openOp(path, false))
			c.log.Debug("open %s with new window", path)
			continue
		}

		c.run(c.windows[0], c.openOp(path, true))
		c.log.Debug("open %s in first window", path)
	}
	return nil
}

// CreateWindowFromExternalBuffer opens a new window with one tab whose
// content is buf, then moves the window by the pointer position minus its
// own top-left corner. The caller removes the tab from its source window
// first; if path is still open somewhere, that tab is focused and its window
// returned instead.
func (c *Coordinator) CreateWindowFromExternalBuffer(label, path string, buf *window.Buffer) (window.Window, error) {
	if c.stopped {
		return nil, ErrStopped
	}

	if loc := c.Locate(path); loc.Found() {
		c.log.Debug("external buffer %s already open", path)
		c.focus(path)
		return c.windows[loc.Window].win, nil
	}

	w := c.createWindow(false).win
	w.AddTabWithBuffer(buf, path, label)
	w.Move(c.screen.Pointer().Sub(w.Bounds().Origin()))
	return w, nil
}

// ApplyTheme sets the theme of every registered window.
func (c *Coordinator) ApplyTheme(name string) error {
	if c.stopped {
		return ErrStopped
	}

	c.theme = name
	for _, e := range c.windows {
		e.win.SetTheme(name)
	}
	return nil
}

// focus activates the tab showing path and raises its window.
func (c *Coordinator) focus(path string) bool {
	loc := c.Locate(path)
	if !loc.Found() {
		return false
	}
	w := c.windows[loc.Window].win
	w.ActivateTab(loc.Tab)
	w.BringToForeground()
	return true
}

// openOp returns a tab operation that re-checks for an existing tab before
// adding path, so queued opens cannot duplicate a tab added meanwhile.
func (c *Coordinator) openOp(path string, foreground bool) func(window.Window) {
	return func(w window.Window) {
		if c.focus(path) {
			return
		}
		w.AddTab(path)
		if foreground {
			w.BringToForeground()
		}
	}
}

func (c *Coordinator) restoreSession(e *entry) {
	var ids []string
	if c.store != nil {
		var err error
		ids, err = c.store.Entries()
		if err != nil {
			c.log.Warn("listing blank files: %v", err)
			ids = nil
		}
	}

	if len(ids) == 0 {
		e.win.AddBlankTab("")
		return
	}

	paths := make([]string, len(ids))
	for i, id := range ids {
		paths[i] = c.store.Path(id)
	}
	c.log.Debug("restoring %d blank files", len(paths))
	c.whenReady(e, func(w window.Window) {
		for _, p := range paths {
			w.AddBlankTab(p)
		}
	})
}

// createWindow builds, wires, places and registers a window.
func (c *Coordinator) createWindow(center bool) *entry {
	w := c.factory()
	e := &entry{win: w, done: make(chan struct{})}
	forWindow := event.WithFilter(window.ForWindow(w.ID()))

	if c.theme != "" {
		w.SetTheme(c.theme)
	}

	c.subscribe(e, window.TopicThemeChanged, event.Typed(func(_ context.Context, ev window.ThemeChanged) error {
		c.sched.Post(func() {
			if err := c.ApplyTheme(ev.Theme); err != nil {
				c.log.Debug("theme %s not applied: %v", ev.Theme, err)
			}
		})
		return nil
	}), forWindow)

	c.subscribe(e, window.TopicClosed, event.Typed(func(context.Context, window.Closed) error {
		c.unregister(e)
		return nil
	}), forWindow, event.WithPriority(event.PriorityCritical))

	c.placeWindow(w, center)

	c.subscribe(e, window.TopicNewWindowRequested, event.Typed(func(context.Context, window.NewWindowRequested) error {
		return c.OpenInNewOrExistingWindow(nil)
	}), forWindow)

	c.windows = append(c.windows, e)
	c.log.WithField("window", w.ID()).Debug("window %d created", len(c.windows)-1)
	return e
}

func (c *Coordinator) subscribe(e *entry, t event.Topic, h event.Handler, opts ...event.SubscriptionOption) {
	sub, err := c.bus.Subscribe(t, h, opts...)
	if err != nil {
		c.log.Error("subscribing to %s: %v", t, err)
		return
	}
	e.subs = append(e.subs, sub)
}

// placeWindow centers the first window, or any window when center is set,
// and cascades the others from the screen's top-left corner.
func (c *Coordinator) placeWindow(w window.Window, center bool) {
	screen := c.screen.ScreenAt(c.screen.Pointer())

	if len(c.windows) == 0 || center {
		w.Move(screen.CenterIn(w.Bounds().Size()))
		return
	}

	offset := len(c.windows) * c.config.CascadeStep
	w.Move(screen.Origin().Add(geom.Point{X: offset, Y: offset}))
}

// unregister removes a closed window and releases everything tied to it.
// Runs synchronously inside the close notification.
func (c *Coordinator) unregister(e *entry) {
	if e.closed {
		return
	}
	e.closed = true
	close(e.done)

	for i, other := range c.windows {
		if other == e {
			c.windows = append(c.windows[:i], c.windows[i+1:]...)
			c.log.Debug("close window %d", i)
			break
		}
	}

	for _, sub := range e.subs {
		_ = c.bus.Unsubscribe(sub)
	}
	e.subs = nil
	e.pending = nil
	if e.cancel != nil {
		e.cancel()
	}

	if len(c.windows) == 0 && !c.stopped {
		c.stopped = true
		c.log.Info("last window closed")
		if c.quit != nil {
			c.quit()
		}
	}
}

// run applies op now, or queues it behind operations still waiting for the
// window to become ready.
func (c *Coordinator) run(e *entry, op func(window.Window)) {
	if e.waiting {
		e.pending = append(e.pending, op)
		return
	}
	op(e.win)
}

// whenReady queues op until the window reports it can accept tabs. A window
// that is already ready runs op immediately.
func (c *Coordinator) whenReady(e *entry, op func(window.Window)) {
	e.pending = append(e.pending, op)
	if e.waiting {
		return
	}
	e.waiting = true

	ready := e.win.Ready()
	if ready == nil {
		e.cancel = c.sched.AfterFunc(c.config.RestoreDelay, func() { c.flush(e) })
		return
	}

	select {
	case <-ready:
		c.flush(e)
	default:
		go c.awaitReady(e, ready, c.config.ReadyTimeout)
	}
}

func (c *Coordinator) awaitReady(e *entry, ready <-chan struct{}, timeout time.Duration) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-ready:
		c.sched.Post(func() { c.flush(e) })
	case <-expired:
		c.sched.Post(func() {
			if !e.closed {
				c.log.Warn("window %s not ready after %s, populating anyway", e.win.ID(), timeout)
			}
			c.flush(e)
		})
	case <-e.done:
	}
}

// flush runs the operations queued for a window in order.
func (c *Coordinator) flush(e *entry) {
	if e.closed || !e.waiting {
		return
	}
	e.waiting = false
	ops := e.pending
	e.pending = nil

	for _, op := range ops {
		if e.closed || c.stopped {
			return
		}
		op(e.win)
	}
}
