package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dshills/stormwin/internal/event"
	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/window"
)

type readiness int

const (
	readyAtOnce readiness = iota
	readyLater
	readyUnsupported
)

type fakeWindow struct {
	id         string
	bus        event.Bus
	tabs       *window.TabSet
	bounds     geom.Rect
	theme      string
	ready      chan struct{}
	foreground int
	activated  []int
	moves      []geom.Point
}

func newFakeWindow(bus event.Bus, mode readiness) *fakeWindow {
	w := &fakeWindow{
		id:     window.NewID(),
		bus:    bus,
		tabs:   window.NewTabSet(),
		bounds: geom.Rect{W: 800, H: 600},
	}
	switch mode {
	case readyAtOnce:
		w.ready = make(chan struct{})
		close(w.ready)
	case readyLater:
		w.ready = make(chan struct{})
	}
	return w
}

func (w *fakeWindow) ID() string                { return w.id }
func (w *fakeWindow) AddTab(path string)        { w.tabs.Add(path) }
func (w *fakeWindow) AddBlankTab(path string)   { w.tabs.AddBlank(path) }
func (w *fakeWindow) LocateTab(path string) int { return w.tabs.Locate(path) }
func (w *fakeWindow) BringToForeground()        { w.foreground++ }
func (w *fakeWindow) SetTheme(name string)      { w.theme = name }
func (w *fakeWindow) Bounds() geom.Rect         { return w.bounds }
func (w *fakeWindow) Ready() <-chan struct{}    { return w.ready }

func (w *fakeWindow) Info() window.Info {
	return window.Info{ID: w.id, Bounds: w.bounds, Theme: w.theme, Tabs: w.tabs.Info()}
}

func (w *fakeWindow) AddTabWithBuffer(buf *window.Buffer, path, label string) {
	w.tabs.AddBuffer(buf, path, label)
}

func (w *fakeWindow) ActivateTab(index int) {
	w.tabs.Activate(index)
	w.activated = append(w.activated, index)
}

func (w *fakeWindow) Move(p geom.Point) {
	w.bounds.X, w.bounds.Y = p.X, p.Y
	w.moves = append(w.moves, p)
}

func (w *fakeWindow) markReady() { close(w.ready) }

func (w *fakeWindow) close() {
	_ = w.bus.Publish(context.Background(), window.Closed{WindowID: w.id})
}

func (w *fakeWindow) requestNewWindow() {
	_ = w.bus.Publish(context.Background(), window.NewWindowRequested{WindowID: w.id})
}

func (w *fakeWindow) changeTheme(name string) {
	w.theme = name
	_ = w.bus.Publish(context.Background(), window.ThemeChanged{WindowID: w.id, Theme: name})
}

func (w *fakeWindow) paths() []string {
	var out []string
	for _, tab := range w.tabs.Tabs() {
		out = append(out, tab.Path)
	}
	return out
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

// fakeScheduler queues posted work until the test runs it.
type fakeScheduler struct {
	mu     sync.Mutex
	queue  []func()
	timers []*fakeTimer
	posted chan struct{}
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{posted: make(chan struct{}, 64)}
}

func (s *fakeScheduler) Post(fn func()) bool {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	select {
	case s.posted <- struct{}{}:
	default:
	}
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, timer)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		was := !timer.stopped
		timer.stopped = true
		return was
	}
}

// runPending runs queued work, including work queued while running.
func (s *fakeScheduler) runPending() int {
	n := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return n
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
		n++
	}
}

// waitAndRun blocks until something is posted, then runs the queue.
func (s *fakeScheduler) waitAndRun(t *testing.T) {
	t.Helper()
	select {
	case <-s.posted:
	case <-time.After(2 * time.Second):
		t.Fatal("nothing was scheduled")
	}
	s.runPending()
}

func (s *fakeScheduler) fireTimers() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, timer := range timers {
		if !timer.stopped {
			timer.stopped = true
			s.Post(timer.fn)
		}
	}
}

var testScreen = StaticScreen{
	Bounds: geom.Rect{W: 1920, H: 1080},
	Cursor: geom.Point{X: 100, Y: 100},
}

type harness struct {
	t       *testing.T
	bus     event.Bus
	sched   *fakeScheduler
	coord   *Coordinator
	created []*fakeWindow
	mode    readiness
	quits   int
}

func newHarness(t *testing.T, mode readiness, opts ...Option) *harness {
	h := &harness{t: t, bus: event.NewBus(), sched: newFakeScheduler(), mode: mode}
	factory := func() window.Window {
		w := newFakeWindow(h.bus, h.mode)
		h.created = append(h.created, w)
		return w
	}
	opts = append([]Option{WithQuit(func() { h.quits++ })}, opts...)
	h.coord = New(factory, testScreen, h.bus, h.sched, opts...)
	return h
}

// window returns the fake behind registry position i.
func (h *harness) window(i int) *fakeWindow {
	h.t.Helper()
	wins := h.coord.Windows()
	if i >= len(wins) {
		h.t.Fatalf("registry has %d windows, want index %d", len(wins), i)
	}
	return wins[i].(*fakeWindow)
}

func (h *harness) mustOpen(err error) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("open returned %v", err)
	}
}

// assertUnique fails if any path is open in more than one tab.
func (h *harness) assertUnique() {
	h.t.Helper()
	seen := make(map[string]string)
	for _, w := range h.coord.Windows() {
		fw := w.(*fakeWindow)
		for _, p := range fw.paths() {
			if p == "" {
				continue
			}
			if prev, ok := seen[p]; ok {
				h.t.Fatalf("path %s open twice (windows %s and %s)", p, prev, fw.id)
			}
			seen[p] = fw.id
		}
	}
}

type fakeStore struct {
	ids []string
	err error
}

func (s fakeStore) Entries() ([]string, error) { return s.ids, s.err }
func (s fakeStore) Path(id string) string      { return "/data/blank-files/" + id }

var errListing = errors.New("permission denied")
