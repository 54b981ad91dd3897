package coordinator

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/window"
)

func TestOpenInNewOrExistingWindow_NoPaths(t *testing.T) {
	h := newHarness(t, readyAtOnce)

	h.mustOpen(h.coord.OpenInNewOrExistingWindow(nil))

	if h.coord.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.coord.Len())
	}
	w := h.window(0)
	tabs := w.tabs.Tabs()
	if len(tabs) != 1 || !tabs[0].Blank {
		t.Errorf("tabs = %+v, want one blank tab", tabs)
	}
	if w.foreground != 1 {
		t.Errorf("foreground calls = %d, want 1", w.foreground)
	}
}

func TestOpenInNewOrExistingWindow_FocusesExistingTab(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/x.txt"}))
	w := h.window(0)
	w.AddTab("/y.txt")
	w.AddTab("/a.txt")
	w.ActivateTab(0)
	before := w.foreground

	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt"}))

	if h.coord.Len() != 1 {
		t.Fatalf("Len() = %d, a window was created for an open path", h.coord.Len())
	}
	if last := w.activated[len(w.activated)-1]; last != 2 {
		t.Errorf("activated tab %d, want 2", last)
	}
	if w.foreground != before+1 {
		t.Errorf("window was not brought to foreground")
	}
}

func TestOpenInNewOrExistingWindow_WindowPerPath(t *testing.T) {
	h := newHarness(t, readyAtOnce)

	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt", "/b.txt", "/a.txt"}))

	if h.coord.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.coord.Len())
	}
	if got := h.window(0).paths(); len(got) != 1 || got[0] != "/a.txt" {
		t.Errorf("window 0 tabs = %v", got)
	}
	if got := h.window(1).paths(); len(got) != 1 || got[0] != "/b.txt" {
		t.Errorf("window 1 tabs = %v", got)
	}
	h.assertUnique()
}

func TestOpenInTabOfSharedWindow_FunnelsIntoFirstWindow(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt"}))
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/c.txt"}))
	first := h.window(0)
	before := first.foreground

	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/b.txt"}))

	if h.coord.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.coord.Len())
	}
	if got := first.paths(); len(got) != 2 || got[1] != "/b.txt" {
		t.Errorf("first window tabs = %v, want [/a.txt /b.txt]", got)
	}
	if first.foreground != before+1 {
		t.Error("first window was not brought to foreground")
	}
	if got := h.window(1).paths(); len(got) != 1 {
		t.Errorf("second window changed: %v", got)
	}
}

func TestOpenInTabOfSharedWindow_FocusesExistingTab(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt"}))
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/b.txt"}))

	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/b.txt"}))

	second := h.window(1)
	if len(second.activated) == 0 || second.activated[len(second.activated)-1] != 0 {
		t.Errorf("activated = %v, want tab 0 of window 1", second.activated)
	}
	if got := h.window(0).paths(); len(got) != 1 {
		t.Errorf("path was funneled despite being open: %v", got)
	}
}

func TestOpenInTabOfSharedWindow_ColdStartRestoresSession(t *testing.T) {
	h := newHarness(t, readyLater, WithSessionStore(fakeStore{ids: []string{"untitled-1", "untitled-2"}}))

	h.mustOpen(h.coord.OpenInTabOfSharedWindow(nil))

	if h.coord.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.coord.Len())
	}
	w := h.window(0)
	if w.tabs.Len() != 0 {
		t.Fatalf("tabs added before the window was ready: %v", w.paths())
	}

	w.markReady()
	h.sched.waitAndRun(t)

	tabs := w.tabs.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("tabs = %+v, want 2 restored blank tabs", tabs)
	}
	for i, id := range []string{"untitled-1", "untitled-2"} {
		if !tabs[i].Blank || tabs[i].Path != "/data/blank-files/"+id {
			t.Errorf("tab %d = %+v, want blank tab for %s", i, tabs[i], id)
		}
	}
}

func TestOpenInTabOfSharedWindow_ColdStartEmptyStore(t *testing.T) {
	tests := []struct {
		name  string
		store SessionStore
	}{
		{"no store", nil},
		{"empty store", fakeStore{}},
		{"failing store", fakeStore{ids: []string{"x"}, err: errListing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, readyLater, WithSessionStore(tt.store))

			h.mustOpen(h.coord.OpenInTabOfSharedWindow(nil))

			tabs := h.window(0).tabs.Tabs()
			if len(tabs) != 1 || !tabs[0].Blank || tabs[0].Path != "" {
				t.Errorf("tabs = %+v, want one fresh blank tab", tabs)
			}
		})
	}
}

func TestOpenInTabOfSharedWindow_NoPathsWithWindows(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt"}))

	h.mustOpen(h.coord.OpenInTabOfSharedWindow(nil))

	if h.coord.Len() != 2 {
		t.Fatalf("Len() = %d, want a second window", h.coord.Len())
	}
	w := h.window(1)
	if tabs := w.tabs.Tabs(); len(tabs) != 1 || !tabs[0].Blank {
		t.Errorf("tabs = %+v, want one blank tab", tabs)
	}
	if w.foreground != 1 {
		t.Errorf("foreground calls = %d, want 1", w.foreground)
	}
}

func TestOpenInTabOfSharedWindow_ColdStartWithPaths(t *testing.T) {
	h := newHarness(t, readyLater)

	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/a.txt", "/b.txt", "/a.txt"}))

	if h.coord.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.coord.Len())
	}
	w := h.window(0)
	if want := testScreen.Bounds.CenterIn(w.bounds.Size()); w.moves[0] != want {
		t.Errorf("cold start window at %v, want centered %v", w.moves[0], want)
	}

	w.markReady()
	h.sched.waitAndRun(t)

	got := w.paths()
	if len(got) != 2 || got[0] != "/a.txt" || got[1] != "/b.txt" {
		t.Errorf("tabs = %v, want [/a.txt /b.txt]", got)
	}
	h.assertUnique()
}

func TestWhenReady_UnsupportedReadinessUsesDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RestoreDelay = 75 * time.Millisecond
	h := newHarness(t, readyUnsupported, WithConfig(cfg))

	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/a.txt"}))

	if len(h.sched.timers) != 1 || h.sched.timers[0].d != 75*time.Millisecond {
		t.Fatalf("timers = %+v, want one %s deferral", h.sched.timers, cfg.RestoreDelay)
	}
	if h.window(0).tabs.Len() != 0 {
		t.Fatal("tab added before deferral elapsed")
	}

	h.sched.fireTimers()
	h.sched.runPending()

	if got := h.window(0).paths(); len(got) != 1 || got[0] != "/a.txt" {
		t.Errorf("tabs = %v", got)
	}
}

func TestWhenReady_TimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadyTimeout = 10 * time.Millisecond
	h := newHarness(t, readyLater, WithConfig(cfg))

	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/a.txt"}))
	h.sched.waitAndRun(t)

	if got := h.window(0).paths(); len(got) != 1 || got[0] != "/a.txt" {
		t.Errorf("tabs = %v, want tab added after timeout", got)
	}
}

func TestWhenReady_QueuedFunnelKeepsRequestOrder(t *testing.T) {
	h := newHarness(t, readyLater)

	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/a.txt"}))
	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/b.txt"}))

	w := h.window(0)
	if w.tabs.Len() != 0 {
		t.Fatalf("funneled tab jumped the queue: %v", w.paths())
	}

	w.markReady()
	h.sched.waitAndRun(t)

	got := w.paths()
	if len(got) != 2 || got[0] != "/a.txt" || got[1] != "/b.txt" {
		t.Errorf("tabs = %v, want [/a.txt /b.txt]", got)
	}
}

func TestClose_LastWindowQuitsOnce(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt", "/b.txt"}))
	first, second := h.window(0), h.window(1)

	first.close()
	if h.coord.Len() != 1 || h.quits != 0 {
		t.Fatalf("after first close: Len() = %d, quits = %d", h.coord.Len(), h.quits)
	}
	if h.coord.Locate("/a.txt").Found() {
		t.Error("closed window is still searched")
	}

	second.close()
	second.close()
	if h.coord.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.coord.Len())
	}
	if h.quits != 1 {
		t.Errorf("quit called %d times, want 1", h.quits)
	}
	if !h.coord.Stopped() {
		t.Error("Stopped() = false after last window closed")
	}

	if err := h.coord.OpenInNewOrExistingWindow(nil); !errors.Is(err, ErrStopped) {
		t.Errorf("OpenInNewOrExistingWindow() error = %v, want ErrStopped", err)
	}
	if err := h.coord.OpenInTabOfSharedWindow([]string{"/c.txt"}); !errors.Is(err, ErrStopped) {
		t.Errorf("OpenInTabOfSharedWindow() error = %v, want ErrStopped", err)
	}
	if _, err := h.coord.CreateWindowFromExternalBuffer("x", "/x", &window.Buffer{}); !errors.Is(err, ErrStopped) {
		t.Errorf("CreateWindowFromExternalBuffer() error = %v, want ErrStopped", err)
	}
	if err := h.coord.ApplyTheme("light"); !errors.Is(err, ErrStopped) {
		t.Errorf("ApplyTheme() error = %v, want ErrStopped", err)
	}
	if len(h.created) != 2 {
		t.Errorf("windows created after stop: %d", len(h.created))
	}
}

func TestClose_ReleasesSubscriptions(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt", "/b.txt"}))

	if got := h.bus.Stats().ActiveSubscribers; got != 6 {
		t.Fatalf("ActiveSubscribers = %d, want 6", got)
	}

	h.window(0).close()

	if got := h.bus.Stats().ActiveSubscribers; got != 3 {
		t.Errorf("ActiveSubscribers = %d, want 3 after close", got)
	}
}

func TestClose_DropsQueuedOperations(t *testing.T) {
	h := newHarness(t, readyLater, WithQuit(func() {}))
	h.mustOpen(h.coord.OpenInTabOfSharedWindow([]string{"/a.txt"}))
	w := h.window(0)

	w.close()
	w.markReady()
	time.Sleep(20 * time.Millisecond)
	h.sched.runPending()

	if w.tabs.Len() != 0 {
		t.Errorf("queued open ran on a closed window: %v", w.paths())
	}
}

func TestPlacement(t *testing.T) {
	screen := StaticScreen{Bounds: geom.Rect{X: 1920, Y: 40, W: 1280, H: 1024}}
	h := newHarness(t, readyAtOnce)
	h.coord.screen = screen

	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/1", "/2", "/3", "/4"}))

	want := []geom.Point{
		screen.Bounds.CenterIn(geom.Size{W: 800, H: 600}),
		{X: 1920 + 50, Y: 40 + 50},
		{X: 1920 + 100, Y: 40 + 100},
		{X: 1920 + 150, Y: 40 + 150},
	}
	for i, p := range want {
		if got := h.window(i).moves[0]; got != p {
			t.Errorf("window %d placed at %v, want %v", i+1, got, p)
		}
	}

	h.mustOpen(h.coord.OpenInTabOfSharedWindow(nil))
	if got := h.window(4).moves[0]; got != (geom.Point{X: 1920 + 200, Y: 40 + 200}) {
		t.Errorf("fifth window placed at %v", got)
	}
}

func TestPlacement_CustomCascadeStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CascadeStep = 2
	h := newHarness(t, readyAtOnce, WithConfig(cfg))

	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/1", "/2", "/3"}))

	if got := h.window(2).moves[0]; got != (geom.Point{X: 4, Y: 4}) {
		t.Errorf("third window placed at %v, want (4,4)", got)
	}
}

func TestThemeChange_IsQueuedAndBroadcast(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt", "/b.txt"}))
	first, second := h.window(0), h.window(1)

	first.changeTheme("light")

	if second.theme == "light" {
		t.Fatal("theme applied re-entrantly inside the notification")
	}
	h.sched.runPending()
	if first.theme != "light" || second.theme != "light" {
		t.Errorf("themes = %q, %q, want light", first.theme, second.theme)
	}

	h.mustOpen(h.coord.OpenInNewOrExistingWindow(nil))
	if got := h.window(2).theme; got != "light" {
		t.Errorf("new window theme = %q, want light", got)
	}
}

func TestApplyTheme_Initial(t *testing.T) {
	h := newHarness(t, readyAtOnce, WithTheme("solarized"))
	h.mustOpen(h.coord.OpenInNewOrExistingWindow(nil))

	if got := h.window(0).theme; got != "solarized" {
		t.Errorf("theme = %q, want solarized", got)
	}
	h.mustOpen(h.coord.ApplyTheme("solarized"))
}

func TestNewWindowRequested(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt"}))

	h.window(0).requestNewWindow()

	if h.coord.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.coord.Len())
	}
	if tabs := h.window(1).tabs.Tabs(); len(tabs) != 1 || !tabs[0].Blank {
		t.Errorf("new window tabs = %+v", tabs)
	}

	// The new window's own request must only create one more window.
	h.window(1).requestNewWindow()
	if h.coord.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.coord.Len())
	}
}

func TestCreateWindowFromExternalBuffer(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	buf := &window.Buffer{Text: "package main", Modified: true}

	w, err := h.coord.CreateWindowFromExternalBuffer("main.go", "/src/main.go", buf)
	if err != nil {
		t.Fatalf("CreateWindowFromExternalBuffer() error = %v", err)
	}

	fw := w.(*fakeWindow)
	tab, _ := fw.tabs.Tab(0)
	if tab.Buffer != buf || tab.Label != "main.go" || tab.Path != "/src/main.go" {
		t.Errorf("tab = %+v", tab)
	}

	placed := fw.moves[0]
	want := testScreen.Cursor.Sub(placed)
	if got := fw.moves[len(fw.moves)-1]; got != want {
		t.Errorf("final position %v, want pointer minus top-left %v", got, want)
	}
	if h.coord.Locate("/src/main.go") != (window.Location{Window: 0, Tab: 0}) {
		t.Error("buffer tab not locatable")
	}
}

func TestCreateWindowFromExternalBuffer_PathAlreadyOpen(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt"}))
	first := h.window(0)
	raised := first.foreground

	w, err := h.coord.CreateWindowFromExternalBuffer("a.txt", "/a.txt", nil)
	if err != nil {
		t.Fatalf("CreateWindowFromExternalBuffer() error = %v", err)
	}

	if h.coord.Len() != 1 || w != window.Window(first) {
		t.Errorf("Len() = %d, returned %v; want the existing window", h.coord.Len(), w.ID())
	}
	if first.tabs.Len() != 1 || first.foreground != raised+1 {
		t.Errorf("tabs = %d, foreground = %d", first.tabs.Len(), first.foreground)
	}
	h.assertUnique()
}

func TestCreateWindowFromExternalBuffer_Untitled(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow(nil))

	if _, err := h.coord.CreateWindowFromExternalBuffer("Untitled 1", "", &window.Buffer{Text: "x"}); err != nil {
		t.Fatal(err)
	}

	if h.coord.Len() != 2 {
		t.Errorf("Len() = %d, want 2: empty paths never match an open tab", h.coord.Len())
	}
}

func TestLocate(t *testing.T) {
	h := newHarness(t, readyAtOnce)

	if loc := h.coord.Locate("/a.txt"); loc != window.NoLocation {
		t.Errorf("Locate() on empty registry = %+v", loc)
	}

	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt", "/b.txt"}))
	h.window(1).AddTab("/c.txt")

	tests := []struct {
		path string
		want window.Location
	}{
		{"/a.txt", window.Location{Window: 0, Tab: 0}},
		{"/c.txt", window.Location{Window: 1, Tab: 1}},
		{"/missing", window.NoLocation},
	}
	for _, tt := range tests {
		if got := h.coord.Locate(tt.path); got != tt.want {
			t.Errorf("Locate(%s) = %+v, want %+v", tt.path, got, tt.want)
		}
	}
}

func TestDedupInvariant_MixedRequests(t *testing.T) {
	h := newHarness(t, readyLater)

	steps := []struct {
		shared bool
		paths  []string
	}{
		{true, []string{"/a", "/b", "/a"}},
		{true, []string{"/b", "/c"}},
		{false, []string{"/c", "/d"}},
		{true, nil},
		{false, []string{"/a", "/e", "/e"}},
		{true, []string{"/e", "/f", "/d"}},
	}

	for i, step := range steps {
		var err error
		if step.shared {
			err = h.coord.OpenInTabOfSharedWindow(step.paths)
		} else {
			err = h.coord.OpenInNewOrExistingWindow(step.paths)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if i == 0 {
			h.window(0).markReady()
			h.sched.waitAndRun(t)
		}
		h.assertUnique()
	}

	for _, p := range []string{"/a", "/b", "/c", "/d", "/e", "/f"} {
		if !h.coord.Locate(p).Found() {
			t.Errorf("%s is not open anywhere", p)
		}
	}
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t, readyAtOnce)
	h.mustOpen(h.coord.OpenInNewOrExistingWindow([]string{"/a.txt", "/b.txt"}))

	snap := h.coord.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() len = %d", len(snap))
	}
	if snap[0].ID != h.window(0).id || snap[1].Tabs[0].Path != "/b.txt" {
		t.Errorf("Snapshot() = %+v", snap)
	}
}
