package desktop

import (
	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/window"
)

const (
	minFrameW = 20
	minFrameH = 6
)

// Frame is an editor window drawn on the desktop.
type Frame struct {
	d      *Desktop
	id     string
	tabs   *window.TabSet
	bounds geom.Rect
	theme  string
	ready  chan struct{}
	drawn  bool
	closed bool
}

// ID implements window.Window.
func (f *Frame) ID() string { return f.id }

// AddTab implements window.Window.
func (f *Frame) AddTab(path string) {
	f.tabs.Add(path)
	f.d.invalidate()
}

// AddBlankTab implements window.Window.
func (f *Frame) AddBlankTab(path string) {
	f.tabs.AddBlank(path)
	f.d.invalidate()
}

// AddTabWithBuffer implements window.Window.
func (f *Frame) AddTabWithBuffer(buf *window.Buffer, path, label string) {
	f.tabs.AddBuffer(buf, path, label)
	f.d.invalidate()
}

// LocateTab implements window.Window.
func (f *Frame) LocateTab(path string) int {
	return f.tabs.Locate(path)
}

// ActivateTab implements window.Window.
func (f *Frame) ActivateTab(index int) {
	if f.tabs.Activate(index) {
		f.d.invalidate()
	}
}

// BringToForeground implements window.Window.
func (f *Frame) BringToForeground() {
	f.d.raise(f)
}

// SetTheme implements window.Window.
func (f *Frame) SetTheme(name string) {
	if _, ok := LookupTheme(name); !ok {
		f.d.log.Warn("unknown theme %q, using %s", name, DefaultTheme)
		name = DefaultTheme
	}
	f.theme = name
	f.d.theme = name
	f.d.invalidate()
}

// Bounds implements window.Window.
func (f *Frame) Bounds() geom.Rect { return f.bounds }

// Move implements window.Window.
func (f *Frame) Move(p geom.Point) {
	f.bounds.X, f.bounds.Y = p.X, p.Y
	f.d.invalidate()
}

// Ready implements window.Window.
func (f *Frame) Ready() <-chan struct{} { return f.ready }

// Info implements window.Window.
func (f *Frame) Info() window.Info {
	return window.Info{
		ID:     f.id,
		Bounds: f.bounds,
		Theme:  f.theme,
		Tabs:   f.tabs.Info(),
	}
}

// Theme returns the frame's theme name.
func (f *Frame) Theme() string { return f.theme }

// Tabs returns the frame's tab set.
func (f *Frame) Tabs() *window.TabSet { return f.tabs }

// Close publishes window.Closing with the remaining tabs, removes the frame
// from the desktop and publishes window.Closed.
func (f *Frame) Close() {
	if f.closed {
		return
	}
	f.closed = true
	f.d.publish(window.Closing{WindowID: f.id, Tabs: f.tabs.Tabs()})
	f.d.remove(f)
	f.d.log.Debug("frame %s closed", f.id)
	f.d.publish(window.Closed{WindowID: f.id})
}

// RequestNewWindow publishes window.NewWindowRequested.
func (f *Frame) RequestNewWindow() {
	f.d.publish(window.NewWindowRequested{WindowID: f.id})
}

// CycleTheme switches the frame to the next theme and publishes
// window.ThemeChanged.
func (f *Frame) CycleTheme() {
	f.SetTheme(NextTheme(f.theme))
	f.d.publish(window.ThemeChanged{WindowID: f.id, Theme: f.theme})
}

// CloseActiveTab closes the active tab and publishes window.TabClosed.
// Closing the last tab closes the frame.
func (f *Frame) CloseActiveTab() {
	tab, ok := f.tabs.Tab(f.tabs.Active())
	if !ok {
		return
	}
	f.tabs.Close(f.tabs.Active())
	f.d.publish(window.TabClosed{WindowID: f.id, Path: tab.Path, Blank: tab.Blank})
	if f.tabs.Len() == 0 {
		f.Close()
		return
	}
	f.d.invalidate()
}

// DetachActiveTab removes the active tab and publishes window.TabDetached so
// it can reopen in a window of its own. A frame's only tab stays put.
func (f *Frame) DetachActiveTab() bool {
	if f.tabs.Len() < 2 {
		return false
	}
	tab, _ := f.tabs.Tab(f.tabs.Active())
	f.tabs.Close(f.tabs.Active())
	f.d.invalidate()
	f.d.publish(window.TabDetached{WindowID: f.id, Label: tab.Label, Path: tab.Path, Buffer: tab.Buffer})
	return true
}

func (f *Frame) markDrawn() {
	if !f.drawn {
		f.drawn = true
		close(f.ready)
	}
}
