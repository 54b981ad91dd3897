// Package window defines the window collaborator the coordinator drives: the
// Window interface, the notifications windows publish on the event bus, and
// TabSet, the ordered tab model window implementations build on.
package window

import (
	"github.com/google/uuid"

	"github.com/dshills/stormwin/internal/geom"
)

// NotFound is the tab or window position reported when a path is not open.
const NotFound = -1

// Window is a top-level editor window holding an ordered set of tabs.
//
// Implementations publish Closed, NewWindowRequested and ThemeChanged on the
// event bus, tagged with their ID. Methods are called from the event loop
// goroutine only.
type Window interface {
	// ID returns the window's unique identifier.
	ID() string

	// AddTab opens path in a new tab and activates it.
	AddTab(path string)

	// AddBlankTab adds an untitled tab. A non-empty path names the blank-file
	// store entry backing the tab.
	AddBlankTab(path string)

	// AddTabWithBuffer adds a tab whose content comes from buf instead of
	// being loaded from path.
	AddTabWithBuffer(buf *Buffer, path, label string)

	// LocateTab returns the position of the tab showing path, or NotFound.
	LocateTab(path string) int

	// ActivateTab makes the tab at index current.
	ActivateTab(index int)

	// BringToForeground raises and focuses the window.
	BringToForeground()

	// SetTheme applies a visual theme. It must not publish ThemeChanged.
	SetTheme(name string)

	// Bounds returns the window's position and size.
	Bounds() geom.Rect

	// Move places the window's top-left corner at p.
	Move(p geom.Point)

	// Ready is closed once the window can accept tabs. A nil channel means
	// the window cannot report readiness.
	Ready() <-chan struct{}

	// Info returns a read-only description of the window.
	Info() Info
}

// Location identifies a tab across all windows.
type Location struct {
	Window int
	Tab    int
}

// NoLocation is returned when a path is open nowhere.
var NoLocation = Location{Window: NotFound, Tab: NotFound}

// Found reports whether the location refers to an open tab.
func (l Location) Found() bool {
	return l.Window != NotFound && l.Tab != NotFound
}

// Buffer is in-memory document content handed between windows, for example
// when a tab is dragged out into a window of its own.
type Buffer struct {
	Text     string
	Modified bool
}

// Info describes a window for listings.
type Info struct {
	ID     string    `yaml:"id"     json:"id"`
	Bounds geom.Rect `yaml:"bounds" json:"bounds"`
	Theme  string    `yaml:"theme"  json:"theme"`
	Tabs   []TabInfo `yaml:"tabs"   json:"tabs"`
}

// TabInfo describes one tab.
type TabInfo struct {
	Label  string `yaml:"label"          json:"label"`
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	Blank  bool   `yaml:"blank,omitempty"  json:"blank,omitempty"`
	Active bool   `yaml:"active,omitempty" json:"active,omitempty"`
}

// NewID returns a fresh window identifier.
func NewID() string {
	return uuid.NewString()
}
