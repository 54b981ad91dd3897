package window

import (
	"path/filepath"
	"strconv"
)

// Tab is one entry in a TabSet.
type Tab struct {
	// Label is the text shown in the tab bar.
	Label string

	// Path is the file shown by the tab. For blank tabs it names the
	// blank-file store entry, or is empty for a fresh untitled buffer.
	Path string

	// Blank marks an untitled document.
	Blank bool

	// Buffer holds content supplied in memory, nil for tabs loaded from Path.
	Buffer *Buffer
}

// TabSet is an ordered list of tabs with one active tab.
// It is not safe for concurrent use.
type TabSet struct {
	tabs    []Tab
	active  int
	untitle int
}

// NewTabSet creates an empty tab set.
func NewTabSet() *TabSet {
	return &TabSet{active: NotFound}
}

// Len returns the number of tabs.
func (ts *TabSet) Len() int {
	return len(ts.tabs)
}

// Active returns the index of the active tab, or NotFound when empty.
func (ts *TabSet) Active() int {
	return ts.active
}

// Tab returns the tab at index.
func (ts *TabSet) Tab(index int) (Tab, bool) {
	if index < 0 || index >= len(ts.tabs) {
		return Tab{}, false
	}
	return ts.tabs[index], true
}

// Tabs returns a copy of the tabs in order.
func (ts *TabSet) Tabs() []Tab {
	out := make([]Tab, len(ts.tabs))
	copy(out, ts.tabs)
	return out
}

// Locate returns the index of the tab showing path, or NotFound.
// The empty path never matches.
func (ts *TabSet) Locate(path string) int {
	if path == "" {
		return NotFound
	}
	for i, t := range ts.tabs {
		if t.Path == path {
			return i
		}
	}
	return NotFound
}

// Add opens path in a new tab and activates it. A path that is already open
// is activated instead of being added twice.
func (ts *TabSet) Add(path string) int {
	if i := ts.Locate(path); i != NotFound {
		ts.active = i
		return i
	}
	return ts.push(Tab{Label: filepath.Base(path), Path: path})
}

// AddBlank appends an untitled tab and activates it.
func (ts *TabSet) AddBlank(path string) int {
	if i := ts.Locate(path); i != NotFound {
		ts.active = i
		return i
	}
	ts.untitle++
	label := "Untitled " + strconv.Itoa(ts.untitle)
	return ts.push(Tab{Label: label, Path: path, Blank: true})
}

// AddBuffer appends a tab populated from buf and activates it. An empty label
// falls back to the base name of path.
func (ts *TabSet) AddBuffer(buf *Buffer, path, label string) int {
	if label == "" {
		label = filepath.Base(path)
	}
	return ts.push(Tab{Label: label, Path: path, Blank: path == "", Buffer: buf})
}

// Activate makes index the active tab. Out of range indexes are ignored.
func (ts *TabSet) Activate(index int) bool {
	if index < 0 || index >= len(ts.tabs) {
		return false
	}
	ts.active = index
	return true
}

// Next activates the following tab, wrapping around.
func (ts *TabSet) Next() {
	if len(ts.tabs) > 0 {
		ts.active = (ts.active + 1) % len(ts.tabs)
	}
}

// Prev activates the preceding tab, wrapping around.
func (ts *TabSet) Prev() {
	if len(ts.tabs) > 0 {
		ts.active = (ts.active - 1 + len(ts.tabs)) % len(ts.tabs)
	}
}

// Close removes the tab at index. The tab to its left becomes active when
// the active tab is closed.
func (ts *TabSet) Close(index int) bool {
	if index < 0 || index >= len(ts.tabs) {
		return false
	}
	ts.tabs = append(ts.tabs[:index], ts.tabs[index+1:]...)

	switch {
	case len(ts.tabs) == 0:
		ts.active = NotFound
	case index < ts.active:
		ts.active--
	case index == ts.active && ts.active > 0:
		ts.active--
	}
	return true
}

// Info returns the tab descriptions for listings.
func (ts *TabSet) Info() []TabInfo {
	out := make([]TabInfo, len(ts.tabs))
	for i, t := range ts.tabs {
		out[i] = TabInfo{Label: t.Label, Path: t.Path, Blank: t.Blank, Active: i == ts.active}
	}
	return out
}

func (ts *TabSet) push(t Tab) int {
	ts.tabs = append(ts.tabs, t)
	ts.active = len(ts.tabs) - 1
	return ts.active
}
