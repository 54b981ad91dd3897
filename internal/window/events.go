package window

import "github.com/dshills/stormwin/internal/event"

// Topics published by windows.
const (
	TopicClosed             event.Topic = "window.closed"
	TopicNewWindowRequested event.Topic = "window.new_requested"
	TopicThemeChanged       event.Topic = "window.theme_changed"
	TopicTabClosed          event.Topic = "window.tab_closed"
	TopicTabDetached        event.Topic = "window.tab_detached"
	TopicClosing            event.Topic = "window.closing"
	TopicAll                event.Topic = "window.*"
)

// Closed is published after a window has been closed by the user.
type Closed struct {
	WindowID string
}

// EventTopic implements event.TopicProvider.
func (Closed) EventTopic() event.Topic { return TopicClosed }

// NewWindowRequested is published when the user asks a window for a new
// window.
type NewWindowRequested struct {
	WindowID string
}

// EventTopic implements event.TopicProvider.
func (NewWindowRequested) EventTopic() event.Topic { return TopicNewWindowRequested }

// ThemeChanged is published when the user picks a theme in a window.
type ThemeChanged struct {
	WindowID string
	Theme    string
}

// EventTopic implements event.TopicProvider.
func (ThemeChanged) EventTopic() event.Topic { return TopicThemeChanged }

// TabClosed is published when the user closes a tab.
type TabClosed struct {
	WindowID string
	Path     string
	Blank    bool
}

// EventTopic implements event.TopicProvider.
func (TabClosed) EventTopic() event.Topic { return TopicTabClosed }

// TabDetached is published after a tab has been removed from its window so
// that it can be opened in a window of its own.
type TabDetached struct {
	WindowID string
	Label    string
	Path     string
	Buffer   *Buffer
}

// EventTopic implements event.TopicProvider.
func (TabDetached) EventTopic() event.Topic { return TopicTabDetached }

// Closing is published just before a window closes, with the tabs it still
// holds.
type Closing struct {
	WindowID string
	Tabs     []Tab
}

// EventTopic implements event.TopicProvider.
func (Closing) EventTopic() event.Topic { return TopicClosing }

// ForWindow returns a bus filter accepting only events tagged with id.
func ForWindow(id string) event.FilterFunc {
	return func(ev any) bool {
		switch e := ev.(type) {
		case Closed:
			return e.WindowID == id
		case NewWindowRequested:
			return e.WindowID == id
		case ThemeChanged:
			return e.WindowID == id
		case TabClosed:
			return e.WindowID == id
		case TabDetached:
			return e.WindowID == id
		case Closing:
			return e.WindowID == id
		}
		return false
	}
}
