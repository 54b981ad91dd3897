// Package desktop hosts editor windows as frames on a single terminal
// screen.
//
// Desktop builds frames for the coordinator (NewWindow is a
// coordinator.Factory) and answers its placement questions (Desktop is a
// coordinator.Screen). Frames implement window.Window and publish their
// notifications on the event bus.
//
// Key bindings act on the foreground frame:
//
//	Ctrl-N     request a new window
//	Ctrl-W     close the window
//	Ctrl-T     switch to the next theme
//	Tab        next tab
//	Shift-Tab  previous tab
//	Ctrl-X     close the active tab
//	Ctrl-D     move the active tab into a window of its own
//	Ctrl-Q     close every window
//
// Clicking a frame raises it; clicking a tab label activates the tab.
//
// Everything except Pump runs on the event loop goroutine.
package desktop
