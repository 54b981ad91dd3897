// Package coordinator decides, for every request to open files, whether to
// focus an already open tab, add a tab to an existing window, or create a new
// window, so that a path is open in at most one tab across all windows.
//
// A Coordinator owns the registry of live windows in creation order. It
// subscribes to each window's bus notifications for exactly as long as the
// window is registered: a closed window is removed synchronously, a theme
// change is re-broadcast to every window through the scheduler, and a "new
// window" request opens a blank window. When the last window closes the quit
// callback runs once and every later call returns ErrStopped.
//
// A Coordinator is not safe for concurrent use. All methods, and every
// function it hands to its Scheduler, must run on one goroutine, normally the
// application's event loop.
package coordinator
