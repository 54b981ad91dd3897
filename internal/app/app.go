// Package app wires the stormwin components together and runs the event
// loop that owns every window.
package app

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormwin/internal/blankstore"
	"github.com/dshills/stormwin/internal/config"
	"github.com/dshills/stormwin/internal/coordinator"
	"github.com/dshills/stormwin/internal/desktop"
	"github.com/dshills/stormwin/internal/event"
	"github.com/dshills/stormwin/internal/hook"
	"github.com/dshills/stormwin/internal/instance"
	"github.com/dshills/stormwin/internal/logging"
	"github.com/dshills/stormwin/internal/loop"
	"github.com/dshills/stormwin/internal/window"
)

// Application owns the components of one stormwin process.
type Application struct {
	opts Options

	config  *config.Config
	log     *logging.Logger
	logFile *os.File
	bus     event.Bus
	loop    *loop.Loop
	store   *blankstore.Store
	hook    *hook.Resolver
	screen  tcell.Screen
	desktop *desktop.Desktop
	coord   *coordinator.Coordinator
	server  *instance.Server
	watcher *config.Watcher

	running   atomic.Bool
	cleanOnce sync.Once
	cleanup   func()
}

// Options configures the application.
type Options struct {
	// ConfigPath is the config file. Empty uses config.DefaultPath.
	ConfigPath string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// Files are opened when Run starts.
	Files []string

	// NewWindow opens Files in windows of their own instead of following
	// window.openMode.
	NewWindow bool

	// Standalone skips the instance socket.
	Standalone bool

	// Screen is the terminal to draw on. Nil opens the real terminal.
	Screen tcell.Screen

	// Environ lists environment variables for config. Nil uses os.Environ.
	Environ func() []string
}

// New bootstraps every component. On failure, components already started
// are released before the error is returned.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	b := newBootstrapper(app, opts)
	if err := b.bootstrap(); err != nil {
		return nil, err
	}
	app.cleanup = b.cleanup
	return app, nil
}

// Config returns the settings the application started with.
func (app *Application) Config() *config.Config {
	return app.config
}

// SocketPath returns the instance socket, or "" when running standalone.
func (app *Application) SocketPath() string {
	if app.server == nil {
		return ""
	}
	return app.server.Path()
}

// Run opens the initial files and runs the event loop. It returns ErrQuit
// once the last window has closed, nil after Shutdown, or the context's
// error when ctx ends first. Components are released before Run returns.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.release()

	go app.desktop.Pump()
	if app.server != nil {
		go func() {
			if err := app.server.Serve(); err != nil {
				app.log.Error("instance server: %v", err)
			}
		}()
	}

	mode := instance.ModeTab
	if app.opts.NewWindow || app.config.Window.OpenMode == config.OpenModeWindow {
		mode = instance.ModeWindow
	}
	files := app.opts.Files
	app.loop.Post(func() {
		if err := app.open(mode, files); err != nil {
			app.log.Error("open %v: %v", files, err)
		}
	})

	// The coordinator is confined to the loop, which ran on this goroutine.
	err := app.loop.Run(ctx)
	if app.coord.Stopped() {
		return ErrQuit
	}
	return err
}

// Shutdown stops the event loop and releases every component. It is safe to
// call more than once and from any goroutine.
func (app *Application) Shutdown() {
	app.loop.Stop()
	if !app.running.Load() {
		app.release()
	}
}

// open funnels paths through the coordinator. It runs on the event loop.
func (app *Application) open(mode string, paths []string) error {
	paths = app.resolvePaths(paths)
	if mode == instance.ModeWindow {
		return app.coord.OpenInNewOrExistingWindow(paths)
	}
	return app.coord.OpenInTabOfSharedWindow(paths)
}

// onQuit runs on the event loop when the last window closes.
func (app *Application) onQuit() {
	app.log.Info("last window closed")
	app.loop.Stop()
}

// onTabClosed drops the stored blank buffer behind a closed tab.
func (app *Application) onTabClosed(_ context.Context, ev window.TabClosed) error {
	if !ev.Blank {
		return nil
	}
	id, ok := app.store.Lookup(ev.Path)
	if !ok {
		return nil
	}
	if err := app.store.Remove(id); err != nil {
		return err
	}
	app.log.Debug("removed blank file %s", id)
	return nil
}

// onTabDetached reopens a tab removed from its window in a window of its
// own.
func (app *Application) onTabDetached(_ context.Context, ev window.TabDetached) error {
	_, err := app.coord.CreateWindowFromExternalBuffer(ev.Label, ev.Path, ev.Buffer)
	return err
}

// onWindowClosing stores the untitled tabs of a closing window so the next
// cold start restores them. Tabs already backed by the store keep their entry.
func (app *Application) onWindowClosing(_ context.Context, ev window.Closing) error {
	var errs []error
	for _, tab := range ev.Tabs {
		if !tab.Blank || tab.Path != "" {
			continue
		}
		id, err := app.store.Create()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if tab.Buffer != nil {
			if err := app.store.Save(id, []byte(tab.Buffer.Text)); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		app.log.Debug("stored %s as %s", tab.Label, id)
	}
	return errors.Join(errs...)
}

// onConfigChange applies a reloaded config. It runs on the event loop.
func (app *Application) onConfigChange(cfg *config.Config) {
	app.log.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	if app.opts.LogLevel != "" {
		app.log.SetLevel(logging.ParseLevel(app.opts.LogLevel))
	}
	if cfg.UI.Theme == app.config.UI.Theme {
		return
	}
	app.config.UI.Theme = cfg.UI.Theme
	app.desktop.SetDefaultTheme(cfg.UI.Theme)
	if err := app.coord.ApplyTheme(cfg.UI.Theme); err != nil {
		app.log.Warn("apply theme %s: %v", cfg.UI.Theme, err)
		return
	}
	app.log.Info("theme changed to %s", cfg.UI.Theme)
}

func (app *Application) release() {
	app.cleanOnce.Do(func() {
		if app.cleanup != nil {
			app.cleanup()
		}
	})
}
