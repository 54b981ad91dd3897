package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

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

// LogFileName is the log written inside the data directory when
// logging.file is not set.
const LogFileName = "stormwin.log"

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
	subs      []event.Subscription
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 10),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogger,
		b.initEventBus,
		b.initLoop,
		b.initStore,
		b.initHook,
		b.initDesktop,
		b.initCoordinator,
		b.initServer,
		b.initWatcher,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	path := b.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Loader{Path: path, Environ: b.opts.Environ}.Load()
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if b.opts.LogLevel != "" {
		if !logging.ValidLevel(b.opts.LogLevel) {
			return &InitError{Component: "config", Err: fmt.Errorf("unknown log level %q", b.opts.LogLevel)}
		}
		cfg.Logging.Level = b.opts.LogLevel
	}

	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogger opens the log file. The terminal belongs to the desktop, so
// logs never go to stderr.
func (b *bootstrapper) initLogger() error {
	cfg := b.app.config
	path := cfg.Logging.File
	if path == "" {
		path = filepath.Join(cfg.Paths.DataDir, LogFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}

	b.app.logFile = f
	b.app.log = logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: f,
		Prefix: "stormwin",
	})
	b.initOrder = append(b.initOrder, "logger")

	if cfg.Source != "" {
		b.app.log.Info("config loaded from %s", cfg.Source)
	}
	return nil
}

func (b *bootstrapper) initEventBus() error {
	log := b.app.log.WithComponent("event")
	b.app.bus = event.NewBus(event.WithPanicHandler(func(ev any, recovered any, stack []byte) {
		log.Error("handler panic on %T: %v\n%s", ev, recovered, stack)
	}))
	b.initOrder = append(b.initOrder, "eventBus")
	return nil
}

func (b *bootstrapper) initLoop() error {
	log := b.app.log.WithComponent("loop")
	b.app.loop = loop.New(loop.WithPanicHandler(func(recovered any) {
		log.Error("panic: %v\n%s", recovered, debug.Stack())
	}))
	b.initOrder = append(b.initOrder, "loop")
	return nil
}

func (b *bootstrapper) initStore() error {
	store, err := blankstore.OpenInDataDir(b.app.config.Paths.DataDir)
	if err != nil {
		return &InitError{Component: "blank store", Err: err}
	}
	b.app.store = store
	b.initOrder = append(b.initOrder, "store")
	b.app.log.Debug("blank files in %s", store.Dir())
	return nil
}

func (b *bootstrapper) initHook() error {
	script := b.app.config.Hooks.Script
	if script == "" {
		return nil
	}
	r, err := hook.Load(script, hook.WithLogger(b.app.log.WithComponent("hook")))
	if err != nil {
		return &InitError{Component: "hook", Err: err}
	}
	b.app.hook = r
	b.initOrder = append(b.initOrder, "hook")
	return nil
}

func (b *bootstrapper) initDesktop() error {
	screen := b.opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return &InitError{Component: "desktop", Err: err}
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return &InitError{Component: "desktop", Err: err}
	}
	screen.EnableMouse()

	b.app.screen = screen
	b.app.desktop = desktop.New(screen, b.app.bus, b.app.loop,
		desktop.WithLogger(b.app.log.WithComponent("desktop")))
	b.app.desktop.SetDefaultTheme(b.app.config.UI.Theme)
	b.initOrder = append(b.initOrder, "desktop")
	return nil
}

func (b *bootstrapper) initCoordinator() error {
	cfg := b.app.config
	b.app.coord = coordinator.New(
		b.app.desktop.NewWindow,
		b.app.desktop,
		b.app.bus,
		b.app.loop,
		coordinator.WithConfig(coordinator.Config{
			CascadeStep:  cfg.Window.CascadeStep,
			RestoreDelay: cfg.Window.RestoreDelay,
			ReadyTimeout: cfg.Window.ReadyTimeout,
		}),
		coordinator.WithLogger(b.app.log.WithComponent("coordinator")),
		coordinator.WithSessionStore(b.app.store),
		coordinator.WithQuit(b.app.onQuit),
		coordinator.WithTheme(cfg.UI.Theme),
	)

	b.initOrder = append(b.initOrder, "coordinator")

	handlers := []struct {
		topic event.Topic
		h     event.Handler
	}{
		{window.TopicTabClosed, event.Typed(b.app.onTabClosed)},
		{window.TopicTabDetached, event.Typed(b.app.onTabDetached)},
		{window.TopicClosing, event.Typed(b.app.onWindowClosing)},
	}
	for _, hd := range handlers {
		sub, err := b.app.bus.Subscribe(hd.topic, hd.h)
		if err != nil {
			return &InitError{Component: "coordinator", Err: err}
		}
		b.subs = append(b.subs, sub)
	}

	trace := b.app.log.WithComponent("window")
	sub, err := b.app.bus.SubscribeFunc(window.TopicAll, func(_ context.Context, ev any) error {
		trace.Debug("%T %+v", ev, ev)
		return nil
	}, event.WithPriority(event.PriorityLow))
	if err != nil {
		return &InitError{Component: "coordinator", Err: err}
	}
	b.subs = append(b.subs, sub)
	return nil
}

func (b *bootstrapper) initServer() error {
	if b.opts.Standalone {
		return nil
	}
	srv, err := instance.Listen(b.app.config.Paths.Socket, remoteHandler{app: b.app},
		instance.WithLogger(b.app.log.WithComponent("instance")))
	if err != nil {
		return &InitError{Component: "instance server", Err: err}
	}
	b.app.server = srv
	b.initOrder = append(b.initOrder, "server")
	b.app.log.Info("listening on %s", srv.Path())
	return nil
}

// initWatcher starts the config watcher. Failing to watch is not fatal.
func (b *bootstrapper) initWatcher() error {
	source := b.app.config.Source
	if source == "" {
		return nil
	}
	log := b.app.log.WithComponent("config")
	w, err := config.NewWatcher(
		config.Loader{Path: source, Environ: b.opts.Environ},
		func(cfg *config.Config) {
			b.app.loop.Post(func() { b.app.onConfigChange(cfg) })
		},
		config.WithWatcherLogger(log),
		config.WithErrorHandler(func(err error) {
			log.Warn("reload %s: %v", source, err)
		}),
	)
	if err != nil {
		log.Warn("not watching %s: %v", source, err)
		return nil
	}
	b.app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

// cleanup releases components in reverse initialization order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
	b.initOrder = b.initOrder[:0]
}

func (b *bootstrapper) cleanupComponent(component string) {
	app := b.app
	switch component {
	case "watcher":
		_ = app.watcher.Close()
	case "server":
		if err := app.server.Close(); err != nil {
			app.log.Warn("closing instance server: %v", err)
		}
	case "coordinator":
		for _, sub := range b.subs {
			_ = app.bus.Unsubscribe(sub)
		}
		b.subs = nil
		app.log.Debug("event bus: %+v", app.bus.Stats())
	case "desktop":
		app.screen.Fini()
	case "hook":
		app.hook.Close()
	case "loop":
		app.loop.Stop()
	case "logger":
		app.log.Info("shutdown")
		_ = app.logFile.Close()
	}
}
