// Package main is the entry point for stormwin.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/stormwin/internal/app"
	"github.com/dshills/stormwin/internal/config"
	"github.com/dshills/stormwin/internal/instance"
	"github.com/dshills/stormwin/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// forwardTimeout bounds a request to a running instance.
const forwardTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
	newWindow  bool
	standalone bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "stormwin [files...]",
		Short: "Multi-window terminal editor shell",
		Long: "stormwin opens files as tabs of terminal windows. When an instance is already " +
			"running, files are handed to it and the command exits.",
		Example: "  stormwin                 Restore the last session\n" +
			"  stormwin main.go         Open a file in the shared window\n" +
			"  stormwin -n a.go b.go    Open each file in a window of its own",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, o, args)
		},
	}

	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVarP(&o.newWindow, "new-window", "n", false, "Open each file in a window of its own")
	cmd.Flags().BoolVar(&o.standalone, "standalone", false, "Do not forward to or accept requests from other invocations")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if o.logLevel != "" && !logging.ValidLevel(o.logLevel) {
			return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", o.logLevel)
		}
		return nil
	}

	cmd.AddCommand(newWindowsCmd(o), newThemeCmd(o))
	return cmd
}

func runRoot(cmd *cobra.Command, o *rootOptions, args []string) error {
	files := app.NormalizePaths(args)

	if !o.standalone {
		forwarded, err := forward(cmd.Context(), o, files)
		if err != nil {
			return err
		}
		if forwarded {
			return nil
		}
	}

	application, err := app.New(app.Options{
		ConfigPath: o.configPath,
		LogLevel:   o.logLevel,
		Files:      files,
		NewWindow:  o.newWindow,
		Standalone: o.standalone,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Shutdown()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		if _, ok := <-signals; ok {
			application.Shutdown()
		}
	}()

	if err := application.Run(context.Background()); err != nil && !errors.Is(err, app.ErrQuit) {
		return err
	}
	return nil
}

// forward hands files to a running instance. It reports false when no
// instance is listening.
func forward(ctx context.Context, o *rootOptions, files []string) (bool, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()

	client, err := instance.Dial(ctx, cfg.Paths.Socket)
	if errors.Is(err, instance.ErrNotRunning) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer client.Close()

	mode := instance.ModeTab
	if o.newWindow || cfg.Window.OpenMode == config.OpenModeWindow {
		mode = instance.ModeWindow
	}
	if err := client.Open(ctx, mode, files); err != nil {
		return false, fmt.Errorf("forwarding to running instance: %w", err)
	}
	return true, nil
}

func loadConfig(o *rootOptions) (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// dial connects to the running instance for subcommands.
func dial(ctx context.Context, o *rootOptions) (*instance.Client, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}
	client, err := instance.Dial(ctx, cfg.Paths.Socket)
	if errors.Is(err, instance.ErrNotRunning) {
		return nil, fmt.Errorf("stormwin is not running (socket %s)", cfg.Paths.Socket)
	}
	return client, err
}
