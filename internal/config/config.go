package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/stormwin/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "STORMWIN_"

// OpenMode selects how paths given to a running instance are opened.
type OpenMode string

const (
	// OpenModeTab funnels paths into tabs of the first window.
	OpenModeTab OpenMode = "tab"
	// OpenModeWindow opens each path in a window of its own.
	OpenModeWindow OpenMode = "window"
)

// Config is the decoded settings.
type Config struct {
	Window  WindowConfig
	UI      UIConfig
	Paths   PathsConfig
	Logging LoggingConfig
	Hooks   HooksConfig

	// Source is the config file that was read, empty when there was none.
	Source string
}

// WindowConfig holds window placement and readiness settings.
type WindowConfig struct {
	OpenMode     OpenMode
	CascadeStep  int
	RestoreDelay time.Duration
	ReadyTimeout time.Duration
}

// UIConfig holds appearance settings.
type UIConfig struct {
	Theme string
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	// DataDir holds the blank-files directory.
	DataDir string
	// Socket is the unix socket of the running instance.
	Socket string
}

// LoggingConfig holds log settings. An empty File logs to stormwin.log in
// the data directory.
type LoggingConfig struct {
	Level string
	File  string
}

// HooksConfig names optional scripts.
type HooksConfig struct {
	// Script is a Lua file defining resolve(path).
	Script string
}

// Default returns the built-in settings.
func Default() *Config {
	cfg, err := decode(defaultLayer())
	if err != nil {
		panic("config: invalid defaults: " + err.Error())
	}
	return cfg
}

func defaultLayer() Layer {
	return Layer{
		"window": map[string]any{
			"openMode":     string(OpenModeTab),
			"cascadeStep":  int64(2),
			"restoreDelay": "50ms",
			"readyTimeout": "2s",
		},
		"ui": map[string]any{
			"theme": "dark",
		},
		"paths": map[string]any{
			"dataDir": DefaultDataDir(),
			"socket":  DefaultSocketPath(),
		},
		"logging": map[string]any{
			"level": "info",
			"file":  "",
		},
		"hooks": map[string]any{
			"script": "",
		},
	}
}

// DefaultPath returns the default config file location, or "" when the
// user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "stormwin", "config.toml")
}

// DefaultDataDir returns $XDG_DATA_HOME/stormwin, falling back to
// ~/.local/share/stormwin.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "stormwin")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "stormwin")
	}
	return filepath.Join(os.TempDir(), "stormwin")
}

// DefaultSocketPath returns $XDG_RUNTIME_DIR/stormwin.sock, falling back to
// a per-user name in the temp directory.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "stormwin.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("stormwin-%d.sock", os.Getuid()))
}

// Loader builds a Config from defaults, a TOML file and the environment.
type Loader struct {
	// Path is the config file. Empty skips the file layer.
	Path string

	// FS reads Path. Nil uses the real file system.
	FS FileSystem

	// Environ lists environment variables. Nil uses os.Environ.
	Environ func() []string
}

// Load reads the config file at path and the environment.
func Load(path string) (*Config, error) {
	return Loader{Path: path}.Load()
}

// Load merges every layer and decodes the result.
func (l Loader) Load() (*Config, error) {
	fsys := l.FS
	if fsys == nil {
		fsys = OSFS{}
	}
	file, err := NewTOMLLoaderWithFS(fsys, l.Path).Load()
	if err != nil {
		return nil, err
	}

	env := NewEnvLoader(EnvPrefix)
	if l.Environ != nil {
		env.environ = l.Environ
	}
	envLayer, err := env.Load()
	if err != nil {
		return nil, err
	}

	merged := DeepMerge(defaultLayer(), file)
	merged = DeepMerge(merged, envLayer)

	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}
	if file != nil {
		cfg.Source = l.Path
	}
	return cfg, nil
}

// decode converts a merged layer into a validated Config.
func decode(layer Layer) (*Config, error) {
	d := decoder{layer: layer}
	cfg := &Config{
		Window: WindowConfig{
			OpenMode:     OpenMode(d.str("window.openMode")),
			CascadeStep:  d.integer("window.cascadeStep"),
			RestoreDelay: d.duration("window.restoreDelay"),
			ReadyTimeout: d.duration("window.readyTimeout"),
		},
		UI: UIConfig{
			Theme: d.str("ui.theme"),
		},
		Paths: PathsConfig{
			DataDir: expandHome(d.str("paths.dataDir")),
			Socket:  expandHome(d.str("paths.socket")),
		},
		Logging: LoggingConfig{
			Level: strings.ToLower(d.str("logging.level")),
			File:  expandHome(d.str("logging.file")),
		},
		Hooks: HooksConfig{
			Script: expandHome(d.str("hooks.script")),
		},
	}
	if len(d.errs) > 0 {
		return nil, errors.Join(d.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting against its domain.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(key string, value any) {
		errs = append(errs, &SettingError{Key: key, Value: value, Err: ErrInvalidValue})
	}

	switch c.Window.OpenMode {
	case OpenModeTab, OpenModeWindow:
	default:
		invalid("window.openMode", c.Window.OpenMode)
	}
	if c.Window.CascadeStep < 0 {
		invalid("window.cascadeStep", c.Window.CascadeStep)
	}
	if c.Window.RestoreDelay < 0 {
		invalid("window.restoreDelay", c.Window.RestoreDelay)
	}
	if c.Window.ReadyTimeout < 0 {
		invalid("window.readyTimeout", c.Window.ReadyTimeout)
	}
	if c.UI.Theme == "" {
		invalid("ui.theme", c.UI.Theme)
	}
	if c.Paths.DataDir == "" {
		invalid("paths.dataDir", c.Paths.DataDir)
	}
	if c.Paths.Socket == "" {
		invalid("paths.socket", c.Paths.Socket)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		invalid("logging.level", c.Logging.Level)
	}
	return errors.Join(errs...)
}

// decoder reads typed values from a layer and collects type errors.
type decoder struct {
	layer Layer
	errs  []error
}

func (d *decoder) fail(key string, value any, err error) {
	d.errs = append(d.errs, &SettingError{Key: key, Value: value, Err: err})
}

func (d *decoder) str(key string) string {
	v, _ := getByKey(d.layer, key)
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case int64, bool:
		return fmt.Sprint(s)
	default:
		d.fail(key, v, ErrTypeMismatch)
		return ""
	}
}

func (d *decoder) integer(key string) int {
	v, _ := getByKey(d.layer, key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	d.fail(key, v, ErrTypeMismatch)
	return 0
}

// duration accepts Go duration strings and integer milliseconds.
func (d *decoder) duration(key string) time.Duration {
	v, _ := getByKey(d.layer, key)
	switch x := v.(type) {
	case string:
		dur, err := time.ParseDuration(x)
		if err != nil {
			d.fail(key, v, err)
			return 0
		}
		return dur
	case int64:
		return time.Duration(x) * time.Millisecond
	}
	d.fail(key, v, ErrTypeMismatch)
	return 0
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
