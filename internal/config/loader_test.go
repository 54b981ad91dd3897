package config

import (
	"errors"
	"io/fs"
	"testing"
)

// memFS is an in-memory file system for testing.
type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func TestTOMLLoader_Load(t *testing.T) {
	fsys := memFS{"/config.toml": `
[window]
openMode = "window"
cascadeStep = 40

[ui]
theme = "light"
`}

	layer, err := NewTOMLLoaderWithFS(fsys, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	win, ok := layer["window"].(map[string]any)
	if !ok {
		t.Fatal("expected window to be a map")
	}
	if win["openMode"] != "window" {
		t.Errorf("openMode = %v", win["openMode"])
	}
	if win["cascadeStep"] != int64(40) {
		t.Errorf("cascadeStep = %v (%T), want 40", win["cascadeStep"], win["cascadeStep"])
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	layer, err := NewTOMLLoaderWithFS(memFS{}, "/none.toml").Load()
	if err != nil || layer != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", layer, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	fsys := memFS{"/bad.toml": "[window\nopenMode = 1\n"}

	_, err := NewTOMLLoaderWithFS(fsys, "/bad.toml").Load()

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q", perr.Path)
	}
	if perr.Line == 0 {
		t.Error("Line not set")
	}
}

func TestEnvLoader_Load(t *testing.T) {
	l := NewEnvLoader("STORMWIN_")
	l.environ = func() []string {
		return []string{
			"HOME=/home/user",
			"STORMWIN_THEME=solarized",
			"STORMWIN_WINDOW_CASCADE_STEP=30",
			"STORMWIN_WINDOW_READY_TIMEOUT=500ms",
			"STORMWIN_LOG_LEVEL=debug",
			"STORMWIN_BOGUS=1",
		}
	}

	layer, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"ui.theme", "solarized"},
		{"window.cascadeStep", int64(30)},
		{"window.readyTimeout", "500ms"},
		{"logging.level", "debug"},
	}
	for _, tt := range tests {
		got, ok := getByKey(layer, tt.key)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.key, got, got, tt.want)
		}
	}
	if _, ok := layer["home"]; ok {
		t.Error("unprefixed variable loaded")
	}
	if _, ok := layer["bogus"]; ok {
		t.Error("variable without a setting name loaded")
	}
}

func TestEnvToKey(t *testing.T) {
	l := NewEnvLoader("STORMWIN_")
	tests := []struct {
		env  string
		want string
	}{
		{"STORMWIN_WINDOW_OPEN_MODE", "window.openMode"},
		{"STORMWIN_HOOKS_SCRIPT", "hooks.script"},
		{"STORMWIN_PATHS_DATA_DIR", "paths.dataDir"},
		{"STORMWIN_UI", ""},
	}
	for _, tt := range tests {
		if got := l.envToKey(tt.env); got != tt.want {
			t.Errorf("envToKey(%s) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := Layer{
		"window": map[string]any{"openMode": "tab", "cascadeStep": int64(50)},
		"ui":     map[string]any{"theme": "dark"},
	}
	src := Layer{
		"window": map[string]any{"cascadeStep": int64(10)},
		"hooks":  map[string]any{"script": "/h.lua"},
	}

	got := DeepMerge(dst, src)

	if v, _ := getByKey(got, "window.openMode"); v != "tab" {
		t.Errorf("window.openMode = %v, want kept", v)
	}
	if v, _ := getByKey(got, "window.cascadeStep"); v != int64(10) {
		t.Errorf("window.cascadeStep = %v, want overridden", v)
	}
	if v, _ := getByKey(got, "hooks.script"); v != "/h.lua" {
		t.Errorf("hooks.script = %v, want added", v)
	}
	if v, _ := getByKey(got, "ui.theme"); v != "dark" {
		t.Errorf("ui.theme = %v", v)
	}
}
