// Package config loads stormwin's settings.
//
// Settings are layered: built-in defaults, then the TOML config file, then
// STORMWIN_* environment variables. Each layer is a nested map merged over
// the one below it; the result is decoded into a typed Config and
// validated.
//
// Example config.toml:
//
//	[window]
//	openMode = "window"
//	cascadeStep = 40
//	readyTimeout = "1s"
//
//	[ui]
//	theme = "solarized"
//
// A Watcher reloads the file when it changes on disk.
package config
