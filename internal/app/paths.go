package app

import (
	"path/filepath"
)

// NormalizePaths makes paths absolute and clean. Paths that cannot be made
// absolute are cleaned and kept.
func NormalizePaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}

// resolvePaths normalizes paths and passes each through the resolve hook.
func (app *Application) resolvePaths(paths []string) []string {
	paths = NormalizePaths(paths)
	for i, p := range paths {
		paths[i] = app.hook.Resolve(p)
	}
	return paths
}
