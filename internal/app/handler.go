package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/stormwin/internal/desktop"
	"github.com/dshills/stormwin/internal/window"
)

// remoteHandler runs requests forwarded by other invocations on the event
// loop.
type remoteHandler struct {
	app *Application
}

func (h remoteHandler) Open(ctx context.Context, mode string, paths []string) error {
	var err error
	if callErr := h.app.loop.Call(ctx, func() { err = h.app.open(mode, paths) }); callErr != nil {
		return callErr
	}
	return err
}

func (h remoteHandler) SetTheme(ctx context.Context, name string) error {
	if _, ok := desktop.LookupTheme(name); !ok {
		return fmt.Errorf("unknown theme %q (have %s)", name, strings.Join(desktop.ThemeNames(), ", "))
	}
	var err error
	if callErr := h.app.loop.Call(ctx, func() {
		h.app.desktop.SetDefaultTheme(name)
		err = h.app.coord.ApplyTheme(name)
	}); callErr != nil {
		return callErr
	}
	return err
}

func (h remoteHandler) Windows(ctx context.Context) ([]window.Info, error) {
	var infos []window.Info
	if err := h.app.loop.Call(ctx, func() { infos = h.app.coord.Snapshot() }); err != nil {
		return nil, err
	}
	return infos, nil
}
