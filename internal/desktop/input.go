package desktop

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormwin/internal/geom"
)

// HandleEvent applies a terminal event. It reports whether the event was
// used.
func (d *Desktop) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return d.handleKey(e)
	case *tcell.EventMouse:
		return d.handleMouse(e)
	case *tcell.EventResize:
		d.screen.Sync()
		d.invalidate()
		return true
	}
	return false
}

func (d *Desktop) handleKey(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyCtrlQ {
		d.CloseAll()
		return true
	}

	f := d.Foreground()
	if f == nil {
		return false
	}

	switch e.Key() {
	case tcell.KeyCtrlN:
		f.RequestNewWindow()
	case tcell.KeyCtrlW:
		f.Close()
	case tcell.KeyCtrlT:
		f.CycleTheme()
	case tcell.KeyCtrlX:
		f.CloseActiveTab()
	case tcell.KeyCtrlD:
		return f.DetachActiveTab()
	case tcell.KeyTab:
		f.tabs.Next()
		d.invalidate()
	case tcell.KeyBacktab:
		f.tabs.Prev()
		d.invalidate()
	default:
		return false
	}
	return true
}

func (d *Desktop) handleMouse(e *tcell.EventMouse) bool {
	x, y := e.Position()
	d.pointer = geom.Point{X: x, Y: y}

	if e.Buttons()&tcell.Button1 == 0 {
		return false
	}
	f := d.frameAt(d.pointer)
	if f == nil {
		return false
	}

	f.BringToForeground()
	if y == f.bounds.Y+1 {
		for _, span := range tabSpans(f) {
			if x >= span.x && x < span.x+span.w {
				f.ActivateTab(span.index)
				break
			}
		}
	}
	return true
}
