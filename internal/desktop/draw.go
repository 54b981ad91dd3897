package desktop

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/window"
)

// Draw renders every frame bottom to top, then the status line.
func (d *Desktop) Draw() {
	d.dirty = false
	bg := themeFor(d.theme)
	w, h := d.screen.Size()

	d.fill(geom.Rect{W: w, H: h}, bg.Desktop)
	for i, f := range d.frames {
		d.drawFrame(f, i == len(d.frames)-1)
		f.markDrawn()
	}
	d.fill(geom.Rect{Y: h - 1, W: w, H: 1}, bg.StatusLine)
	d.putString(0, h-1, w, d.status(), bg.StatusLine)
	d.screen.Show()
}

func (d *Desktop) drawFrame(f *Frame, focused bool) {
	t := themeFor(f.theme)
	r := f.bounds
	border := t.Border
	if focused {
		border = t.Focused
	}

	d.fill(r, t.Text)
	right, bottom := r.X+r.W-1, r.Y+r.H-1
	for x := r.X + 1; x < right; x++ {
		d.set(x, r.Y, tcell.RuneHLine, border)
		d.set(x, bottom, tcell.RuneHLine, border)
	}
	for y := r.Y + 1; y < bottom; y++ {
		d.set(r.X, y, tcell.RuneVLine, border)
		d.set(right, y, tcell.RuneVLine, border)
	}
	d.set(r.X, r.Y, tcell.RuneULCorner, border)
	d.set(right, r.Y, tcell.RuneURCorner, border)
	d.set(r.X, bottom, tcell.RuneLLCorner, border)
	d.set(right, bottom, tcell.RuneLRCorner, border)

	title := " stormwin "
	if tab, ok := f.tabs.Tab(f.tabs.Active()); ok {
		title = " " + tab.Label + " "
	}
	d.putString(r.X+2, r.Y, r.W-4, title, border)

	for _, span := range tabSpans(f) {
		style := t.Tab
		if span.index == f.tabs.Active() {
			style = t.ActiveTab
		}
		d.putString(span.x, r.Y+1, span.w, span.text, style)
	}

	tab, ok := f.tabs.Tab(f.tabs.Active())
	if !ok {
		return
	}
	for i, line := range body(tab) {
		y := r.Y + 2 + i
		if y >= bottom {
			break
		}
		d.putString(r.X+1, y, r.W-2, line, t.Text)
	}
}

// tabSpan is a tab label's position in the tab bar.
type tabSpan struct {
	index int
	x, w  int
	text  string
}

// tabSpans lays out tab labels left to right, clipped to the frame.
func tabSpans(f *Frame) []tabSpan {
	r := f.bounds
	limit := r.X + r.W - 1
	x := r.X + 1

	var spans []tabSpan
	for i, tab := range f.tabs.Tabs() {
		text := " " + tab.Label + " "
		w := len([]rune(text))
		if x >= limit {
			break
		}
		if x+w > limit {
			w = limit - x
		}
		spans = append(spans, tabSpan{index: i, x: x, w: w, text: text})
		x += w + 1
	}
	return spans
}

func body(tab window.Tab) []string {
	switch {
	case tab.Buffer != nil:
		return strings.Split(tab.Buffer.Text, "\n")
	case tab.Blank && tab.Path == "":
		return []string{"(new file)"}
	case tab.Blank:
		return []string{"(restored) " + tab.Path}
	default:
		return []string{tab.Path}
	}
}

func (d *Desktop) set(x, y int, r rune, style tcell.Style) {
	w, h := d.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	d.screen.SetContent(x, y, r, nil, style)
}

func (d *Desktop) fill(r geom.Rect, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			d.set(x, y, ' ', style)
		}
	}
}

// putString writes s from (x, y), clipped to width cells.
func (d *Desktop) putString(x, y, width int, s string, style tcell.Style) {
	for _, r := range s {
		if width <= 0 {
			return
		}
		d.set(x, y, r, style)
		x++
		width--
	}
}
