package desktop

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormwin/internal/event"
	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/logging"
	"github.com/dshills/stormwin/internal/window"
)

// Poster runs functions on the event loop goroutine.
type Poster interface {
	Post(fn func()) bool
}

// Desktop owns the terminal screen and the frames drawn on it.
type Desktop struct {
	screen tcell.Screen
	bus    event.Bus
	post   Poster
	log    *logging.Logger

	// frames is the z-order, bottom first.
	frames    []*Frame
	pointer   geom.Point
	frameSize geom.Size
	theme     string
	dirty     bool
}

// Option configures a Desktop.
type Option func(*Desktop)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Desktop) {
		if l != nil {
			d.log = l
		}
	}
}

// WithFrameSize fixes the size of new frames. By default frames take two
// thirds of the screen.
func WithFrameSize(s geom.Size) Option {
	return func(d *Desktop) {
		d.frameSize = s
	}
}

// New creates a desktop on an initialized screen. post schedules redraws.
func New(screen tcell.Screen, bus event.Bus, post Poster, opts ...Option) *Desktop {
	d := &Desktop{
		screen: screen,
		bus:    bus,
		post:   post,
		log:    logging.Null(),
		theme:  DefaultTheme,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewWindow creates a frame. It is unregistered with any coordinator and
// becomes ready after it is first drawn.
func (d *Desktop) NewWindow() window.Window {
	size := d.newFrameSize()
	f := &Frame{
		d:      d,
		id:     window.NewID(),
		tabs:   window.NewTabSet(),
		theme:  d.theme,
		ready:  make(chan struct{}),
		bounds: geom.Rect{W: size.W, H: size.H},
	}
	d.frames = append(d.frames, f)
	d.log.Debug("frame %s created", f.id)
	d.invalidate()
	return f
}

func (d *Desktop) newFrameSize() geom.Size {
	if d.frameSize.W > 0 && d.frameSize.H > 0 {
		return d.frameSize
	}
	w, h := d.screen.Size()
	return geom.Size{W: max(w*2/3, minFrameW), H: max((h-1)*2/3, minFrameH)}
}

// Pointer returns the last mouse position seen.
func (d *Desktop) Pointer() geom.Point {
	return d.pointer
}

// ScreenAt returns the area frames may occupy: the whole terminal except
// the status line. A terminal has a single screen.
func (d *Desktop) ScreenAt(geom.Point) geom.Rect {
	w, h := d.screen.Size()
	return geom.Rect{W: w, H: max(h-1, 0)}
}

// Frames returns the frames in z-order, bottom first.
func (d *Desktop) Frames() []*Frame {
	out := make([]*Frame, len(d.frames))
	copy(out, d.frames)
	return out
}

// Foreground returns the top frame, or nil.
func (d *Desktop) Foreground() *Frame {
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

// SetDefaultTheme sets the theme of the desktop background and of frames
// created from now on.
func (d *Desktop) SetDefaultTheme(name string) {
	d.theme = name
	d.invalidate()
}

// CloseAll closes every frame, top first.
func (d *Desktop) CloseAll() {
	for len(d.frames) > 0 {
		d.frames[len(d.frames)-1].Close()
	}
}

// Pump reads terminal events until the screen is finalized, handing each to
// the event loop. It runs on its own goroutine.
func (d *Desktop) Pump() {
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return
		}
		if !d.post.Post(func() { d.HandleEvent(ev) }) {
			return
		}
	}
}

// invalidate schedules one redraw for any number of changes.
func (d *Desktop) invalidate() {
	if d.dirty || d.post == nil {
		return
	}
	d.dirty = true
	d.post.Post(d.Draw)
}

func (d *Desktop) raise(f *Frame) {
	i := d.index(f)
	if i < 0 || i == len(d.frames)-1 {
		return
	}
	d.frames = append(d.frames[:i], d.frames[i+1:]...)
	d.frames = append(d.frames, f)
	d.invalidate()
}

func (d *Desktop) remove(f *Frame) bool {
	i := d.index(f)
	if i < 0 {
		return false
	}
	d.frames = append(d.frames[:i], d.frames[i+1:]...)
	d.invalidate()
	return true
}

func (d *Desktop) index(f *Frame) int {
	for i, other := range d.frames {
		if other == f {
			return i
		}
	}
	return -1
}

func (d *Desktop) publish(ev any) {
	if err := d.bus.Publish(context.Background(), ev); err != nil {
		d.log.Warn("publishing %T: %v", ev, err)
	}
}

// frameAt returns the topmost frame containing p.
func (d *Desktop) frameAt(p geom.Point) *Frame {
	for i := len(d.frames) - 1; i >= 0; i-- {
		if d.frames[i].bounds.Contains(p) {
			return d.frames[i]
		}
	}
	return nil
}

func (d *Desktop) status() string {
	return fmt.Sprintf(" stormwin  %d window(s)  theme %s  ^N new  ^W close  ^T theme  ^X close tab  ^Q quit", len(d.frames), d.theme)
}
