// Package preview opens a Gio window whose whole surface classifies touch
// and mouse input into gestures, showing the most recent ones.
package preview

import (
	"image"
	"image/color"
	"sync"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/esimov/gesture"
	"github.com/esimov/gesture/gioinput"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// maxHistory is the number of gestures listed in the window.
const maxHistory = 12

var (
	defaultBkgColor = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x24, A: 0xff}
	defaultFgColor  = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	accentColor     = color.NRGBA{R: 15, G: 139, B: 141, A: 0xff}
)

// Config holds the window settings.
type Config struct {
	Title         string
	Width, Height int
	// Options are passed to the Gesture bound to the window.
	Options []gesture.Option
}

// history is the list of recently published gestures. It is written by
// gesture callbacks, possibly from timer goroutines, and read while drawing.
type history struct {
	mu    sync.Mutex
	names []gesture.Name
}

func (h *history) push(n gesture.Name) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.names = append(h.names, n)
	if len(h.names) > maxHistory {
		h.names = h.names[len(h.names)-maxHistory:]
	}
}

func (h *history) snapshot() []gesture.Name {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]gesture.Name, len(h.names))
	copy(out, h.names)
	return out
}

// Run opens the preview window and blocks until it is closed.
// As with every Gio program, app.Main must run on the main goroutine.
func Run(cfg Config) error {
	if cfg.Title == "" {
		cfg.Title = "Gesture preview"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 480, 640
	}

	w := new(app.Window)
	w.Option(
		app.Title(cfg.Title),
		app.Size(unit.Dp(cfg.Width), unit.Dp(cfg.Height)),
	)

	area := gioinput.NewArea()
	g, err := gesture.New(area, cfg.Options...)
	if err != nil {
		return err
	}
	defer g.Destroy()

	hist := &history{}
	for _, n := range gesture.Names() {
		n := n
		g.On(n, func() {
			hist.push(n)
			w.Invalidate()
		})
	}

	return loop(w, area, hist)
}

// loop runs the Gio event loop until a DestroyEvent or an ESC key event is captured.
func loop(w *app.Window, area *gioinput.Area, hist *history) error {
	var ops op.Ops

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	th.Palette.Fg = defaultFgColor

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(
					pointer.Filter{Target: area, Kinds: gioinput.Kinds},
					key.Filter{Name: key.NameEscape},
				)
				if !ok {
					break
				}
				switch ev := ev.(type) {
				case pointer.Event:
					area.Feed(ev)
				case key.Event:
					if ev.State == key.Press {
						w.Perform(system.ActionClose)
					}
				}
			}

			draw(gtx, th, area, hist.snapshot())
			e.Frame(gtx.Ops)
		}
	}
}

// draw paints the background, registers the touch area and lists the recent gestures.
func draw(gtx C, th *material.Theme, area *gioinput.Area, names []gesture.Name) D {
	paint.Fill(gtx.Ops, defaultBkgColor)

	defer clip.Rect(image.Rectangle{Max: gtx.Constraints.Max}).Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, area)

	children := []layout.FlexChild{
		layout.Rigid(func(gtx C) D {
			lbl := material.H5(th, "Touch or drag anywhere")
			lbl.Color = accentColor
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
	}
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i].String()
		children = append(children, layout.Rigid(func(gtx C) D {
			return material.Body1(th, name).Layout(gtx)
		}))
	}

	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx C) D {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	})
}
