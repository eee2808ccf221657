// Package gioinput turns Gio pointer events into the raw touch events
// consumed by a gesture.Gesture.
package gioinput

import (
	"gioui.org/f32"
	"gioui.org/io/pointer"

	"github.com/esimov/gesture"
)

// Kinds is the set of pointer event kinds an Area understands.
const Kinds = pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel

// Area is a gesture.Surface fed with Gio pointer events. It tracks every
// pointer currently pressed, so a frame with several contacts is reported as
// a multi-touch event.
//
// An Area is meant to be fed from the Gio event loop goroutine.
type Area struct {
	*gesture.TouchArea

	active map[pointer.ID]f32.Point
	order  []pointer.ID
}

// NewArea returns an Area without active contacts.
func NewArea() *Area {
	return &Area{
		TouchArea: gesture.NewTouchArea(),
		active:    make(map[pointer.ID]f32.Point),
	}
}

// Feed converts e and dispatches it to the subscribed listeners.
// It reports whether e was translated into a touch event.
func (a *Area) Feed(e pointer.Event) bool {
	var phase gesture.Phase

	switch e.Kind {
	case pointer.Press:
		if _, ok := a.active[e.PointerID]; !ok {
			a.order = append(a.order, e.PointerID)
		}
		a.active[e.PointerID] = e.Position
		phase = gesture.PhaseStart
	case pointer.Drag:
		if _, ok := a.active[e.PointerID]; !ok {
			return false
		}
		a.active[e.PointerID] = e.Position
		phase = gesture.PhaseMove
	case pointer.Release:
		if _, ok := a.active[e.PointerID]; !ok {
			return false
		}
		a.remove(e.PointerID)
		phase = gesture.PhaseEnd
	case pointer.Cancel:
		a.active = make(map[pointer.ID]f32.Point)
		a.order = a.order[:0]
		phase = gesture.PhaseCancel
	default:
		return false
	}

	a.Dispatch(gesture.TouchEvent{
		Phase:   phase,
		Touches: a.touches(),
	})
	return true
}

// Active returns the number of pointers currently pressed.
func (a *Area) Active() int {
	return len(a.order)
}

func (a *Area) remove(id pointer.ID) {
	delete(a.active, id)
	for i, v := range a.order {
		if v == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}

// touches lists the active contacts in press order.
func (a *Area) touches() []f32.Point {
	out := make([]f32.Point, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.active[id])
	}
	return out
}
