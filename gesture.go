package gesture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gioui.org/f32"
	"github.com/esimov/gesture/hub"
	"github.com/esimov/gesture/utils"
)

// ErrDestroyed is returned by Destroy when the Gesture was already torn down.
var ErrDestroyed = errors.New("gesture already destroyed")

// sample is the position of the contact and the time it was captured.
type sample struct {
	pos f32.Point
	at  time.Time
}

// slot holds at most one live timer of a given kind. The generation counter
// is bumped on every stop so a callback that already fired, but has not yet
// acquired the lock, can tell it was superseded.
type slot struct {
	timer Timer
	gen   uint64
}

// stop cancels the live timer, if any, and reports whether there was one.
func (s *slot) stop() bool {
	s.gen++
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	return true
}

// Gesture classifies the raw touch events of a single finger into gestures
// and publishes them to the callbacks registered with On.
//
// Raw events and timer callbacks are serialised; the callbacks themselves are
// invoked without holding any internal lock, so they may call On, Off, Emit
// or Destroy.
type Gesture struct {
	target Surface
	hub    *hub.Hub[Name]
	clock  Clock
	logger *slog.Logger
	cfg    Config

	mu sync.Mutex
	// current is the sample of the latest press.
	current sample
	// moving is the latest sample seen while moving, valid if moved is set.
	moving sample
	moved  bool
	// slid records that the contact crossed the move threshold.
	slid bool
	// previous is the sample of the press before current.
	previous    sample
	hasPrevious bool
	doubleTap   bool
	longTap     slot
	tap         slot
	destroyed   bool
}

// New creates a Gesture bound to target and subscribes to its four lifecycle phases.
func New(target Surface, opts ...Option) (*Gesture, error) {
	if target == nil {
		return nil, ErrNilSurface
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g := &Gesture{
		target: target,
		hub:    hub.New[Name](),
		clock:  o.clock,
		logger: o.logger,
		cfg:    o.config,
	}
	for _, p := range Phases() {
		target.AddListener(p, g)
	}
	return g, nil
}

// NewFromSelector resolves selector through r and binds a new Gesture to the result.
func NewFromSelector(r Resolver, selector string, opts ...Option) (*Gesture, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no resolver for %q", ErrSurfaceNotFound, selector)
	}
	s, err := r.Resolve(selector)
	if err != nil {
		return nil, err
	}
	return New(s, opts...)
}

// On registers fn to run every time the named gesture is published.
func (g *Gesture) On(name Name, fn func()) *Gesture {
	g.hub.Subscribe(name, fn)
	return g
}

// Off removes every callback registered for name.
func (g *Gesture) Off(name Name) {
	g.hub.Unsubscribe(name)
}

// Emit publishes name to its callbacks as if the gesture had been recognised.
func (g *Gesture) Emit(name Name) *Gesture {
	g.hub.Publish(name)
	return g
}

// Destroy cancels the pending timers and unsubscribes from the surface.
// The Gesture ignores any further raw event. A timer gesture is checked
// against Destroy right before it is published; with the system clock a
// publication already in flight on the timer goroutine may still complete
// while Destroy runs.
func (g *Gesture) Destroy() error {
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		return ErrDestroyed
	}
	g.destroyed = true
	g.stop(&g.longTap, LongTap)
	g.stop(&g.tap, Tap)
	g.mu.Unlock()

	for _, p := range Phases() {
		g.target.RemoveListener(p, g)
	}
	return nil
}

// HandleTouch feeds a raw touch event to the classifier.
func (g *Gesture) HandleTouch(e TouchEvent) {
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		return
	}
	var out []Name
	switch e.Phase {
	case PhaseStart:
		out = g.press(e)
	case PhaseMove:
		out = g.move(e)
	case PhaseEnd:
		out = g.release()
	case PhaseCancel:
		g.cancel()
	}
	g.mu.Unlock()

	g.publish(out...)
}

// press handles the start of a contact. Caller must hold the lock.
func (g *Gesture) press(e TouchEvent) []Name {
	now := g.clock.Now()
	g.current = sample{pos: primary(e.Touches), at: now}
	g.moving, g.moved, g.slid = sample{}, false, false

	// A new press supersedes whatever the previous one left pending.
	g.stop(&g.longTap, LongTap)
	g.stop(&g.tap, Tap)

	if len(e.Touches) > 1 {
		return []Name{Touch}
	}

	g.arm(&g.longTap, g.cfg.LongTapTimeout, e.PreventDefault, LongTap)

	prev, cur := g.previous, g.current
	g.doubleTap = g.hasPrevious &&
		now.Sub(prev.at) < g.cfg.DoubleTapTimeout &&
		utils.Abs(cur.pos.X-prev.pos.X) < g.cfg.MoveThreshold &&
		utils.Abs(cur.pos.Y-prev.pos.Y) < g.cfg.MoveThreshold &&
		utils.Abs(cur.at.Sub(prev.at)) < g.cfg.DoubleTapTimeout

	g.previous, g.hasPrevious = cur, true

	return []Name{Touch}
}

// move handles a contact changing position. Caller must hold the lock.
func (g *Gesture) move(e TouchEvent) []Name {
	out := []Name{Move}
	if len(e.Touches) > 1 {
		return out
	}
	pos := primary(e.Touches)
	diff := pos.Sub(g.current.pos)

	if utils.Abs(diff.X) > g.cfg.MoveThreshold || utils.Abs(diff.Y) > g.cfg.MoveThreshold {
		g.stop(&g.longTap, LongTap)
		g.stop(&g.tap, Tap)
		g.slid = true
		out = append(out, Slide)
	}
	g.moving, g.moved = sample{pos: pos, at: g.clock.Now()}, true

	return out
}

// release handles the end of a contact. Caller must hold the lock.
func (g *Gesture) release() []Name {
	g.stop(&g.longTap, LongTap)

	var out []Name
	now := g.clock.Now()
	delta := g.moving.pos.Sub(g.current.pos)
	dx, dy := utils.Abs(delta.X), utils.Abs(delta.Y)

	switch {
	case g.moved && (dx > g.cfg.MoveThreshold || dy > g.cfg.MoveThreshold):
		out = append(out, swipeDirection(delta, dx, dy), Swipe)
	case g.slid:
		// The contact came back near its origin, but it already slid.
		out = append(out, Finish)
	case !g.doubleTap && now.Sub(g.current.at) < g.cfg.TapTimeout:
		g.arm(&g.tap, g.cfg.TapTimeout, nil, Tap, Finish)
	case g.doubleTap:
		g.stop(&g.tap, Tap)
		out = append(out, DoubleTap, Finish)
	default:
		out = append(out, Finish)
	}
	return append(out, End)
}

// cancel handles an interrupted contact. Caller must hold the lock.
func (g *Gesture) cancel() {
	if !g.cfg.ResetOnCancel {
		return
	}
	g.stop(&g.longTap, LongTap)
	g.stop(&g.tap, Tap)
	g.moving, g.moved, g.slid = sample{}, false, false
}

// arm schedules the publication of names after d, replacing the live timer
// of s, then runs after. Caller must hold the lock.
func (g *Gesture) arm(s *slot, d time.Duration, after func(), names ...Name) {
	s.stop()
	gen := s.gen
	s.timer = g.clock.AfterFunc(d, func() {
		g.mu.Lock()
		if g.destroyed || s.gen != gen {
			g.mu.Unlock()
			return
		}
		s.timer = nil
		s.gen++
		fired := s.gen
		g.mu.Unlock()

		for _, n := range names {
			if !g.live(s, fired) {
				return
			}
			g.publish(n)
		}
		if after != nil {
			after()
		}
	})
}

// live reports whether the timer of s that fired at generation gen is
// still the latest one and the Gesture is alive.
func (g *Gesture) live(s *slot, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return !g.destroyed && s.gen == gen
}

// stop cancels the live timer of s. Caller must hold the lock.
func (g *Gesture) stop(s *slot, kind Name) {
	if s.stop() {
		g.logger.Debug("gesture timer cancelled", slog.String("timer", kind.String()))
	}
}

func (g *Gesture) publish(names ...Name) {
	for _, n := range names {
		g.logger.Debug("gesture", slog.String("name", n.String()))
		g.hub.Publish(n)
	}
}

// swipeDirection picks the dominant axis of delta. Ties are horizontal.
func swipeDirection(delta f32.Point, dx, dy float32) Name {
	if dx < dy {
		if delta.Y < 0 {
			return SwipeUp
		}
		return SwipeDown
	}
	if delta.X < 0 {
		return SwipeLeft
	}
	return SwipeRight
}

// primary returns the position of the first contact.
func primary(touches []f32.Point) f32.Point {
	if len(touches) == 0 {
		return f32.Point{}
	}
	return touches[0]
}
