package gesture

import (
	"errors"
	"fmt"
	"sync"

	"gioui.org/f32"
)

var (
	// ErrNilSurface is returned when a Gesture is created without a target surface.
	ErrNilSurface = errors.New("nil touch surface")
	// ErrSurfaceNotFound is returned when a selector resolves to no surface.
	ErrSurfaceNotFound = errors.New("touch surface not found")
	// ErrAmbiguousSelector is returned when a selector is registered twice.
	ErrAmbiguousSelector = errors.New("selector already registered")
	// ErrUnknownPhase is returned when a string does not denote a touch phase.
	ErrUnknownPhase = errors.New("unknown touch phase")
)

// Phase is a stage in the lifecycle of a single contact.
type Phase uint8

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
	PhaseCancel
)

var phases = [...]string{
	PhaseStart:  "start",
	PhaseMove:   "move",
	PhaseEnd:    "end",
	PhaseCancel: "cancel",
}

// Phases lists the four lifecycle channels a Surface must support.
func Phases() []Phase {
	return []Phase{PhaseStart, PhaseMove, PhaseEnd, PhaseCancel}
}

func (p Phase) String() string {
	if int(p) >= len(phases) {
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
	return phases[p]
}

// ParsePhase returns the phase denoted by s.
func ParsePhase(s string) (Phase, error) {
	for i, v := range phases {
		if v == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// TouchEvent is a raw touch lifecycle event as delivered by a Surface.
type TouchEvent struct {
	Phase Phase
	// Touches holds the positions of the contacts active on the surface.
	// For PhaseEnd and PhaseCancel it may be empty.
	Touches []f32.Point
	// Prevent, if set, suppresses the host's default action for the event.
	Prevent func()
}

// PreventDefault requests suppression of the host's default action.
func (e TouchEvent) PreventDefault() {
	if e.Prevent != nil {
		e.Prevent()
	}
}

// Listener receives raw touch events.
type Listener interface {
	HandleTouch(TouchEvent)
}

// Surface is a touch capable area able to (un)subscribe listeners to each
// of the lifecycle phases.
type Surface interface {
	AddListener(Phase, Listener)
	RemoveListener(Phase, Listener)
}

// Resolver looks up a Surface by selector.
type Resolver interface {
	Resolve(selector string) (Surface, error)
}

// TouchArea is an in-memory Surface. Hosts feed it raw events via Dispatch.
type TouchArea struct {
	mu        sync.RWMutex
	listeners [len(phases)][]Listener
}

// NewTouchArea returns an empty TouchArea.
func NewTouchArea() *TouchArea {
	return &TouchArea{}
}

// AddListener subscribes l to phase p.
func (a *TouchArea) AddListener(p Phase, l Listener) {
	if l == nil || int(p) >= len(phases) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners[p] = append(a.listeners[p], l)
}

// RemoveListener removes every subscription of l to phase p.
func (a *TouchArea) RemoveListener(p Phase, l Listener) {
	if int(p) >= len(phases) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.listeners[p][:0:0]
	for _, v := range a.listeners[p] {
		if v != l {
			kept = append(kept, v)
		}
	}
	a.listeners[p] = kept
}

// Listeners returns the number of listeners subscribed to phase p.
func (a *TouchArea) Listeners(p Phase) int {
	if int(p) >= len(phases) {
		return 0
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.listeners[p])
}

// Dispatch delivers e to the listeners of its phase, in subscription order.
func (a *TouchArea) Dispatch(e TouchEvent) {
	if int(e.Phase) >= len(phases) {
		return
	}
	a.mu.RLock()
	ls := a.listeners[e.Phase]
	a.mu.RUnlock()

	for _, l := range ls {
		l.HandleTouch(e)
	}
}

// Registry is a Resolver over surfaces registered by selector.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]Surface
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]Surface)}
}

// Register binds selector to s. A selector resolves to exactly one surface.
func (r *Registry) Register(selector string, s Surface) error {
	if s == nil {
		return ErrNilSurface
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surfaces == nil {
		r.surfaces = make(map[string]Surface)
	}
	if _, ok := r.surfaces[selector]; ok {
		return fmt.Errorf("%w: %q", ErrAmbiguousSelector, selector)
	}
	r.surfaces[selector] = s
	return nil
}

// Resolve returns the surface registered under selector.
func (r *Registry) Resolve(selector string) (Surface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surfaces[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSurfaceNotFound, selector)
	}
	return s, nil
}
