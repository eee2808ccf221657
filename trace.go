package gesture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gioui.org/f32"
	"github.com/esimov/gesture/utils"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTrace is returned when a trace script cannot be replayed.
var ErrInvalidTrace = errors.New("invalid trace")

// Trace is a recorded script of raw touch events.
type Trace struct {
	Name   string       `yaml:"name"`
	Events []TraceEvent `yaml:"events"`
}

// TraceEvent is a raw touch event scheduled At milliseconds after the
// start of the trace.
type TraceEvent struct {
	At      int64       `yaml:"at"`
	Phase   string      `yaml:"phase"`
	Touches [][]float32 `yaml:"touches,omitempty"`
}

// DecodeTrace reads and validates a YAML trace script.
func DecodeTrace(r io.Reader) (*Trace, error) {
	var tr Trace

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrace, err)
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Validate checks that every event has a known phase and well formed
// touches, that start and move events carry at least one contact and that
// offsets never go backwards.
func (tr *Trace) Validate() error {
	if len(tr.Events) == 0 {
		return fmt.Errorf("%w: no events", ErrInvalidTrace)
	}
	var last int64
	for i, ev := range tr.Events {
		phase, err := ParsePhase(ev.Phase)
		if err != nil {
			return fmt.Errorf("%w: event %d: %v", ErrInvalidTrace, i, err)
		}
		if (phase == PhaseStart || phase == PhaseMove) && len(ev.Touches) == 0 {
			return fmt.Errorf("%w: event %d: %s without touches", ErrInvalidTrace, i, phase)
		}
		if ev.At < last {
			return fmt.Errorf("%w: event %d at %dms precedes %dms", ErrInvalidTrace, i, ev.At, last)
		}
		for j, pt := range ev.Touches {
			if len(pt) != 2 {
				return fmt.Errorf("%w: event %d: touch %d needs two coordinates, got %d", ErrInvalidTrace, i, j, len(pt))
			}
		}
		last = ev.At
	}
	return nil
}

// offset returns the event time relative to the start of the trace.
func (ev TraceEvent) offset() time.Duration {
	return time.Duration(ev.At) * time.Millisecond
}

func (ev TraceEvent) touchEvent() TouchEvent {
	phase, _ := ParsePhase(ev.Phase)
	touches := make([]f32.Point, 0, len(ev.Touches))
	for _, pt := range ev.Touches {
		touches = append(touches, f32.Pt(pt[0], pt[1]))
	}
	return TouchEvent{Phase: phase, Touches: touches}
}

// Record is a gesture published during a replay.
type Record struct {
	At      time.Duration
	Gesture Name
}

// Report lists the gestures published while replaying a trace, in order.
type Report struct {
	Name    string
	Records []Record
}

// Gestures returns the published gesture names in order.
func (r *Report) Gestures() []Name {
	out := make([]Name, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Gesture
	}
	return out
}

type reportDoc struct {
	Name     string      `yaml:"name,omitempty"`
	Gestures []recordDoc `yaml:"gestures"`
}

type recordDoc struct {
	At      int64 `yaml:"at"`
	Gesture Name  `yaml:"gesture"`
}

// Encode writes the report as YAML, with offsets in milliseconds.
func (r *Report) Encode(w io.Writer) error {
	doc := reportDoc{Name: r.Name, Gestures: make([]recordDoc, 0, len(r.Records))}
	for _, rec := range r.Records {
		doc.Gestures = append(doc.Gestures, recordDoc{
			At:      rec.At.Milliseconds(),
			Gesture: rec.Gesture,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Replay feeds the trace to a fresh Gesture driven by a ManualClock and
// returns every gesture it published. Once the last event is dispatched the
// clock runs past the longest timeout so pending gestures resolve.
// A clock passed through opts is ignored.
func Replay(tr *Trace, opts ...Option) (*Report, error) {
	if tr == nil {
		return nil, fmt.Errorf("%w: nil trace", ErrInvalidTrace)
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	area := NewTouchArea()

	opts = append(opts[:len(opts):len(opts)], WithClock(clock))
	g, err := New(area, opts...)
	if err != nil {
		return nil, err
	}
	defer g.Destroy()

	rep := &Report{Name: tr.Name}
	for _, n := range Names() {
		n := n
		g.On(n, func() {
			rep.Records = append(rep.Records, Record{At: clock.Now().Sub(start), Gesture: n})
		})
	}

	for _, ev := range tr.Events {
		clock.Advance(start.Add(ev.offset()).Sub(clock.Now()))
		area.Dispatch(ev.touchEvent())
	}
	clock.Advance(utils.Max(g.cfg.LongTapTimeout, g.cfg.TapTimeout, g.cfg.DoubleTapTimeout))

	return rep, nil
}
