package gesture

import (
	"testing"
	"time"

	"gioui.org/f32"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	names []Name
}

type rig struct {
	t     *testing.T
	area  *TouchArea
	clock *ManualClock
	g     *Gesture
	rec   *recorder
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()

	area := NewTouchArea()
	clock := NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	g, err := New(area, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)

	rec := &recorder{}
	for _, n := range Names() {
		n := n
		g.On(n, func() { rec.names = append(rec.names, n) })
	}
	return &rig{t: t, area: area, clock: clock, g: g, rec: rec}
}

func (r *rig) press(x, y float32) {
	r.area.Dispatch(TouchEvent{Phase: PhaseStart, Touches: []f32.Point{{X: x, Y: y}}})
}

func (r *rig) moveTo(x, y float32) {
	r.area.Dispatch(TouchEvent{Phase: PhaseMove, Touches: []f32.Point{{X: x, Y: y}}})
}

func (r *rig) release() {
	r.area.Dispatch(TouchEvent{Phase: PhaseEnd})
}

func (r *rig) wait(d time.Duration) {
	r.clock.Advance(d)
}

func (r *rig) expect(want ...Name) {
	r.t.Helper()
	if diff := cmp.Diff(want, r.rec.names); diff != "" {
		r.t.Errorf("published gestures mismatch (-want +got):\n%s", diff)
	}
}

func (r *rig) count(n Name) int {
	c := 0
	for _, v := range r.rec.names {
		if v == n {
			c++
		}
	}
	return c
}

func TestGesture_NilSurface(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilSurface)
}

func TestGesture_SubscribesToAllPhases(t *testing.T) {
	area := NewTouchArea()
	g, err := New(area)
	require.NoError(t, err)

	for _, p := range Phases() {
		assert.Equal(t, 1, area.Listeners(p), p.String())
	}

	require.NoError(t, g.Destroy())
	for _, p := range Phases() {
		assert.Equal(t, 0, area.Listeners(p), p.String())
	}
	assert.ErrorIs(t, g.Destroy(), ErrDestroyed)
}

func TestGesture_NewFromSelector(t *testing.T) {
	reg := NewRegistry()
	area := NewTouchArea()
	require.NoError(t, reg.Register("#target", area))

	g, err := NewFromSelector(reg, "#target")
	require.NoError(t, err)
	assert.Equal(t, 1, area.Listeners(PhaseStart))
	require.NoError(t, g.Destroy())

	_, err = NewFromSelector(reg, "#missing")
	assert.ErrorIs(t, err, ErrSurfaceNotFound)

	_, err = NewFromSelector(nil, "#target")
	assert.ErrorIs(t, err, ErrSurfaceNotFound)
}

func TestGesture_SingleTap(t *testing.T) {
	r := newRig(t)

	r.press(100, 100)
	r.wait(100 * time.Millisecond)
	r.release()
	r.expect(Touch, End)

	r.wait(299 * time.Millisecond)
	r.expect(Touch, End)

	r.wait(time.Millisecond)
	r.expect(Touch, End, Tap, Finish)

	r.wait(time.Second)
	assert.Equal(t, 1, r.count(Tap))
	assert.Equal(t, 0, r.count(LongTap))
}

func TestGesture_SmallMovementStillTaps(t *testing.T) {
	r := newRig(t)

	r.press(100, 100)
	r.wait(50 * time.Millisecond)
	r.moveTo(120, 90)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(TapTimeout)

	r.expect(Touch, Move, End, Tap, Finish)
}

func TestGesture_DoubleTap(t *testing.T) {
	r := newRig(t)

	r.press(100, 100)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(100 * time.Millisecond)
	r.press(102, 101)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(time.Second)

	r.expect(Touch, End, Touch, DoubleTap, Finish, End)
	assert.Equal(t, 0, r.count(Tap))
	assert.Equal(t, 0, r.clock.Pending())
}

func TestGesture_DoubleTapRejectedWhenFar(t *testing.T) {
	r := newRig(t)

	r.press(100, 100)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(100 * time.Millisecond)
	r.press(100, 140)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(time.Second)

	r.expect(Touch, End, Touch, End, Tap, Finish)
}

func TestGesture_DoubleTapRejectedWhenLate(t *testing.T) {
	r := newRig(t)

	r.press(100, 100)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(250 * time.Millisecond)
	r.press(100, 100)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(time.Second)

	assert.Equal(t, 0, r.count(DoubleTap))
	assert.Equal(t, 1, r.count(Tap))
}

func TestGesture_LongTap(t *testing.T) {
	r := newRig(t)

	prevented := 0
	r.area.Dispatch(TouchEvent{
		Phase:   PhaseStart,
		Touches: []f32.Point{{X: 10, Y: 10}},
		Prevent: func() { prevented++ },
	})
	r.wait(799 * time.Millisecond)
	r.expect(Touch)

	r.wait(time.Millisecond)
	r.expect(Touch, LongTap)
	assert.Equal(t, 1, prevented)

	r.release()
	r.wait(time.Second)
	r.expect(Touch, LongTap, Finish, End)
}

func TestGesture_ReleaseBeforeLongTap(t *testing.T) {
	r := newRig(t)

	r.press(10, 10)
	r.wait(500 * time.Millisecond)
	r.release()
	r.wait(2 * time.Second)

	r.expect(Touch, Finish, End)
}

func TestGesture_Swipe(t *testing.T) {
	tests := []struct {
		name   string
		to     f32.Point
		expect Name
	}{
		{"up", f32.Pt(105, 40), SwipeUp},
		{"down", f32.Pt(95, 160), SwipeDown},
		{"left", f32.Pt(40, 110), SwipeLeft},
		{"right", f32.Pt(180, 90), SwipeRight},
		{"tie is horizontal", f32.Pt(150, 150), SwipeRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.press(100, 100)
			r.wait(20 * time.Millisecond)
			r.moveTo(tt.to.X, tt.to.Y)
			r.wait(20 * time.Millisecond)
			r.release()
			r.wait(time.Second)

			r.expect(Touch, Move, Slide, tt.expect, Swipe, End)
		})
	}
}

func TestGesture_PressAfterSwipeForgetsMove(t *testing.T) {
	r := newRig(t)

	r.press(100, 100)
	r.wait(20 * time.Millisecond)
	r.moveTo(20, 100)
	r.wait(20 * time.Millisecond)
	r.release()
	r.wait(time.Second)
	r.expect(Touch, Move, Slide, SwipeLeft, Swipe, End)

	r.rec.names = nil
	r.press(100, 100)
	r.wait(50 * time.Millisecond)
	r.release()
	r.wait(time.Second)

	r.expect(Touch, End, Tap, Finish)
}

func TestGesture_SlideFiresPerQualifyingMove(t *testing.T) {
	r := newRig(t)

	r.press(0, 0)
	r.moveTo(10, 0)
	r.moveTo(40, 0)
	r.moveTo(80, 0)
	r.release()
	r.wait(time.Second)

	r.expect(Touch, Move, Move, Slide, Move, Slide, SwipeRight, Swipe, End)
}

func TestGesture_SlideDisqualifiesTapEvenWhenReturning(t *testing.T) {
	r := newRig(t)

	r.press(100, 100)
	r.wait(20 * time.Millisecond)
	r.moveTo(150, 100)
	r.moveTo(101, 100)
	r.wait(20 * time.Millisecond)
	r.release()
	r.wait(2 * time.Second)

	r.expect(Touch, Move, Slide, Move, Finish, End)
	assert.Equal(t, 0, r.count(Tap))
	assert.Equal(t, 0, r.count(LongTap))
}

func TestGesture_SlideCancelsLongTap(t *testing.T) {
	r := newRig(t)

	r.press(0, 0)
	r.wait(400 * time.Millisecond)
	r.moveTo(0, 50)
	r.wait(time.Second)

	r.expect(Touch, Move, Slide)
}

func TestGesture_MultiTouchIgnored(t *testing.T) {
	r := newRig(t)

	r.area.Dispatch(TouchEvent{Phase: PhaseStart, Touches: []f32.Point{{X: 0, Y: 0}, {X: 50, Y: 50}}})
	r.area.Dispatch(TouchEvent{Phase: PhaseMove, Touches: []f32.Point{{X: 200, Y: 0}, {X: 50, Y: 50}}})
	r.wait(time.Second)

	r.expect(Touch, Move)
	assert.Equal(t, 0, r.clock.Pending())
}

func TestGesture_NewPressCancelsPendingTap(t *testing.T) {
	r := newRig(t)

	r.press(0, 0)
	r.release()
	r.wait(100 * time.Millisecond)
	// far away: not a double tap, yet the first tap is superseded
	r.press(200, 200)
	r.wait(500 * time.Millisecond)
	r.release()
	r.wait(time.Second)

	r.expect(Touch, End, Touch, Finish, End)
}

func TestGesture_CancelIsPassThrough(t *testing.T) {
	r := newRig(t)

	r.press(0, 0)
	r.area.Dispatch(TouchEvent{Phase: PhaseCancel})
	r.wait(time.Second)

	r.expect(Touch, LongTap)
}

func TestGesture_ResetOnCancel(t *testing.T) {
	r := newRig(t, WithConfig(Config{ResetOnCancel: true}))

	r.press(0, 0)
	r.moveTo(10, 10)
	r.area.Dispatch(TouchEvent{Phase: PhaseCancel})
	r.wait(time.Second)

	r.expect(Touch, Move)
	assert.Equal(t, 0, r.clock.Pending())

	// The move sample is forgotten too, so the release cannot swipe.
	r = newRig(t, WithConfig(Config{ResetOnCancel: true}))
	r.press(100, 100)
	r.moveTo(20, 100)
	r.area.Dispatch(TouchEvent{Phase: PhaseCancel})
	r.release()
	r.wait(time.Second)

	r.expect(Touch, Move, Slide, End, Tap, Finish)
	assert.Equal(t, 0, r.count(Swipe))
}

func TestGesture_TouchMoveEndOrder(t *testing.T) {
	r := newRig(t)

	r.press(0, 0)
	r.moveTo(5, 5)
	r.release()
	r.wait(time.Second)

	var raw []Name
	for _, n := range r.rec.names {
		if n == Touch || n == Move || n == End {
			raw = append(raw, n)
		}
	}
	assert.Equal(t, []Name{Touch, Move, End}, raw)
}

func TestGesture_DestroyCancelsTimers(t *testing.T) {
	r := newRig(t)

	r.press(0, 0)
	r.release()
	require.NoError(t, r.g.Destroy())
	r.wait(time.Second)
	r.press(0, 0)

	r.expect(Touch, End)
	assert.Equal(t, 0, r.clock.Pending())
}

func TestGesture_OnOffEmit(t *testing.T) {
	area := NewTouchArea()
	g, err := New(area, WithClock(NewManualClock(time.Unix(0, 0))))
	require.NoError(t, err)

	count := 0
	fn := func() { count++ }

	g.On(Tap, fn).On(Tap, fn).Emit(Tap)
	assert.Equal(t, 2, count)

	g.Off(Tap)
	g.On(Tap, fn).Emit(Tap)
	assert.Equal(t, 3, count)
}

func TestGesture_CallbackMayDestroy(t *testing.T) {
	r := newRig(t)
	r.g.On(Touch, func() { r.g.Destroy() })

	assert.NotPanics(t, func() { r.press(0, 0) })
	r.wait(time.Second)
	r.expect(Touch)
}

func TestGesture_DestroyFromTimerCallbackStopsPublishing(t *testing.T) {
	r := newRig(t)
	r.g.On(Tap, func() { r.g.Destroy() })

	r.press(0, 0)
	r.release()
	r.wait(time.Second)

	r.expect(Touch, End, Tap)
}

func TestGesture_PressFromTimerCallbackSupersedesIt(t *testing.T) {
	r := newRig(t)
	once := false
	r.g.On(Tap, func() {
		if !once {
			once = true
			r.press(0, 0)
		}
	})

	r.press(0, 0)
	r.release()
	r.wait(TapTimeout)

	r.expect(Touch, End, Tap, Touch)
	assert.Equal(t, 0, r.count(Finish))
}

func TestGesture_StaleTimerDoesNotFire(t *testing.T) {
	r := newRig(t)

	r.press(0, 0)
	r.release()

	// Simulate a timer that fired right before the next press took the lock.
	r.g.mu.Lock()
	stale := r.g.tap.gen
	r.g.mu.Unlock()
	r.press(0, 0)

	r.g.mu.Lock()
	assert.NotEqual(t, stale, r.g.tap.gen)
	r.g.mu.Unlock()

	r.release()
	r.wait(time.Second)
	assert.Equal(t, 0, r.count(Tap))
	assert.Equal(t, 1, r.count(DoubleTap))
}

func TestGesture_CustomThresholds(t *testing.T) {
	r := newRig(t, WithConfig(Config{MoveThreshold: 5}))

	r.press(0, 0)
	r.moveTo(0, 10)
	r.release()
	r.wait(time.Second)

	r.expect(Touch, Move, Slide, SwipeDown, Swipe, End)
}
