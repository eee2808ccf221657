package gesture

import (
	"errors"
	"fmt"
)

// ErrUnknownName is returned when a string does not denote a gesture name.
var ErrUnknownName = errors.New("unknown gesture name")

// Name identifies a gesture notification.
type Name uint8

// The gesture names published by a Gesture.
const (
	Touch Name = iota + 1
	Tap
	DoubleTap
	LongTap
	Slide
	Move
	Swipe
	SwipeUp
	SwipeDown
	SwipeLeft
	SwipeRight
	Finish
	End
)

var names = [...]string{
	Touch:      "touch",
	Tap:        "tap",
	DoubleTap:  "doubletap",
	LongTap:    "longtap",
	Slide:      "slide",
	Move:       "move",
	Swipe:      "swipe",
	SwipeUp:    "swipeUp",
	SwipeDown:  "swipeDown",
	SwipeLeft:  "swipeLeft",
	SwipeRight: "swipeRight",
	Finish:     "finish",
	End:        "end",
}

// Names returns every gesture name in declaration order.
func Names() []Name {
	all := make([]Name, 0, len(names)-1)
	for n := Touch; n <= End; n++ {
		all = append(all, n)
	}
	return all
}

// Valid reports whether n is one of the declared gesture names.
func (n Name) Valid() bool {
	return n >= Touch && n <= End
}

func (n Name) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Name(%d)", uint8(n))
	}
	return names[n]
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownName, uint8(n))
	}
	return []byte(names[n]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	v, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// ParseName returns the gesture name denoted by s.
// The legacy spelling "dbtap" is accepted for DoubleTap.
func ParseName(s string) (Name, error) {
	if s == "dbtap" {
		return DoubleTap, nil
	}
	for n := Touch; n <= End; n++ {
		if names[n] == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownName, s)
}
