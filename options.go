package gesture

import (
	"log/slog"
	"time"
)

// Thresholds used by the classifier.
const (
	// DoubleTapTimeout is the maximum interval between two presses of a double tap.
	DoubleTapTimeout = 300 * time.Millisecond
	// LongTapTimeout is how long a press must be held to become a long tap.
	LongTapTimeout = 800 * time.Millisecond
	// TapTimeout is both the maximum press duration of a tap and the delay
	// before a single tap is confirmed.
	TapTimeout = 300 * time.Millisecond
	// MoveThreshold is the displacement, per axis and in surface units,
	// above which a contact counts as moving.
	MoveThreshold = 30
)

// Config holds the timing and distance thresholds of a Gesture.
type Config struct {
	DoubleTapTimeout time.Duration
	LongTapTimeout   time.Duration
	TapTimeout       time.Duration
	MoveThreshold    float32

	// ResetOnCancel makes a cancelled contact clear the pending timers and
	// the move sample. By default a cancel event is ignored.
	ResetOnCancel bool
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		DoubleTapTimeout: DoubleTapTimeout,
		LongTapTimeout:   LongTapTimeout,
		TapTimeout:       TapTimeout,
		MoveThreshold:    MoveThreshold,
	}
}

// Option configures a Gesture during creation.
type Option func(*options)

type options struct {
	clock  Clock
	logger *slog.Logger
	config Config
}

func defaultOptions() options {
	return options{
		clock:  SystemClock(),
		logger: nopLogger(),
		config: DefaultConfig(),
	}
}

// WithClock sets the clock used for timestamps and timers.
// Tests and trace replays pass a *ManualClock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger receiving debug records about classification.
// By default nothing is logged. Passing nil keeps the silent logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithConfig overrides the classification thresholds. Zero fields fall back
// to the defaults.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		def := DefaultConfig()
		if cfg.DoubleTapTimeout <= 0 {
			cfg.DoubleTapTimeout = def.DoubleTapTimeout
		}
		if cfg.LongTapTimeout <= 0 {
			cfg.LongTapTimeout = def.LongTapTimeout
		}
		if cfg.TapTimeout <= 0 {
			cfg.TapTimeout = def.TapTimeout
		}
		if cfg.MoveThreshold <= 0 {
			cfg.MoveThreshold = def.MoveThreshold
		}
		o.config = cfg
	}
}
