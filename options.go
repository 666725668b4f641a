package smartcube

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Session.
type Option func(*config)

type config struct {
	key                     []byte
	autoScramble            bool
	autoInspection          bool
	startTimerAutomatically bool
	inspection              time.Duration

	logger  *zap.Logger
	metrics MetricsRecorder

	onSolve       func(SolveRecord)
	onStateChange func(SessionState)
	onEvent       func(Event)
	onMoves       func([]TimedMove)
}

func defaultConfig() *config {
	return &config{
		inspection: DefaultInspection,
		logger:     zap.NewNop(),
		metrics:    nopMetrics{},
	}
}

// WithKey sets the AES key used by HandleNotification.
func WithKey(key []byte) Option {
	return func(c *config) {
		c.key = append([]byte(nil), key...)
	}
}

// WithAutoScramble requests a new scramble as soon as a solve finishes.
func WithAutoScramble(enabled bool) Option {
	return func(c *config) {
		c.autoScramble = enabled
	}
}

// WithAutoInspection starts the inspection countdown when the scramble is
// complete. The solve starts when the countdown runs out or on the first
// turn, whichever comes first.
func WithAutoInspection(enabled bool) Option {
	return func(c *config) {
		c.autoInspection = enabled
	}
}

// WithStartTimerAutomatically starts the solve timer the moment the
// scramble is complete, skipping inspection.
func WithStartTimerAutomatically(enabled bool) Option {
	return func(c *config) {
		c.startTimerAutomatically = enabled
	}
}

// WithInspection sets the inspection length. Non-positive values keep the
// default.
func WithInspection(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.inspection = d
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithOnSolve sets the callback that receives every finished solve.
func WithOnSolve(fn func(SolveRecord)) Option {
	return func(c *config) {
		c.onSolve = fn
	}
}

// WithOnStateChange sets a callback for session state transitions.
func WithOnStateChange(fn func(SessionState)) Option {
	return func(c *config) {
		c.onStateChange = fn
	}
}

// WithOnEvent sets a callback for phase events during a solve.
func WithOnEvent(fn func(Event)) Option {
	return func(c *config) {
		c.onEvent = fn
	}
}

// WithOnMoves sets a callback for every decoded batch of turns.
func WithOnMoves(fn func([]TimedMove)) Option {
	return func(c *config) {
		c.onMoves = fn
	}
}

// MetricsRecorder receives session counters. internal/metrics provides a
// Prometheus implementation.
type MetricsRecorder interface {
	NotificationReceived(opcode string)
	NotificationDropped(reason string)
	MovesDecoded(n int)
	ScrambleRewritten()
	SolveCompleted(mode string, d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) NotificationReceived(string)          {}
func (nopMetrics) NotificationDropped(string)           {}
func (nopMetrics) MovesDecoded(int)                     {}
func (nopMetrics) ScrambleRewritten()                   {}
func (nopMetrics) SolveCompleted(string, time.Duration) {}
