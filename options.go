package debounce

import (
	"log/slog"
	"time"
)

// Option configures a Debouncer at construction time.
type Option func(*config)

type config struct {
	leading  bool
	trailing bool
	maxWait  time.Duration
	maxing   bool
	clock    Clock
	logger   *slog.Logger
	onError  func(error)
	verbose  bool
}

func defaultConfig() config {
	return config{
		clock:  SystemClock(),
		logger: slog.Default(),
	}
}

// Leading returns an option that invokes the function immediately on the
// first call of a burst, before waiting out the quiet period.
//
// When only leading is used, a burst of calls invokes the function once, at
// the start of the burst; calls made before the wait duration has passed do
// not invoke it again.
func Leading() Option {
	return func(c *config) {
		c.leading = true
	}
}

// Trailing returns an option that invokes the function once the wait
// duration has passed since the last call. This is the default behavior when
// neither Leading nor Trailing is given.
//
// If both Leading and Trailing are used, a burst of calls invokes the
// function immediately, and again after the burst goes quiet — but only if
// more than one call was made during the wait period.
func Trailing() Option {
	return func(c *config) {
		c.trailing = true
	}
}

// MaxWait returns an option that bounds how long an invocation may be
// delayed. Even if calls keep arriving within the wait duration, the function
// is invoked at least once every maxWait.
//
// Without a max wait, a function called non-stop more often than the wait
// duration is never invoked on the trailing edge. A maxWait smaller than the
// wait duration is raised to the wait duration.
func MaxWait(maxWait time.Duration) Option {
	return func(c *config) {
		c.maxWait = maxWait
		c.maxing = true
	}
}

// WithClock returns an option that replaces the timer backend. The default
// is SystemClock. Tests typically inject a manual clock here.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger returns an option that sets the logger used by Verbose debug
// output and for trailing-edge invocation errors that have no error handler.
// The default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithErrorHandler returns an option that sets the handler for errors
// returned by trailing-edge invocations, which fire from a timer and have no
// caller to return to. Without a handler such errors are logged.
//
// The handler runs while the debouncer's lock is held, so it must not call
// back into the same Debouncer.
func WithErrorHandler(h func(error)) Option {
	return func(c *config) {
		c.onError = h
	}
}

// Verbose returns an option that logs every decision the state machine makes
// at debug level. Output is purely observational and never affects behavior.
func Verbose() Option {
	return func(c *config) {
		c.verbose = true
	}
}
