// Package debounce rate-limits how often a wrapped function actually runs in
// response to a rapid, irregular stream of calls.
//
// A Debouncer delays invoking its function until a quiet period of at least
// the wait duration has passed since the last call (the trailing edge), can
// optionally invoke at the start of a burst instead or as well (the leading
// edge), and can bound how long continuous call pressure may delay an
// invocation (the max wait). Every call returns the most recently computed
// result, so callers always see the latest value even when their particular
// call did not trigger an invocation.
//
// Debouncing is useful when calls may be triggered rapidly, such as in
// response to file system events or user input, but the underlying operation
// is expensive and only needs to be performed once per batch of calls.
package debounce

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Construction errors returned by New and NewFunc.
var (
	ErrNilFunc         = errors.New("debounce: nil function")
	ErrNegativeWait    = errors.New("debounce: negative wait duration")
	ErrNegativeMaxWait = errors.New("debounce: negative max wait duration")
	ErrNilClock        = errors.New("debounce: nil clock")
	ErrNilLogger       = errors.New("debounce: nil logger")
)

// Rescheduling the trailing timer can compute a non-positive remaining wait
// when calls kept arriving after the timer was armed. Floor it so the
// reschedule loop makes real progress; the contract is "no earlier than", so
// a 1ms granularity is within tolerance.
const minReschedule = time.Millisecond

// Debouncer coalesces bursts of calls to a single wrapped function into at
// most one invocation per quiet-period cycle (or two, with both leading and
// trailing edges enabled). Each instance wraps exactly one function with a
// fixed configuration.
//
// All methods are safe for concurrent use. Invocations of the wrapped
// function run while the instance lock is held, so they never overlap and are
// totally ordered; the wrapped function must not call back into its own
// Debouncer.
type Debouncer[A, R any] struct {
	wait     time.Duration
	maxWait  time.Duration
	maxing   bool
	leading  bool
	trailing bool

	fn      func(A) (R, error)
	clock   Clock
	logger  *slog.Logger
	onError func(error)
	verbose bool

	mu          sync.Mutex
	epoch       time.Time
	lastInvoke  time.Time
	lastCall    time.Time
	called      bool
	pendingArgs A
	hasPending  bool
	result      R
	timer       Timer
	timerGen    uint64
}

// New creates a Debouncer that delays invoking fn until after wait has
// elapsed since the last time Call was made. fn receives the arguments of the
// most recent Call at the moment it fires, and its result is cached and
// returned by every Call until the next invocation.
//
// By default only the trailing edge invokes fn; see Leading, Trailing and
// MaxWait to change when invocations happen.
//
// A negative wait, a nil fn, or an invalid option value is a configuration
// error and fails construction.
func New[A, R any](
	wait time.Duration,
	fn func(A) (R, error),
	opts ...Option,
) (*Debouncer[A, R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if wait < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeWait, wait)
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	if c.maxing && c.maxWait < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeMaxWait, c.maxWait)
	}
	if c.clock == nil {
		return nil, ErrNilClock
	}
	if c.logger == nil {
		return nil, ErrNilLogger
	}

	// If neither leading nor trailing is set, default to trailing.
	if !c.leading && !c.trailing {
		c.trailing = true
	}

	// The max wait can never undercut the wait itself.
	if c.maxing && c.maxWait < wait {
		c.maxWait = wait
	}

	now := c.clock.Now()

	return &Debouncer[A, R]{
		wait:       wait,
		maxWait:    c.maxWait,
		maxing:     c.maxing,
		leading:    c.leading,
		trailing:   c.trailing,
		fn:         fn,
		clock:      c.clock,
		logger:     c.logger,
		onError:    c.onError,
		verbose:    c.verbose,
		epoch:      now,
		lastInvoke: now,
	}, nil
}

// Call records a call with the given arguments and invokes the wrapped
// function now if the elapsed-time rules say so. It returns the result of the
// invocation it triggered, or the cached result of the most recent invocation
// otherwise. A non-nil error is only ever the wrapped function's own error,
// from an invocation this call triggered.
//
// Call never blocks beyond the wrapped function itself; trailing-edge
// invocations happen later, driven by the timer.
func (d *Debouncer[A, R]) Call(args A) (R, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	invoking := d.shouldInvoke(now)

	d.pendingArgs = args
	d.hasPending = true
	d.lastCall = now
	d.called = true

	d.logEvent("call", now, slog.Bool("invoking", invoking))

	if invoking {
		if d.timer == nil {
			return d.leadingEdge(now)
		}
		if d.maxing {
			// Calls in a tight loop hit the max wait ceiling while a
			// timer is still armed; fire now to keep making progress.
			d.armTimer(d.wait)
			d.logEvent("max wait exceeded", now)

			return d.invoke(now)
		}
	}

	if d.timer == nil {
		d.armTimer(d.wait)
	}

	return d.result, nil
}

// Cancel discards any armed timer and any call still owed an invocation, and
// resets the call history as if the Debouncer were freshly created. The
// cached result is kept.
func (d *Debouncer[A, R]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logEvent("cancel", d.clock.Now())

	d.stopTimer()
	d.lastInvoke = d.epoch
	d.lastCall = time.Time{}
	d.called = false
	d.clearPending()
}

// Flush forces a pending trailing-edge invocation to fire immediately, as if
// its timer had just expired, and returns the result. If nothing is pending,
// it returns the cached result unchanged.
func (d *Debouncer[A, R]) Flush() (R, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return d.result, nil
	}

	now := d.clock.Now()
	d.logEvent("flush", now)

	return d.trailingEdge(now)
}

// Pending reports whether a timer is armed, i.e. whether a trailing-edge
// invocation or a leading-edge cooldown is in progress.
func (d *Debouncer[A, R]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// shouldInvoke reports whether enough time has passed for an invocation:
// either this is the first call ever, or the max wait ceiling has been hit,
// or a full quiet period has elapsed since the last call. A negative elapsed
// time means the clock moved backward, and is treated as a full quiet period
// rather than an error.
func (d *Debouncer[A, R]) shouldInvoke(now time.Time) bool {
	if !d.called {
		return true
	}

	if d.maxing {
		return now.Sub(d.lastInvoke) >= d.maxWait
	}

	sinceCall := now.Sub(d.lastCall)

	return sinceCall >= d.wait || sinceCall < 0
}

// leadingEdge starts a new burst: it resets the invocation clock, arms the
// trailing timer, and invokes the function if the leading edge is enabled.
func (d *Debouncer[A, R]) leadingEdge(now time.Time) (R, error) {
	d.lastInvoke = now
	d.armTimer(d.wait)

	if !d.leading {
		return d.result, nil
	}

	d.logEvent("leading edge", now)

	return d.invoke(now)
}

// trailingEdge ends a burst: the timer is cleared, and the function is
// invoked with the pending arguments if the trailing edge is enabled and a
// call is still owed an invocation.
func (d *Debouncer[A, R]) trailingEdge(now time.Time) (R, error) {
	d.stopTimer()

	if d.trailing && d.hasPending {
		d.logEvent("trailing edge", now)

		return d.invoke(now)
	}

	d.clearPending()

	return d.result, nil
}

// remainingWait computes how much longer the timer must wait when it fired
// too early, because calls kept arriving after it was armed.
func (d *Debouncer[A, R]) remainingWait(now time.Time) time.Duration {
	remaining := d.wait - now.Sub(d.lastCall)

	if d.maxing {
		untilCeiling := d.maxWait - now.Sub(d.lastInvoke)
		if untilCeiling < remaining {
			remaining = untilCeiling
		}
	}

	if remaining < minReschedule {
		remaining = minReschedule
	}

	return remaining
}

// timerExpired is the timer callback. gen identifies the timer that was
// armed; a mismatch means the callback is from a timer that has since been
// cancelled or replaced, and must do nothing.
func (d *Debouncer[A, R]) timerExpired(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil || gen != d.timerGen {
		return
	}

	now := d.clock.Now()

	if !d.shouldInvoke(now) {
		remaining := d.remainingWait(now)
		d.armTimer(remaining)
		d.logEvent("rearm", now, slog.Duration("remaining", remaining))

		return
	}

	if _, err := d.trailingEdge(now); err != nil {
		// Trailing invocations have no caller waiting for the error.
		if d.onError != nil {
			d.onError(err)
		} else {
			d.logger.Error("debounce: invocation failed",
				slog.Any("error", err))
		}
	}
}

// invoke runs the wrapped function with the pending arguments, synchronously
// and with the lock held. On success the result is cached; on failure the
// cached result is left untouched and the error is returned.
func (d *Debouncer[A, R]) invoke(now time.Time) (R, error) {
	args := d.pendingArgs
	d.clearPending()
	d.lastInvoke = now

	res, err := d.fn(args)
	if err != nil {
		return d.result, err
	}
	d.result = res

	return d.result, nil
}

// armTimer replaces any armed timer with a new one. Bumping the generation
// turns a callback from the old timer, if one is already in flight, into a
// no-op.
func (d *Debouncer[A, R]) armTimer(dur time.Duration) {
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timerGen++
	gen := d.timerGen
	d.timer = d.clock.AfterFunc(dur, func() {
		d.timerExpired(gen)
	})
}

// stopTimer stops and clears the armed timer, if any.
func (d *Debouncer[A, R]) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.timerGen++
}

func (d *Debouncer[A, R]) clearPending() {
	var zero A
	d.pendingArgs = zero
	d.hasPending = false
}

func (d *Debouncer[A, R]) logEvent(event string, now time.Time, attrs ...any) {
	if !d.verbose {
		return
	}

	attrs = append(attrs,
		slog.Time("time", now),
		slog.Bool("timer_armed", d.timer != nil),
		slog.Bool("call_pending", d.hasPending),
	)
	d.logger.Debug("debounce: "+event, attrs...)
}
