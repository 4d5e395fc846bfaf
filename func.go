package debounce

import (
	"time"
)

// NewFunc debounces a function that takes no arguments and returns nothing.
// It is a convenience wrapper around New for the common case where only the
// timing of f matters.
//
// The returned debounced function records a call; the returned cancel
// function discards any pending invocation of f, and is not required to be
// called, so can be ignored if not needed.
func NewFunc(
	wait time.Duration,
	f func(),
	opts ...Option,
) (debounced func(), cancel func(), err error) {
	if f == nil {
		return nil, nil, ErrNilFunc
	}

	d, err := New(wait, func(struct{}) (struct{}, error) {
		f()

		return struct{}{}, nil
	}, opts...)
	if err != nil {
		return nil, nil, err
	}

	debounced = func() {
		_, _ = d.Call(struct{}{})
	}

	return debounced, d.Cancel, nil
}
