package debounce

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_maxWaitCeilingUnderPressure(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rec := newRecorder(clock)
	d, err := New(100*time.Millisecond, rec.fn,
		WithClock(clock), MaxWait(150*time.Millisecond))
	require.NoError(t, err)

	// Continuous pressure: a call every 10ms for 500ms, each arriving
	// well inside the wait duration.
	_, err = d.Call("v0")
	require.NoError(t, err)
	for ms := 10; ms <= 500; ms += 10 {
		clock.Advance(10 * time.Millisecond)
		_, err = d.Call(fmt.Sprintf("v%d", ms))
		require.NoError(t, err)
	}

	// Let the final trailing invocation fire.
	clock.Advance(300 * time.Millisecond)

	require.NotEmpty(t, rec.times)
	prev := time.Duration(0)
	for i, at := range rec.times {
		assert.LessOrEqual(t, at-prev, 150*time.Millisecond,
			"invocation %d spaced within the max wait", i)
		prev = at
	}

	assert.Equal(t,
		[]string{"v140", "v290", "v440", "v500"},
		rec.args,
		"each invocation uses the most recent call's arguments",
	)
	assert.Equal(t,
		[]time.Duration{
			150 * time.Millisecond,
			300 * time.Millisecond,
			450 * time.Millisecond,
			600 * time.Millisecond,
		},
		rec.times,
	)
	assert.False(t, d.Pending())
}

func TestDebouncer_maxWaitWithLeading(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rec := newRecorder(clock)
	d, err := New(100*time.Millisecond, rec.fn,
		WithClock(clock), Leading(), MaxWait(150*time.Millisecond))
	require.NoError(t, err)

	_, err = d.Call("v0")
	require.NoError(t, err)
	for ms := 10; ms <= 500; ms += 10 {
		clock.Advance(10 * time.Millisecond)
		_, err = d.Call(fmt.Sprintf("v%d", ms))
		require.NoError(t, err)
	}

	clock.Advance(300 * time.Millisecond)

	require.NotEmpty(t, rec.times)
	assert.Equal(t, time.Duration(0), rec.times[0],
		"leading edge fires at the first call")

	prev := time.Duration(0)
	for i, at := range rec.times[1:] {
		assert.LessOrEqual(t, at-prev, 150*time.Millisecond,
			"invocation %d spaced within the max wait", i+1)
		prev = at
	}
}

// A timer backend may deliver its callback late. If calls keep arriving and
// the max wait ceiling has already been blown past while the timer is still
// armed, Call itself must invoke to guarantee forward progress.
func TestDebouncer_maxWaitTightLoop(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rec := newRecorder(clock)
	d, err := New(100*time.Millisecond, rec.fn,
		WithClock(clock), MaxWait(150*time.Millisecond))
	require.NoError(t, err)

	_, err = d.Call("a")
	require.NoError(t, err)
	assert.True(t, d.Pending())

	// The timer is due at 100ms but has not fired yet.
	clock.AdvanceNoFire(160 * time.Millisecond)

	res, err := d.Call("b")
	require.NoError(t, err)
	assert.Equal(t, "done:b", res, "forced invocation, synchronously")
	assert.Equal(t, []string{"b"}, rec.args)
	assert.True(t, d.Pending(), "the timer was rearmed, not cleared")

	// The replaced timer must not fire, and with no further calls the
	// rearmed timer winds down without another invocation.
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, []string{"b"}, rec.args)
	assert.False(t, d.Pending())
}
