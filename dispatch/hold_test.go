package dispatch

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldTriggerFiresAfterFullHold(t *testing.T) {
	var fired atomic.Int32
	h := NewHoldTrigger(30*time.Millisecond, func() { fired.Add(1) })

	h.Press()
	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond, "hold never fired")

	// A release after the fact must not fire again or panic.
	h.Release()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestHoldTriggerTapNeverFires(t *testing.T) {
	var fired atomic.Int32
	h := NewHoldTrigger(60*time.Millisecond, func() { fired.Add(1) })

	h.Press()
	h.Release()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "a tap must not fire the event")
}

func TestHoldTriggerEarlyReleaseCancels(t *testing.T) {
	var fired atomic.Int32
	h := NewHoldTrigger(80*time.Millisecond, func() { fired.Add(1) })

	h.Press()
	time.Sleep(30 * time.Millisecond)
	h.Release()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestHoldTriggerIsReusable(t *testing.T) {
	var fired atomic.Int32
	h := NewHoldTrigger(25*time.Millisecond, func() { fired.Add(1) })

	// Cancelled gesture, then a completed one.
	h.Press()
	h.Release()

	h.Press()
	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond)

	// And a second full cycle.
	h.Press()
	require.Eventually(t, func() bool { return fired.Load() == 2 },
		time.Second, 5*time.Millisecond)
}

func TestHoldTriggerRepeatedPressIgnored(t *testing.T) {
	var fired atomic.Int32
	h := NewHoldTrigger(30*time.Millisecond, func() { fired.Add(1) })

	h.Press()
	h.Press()
	h.Press()

	require.Eventually(t, func() bool { return fired.Load() >= 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "pressing during a hold must not arm extra timers")
}

func TestHoldTriggerStaleTimerCannotFireNewPress(t *testing.T) {
	var fired atomic.Int32
	h := NewHoldTrigger(40*time.Millisecond, func() { fired.Add(1) })

	// First gesture released immediately; on a loaded scheduler its timer
	// callback can still be pending at this point.
	h.Press()
	h.mu.Lock()
	stale := h.gen
	h.mu.Unlock()
	h.Release()

	h.Press()
	// Deliver the superseded callback by hand, as the racing timer would.
	h.fire(stale)
	assert.Equal(t, int32(0), fired.Load(), "superseded timer fired the new gesture")

	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond, "current gesture never fired")
}

func TestHoldTriggerProgressResetsOnRelease(t *testing.T) {
	var last atomic.Value
	h := NewHoldTrigger(200*time.Millisecond, func() {},
		WithProgress(func(f float64) { last.Store(f) }))

	h.Press()
	time.Sleep(50 * time.Millisecond)
	h.Release()

	v, ok := last.Load().(float64)
	require.True(t, ok, "progress callback never ran")
	assert.Equal(t, 0.0, v, "release must reset the progress indicator")
}
