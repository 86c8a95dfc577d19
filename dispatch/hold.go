package dispatch

import (
	"sync"
	"time"
)

// DefaultHoldDuration is how long the panic control must be held before the
// event fires.
const DefaultHoldDuration = 900 * time.Millisecond

// HoldTrigger is the press-and-hold confirmation gesture. A press starts a
// timer; releasing before the deadline cancels with no event; a hold that
// survives the full duration fires exactly once. A simple tap never fires.
type HoldTrigger struct {
	duration   time.Duration
	onFire     func()
	onProgress func(fraction float64)

	mu      sync.Mutex
	timer   *time.Timer
	pressed bool
	done    chan struct{}
	// gen invalidates timer callbacks from superseded gestures: a timer
	// armed before a release must not fire the press that follows it.
	gen uint64
}

// HoldOption configures a HoldTrigger.
type HoldOption func(*HoldTrigger)

// WithProgress installs a callback that receives fill fractions in [0,1]
// while the control is held, for the UI progress indicator.
func WithProgress(fn func(fraction float64)) HoldOption {
	return func(h *HoldTrigger) { h.onProgress = fn }
}

// NewHoldTrigger creates a trigger that calls onFire after the control has
// been held for duration.
func NewHoldTrigger(duration time.Duration, onFire func(), opts ...HoldOption) *HoldTrigger {
	if duration <= 0 {
		duration = DefaultHoldDuration
	}
	h := &HoldTrigger{duration: duration, onFire: onFire}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Press starts the hold. A press while already held is ignored.
func (h *HoldTrigger) Press() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pressed {
		return
	}
	h.pressed = true
	h.gen++
	gen := h.gen
	h.done = make(chan struct{})
	h.timer = time.AfterFunc(h.duration, func() { h.fire(gen) })
	if h.onProgress != nil {
		go h.reportProgress(h.done)
	}
}

// Release cancels a pending hold. Releasing when nothing is pending, or after
// the trigger already fired, is a no-op.
func (h *HoldTrigger) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.pressed {
		return
	}
	h.pressed = false
	h.gen++
	h.timer.Stop()
	close(h.done)
	if h.onProgress != nil {
		h.onProgress(0)
	}
}

func (h *HoldTrigger) fire(gen uint64) {
	h.mu.Lock()
	if !h.pressed || gen != h.gen {
		// Raced with Release, or the timer belongs to an earlier gesture.
		h.mu.Unlock()
		return
	}
	h.pressed = false
	close(h.done)
	h.mu.Unlock()

	if h.onProgress != nil {
		h.onProgress(1)
	}
	h.onFire()
}

func (h *HoldTrigger) reportProgress(done chan struct{}) {
	start := time.Now()
	ticker := time.NewTicker(h.duration / 20)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			fraction := float64(time.Since(start)) / float64(h.duration)
			if fraction > 1 {
				fraction = 1
			}
			h.onProgress(fraction)
		}
	}
}
