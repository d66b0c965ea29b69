// Package frame provides a repeating, visibility- and rate-aware callback
// driver for anything that must redraw per rendered frame (overlays, charts)
// without busy-spinning a hidden surface.
package frame

import (
	"sync"
	"time"
)

// FrameClockPeriod is the nominal frame-presentation period the loop
// schedules at, a 60 Hz assumption. It is also the delta reported to the very
// first callback invocation, when no prior timestamp exists.
const FrameClockPeriod = time.Second / 60

// DefaultTargetFPS is used by NewThrottledLoop when given a non-positive
// target.
const DefaultTargetFPS = 30

// Callback receives the elapsed wall time since the previous invocation.
type Callback func(delta time.Duration)

// Throttle is the minimal fixed-interval gate for hosts that already run
// their own frame loop and just need a cheap update test. Not safe for
// concurrent use; call it from the host's loop only.
type Throttle struct {
	interval time.Duration
	last     time.Time
}

// NewThrottle returns a gate that passes at most once per 1/targetFPS
// seconds. A non-positive target admits every timestamp.
func NewThrottle(targetFPS int) *Throttle {
	t := &Throttle{}
	if targetFPS > 0 {
		t.interval = time.Second / time.Duration(targetFPS)
	}
	return t
}

// ShouldUpdate reports whether enough time has elapsed since the last
// admitted timestamp, and records now as the last one when it has.
func (t *Throttle) ShouldUpdate(now time.Time) bool {
	if t.interval > 0 && !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// Loop drives a callback on every frame of an internal frame clock while an
// active flag is set. A throttled loop additionally rate-limits callback
// invocations and halts scheduling entirely while the hosting surface is not
// visible, so a hidden tab costs nothing. Deactivation cancels any pending
// frame; see SetActive for the in-flight delivery caveat.
type Loop struct {
	mu sync.Mutex

	cb   Callback
	gate *Throttle // nil = unthrottled

	active  bool
	visible bool
	gen     int // bumped on every halt; in-flight frames check it and bail

	lastInvoke time.Time
	stop       chan struct{}
}

// NewLoop returns an inactive, unthrottled loop for cb.
func NewLoop(cb Callback) *Loop {
	return &Loop{cb: cb, visible: true}
}

// NewThrottledLoop returns an inactive loop that invokes cb at most targetFPS
// times per second and stops scheduling while invisible.
func NewThrottledLoop(cb Callback, targetFPS int) *Loop {
	if targetFPS <= 0 {
		targetFPS = DefaultTargetFPS
	}
	return &Loop{cb: cb, gate: NewThrottle(targetFPS), visible: true}
}

// SetActive starts or halts the loop. Halting cancels the pending frame: no
// frame scheduled after the halt will invoke the callback. A frame that has
// already passed its liveness check may still complete one in-flight callback
// concurrently; callers that need a strict cutoff must serialize the callback
// with their own teardown, as the single-threaded hosts this drives do.
func (l *Loop) SetActive(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = active
	l.reconcileLocked()
}

// SetVisible feeds the host's visibility signal. While invisible the loop
// stops scheduling entirely rather than skipping callbacks, and resumes
// automatically when visibility returns (if still active).
func (l *Loop) SetVisible(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = visible
	l.reconcileLocked()
}

// Stop is a terminal SetActive(false).
func (l *Loop) Stop() {
	l.SetActive(false)
}

// reconcileLocked starts or halts the scheduling goroutine to match the
// active && visible condition. Caller must hold l.mu.
func (l *Loop) reconcileLocked() {
	want := l.active && l.visible
	running := l.stop != nil
	if want == running {
		return
	}
	if !want {
		close(l.stop)
		l.stop = nil
		l.gen++
		return
	}
	stop := make(chan struct{})
	l.stop = stop
	go l.run(l.gen, stop)
}

func (l *Loop) run(gen int, stop chan struct{}) {
	ticker := time.NewTicker(FrameClockPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if !l.tick(gen, now) {
				return
			}
		}
	}
}

// tick processes one frame of the clock: checks liveness, applies the rate
// gate, and invokes the callback with the measured delta. Skipped frames
// still keep the loop running. Returns false once this generation has been
// cancelled. Exercised directly by tests with synthetic timestamps.
func (l *Loop) tick(gen int, now time.Time) bool {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return false
	}
	if l.gate != nil && !l.gate.ShouldUpdate(now) {
		l.mu.Unlock()
		return true
	}
	delta := FrameClockPeriod
	if !l.lastInvoke.IsZero() {
		delta = now.Sub(l.lastInvoke)
	}
	l.lastInvoke = now
	cb := l.cb
	l.mu.Unlock()

	if cb != nil {
		cb(delta)
	}
	return true
}
