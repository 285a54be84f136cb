// Package pacing implements the condition-variable-driven FPS timer
// that paces the emit thread, with an immediate-wake override so
// control-plane events (beat-driven skips, fps changes) can cut a
// wait short.
package pacing

import (
	"sync"
	"time"
)

// Loop owns the shared fps/wake-up state behind one mutex and
// condition variable. Timer and Controller are two narrow views over
// the same Loop: the emit thread uses Timer, every other goroutine
// uses Controller.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	fps     float64
	wakeNow bool
}

// New returns a Loop at the given initial fps (must be > 0).
func New(fps float64) *Loop {
	l := &Loop{fps: fps}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Timer is the emit thread's view: BeginLoop/EndLoop bracket one tick.
type Timer struct{ l *Loop }

// Controller is every other goroutine's view: SetFPS/WakeUpNow.
type Controller struct{ l *Loop }

// Timer returns the Timer view.
func (l *Loop) Timer() Timer { return Timer{l} }

// Controller returns the Controller view.
func (l *Loop) Controller() Controller { return Controller{l} }

// BeginLoop records the start instant of a pacing tick.
func (t Timer) BeginLoop() time.Time {
	return time.Now()
}

// EndLoop blocks until 1/fps has elapsed since start, or until
// WakeUpNow is called, whichever comes first. It supports fps up to
// and beyond 240Hz since each wake recomputes the remaining wait
// rather than sleeping the whole period up front.
func (t Timer) EndLoop(start time.Time) {
	l := t.l
	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		if l.wakeNow {
			l.wakeNow = false
			return
		}
		period := time.Duration(float64(time.Second) / l.fps)
		remaining := period - time.Since(start)
		if remaining <= 0 {
			return
		}
		// sync.Cond has no timed wait; a self-cancelling timer that
		// broadcasts on expiry gives EndLoop a wake source even when
		// nothing else signals it, without busy-waiting.
		timer := time.AfterFunc(remaining, func() {
			l.mu.Lock()
			l.cond.Broadcast()
			l.mu.Unlock()
		})
		l.cond.Wait()
		timer.Stop()
	}
}

// SetFPS updates the target fps and wakes any waiter so it can
// recompute its remaining budget against the new rate.
func (c Controller) SetFPS(fps float64) {
	c.l.mu.Lock()
	c.l.fps = fps
	c.l.mu.Unlock()
	c.l.cond.Broadcast()
}

// FPS returns the current target fps.
func (c Controller) FPS() float64 {
	c.l.mu.Lock()
	defer c.l.mu.Unlock()
	return c.l.fps
}

// WakeUpNow short-circuits any in-progress EndLoop wait.
func (c Controller) WakeUpNow() {
	c.l.mu.Lock()
	c.l.wakeNow = true
	c.l.mu.Unlock()
	c.l.cond.Broadcast()
}
