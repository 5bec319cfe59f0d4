// Package timer provides a single-shot timer whose firing and manual
// triggering are both observed through the same channel, mirroring the
// door-timeout and protocol-pacing primitive used throughout the
// elevator fleet's control loops.
package timer

import (
	"sync"
	"time"
)

// Timer fires its channel either after a configured duration elapses or
// immediately when Trigger is called, whichever happens first. Timer is
// safe for concurrent use; Channel may be read from multiple places but
// only the first receive after each Start/Trigger observes the signal.
type Timer struct {
	mu      sync.Mutex
	ch      chan struct{}
	stopped chan struct{}
}

// New returns a Timer that has not yet been started.
func New() *Timer {
	return &Timer{
		ch: make(chan struct{}, 1),
	}
}

// Channel returns the channel that receives a value when the timer fires
// or is triggered.
func (t *Timer) Channel() <-chan struct{} {
	return t.ch
}

// Start arms the timer to fire after d elapses. Any previously running
// countdown is cancelled; only the most recent Start call can deliver a
// signal.
func (t *Timer) Start(d time.Duration) {
	t.mu.Lock()
	if t.stopped != nil {
		close(t.stopped)
	}
	stopped := make(chan struct{})
	t.stopped = stopped
	t.mu.Unlock()

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			t.signal()
		case <-stopped:
		}
	}()
}

// Trigger fires the timer immediately, as if its countdown had elapsed,
// and cancels any in-flight countdown.
func (t *Timer) Trigger() {
	t.Stop()
	t.signal()
}

// Stop cancels any in-flight countdown without firing.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped != nil {
		close(t.stopped)
		t.stopped = nil
	}
}

func (t *Timer) signal() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}
