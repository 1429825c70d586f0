// Package control holds the shared control plane read by every stage: a
// one-shot deadline flag, a monotonic success counter, and a progress sink.
package control

import (
	"context"
	"sync/atomic"
	"time"
)

// DeadlineFlag is a boolean flag set once, at most, by a one-shot timer
// started at program start when a global timeout is configured. Every
// probe and download loop reads it between suspension points and winds
// down promptly once it is set.
type DeadlineFlag struct {
	flag atomic.Bool
}

// Set transitions the flag to true. Idempotent.
func (d *DeadlineFlag) Set() {
	d.flag.Store(true)
}

// IsSet reports whether the deadline has fired.
func (d *DeadlineFlag) IsSet() bool {
	return d.flag.Load()
}

// ArmTimer starts a one-shot timer that sets d after timeout elapses. It
// also stops early, without setting the flag, if ctx is canceled first
// (normal end-of-run cleanup) or if the returned stop func is called.
// Returns a no-op stop func when timeout <= 0 (no global deadline
// configured).
func (d *DeadlineFlag) ArmTimer(ctx context.Context, timeout time.Duration) (stop func()) {
	if timeout <= 0 {
		return func() {}
	}
	timer := time.NewTimer(timeout)
	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C:
			d.Set()
		case <-ctx.Done():
			timer.Stop()
		case <-done:
			timer.Stop()
		}
	}()
	return func() { close(done) }
}
