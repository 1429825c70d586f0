package control

import "sync/atomic"

// SuccessCounter is a monotonically non-decreasing count of endpoints
// admitted to DelaySet during C2. Readers test it against EarlyStopSuccess
// with a plain atomic load and no further synchronization; a read that
// races with a concurrent Add only lets a few extra in-flight probes
// complete before dispatch stops.
type SuccessCounter struct {
	n atomic.Int64
}

// Add increments the counter and returns the new value.
func (c *SuccessCounter) Add(delta int64) int64 {
	return c.n.Add(delta)
}

// Load returns the current count.
func (c *SuccessCounter) Load() int64 {
	return c.n.Load()
}

// Reached reports whether the counter has reached or passed target.
// A nil/zero target (no early-stop configured) never reports true.
func (c *SuccessCounter) Reached(target uint32) bool {
	if target == 0 {
		return false
	}
	return c.n.Load() >= int64(target)
}
