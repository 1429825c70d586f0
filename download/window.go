package download

import "time"

// sample is a (time, cumulative bytes) observation.
type sample struct {
	t     time.Time
	bytes int64
}

// slidingWindow keeps samples covering the most recent windowDur (spec
// §4.3: 500ms). LiveMBs is (bytes_last-bytes_first)/(t_last-t_first) in
// MB/s, the display rate; it is independent of the EWMA smoother.
type slidingWindow struct {
	windowDur time.Duration
	samples   []sample
}

func newSlidingWindow(windowDur time.Duration) *slidingWindow {
	return &slidingWindow{windowDur: windowDur}
}

func (w *slidingWindow) Add(t time.Time, cumBytes int64) {
	w.samples = append(w.samples, sample{t: t, bytes: cumBytes})
	cutoff := t.Add(-w.windowDur)
	i := 0
	for i < len(w.samples) && w.samples[i].t.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.samples = w.samples[i:]
	}
}

// LiveMBs returns the current window's rate in MB/s, or 0 if fewer than
// two samples are held.
func (w *slidingWindow) LiveMBs() float64 {
	if len(w.samples) < 2 {
		return 0
	}
	first, last := w.samples[0], w.samples[len(w.samples)-1]
	dt := last.t.Sub(first.t).Seconds()
	if dt <= 0 {
		return 0
	}
	return float64(last.bytes-first.bytes) / dt / bytesPerMB
}

// ewma smooths per-slice byte-rate deltas (spec §4.3: ~100ms slices),
// independently of the sliding-window's cumulative-trim reading. Stage
// feeds it once per slice but does not read MBs: the live progress figure
// is the sliding window's LiveMBs, not this smoothed value.
type ewma struct {
	alpha     float64
	value     float64
	primed    bool
	lastT     time.Time
	lastBytes int64
}

// newEWMA constructs a smoother with a fixed alpha of 0.35, which gives a
// smoothing half-life of about 1.6 observations (slice intervals).
func newEWMA() *ewma {
	return &ewma{alpha: 0.35}
}

func (e *ewma) Observe(t time.Time, cumBytes int64) {
	if !e.primed {
		e.lastT, e.lastBytes, e.primed = t, cumBytes, true
		return
	}
	dt := t.Sub(e.lastT).Seconds()
	if dt <= 0 {
		return
	}
	instMBs := float64(cumBytes-e.lastBytes) / dt / bytesPerMB
	e.value = e.alpha*instMBs + (1-e.alpha)*e.value
	e.lastT, e.lastBytes = t, cumBytes
}

func (e *ewma) MBs() float64 { return e.value }
