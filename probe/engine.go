package probe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/ekobres/edgerank/control"
	"github.com/ekobres/edgerank/ingest"
	"github.com/ekobres/edgerank/model"
)

// maxDelaySetMultiple caps DelaySet growth at this multiple of
// EarlyStopSuccess, guarding against misconfiguration (spec §5).
const maxDelaySetMultiple = 10

// DelaySet is the append-only, concurrently-written collector of
// qualified Measurements produced by C2. Workers append via Add; the
// engine sorts once at end-of-stage.
type DelaySet struct {
	mu   sync.Mutex
	rows []model.Measurement
}

func (d *DelaySet) Add(m model.Measurement) {
	d.mu.Lock()
	d.rows = append(d.rows, m)
	d.mu.Unlock()
}

func (d *DelaySet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rows)
}

// SortedByDelay returns a copy sorted ascending by (AvgDelayMs, LossRate),
// the end-of-C2 ordering C3 consumes (spec §4.2).
func (d *DelaySet) SortedByDelay() []model.Measurement {
	d.mu.Lock()
	out := make([]model.Measurement, len(d.rows))
	copy(out, d.rows)
	d.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return model.DelayLess(out[i], out[j]) })
	return out
}

// Engine drives C2: Run consumes endpoints from an IpBuffer via a pond
// worker pool (the "dynamic work-stealing" shape of spec §4.2 — seed N
// initial tasks, each completion lets the pool pull its next item),
// aggregates attempts per endpoint, and applies the admission filters.
type Engine struct {
	Policy   Policy
	Deadline *control.DeadlineFlag
	Success  *control.SuccessCounter
	Progress control.ProgressSink
}

// Run drains buf, probing each endpoint with p.Policy.AttemptsPerEndpoint
// attempts, and returns the qualified set. It stops dispatching new
// endpoints once Deadline fires or Success reaches EarlyStopSuccess
// (endpoints received after that are discarded); already-dispatched
// endpoints are allowed to finish (spec §4.2).
func (e *Engine) Run(ctx context.Context, buf *ingest.IpBuffer) *DelaySet {
	variant := NewVariant(e.Policy)
	delaySet := &DelaySet{}

	concurrency := e.Policy.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	pool := pond.NewPool(concurrency)
	// slots bounds in-flight endpoints to concurrency: dispatch blocks until
	// a running probe completes and releases its slot.
	slots := make(chan struct{}, concurrency)

	var attempted, qualified int64
	var attemptedMu sync.Mutex
	reportProgress := func() {
		if e.Progress == nil {
			return
		}
		attemptedMu.Lock()
		p := control.Progress{Attempted: attempted, Qualified: qualified}
		attemptedMu.Unlock()
		e.Progress.Report(p)
	}

	dedupCap := uint32(0)
	if e.Policy.EarlyStopSuccess > 0 {
		dedupCap = e.Policy.EarlyStopSuccess * maxDelaySetMultiple
	}

dispatch:
	for ep := range buf.Chan() {
		if e.Deadline.IsSet() {
			break dispatch
		}
		if e.Success.Reached(e.Policy.EarlyStopSuccess) {
			break dispatch
		}
		if dedupCap > 0 && uint32(delaySet.Len()) >= dedupCap {
			break dispatch
		}

		endpoint := ep
		slots <- struct{}{}
		pool.Submit(func() {
			defer func() { <-slots }()
			m := probeEndpoint(ctx, variant, endpoint, e.Policy, e.Deadline)

			attemptedMu.Lock()
			attempted++
			attemptedMu.Unlock()

			if m.Received > 0 && m.Qualifies(e.Policy.DelayMinMs, e.Policy.DelayMaxMs, e.Policy.LossMax, e.Policy.ColoFilter) {
				delaySet.Add(m)
				e.Success.Add(1)
				attemptedMu.Lock()
				qualified++
				attemptedMu.Unlock()
			}
			reportProgress()
		})
	}

	// Keep receiving until the producer closes buf, so a producer blocked
	// on a full buffer after an early stop can finish.
	for range buf.Chan() {
	}

	pool.StopAndWait()
	return delaySet
}

// probeEndpoint issues AttemptsPerEndpoint serial attempts against
// endpoint, pausing InterAttemptPause between successes, and aborting
// early if the colo filter rejects the endpoint's extracted colo (spec
// §4.2). Attempts stop early if the deadline fires mid-endpoint.
func probeEndpoint(ctx context.Context, variant Variant, endpoint model.Endpoint, p Policy, deadline *control.DeadlineFlag) model.Measurement {
	m := model.Measurement{Endpoint: endpoint}

	for i := uint16(0); i < p.AttemptsPerEndpoint; i++ {
		if deadline.IsSet() || ctx.Err() != nil {
			break
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		outcome := variant.ProbeOne(attemptCtx, endpoint, uint64(i))
		cancel()

		m.Sent++
		m.Attempts = append(m.Attempts, model.AttemptResult{OK: outcome.OK, ElapsedMS: outcome.ElapsedMS})

		if outcome.ColoKnownButRejected {
			// Abort remaining attempts for this endpoint; its Measurement
			// is discarded by the caller's Qualifies check (colo won't be
			// in the allowed set). Spec §4.2, flagged user-affecting by §9.
			m.Colo = outcome.Colo
			break
		}

		if outcome.OK {
			m.Received++
			m.AvgDelayMs = runningAverage(m.AvgDelayMs, m.Received, outcome.ElapsedMS)
			if outcome.Colo != "" {
				m.Colo = outcome.Colo
			}

			if i+1 < p.AttemptsPerEndpoint && p.InterAttemptPause > 0 {
				select {
				case <-time.After(p.InterAttemptPause):
				case <-ctx.Done():
					return m
				}
			}
		}
	}

	// Round to two-decimal precision for final output (spec §4.2).
	m.AvgDelayMs = round2(m.AvgDelayMs)
	return m
}

func runningAverage(prevAvg float64, countAfterThis uint16, sample float64) float64 {
	if countAfterThis <= 1 {
		return sample
	}
	n := float64(countAfterThis)
	return prevAvg + (sample-prevAvg)/n
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
