package download

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ekobres/edgerank/control"
	"github.com/ekobres/edgerank/model"
	"github.com/ekobres/edgerank/probe"
)

const (
	windowDur  = 500 * time.Millisecond
	sliceDur   = 100 * time.Millisecond
	readBuf    = 64 * 1024
)

// SpeedSet is the sequentially-written, C3-ordered set of qualified
// Measurements. Unlike DelaySet it needs no lock: C3 runs strictly
// serially across endpoints by design (spec §4.3 — parallel downloads
// interfere with each other's rate readings).
type SpeedSet struct {
	rows []model.Measurement
}

func (s *SpeedSet) Add(m model.Measurement) { s.rows = append(s.rows, m) }
func (s *SpeedSet) Len() int                { return len(s.rows) }

// Sorted returns a copy ordered by the §3.I3 composite ranking key.
func (s *SpeedSet) Sorted() []model.Measurement {
	out := make([]model.Measurement, len(s.rows))
	copy(out, s.rows)
	sort.SliceStable(out, func(i, j int) bool { return model.Less(out[i], out[j]) })
	return out
}

// Stage runs C3 over a sorted DelaySet.
type Stage struct {
	Policy   Policy
	Deadline *control.DeadlineFlag
	Progress control.ProgressSink

	rrIndex atomic.Uint64
}

// Run iterates candidates in order (the sort produced at end-of-C2),
// measuring throughput sequentially until TargetQualified admissions,
// candidate exhaustion, or the deadline (spec §4.3).
func (st *Stage) Run(ctx context.Context, candidates []model.Measurement) *SpeedSet {
	out := &SpeedSet{}

	for _, cand := range candidates {
		if st.Deadline.IsSet() || ctx.Err() != nil {
			break
		}
		if st.Policy.TargetQualified > 0 && uint32(out.Len()) >= st.Policy.TargetQualified {
			break
		}

		if cand.Colo != "" && len(st.Policy.ColoFilter) > 0 {
			if _, ok := st.Policy.ColoFilter[cand.Colo]; !ok {
				continue
			}
		}

		measured, ok := st.measureOne(ctx, cand)
		if !ok {
			continue
		}
		if measured.DownloadMBs != nil && *measured.DownloadMBs >= st.Policy.SpeedMinMBs {
			out.Add(measured)
			if st.Progress != nil {
				st.Progress.Report(control.Progress{Qualified: int64(out.Len())})
			}
		}
	}

	return out
}

// measureOne streams one endpoint's download, returning the updated
// Measurement (with DownloadMBs always set when ok is true; it is 0 when
// the body yielded no post-warmup byte) and whether the attempt completed
// well enough to be considered at all (false on connection failure / colo
// mismatch).
func (st *Stage) measureOne(ctx context.Context, cand model.Measurement) (model.Measurement, bool) {
	target := st.pickURL()
	if target == "" {
		return cand, false
	}
	u, err := url.Parse(target)
	if err != nil {
		return cand, false
	}

	runCtx, cancel := context.WithTimeout(ctx, st.Policy.TestDuration+st.Policy.Warmup+5*time.Second)
	defer cancel()

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if st.Policy.InterfaceBind != "" {
		// Interface/local-IP binding shares the probe package's resolver
		// so both stages bind identically (spec §5).
		if local, err := probe.ResolveBindAddr(st.Policy.InterfaceBind); err == nil {
			dialer.LocalAddr = local
		}
	}

	endpointAddr := cand.Endpoint.NetAddr()
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, endpointAddr)
		},
		TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
	}
	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(runCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return cand, false
	}
	req.Header.Set("User-Agent", "edgerank/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return cand, false
	}
	defer resp.Body.Close()

	if cand.Colo == "" && len(st.Policy.ColoFilter) > 0 {
		colo := probe.ExtractColo(resp)
		if colo == "" {
			return cand, false
		}
		if _, ok := st.Policy.ColoFilter[colo]; !ok {
			cand.Colo = colo
			return cand, false
		}
		cand.Colo = colo
	}

	mbs := st.streamAndMeasure(runCtx, resp.Body)
	cand.DownloadMBs = &mbs
	return cand, true
}

func (st *Stage) pickURL() string {
	if len(st.Policy.URLs) == 0 {
		return ""
	}
	if len(st.Policy.URLs) == 1 {
		return st.Policy.URLs[0]
	}
	idx := st.rrIndex.Add(1) - 1
	return st.Policy.URLs[idx%uint64(len(st.Policy.URLs))]
}

// streamAndMeasure reads body, maintaining a sliding window and an EWMA
// while accumulating the measurement window's byte count after Warmup
// elapses, per spec §4.3 steps 4-6. It returns the final MB/s.
func (st *Stage) streamAndMeasure(ctx context.Context, body io.Reader) float64 {
	window := newSlidingWindow(windowDur)
	smoother := newEWMA()

	buf := make([]byte, readBuf)
	start := time.Now()
	lastSlice := start
	lastReport := start

	var total int64
	var measuredBytes int64
	var measureStart time.Time
	measuring := false

	for {
		select {
		case <-ctx.Done():
			return st.finalize(measuring, measuredBytes, measureStart, time.Now())
		default:
		}
		if st.Deadline.IsSet() {
			return st.finalize(measuring, measuredBytes, measureStart, time.Now())
		}
		if time.Since(start) >= st.Policy.TestDuration+st.Policy.Warmup {
			return st.finalize(measuring, measuredBytes, measureStart, time.Now())
		}

		n, err := body.Read(buf)
		now := time.Now()
		if n > 0 {
			total += int64(n)
			if !measuring && time.Since(start) >= st.Policy.Warmup {
				measuring = true
				measureStart = now
			}
			if measuring {
				measuredBytes += int64(n)
			}

			if now.Sub(lastSlice) >= sliceDur {
				smoother.Observe(now, total)
				lastSlice = now
			}
			window.Add(now, total)

			if st.Progress != nil && now.Sub(lastReport) >= sliceDur {
				live := window.LiveMBs()
				st.Progress.Report(control.Progress{LiveMBs: &live})
				lastReport = now
			}
		}
		if err != nil {
			return st.finalize(measuring, measuredBytes, measureStart, now)
		}
	}
}

func (st *Stage) finalize(measuring bool, measuredBytes int64, measureStart, end time.Time) float64 {
	if !measuring || measuredBytes == 0 {
		return 0
	}
	elapsed := end.Sub(measureStart).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(measuredBytes) / elapsed / bytesPerMB
}
