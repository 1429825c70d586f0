package model

// AttemptResult records the outcome of a single latency probe attempt.
// Kept for verbose diagnostics and tests; never serialized to CSV.
type AttemptResult struct {
	OK        bool
	ElapsedMS float64
}

// Measurement is the per-endpoint aggregate that flows between stages: C2
// fills Sent/Received/AvgDelayMs/Colo, C3 later assigns DownloadMBs.
type Measurement struct {
	Endpoint Endpoint

	Sent     uint16
	Received uint16

	// AvgDelayMs is valid only when Received > 0.
	AvgDelayMs float64

	// Colo is the Cloudflare data-center code extracted from cf-ray; empty
	// when unknown (TCP mode, or HTTP mode before a successful response).
	Colo string

	// DownloadMBs is nil until the download stage assigns it.
	DownloadMBs *float64

	Attempts []AttemptResult
}

// LossRate is derived on demand, never stored stale: 1 - received/sent.
func (m Measurement) LossRate() float64 {
	if m.Sent == 0 {
		return 1
	}
	return 1 - float64(m.Received)/float64(m.Sent)
}

// Qualifies reports whether the measurement passes the C2 admission
// filters of spec §3.I1: a non-empty success count, average delay within
// [delayMin, delayMax], loss at or below lossMax, and (if set) colo in the
// allowed set.
func (m Measurement) Qualifies(delayMin, delayMax, lossMax float64, allowedColo map[string]struct{}) bool {
	if m.Received == 0 {
		return false
	}
	if m.AvgDelayMs < delayMin || m.AvgDelayMs > delayMax {
		return false
	}
	if m.LossRate() > lossMax {
		return false
	}
	if len(allowedColo) > 0 && m.Colo != "" {
		if _, ok := allowedColo[m.Colo]; !ok {
			return false
		}
	}
	return true
}

// Less implements the §3.I3 ranking composite key: DownloadMBs descending
// (None treated as less than any Some), then AvgDelayMs ascending, then
// LossRate ascending.
func Less(a, b Measurement) bool {
	switch {
	case a.DownloadMBs == nil && b.DownloadMBs != nil:
		return false
	case a.DownloadMBs != nil && b.DownloadMBs == nil:
		return true
	case a.DownloadMBs != nil && b.DownloadMBs != nil && *a.DownloadMBs != *b.DownloadMBs:
		return *a.DownloadMBs > *b.DownloadMBs
	}
	if a.AvgDelayMs != b.AvgDelayMs {
		return a.AvgDelayMs < b.AvgDelayMs
	}
	return a.LossRate() < b.LossRate()
}

// DelayLess orders C2's end-of-stage sort: ascending (AvgDelayMs, LossRate).
func DelayLess(a, b Measurement) bool {
	if a.AvgDelayMs != b.AvgDelayMs {
		return a.AvgDelayMs < b.AvgDelayMs
	}
	return a.LossRate() < b.LossRate()
}
