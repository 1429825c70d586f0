// Package download implements C3: sequential per-endpoint throughput
// measurement with sliding-window/EWMA rate estimation, minimum-speed
// gating, and final ranking (spec §4.3).
package download

import "time"

// bytesPerMB resolves spec §9's open question: 1 MiB = 1,048,576 bytes,
// the source-favored choice, used for every SpeedMBps computation.
const bytesPerMB = 1048576

// Policy configures the download stage (spec §4.3).
type Policy struct {
	URLs              []string // round-robin across endpoints
	TestDuration      time.Duration
	SpeedMinMBs       float64
	TargetQualified   uint32
	Warmup            time.Duration
	InterfaceBind     string
	ColoFilter        map[string]struct{}
}

// DefaultPolicy returns the defaults named in spec §4.3/§6.
func DefaultPolicy() Policy {
	return Policy{
		TestDuration:    10 * time.Second,
		SpeedMinMBs:     0,
		TargetQualified: 10,
		Warmup:          3 * time.Second,
	}
}
