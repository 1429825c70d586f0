// Package probe implements C2: the concurrent latency-probe engine. It
// drives bounded-concurrency probes over TCP, HTTP, or ICMP, aggregates
// per-endpoint Measurements, applies the admission filters of spec §3.I1,
// and supports early-stop once enough endpoints qualify.
package probe

import (
	"time"

	"github.com/ekobres/edgerank/model"
)

// Mode selects the probe variant (spec §4.2).
type Mode int

const (
	ModeTCPConnect Mode = iota
	ModeHTTPHeadPlaintext
	ModeHTTPHeadTLS
	ModeICMPEcho
)

// Policy configures a probe run (spec §4.2).
type Policy struct {
	Mode Mode

	AttemptsPerEndpoint uint16
	PortDefault         uint16
	Timeout             time.Duration
	Concurrency         int

	DelayMinMs  float64
	DelayMaxMs  float64
	LossMax     float64
	ColoFilter  map[string]struct{} // nil/empty = inactive
	AcceptedHTTPStatus map[int]struct{}

	EarlyStopSuccess uint32 // 0 = disabled

	URLsForHTTP  []string // round-robin when len > 1
	InterfaceBind string

	// InterAttemptPause is the spacing after a successful attempt before
	// the next attempt against the same endpoint (~200ms TCP/HTTP, ~0 ICMP).
	InterAttemptPause time.Duration
}

// DefaultAcceptedHTTPStatus is {200, 301, 302} per spec §4.2/§9 (the
// README-vs-README ambiguity is fixed to this set, not "all 2xx/3xx").
func DefaultAcceptedHTTPStatus() map[int]struct{} {
	return map[int]struct{}{200: {}, 301: {}, 302: {}}
}

// DefaultPolicy returns the policy defaults named throughout spec §4.2/§6.
func DefaultPolicy() Policy {
	return Policy{
		Mode:                ModeTCPConnect,
		AttemptsPerEndpoint: 4,
		PortDefault:         model.DefaultTLSPort,
		Timeout:             2000 * time.Millisecond,
		Concurrency:         256,
		DelayMinMs:          0,
		DelayMaxMs:          2000,
		LossMax:             1.0,
		AcceptedHTTPStatus:  DefaultAcceptedHTTPStatus(),
		InterAttemptPause:   200 * time.Millisecond,
	}
}
