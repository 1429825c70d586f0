package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/ekobres/edgerank/model"
)

// icmpVariant implements the optional ICMP_ECHO mode: a single ICMP echo
// request per attempt via pro-bing, adapted from doublezerod's
// DefaultProbeFunc (internal/probing/default.go), which builds one Pinger
// per probe with Count=1 and an interface/source binding. Colo is never
// populated for this mode.
type icmpVariant struct {
	timeout time.Duration
	iface   string
}

func newICMPVariant(p Policy) *icmpVariant {
	return &icmpVariant{timeout: p.Timeout, iface: p.InterfaceBind}
}

func (v *icmpVariant) ProbeOne(ctx context.Context, endpoint model.Endpoint, _ uint64) AttemptOutcome {
	pinger, err := probing.NewPinger(endpoint.Addr.String())
	if err != nil {
		return AttemptOutcome{OK: false}
	}
	pinger.Count = 1
	pinger.Timeout = v.timeout
	if v.iface != "" {
		pinger.InterfaceName = v.iface
	}
	// Privileged (raw-socket) mode; callers must run PreflightICMP first so
	// a missing CAP_NET_RAW surfaces as a config error, not a silent
	// per-attempt failure.
	pinger.SetPrivileged(true)

	if err := pinger.RunWithContext(ctx); err != nil {
		return AttemptOutcome{OK: false}
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return AttemptOutcome{OK: false}
	}
	return AttemptOutcome{OK: true, ElapsedMS: float64(stats.AvgRtt.Microseconds()) / 1000.0}
}

// PreflightICMP confirms the process can open a raw ICMP socket before C2
// starts, so a missing CAP_NET_RAW (or the Linux unprivileged-ping sysctl)
// produces a config error up front rather than every attempt silently
// failing (spec §4.2's ICMP gating).
func PreflightICMP() error {
	conn, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return fmt.Errorf("ICMP_ECHO requires raw-socket privilege (CAP_NET_RAW or root): %w", err)
	}
	conn.Close()
	return nil
}
