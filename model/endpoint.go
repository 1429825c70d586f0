// Package model defines the shared vocabulary that flows between the
// ingestion, probe, and download stages: Endpoint, CidrSpec, and
// Measurement.
package model

import (
	"fmt"
	"net"
	"net/netip"
)

// DefaultTLSPort and DefaultPlaintextPort are the port values assumed when
// an ingestion source does not supply one.
const (
	DefaultTLSPort       uint16 = 443
	DefaultPlaintextPort uint16 = 80
)

// Endpoint is an immutable (address, port) pair to be probed.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

// String renders the endpoint as "ip:port", bracketing IPv6 addresses.
func (e Endpoint) String() string {
	if e.Addr.Is4() {
		return fmt.Sprintf("%s:%d", e.Addr, e.Port)
	}
	return fmt.Sprintf("[%s]:%d", e.Addr, e.Port)
}

// NetAddr returns "ip:port" suitable for net.Dial, bracketing IPv6.
func (e Endpoint) NetAddr() string {
	return net.JoinHostPort(e.Addr.String(), fmt.Sprintf("%d", e.Port))
}

// Family indicates whether a CidrSpec targets IPv4 or IPv6.
type Family int

const (
	FamilyV4 Family = iota
	FamilyV6
)

// CidrSpec is a parsed, not-yet-sampled CIDR range. SampleCount is nil when
// the token omitted "=N" and the sampler must derive a default.
type CidrSpec struct {
	Network    netip.Prefix
	Family     Family
	SampleCount *uint32
}

// HostBits returns the number of host bits in the prefix (32-PrefixLen for
// v4, 128-PrefixLen for v6).
func (c CidrSpec) HostBits() int {
	bits := 32
	if c.Family == FamilyV6 {
		bits = 128
	}
	return bits - c.Network.Bits()
}

// PoolSize returns 2^HostBits, or 0 if the pool is too large to represent
// exactly in a uint64 (host bits >= 64), in which case callers must use the
// rejection-free draw regime unconditionally.
func (c CidrSpec) PoolSize() (size uint64, exact bool) {
	hb := c.HostBits()
	if hb < 0 {
		return 0, true
	}
	if hb >= 64 {
		return 0, false
	}
	return uint64(1) << uint(hb), true
}
