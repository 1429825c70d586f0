package probe

import (
	"context"
	"net"
	"time"

	"github.com/ekobres/edgerank/model"
)

// tcpVariant implements TCP_CONNECT: success = connection established
// before timeout; delay = wall-clock from immediately-before-connect to
// established (spec §4.2). Colo is always left empty for this mode —
// spec §9 leaves that unspecified and flags it safe to leave empty.
type tcpVariant struct {
	dialer *net.Dialer
}

func newTCPVariant(p Policy) *tcpVariant {
	d := &net.Dialer{Timeout: p.Timeout}
	if p.InterfaceBind != "" {
		if local, err := ResolveBindAddr(p.InterfaceBind); err == nil {
			d.LocalAddr = local
		}
	}
	return &tcpVariant{dialer: d}
}

func (v *tcpVariant) ProbeOne(ctx context.Context, endpoint model.Endpoint, _ uint64) AttemptOutcome {
	start := time.Now()
	conn, err := v.dialer.DialContext(ctx, "tcp", endpoint.NetAddr())
	elapsed := time.Since(start).Seconds() * 1000
	if err != nil {
		return AttemptOutcome{OK: false}
	}
	conn.Close()
	return AttemptOutcome{OK: true, ElapsedMS: elapsed}
}

// ResolveBindAddr resolves an interface name or literal local IP to a
// *net.TCPAddr suitable for net.Dialer.LocalAddr (spec §5's interface_bind
// requirement, applied by the TCP and HTTP probe variants and the download
// stage; the ICMP variant passes the value to pro-bing as an interface
// name instead).
func ResolveBindAddr(ifaceOrIP string) (*net.TCPAddr, error) {
	if ip := net.ParseIP(ifaceOrIP); ip != nil {
		return &net.TCPAddr{IP: ip}, nil
	}
	iface, err := net.InterfaceByName(ifaceOrIP)
	if err != nil {
		return nil, err
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip != nil {
			return &net.TCPAddr{IP: ip}, nil
		}
	}
	return nil, &net.AddrError{Err: "no usable address", Addr: ifaceOrIP}
}
