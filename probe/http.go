package probe

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ekobres/edgerank/model"
)

// httpVariant implements HTTP_HEAD_PLAINTEXT / HTTP_HEAD_TLS: a minimal
// GET with "Range: bytes=0-0" to the configured URL(s), resolving the
// host name to the target IP directly (DNS bypass). Success requires (in
// TLS mode) a completed handshake, an accepted status, and receipt of
// response headers before timeout (spec §4.2).
type httpVariant struct {
	policy Policy
	tls    bool
	urls   []*url.URL
	rr     atomic.Uint64 // round-robin index, shared across endpoints
}

func newHTTPVariant(p Policy, useTLS bool) *httpVariant {
	v := &httpVariant{policy: p, tls: useTLS}
	for _, raw := range p.URLsForHTTP {
		if u, err := url.Parse(raw); err == nil {
			v.urls = append(v.urls, u)
		}
	}
	return v
}

// pickURL returns the round-robin URL for this attempt, or the
// HTTP-ping default "http://<ip>/cdn-cgi/trace" when none is configured
// and mode is plaintext (spec §4.2).
func (v *httpVariant) pickURL(endpoint model.Endpoint) *url.URL {
	if len(v.urls) == 0 {
		if v.tls {
			return nil
		}
		return &url.URL{Scheme: "http", Host: endpoint.Addr.String(), Path: "/cdn-cgi/trace"}
	}
	if len(v.urls) == 1 {
		return v.urls[0]
	}
	idx := v.rr.Add(1) - 1
	return v.urls[idx%uint64(len(v.urls))]
}

// pinnedTransport builds a one-shot transport whose dialer ignores DNS
// resolution of u.Host and always connects to endpoint's address instead,
// while leaving TLS SNI / Host header pointed at the URL's hostname.
func (v *httpVariant) pinnedTransport(endpoint model.Endpoint) *http.Transport {
	dialer := &net.Dialer{Timeout: v.policy.Timeout}
	if v.policy.InterfaceBind != "" {
		if local, err := ResolveBindAddr(v.policy.InterfaceBind); err == nil {
			dialer.LocalAddr = local
		}
	}

	dial := func(ctx context.Context, network, _ string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, endpoint.NetAddr())
	}

	return &http.Transport{
		DialContext:         dial,
		DisableKeepAlives:   true,
		TLSHandshakeTimeout: v.policy.Timeout,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: false},
	}
}

func (v *httpVariant) ProbeOne(ctx context.Context, endpoint model.Endpoint, _ uint64) AttemptOutcome {
	target := v.pickURL(endpoint)
	if target == nil {
		return AttemptOutcome{OK: false}
	}

	u := *target
	if v.tls {
		u.Scheme = "https"
	}

	client := &http.Client{
		Timeout:   v.policy.Timeout,
		Transport: v.pinnedTransport(endpoint),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return AttemptOutcome{OK: false}
	}
	req.Header.Set("Range", "bytes=0-0")
	req.Header.Set("User-Agent", "edgerank/1.0")

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start).Seconds() * 1000
	if err != nil {
		return AttemptOutcome{OK: false}
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1))
		resp.Body.Close()
	}()

	// Subtract edge-side processing time reported via Server-Timing so
	// ElapsedMS approximates network RTT rather than RTT+server work.
	if serverMs := parseServerTiming(resp); serverMs > 0 && serverMs < elapsed {
		elapsed -= serverMs
	}

	if _, ok := v.policy.AcceptedHTTPStatus[resp.StatusCode]; !ok {
		return AttemptOutcome{OK: false}
	}

	colo := ExtractColo(resp)
	if colo != "" && len(v.policy.ColoFilter) > 0 {
		if _, allowed := v.policy.ColoFilter[colo]; !allowed {
			return AttemptOutcome{OK: false, Colo: colo, ColoKnownButRejected: true}
		}
	}

	return AttemptOutcome{OK: true, ElapsedMS: elapsed, Colo: colo}
}
