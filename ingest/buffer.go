package ingest

import (
	"context"
	"math/rand"

	"github.com/ekobres/edgerank/model"
)

// IpBuffer is a bounded, single-producer multi-consumer channel of
// Endpoint values. Producer completion is signaled by closing the
// channel; consumers must tolerate early close (spec §3, §5).
type IpBuffer struct {
	ch chan model.Endpoint
}

// NewIpBuffer returns a buffer sized to `bound` (a small multiple of the
// probe concurrency, per spec §4.1's backpressure guidance).
func NewIpBuffer(bound int) *IpBuffer {
	if bound < 1 {
		bound = 1
	}
	return &IpBuffer{ch: make(chan model.Endpoint, bound)}
}

// Chan exposes the receive side for consumers.
func (b *IpBuffer) Chan() <-chan model.Endpoint {
	return b.ch
}

// Close signals producer completion.
func (b *IpBuffer) Close() {
	close(b.ch)
}

// Plan is everything the producer needs to drain: direct endpoints plus
// CIDR specs (each sampled lazily as the producer reaches it).
type Plan struct {
	Direct     []model.Endpoint
	Specs      []model.CidrSpec
	DefaultPort uint16
	AllV4       bool // bypass sampling for v4 specs; emit every host address
}

// EstimatedCount is a best-effort total for progress rendering only;
// consumers must not rely on it being exact (spec §3).
func (p Plan) EstimatedCount() int {
	n := len(p.Direct)
	for _, s := range p.Specs {
		if p.AllV4 && s.Family == model.FamilyV4 {
			if size, exact := s.PoolSize(); exact {
				n += int(size)
				continue
			}
		}
		if s.SampleCount != nil {
			n += int(*s.SampleCount)
			continue
		}
		n += int(DefaultSampleCount(s))
	}
	return n
}

// Produce drains Plan into buf, sampling each CidrSpec as it is reached,
// then closes buf. It does not block indefinitely: a full buffer simply
// means the send blocks until a consumer drains it (that IS the
// backpressure mechanism), but Produce still respects ctx/deadline
// cancellation between sends so it never blocks forever once told to
// stop. rng drives sampling; pass a process-seeded *rand.Rand.
func Produce(ctx context.Context, buf *IpBuffer, plan Plan, rng *rand.Rand, stopped func() bool) {
	defer buf.Close()

	send := func(ep model.Endpoint) bool {
		select {
		case buf.ch <- ep:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, ep := range plan.Direct {
		if stopped() || !send(ep) {
			return
		}
	}

	for _, spec := range plan.Specs {
		if stopped() {
			return
		}
		port := plan.DefaultPort

		if plan.AllV4 && spec.Family == model.FamilyV4 {
			for _, ep := range enumerateAll(spec, port) {
				if stopped() || !send(ep) {
					return
				}
			}
			continue
		}

		want := spec.SampleCount
		var n uint32
		if want != nil {
			n = *want
		} else {
			n = DefaultSampleCount(spec)
		}

		for _, ep := range Sample(spec, n, rng, port) {
			if stopped() || !send(ep) {
				return
			}
		}
	}
}

// enumerateAll emits every host address in spec's pool, skipping network
// and broadcast for IPv4 prefixes <= /30, subject to the caller applying
// any global limits separately.
func enumerateAll(spec model.CidrSpec, port uint16) []model.Endpoint {
	base := spec.Network.Masked().Addr()
	hostBits := spec.HostBits()
	if hostBits <= 0 {
		return []model.Endpoint{{Addr: base, Port: port}}
	}
	pool := uint64(1) << uint(hostBits)
	skipEdges := spec.Network.Bits() <= 30

	out := make([]model.Endpoint, 0, pool)
	for i := uint64(0); i < pool; i++ {
		if skipEdges && (i == 0 || i == pool-1) {
			continue
		}
		out = append(out, model.Endpoint{Addr: addrAt(base, i), Port: port})
	}
	return out
}
