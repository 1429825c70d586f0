package ingest

import (
	"math"
	"math/rand"
	"net/netip"

	"github.com/ekobres/edgerank/model"
)

// enumThreshold is T_enum from spec §4.1: pools at or below this size are
// enumerated and shuffled; larger pools use rejection-free random draw.
const enumThreshold = 1 << 16

// defaultCountsV4 is the fixed table of default sample counts for common
// IPv4 prefixes; prefixes outside it use the exponential interpolation
// below.
var defaultCountsV4 = map[int]uint32{
	24: 200,
	25: 96,
	26: 48,
	27: 24,
	28: 12,
	29: 6,
	30: 3,
	31: 2,
	32: 1,
}

// defaultCountsV6 anchors at /120, mirroring the v4 table's /24 anchor one
// nibble-equivalent step at a time.
var defaultCountsV6 = map[int]uint32{
	120: 200,
	121: 96,
	122: 48,
	123: 24,
	124: 12,
	125: 6,
	126: 3,
	127: 2,
	128: 1,
}

// Exponential interpolation constants for prefixes outside the fixed
// tables: count = round(a*exp(-k*prefix) + c). Both families use the same
// constants, and the curve is not continuous with the tables: for IPv4 it
// gives 161755 at /23 (the table gives 200 at /24), and for IPv6 it gives
// 1 for every prefix from /62 to /119 (the table gives 200 at /120).
const (
	v4A, v4K, v4C = 3.2e8, 0.33, 1.0
	v6A, v6K, v6C = 3.2e8, 0.33, 1.0
)

// DefaultSampleCount returns the sample count to use for a CidrSpec whose
// token omitted "=N", matching both families without ambiguity.
func DefaultSampleCount(spec model.CidrSpec) uint32 {
	prefix := spec.Network.Bits()

	if spec.Family == model.FamilyV4 {
		if n, ok := defaultCountsV4[prefix]; ok {
			return n
		}
		if prefix > 32 {
			return 1
		}
		return expoCount(v4A, v4K, v4C, prefix)
	}

	if n, ok := defaultCountsV6[prefix]; ok {
		return n
	}
	if prefix > 128 {
		return 1
	}
	return expoCount(v6A, v6K, v6C, prefix)
}

func expoCount(a, k, c float64, prefix int) uint32 {
	v := a*math.Exp(-k*float64(prefix)) + c
	if v < 1 {
		v = 1
	}
	return uint32(math.Round(v))
}

// Sample draws up to `want` endpoints from spec's pool using the regime
// selected by pool cardinality (spec §4.1). rng is injected for
// determinism in tests; callers use a process-seeded *rand.Rand in
// production.
func Sample(spec model.CidrSpec, want uint32, rng *rand.Rand, port uint16) []model.Endpoint {
	poolSize, exact := spec.PoolSize()

	if exact && poolSize <= enumThreshold {
		return enumerateAndShuffle(spec, want, rng, port)
	}
	return rejectionFreeDraw(spec, want, rng, port)
}

// enumerateAndShuffle materializes every host address in the pool (minus
// network/broadcast for IPv4 prefixes <= /30), shuffles, and takes
// min(want, pool).
func enumerateAndShuffle(spec model.CidrSpec, want uint32, rng *rand.Rand, port uint16) []model.Endpoint {
	base := spec.Network.Masked().Addr()
	hostBits := spec.HostBits()

	if hostBits <= 0 {
		return []model.Endpoint{{Addr: base, Port: port}}
	}

	pool := uint64(1) << uint(hostBits)
	skipEdges := spec.Family == model.FamilyV4 && spec.Network.Bits() <= 30

	addrs := make([]netip.Addr, 0, pool)
	for i := uint64(0); i < pool; i++ {
		if skipEdges && (i == 0 || i == pool-1) {
			continue
		}
		addrs = append(addrs, addrAt(base, i))
	}

	rng.Shuffle(len(addrs), func(i, j int) { addrs[i], addrs[j] = addrs[j], addrs[i] })

	n := int(want)
	if n > len(addrs) {
		n = len(addrs)
	}
	out := make([]model.Endpoint, n)
	for i := 0; i < n; i++ {
		out[i] = model.Endpoint{Addr: addrs[i], Port: port}
	}
	return out
}

// rejectionFreeDraw draws `want` uniformly random integers in
// [0, pool) (or, for pools too large to represent exactly, in the low 64
// host bits) and maps them to addresses. Duplicates are acceptable;
// the sampler does not deduplicate (spec §4.1).
func rejectionFreeDraw(spec model.CidrSpec, want uint32, rng *rand.Rand, port uint16) []model.Endpoint {
	base := spec.Network.Masked().Addr()
	hostBits := spec.HostBits()

	if hostBits <= 0 {
		return []model.Endpoint{{Addr: base, Port: port}}
	}

	out := make([]model.Endpoint, want)
	for i := range out {
		offset := randHostOffset(rng, hostBits)
		out[i] = model.Endpoint{Addr: addrAt(base, offset), Port: port}
	}
	return out
}

// randHostOffset draws a uniform random offset in [0, 2^bits) for bits
// below 64; for 64 or more host bits it returns a single uniform uint64
// draw, so only the low-order 64 host bits are ever varied.
func randHostOffset(rng *rand.Rand, bits int) uint64 {
	if bits >= 64 {
		return rng.Uint64()
	}
	return rng.Uint64() & (uint64(1)<<uint(bits) - 1)
}

// addrAt returns base + offset within base's address family, wrapping the
// low-order bits only (offset is assumed to fit within the prefix's host
// bits, so no carry into the network bits occurs).
func addrAt(base netip.Addr, offset uint64) netip.Addr {
	buf := base.AsSlice()
	// Add offset to the last 8 bytes (or fewer, for v4) as a big-endian
	// integer, with carry propagating leftward only within buf.
	carry := offset
	for i := len(buf) - 1; i >= 0 && carry != 0; i-- {
		sum := uint64(buf[i]) + (carry & 0xff)
		buf[i] = byte(sum)
		carry = (carry >> 8) + (sum >> 8)
	}
	addr, _ := netip.AddrFromSlice(buf)
	if base.Is4In6() {
		addr = netip.AddrFrom4(addr.As4())
	}
	return addr
}
