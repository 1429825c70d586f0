package ingest

import (
	"math/rand"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekobres/edgerank/model"
)

func TestDefaultSampleCountUsesFixedTable(t *testing.T) {
	spec := model.CidrSpec{Network: netip.MustParsePrefix("198.51.100.0/24"), Family: model.FamilyV4}
	assert.Equal(t, uint32(200), DefaultSampleCount(spec))

	host := model.CidrSpec{Network: netip.MustParsePrefix("198.51.100.1/32"), Family: model.FamilyV4}
	assert.Equal(t, uint32(1), DefaultSampleCount(host))
}

func TestDefaultSampleCountInterpolatesOutsideTable(t *testing.T) {
	spec := model.CidrSpec{Network: netip.MustParsePrefix("10.0.0.0/16"), Family: model.FamilyV4}
	n := DefaultSampleCount(spec)
	assert.Greater(t, n, uint32(0))
}

func TestSampleEnumeratesSmallPoolsExactlyOnce(t *testing.T) {
	spec := model.CidrSpec{Network: netip.MustParsePrefix("198.51.100.0/30"), Family: model.FamilyV4}
	rng := rand.New(rand.NewSource(1))

	// /30 has 4 addresses; skipping network+broadcast leaves 2 usable hosts.
	out := Sample(spec, 10, rng, 443)
	require.Len(t, out, 2, "enumerate-and-shuffle caps at the pool size, not `want`")

	seen := map[string]bool{}
	for _, ep := range out {
		seen[ep.Addr.String()] = true
	}
	assert.Len(t, seen, 2, "no duplicates from the enumerate regime")
}

func TestSampleRejectionFreeDrawRespectsWant(t *testing.T) {
	spec := model.CidrSpec{Network: netip.MustParsePrefix("10.0.0.0/8"), Family: model.FamilyV4}
	rng := rand.New(rand.NewSource(1))

	out := Sample(spec, 20, rng, 443)
	require.Len(t, out, 20)
	for _, ep := range out {
		assert.True(t, spec.Network.Contains(ep.Addr), "sampled address must stay within the CIDR")
	}
}

func TestSampleHostRouteReturnsSingleAddress(t *testing.T) {
	spec := model.CidrSpec{Network: netip.MustParsePrefix("198.51.100.5/32"), Family: model.FamilyV4}
	rng := rand.New(rand.NewSource(1))

	out := Sample(spec, 5, rng, 443)
	require.Len(t, out, 1)
	assert.Equal(t, "198.51.100.5", out[0].Addr.String())
}

func TestAddrAtAddsWithinHostBits(t *testing.T) {
	base := netip.MustParseAddr("198.51.100.0")
	got := addrAt(base, 5)
	assert.Equal(t, "198.51.100.5", got.String())
}

func TestRandHostOffsetBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		off := randHostOffset(rng, 4)
		assert.Less(t, off, uint64(16))
	}
}
