package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekobres/edgerank/model"
)

func TestParseTokensMixedGrammar(t *testing.T) {
	text := `
# a comment line
198.51.100.1, 198.51.100.2:8443
203.0.113.0/24
203.0.113.128/25=50
[2606:4700::1]:443
not-an-ip, 10.0.0.1/99
`
	res := ParseTokens(text, 443)

	require.Len(t, res.Endpoints, 3)
	assert.Equal(t, uint16(443), res.Endpoints[0].Port)
	assert.Equal(t, uint16(8443), res.Endpoints[1].Port)
	assert.Equal(t, uint16(443), res.Endpoints[2].Port)

	require.Len(t, res.Specs, 2)
	assert.Nil(t, res.Specs[0].SampleCount)
	require.NotNil(t, res.Specs[1].SampleCount)
	assert.Equal(t, uint32(50), *res.Specs[1].SampleCount)

	assert.Equal(t, 2, res.Skipped, "malformed token and out-of-range prefix are skipped")
}

func TestParseTokenSampledCidrRejectsZeroCount(t *testing.T) {
	_, _, ok := parseToken("198.51.100.0/24=0", 443)
	assert.False(t, ok, "a sample count of 0 is not a valid token")
}

func TestParseCidrNormalizesToNetworkAddress(t *testing.T) {
	spec, ok := parseCidr("198.51.100.17/24")
	require.True(t, ok)
	assert.Equal(t, "198.51.100.0/24", spec.Network.String())
	assert.Equal(t, model.FamilyV4, spec.Family)
}

func TestSplitHostPort(t *testing.T) {
	host, port, err := splitHostPort("198.51.100.1:8443")
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.1", host)
	assert.Equal(t, uint16(8443), port)

	host, port, err = splitHostPort("[2606:4700::1]:443")
	require.NoError(t, err)
	assert.Equal(t, "2606:4700::1", host)
	assert.Equal(t, uint16(443), port)

	_, _, err = splitHostPort("no-colon-here")
	assert.Error(t, err)
}
