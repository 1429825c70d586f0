package probe

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekobres/edgerank/model"
)

func TestHTTPVariantPickURLFallsBackToTrace(t *testing.T) {
	p := DefaultPolicy()
	v := newHTTPVariant(p, false)

	ep := model.Endpoint{Addr: netip.MustParseAddr("198.51.100.1"), Port: 80}
	u := v.pickURL(ep)
	require.NotNil(t, u)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "198.51.100.1", u.Host)
	assert.Equal(t, "/cdn-cgi/trace", u.Path)
}

func TestHTTPVariantPickURLTLSNoneConfiguredReturnsNil(t *testing.T) {
	p := DefaultPolicy()
	v := newHTTPVariant(p, true)

	ep := model.Endpoint{Addr: netip.MustParseAddr("198.51.100.1"), Port: 443}
	assert.Nil(t, v.pickURL(ep), "TLS mode has no safe default target without an explicit URL")
}

func TestHTTPVariantPickURLRoundRobin(t *testing.T) {
	p := DefaultPolicy()
	p.URLsForHTTP = []string{"https://a.example/x", "https://b.example/y"}
	v := newHTTPVariant(p, true)

	ep := model.Endpoint{Addr: netip.MustParseAddr("198.51.100.1"), Port: 443}
	first := v.pickURL(ep).String()
	second := v.pickURL(ep).String()
	third := v.pickURL(ep).String()

	assert.Equal(t, "https://a.example/x", first)
	assert.Equal(t, "https://b.example/y", second)
	assert.Equal(t, first, third, "round-robin wraps back to the first URL")
}
