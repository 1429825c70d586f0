package ingest

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/ekobres/edgerank/model"
)

// ParseResult is the output of parsing a token stream: direct endpoints and
// CIDR specs, plus a count of tokens skipped for being malformed.
type ParseResult struct {
	Endpoints []model.Endpoint
	Specs     []model.CidrSpec
	Skipped   int
}

// ParseTokens parses the grammar of spec §4.1: line- and comma-separated,
// whitespace-trimmed tokens; "#" or "//" lines are comments; each token is
// a bare IPv4/IPv6 literal (optionally ":port" or "[addr]:port"), a bare
// CIDR ("addr/prefix"), or a sampled CIDR ("addr/prefix=N").
func ParseTokens(text string, defaultPort uint16) ParseResult {
	var out ParseResult

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		for _, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if ep, spec, ok := parseToken(tok, defaultPort); ok {
				if spec != nil {
					out.Specs = append(out.Specs, *spec)
				} else {
					out.Endpoints = append(out.Endpoints, ep)
				}
			} else {
				out.Skipped++
			}
		}
	}

	return out
}

// parseToken parses a single token. Exactly one of the two return values
// (ep, spec) is meaningful when ok is true.
func parseToken(tok string, defaultPort uint16) (model.Endpoint, *model.CidrSpec, bool) {
	// Sampled CIDR: addr/prefix=N
	if idx := strings.IndexByte(tok, '='); idx > 0 {
		cidrPart := tok[:idx]
		countPart := tok[idx+1:]
		n, err := strconv.ParseUint(countPart, 10, 32)
		if err != nil || n == 0 {
			return model.Endpoint{}, nil, false
		}
		spec, ok := parseCidr(cidrPart)
		if !ok {
			return model.Endpoint{}, nil, false
		}
		count := uint32(n)
		spec.SampleCount = &count
		return model.Endpoint{}, &spec, true
	}

	// Bare CIDR: addr/prefix
	if strings.Contains(tok, "/") {
		spec, ok := parseCidr(tok)
		if !ok {
			return model.Endpoint{}, nil, false
		}
		return model.Endpoint{}, &spec, true
	}

	// Bracketed IPv6 with optional port: [addr]:port
	if strings.HasPrefix(tok, "[") {
		host, port, err := splitHostPort(tok)
		if err != nil {
			return model.Endpoint{}, nil, false
		}
		addr, err := netip.ParseAddr(host)
		if err != nil {
			return model.Endpoint{}, nil, false
		}
		return model.Endpoint{Addr: addr, Port: port}, nil, true
	}

	// Bare address, optionally IPv4 with ":port".
	if addr, err := netip.ParseAddr(tok); err == nil {
		return model.Endpoint{Addr: addr, Port: defaultPort}, nil, true
	}
	if host, port, err := splitHostPort(tok); err == nil {
		addr, err := netip.ParseAddr(host)
		if err != nil {
			return model.Endpoint{}, nil, false
		}
		return model.Endpoint{Addr: addr, Port: port}, nil, true
	}

	return model.Endpoint{}, nil, false
}

// splitHostPort splits "host:port" or "[host]:port" into host and a parsed
// port. It does not use net.SplitHostPort directly because that function
// rejects a bare IPv6 literal without brackets, which callers here have
// already special-cased.
func splitHostPort(tok string) (string, uint16, error) {
	idx := strings.LastIndexByte(tok, ':')
	if idx < 0 {
		return "", 0, fmt.Errorf("no port separator in %q", tok)
	}
	host := tok[:idx]
	host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
	portNum, err := strconv.ParseUint(tok[idx+1:], 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("bad port in %q: %w", tok, err)
	}
	return host, uint16(portNum), nil
}

func parseCidr(tok string) (model.CidrSpec, bool) {
	prefix, err := netip.ParsePrefix(tok)
	if err != nil {
		return model.CidrSpec{}, false
	}
	prefix = prefix.Masked()
	fam := model.FamilyV4
	if prefix.Addr().Is6() {
		fam = model.FamilyV6
	}
	return model.CidrSpec{Network: prefix, Family: fam}, true
}
