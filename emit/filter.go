package emit

import (
	"strconv"
	"strings"
)

// ParseColoSet parses the -colo flag's comma-separated, case-insensitive
// codes into a lookup set. An empty csv yields a nil (inactive) set.
func ParseColoSet(csv string) map[string]struct{} {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil
	}
	set := make(map[string]struct{})
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// ParseHTTPStatusSet parses the -hc flag's comma-separated status codes.
// An empty csv yields nil, letting the caller fall back to
// probe.DefaultAcceptedHTTPStatus.
func ParseHTTPStatusSet(csv string) map[int]struct{} {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil
	}
	set := make(map[int]struct{})
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			set[n] = struct{}{}
		}
	}
	return set
}
