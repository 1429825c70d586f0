package probe

import (
	"net/http"
	"strings"
)

// ExtractColo parses the cf-ray header on the first successful HTTP
// response: split on "-", the token after the first hyphen (stripped of
// any trailing "-suffix") is the colo (spec §4.2).
func ExtractColo(resp *http.Response) string {
	ray := resp.Header.Get("cf-ray")
	if ray == "" {
		return ""
	}
	parts := strings.SplitN(ray, "-", 2)
	if len(parts) < 2 {
		return ""
	}
	colo := parts[1]
	if idx := strings.IndexByte(colo, '-'); idx >= 0 {
		colo = colo[:idx]
	}
	return strings.ToUpper(colo)
}
