package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the caller's IP for moderation checks.
//
// X-Forwarded-For is trivially forged by the original client, so it is only
// honored when the deployment opts in (a trusted reverse proxy in front).
// With trustProxy set, the left-most entry of the header is used.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first := strings.TrimSpace(strings.Split(fwd, ",")[0])
			if first != "" {
				return first
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
