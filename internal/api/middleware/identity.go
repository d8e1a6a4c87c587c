package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIdentity derives the caller identity used for rate limiting
// and audit attribution: the first X-Forwarded-For hop when present,
// otherwise the connection's remote address.
func ClientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
