// Package middleware holds the cross-cutting HTTP concerns: API key
// authentication and caller identity extraction.
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/nexustrader/nexus/internal/api/response"
	"github.com/nexustrader/nexus/internal/core"
)

// APIKeyAuth validates the X-API-Key header against the configured key.
// An empty configured key disables authentication entirely, which is the
// local-development mode.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			// Constant-time comparison; a missing key compares against
			// the empty string and fails the same way.
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				response.Error(w, http.StatusUnauthorized,
					core.WrapError(core.ErrConfigInvalid, errors.New("missing or invalid API key")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
