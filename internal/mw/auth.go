package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/ledgergate/ledgergate/internal/httpx"
)

// RequireConfig short-circuits every guarded route with a 500 while required
// configuration is missing. The server still starts so the liveness endpoints
// keep answering.
func RequireConfig(cfgErr error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfgErr != nil {
				httpx.WriteError(w, http.StatusInternalServerError, "server misconfigured", cfgErr.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// APIKey rejects requests whose ?key= query parameter does not match the
// configured shared secret.
func APIKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("key")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "missing or invalid key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
