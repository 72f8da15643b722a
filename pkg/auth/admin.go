// Package auth guards admin routes with a shared secret.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// HeaderAdminKey is the request header carrying the admin key.
const HeaderAdminKey = "X-Admin-Key"

// RequireAdminKey rejects requests whose "key" query parameter or
// X-Admin-Key header does not match key. An empty key disables the
// routes behind it with 503.
func RequireAdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				writeError(w, http.StatusServiceUnavailable, "admin_disabled")
				return
			}
			got := r.URL.Query().Get("key")
			if got == "" {
				got = r.Header.Get(HeaderAdminKey)
			}
			if got == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
