package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const internalKeyHeader = "X-Internal-Key"

// RequireInternalKey guards service-to-service routes. The presented key
// is compared against the configured bcrypt hash, so the plaintext
// credential never lives in this service's configuration.
func RequireInternalKey(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(internalKeyHeader)
			if key == "" {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
