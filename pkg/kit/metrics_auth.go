package kit

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerToken extracts the token of an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	tok, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// MetricsAuth guards the scrape endpoint with a static token. An empty
// token closes the endpoint entirely.
func MetricsAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := BearerToken(r)
			if token == "" || !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
