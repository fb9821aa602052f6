package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// AdminKeyAuth rejects requests that do not present key. An empty key
// disables the check.
func AdminKeyAuth(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Bearer token
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				if keyMatches(strings.TrimPrefix(auth, "Bearer "), key) {
					next.ServeHTTP(w, r)
					return
				}
			}
			// x-api-key header
			if keyMatches(r.Header.Get("X-Api-Key"), key) {
				next.ServeHTTP(w, r)
				return
			}
			// Basic auth password, for browsers
			if _, pass, ok := r.BasicAuth(); ok && keyMatches(pass, key) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("WWW-Authenticate", `Basic realm="surfvault"`)
			writeError(w, r, goerrors.New("invalid admin key", goerrors.CategoryAuth).
				WithCode(http.StatusUnauthorized).
				WithTextCode(CodeUnauthorized))
		})
	}
}

func keyMatches(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
