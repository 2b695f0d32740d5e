package middleware

import (
	"net/http"
	"strconv"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// BodyLimit caps request body size on JSON routes. The reader cap catches
// clients that lie about Content-Length; the header check rejects honest
// oversized requests before reading anything.
func BodyLimit(maxBytes int64, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	maxStr := strconv.FormatInt(maxBytes, 10)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeErr(w, r, domain.ErrRequestTooLarge(maxStr))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
