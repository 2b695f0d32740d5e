package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/baechuer/go-api-starter/internal/pkg/reqctx"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID reuses the caller-supplied X-Request-Id when present, otherwise
// generates one, and makes it available on the response and request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)

		ctx := reqctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
