package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baechuer/go-api-starter/internal/application/auth"
	"github.com/baechuer/go-api-starter/internal/domain"
	"github.com/baechuer/go-api-starter/internal/pkg/reqctx"
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (auth.TokenClaims, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// UserReader is the minimal interface the middleware needs to confirm the
// token's subject still exists and is allowed to act.
type UserReader interface {
	GetUserByID(ctx context.Context, userID string) (domain.User, error)
}

// Auth verifies Authorization: Bearer <access_token>, confirms the account is
// still present and active, and injects the identity into request context.
//
// The role placed in context comes from the database, not the token, so role
// changes and deactivations take effect on the next request rather than on
// the next token refresh. Passing a nil users reader skips the lookup and
// trusts the claims as-is.
func Auth(verifier TokenVerifier, users UserReader, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			claims, err := verifier.VerifyAccessToken(raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			if strings.TrimSpace(claims.UserID) == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			role := claims.Role
			if users != nil {
				u, err := users.GetUserByID(r.Context(), claims.UserID)
				if err != nil {
					// A token for a deleted user reads as invalid, not as a 404.
					if domain.Is(err, "user_not_found") {
						writeErr(w, r, domain.ErrTokenInvalid())
						return
					}
					writeErr(w, r, err)
					return
				}
				if !u.Active {
					writeErr(w, r, domain.ErrAccountDisabled())
					return
				}
				role = u.Role
			}

			ctx := reqctx.WithUser(r.Context(), claims.UserID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
