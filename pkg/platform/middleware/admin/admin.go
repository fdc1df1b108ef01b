// Package admin guards operational endpoints with a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/platform/httputil"
	"fleetgate/pkg/requestcontext"
)

// Header carries the shared admin token.
const Header = "X-Admin-Token"

// RequireAdminToken rejects requests whose X-Admin-Token does not match.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(Header)
			// Constant-time comparison to prevent timing attacks.
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				if logger != nil {
					logger.WarnContext(ctx, "admin token mismatch",
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
