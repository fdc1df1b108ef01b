// Package requestid assigns every request a correlation ID.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"fleetgate/pkg/requestcontext"
)

// Header is the request/response header carrying the correlation ID.
const Header = "X-Request-ID"

// Middleware reuses the caller-provided X-Request-ID or generates one, stores
// it in the context, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
