// Package operator resolves the calling fleet operator from the request.
package operator

import (
	"net/http"
	"strings"

	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/platform/httputil"
	"fleetgate/pkg/requestcontext"
)

// Header identifies the fleet operator making the request. Upstream auth is
// expected to have validated it before traffic reaches this service.
const Header = "X-Operator-ID"

// Middleware copies the operator header into the context when present.
// Handlers that need an operator enforce it themselves via Require.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(Header)); id != "" {
			r = r.WithContext(requestcontext.WithOperatorID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Require returns the operator ID from the context, writing a 400 response
// and returning false when it is missing.
func Require(w http.ResponseWriter, r *http.Request) (string, bool) {
	operatorID := requestcontext.OperatorID(r.Context())
	if operatorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "X-Operator-ID header is required"))
		return "", false
	}
	return operatorID, true
}
