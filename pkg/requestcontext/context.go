// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets the values; handlers and services only read them. Keeping
// this package free of net/http lets workers and services import it without
// pulling in transport code.
package requestcontext

import (
	"context"
	"time"
)

type (
	operatorIDKey  struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func stringValue(ctx context.Context, key any) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// OperatorID returns the calling fleet operator's ID, or "" when unset.
func OperatorID(ctx context.Context) string {
	return stringValue(ctx, operatorIDKey{})
}

// WithOperatorID injects an operator ID into the context.
func WithOperatorID(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, operatorIDKey{}, operatorID)
}

// ClientIP returns the client IP address recorded by the metadata middleware.
func ClientIP(ctx context.Context) string {
	return stringValue(ctx, clientIPKey{})
}

// UserAgent returns the User-Agent recorded by the metadata middleware.
func UserAgent(ctx context.Context) string {
	return stringValue(ctx, userAgentKey{})
}

// WithClientMetadata injects client IP and User-Agent. Service unit tests use
// this to skip the HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// RequestID returns the request ID, or "" when unset.
func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request-scoped time captured at the start of the request.
// Falls back to time.Now() for non-HTTP contexts like workers and CLI
// commands.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request-scoped time. Workers use it to keep one
// consistent "now" across a batch; tests use it to freeze the clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
