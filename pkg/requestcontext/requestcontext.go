// Package requestcontext carries request-scoped values (request id, client IP and
// the verified caller principal) through context.Context.
package requestcontext

import (
	"context"

	"credverify/pkg/domain"
)

type (
	requestIDKey struct{}
	clientIPKey  struct{}
	callerKey    struct{}
)

// WithRequestID stores the correlation id for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation id, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// WithCaller stores the verified principal that invoked the current request.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// Caller returns the verified principal and whether one was set.
func Caller(ctx context.Context) (domain.Address, bool) {
	v, ok := ctx.Value(callerKey{}).(domain.Address)
	return v, ok && !v.IsNil()
}
