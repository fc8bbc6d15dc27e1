// Package tracer is a small tracing abstraction over OpenTelemetry so the
// credential lifecycle can emit spans without importing otel everywhere.
//
// Implementations:
//   - NoopTracer: tests and local runs
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span; a non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }

func Int64(key string, value int64) Attribute { return Attribute{Key: key, Value: value} }

// Uint64 is recorded as int64; credential ids stay well below the sign bit in practice.
func Uint64(key string, value uint64) Attribute { return Attribute{Key: key, Value: int64(value)} }

// Duration records a duration in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the credential lifecycle.
const (
	SpanIssue    = "credential.issue"
	SpanTransfer = "credential.transfer"
	SpanRevoke   = "credential.revoke"
	SpanVerify   = "credential.verify_holder"
)

// Attribute keys.
const (
	AttrCredentialID = "credential.id"
	AttrHolder       = "credential.holder"
	AttrCaller       = "caller"
	AttrStep         = "ledger.step"
)

// Event names.
const (
	EventLedgerSubmitted = "ledger.submitted"
	EventRegistryWritten = "registry.written"
)
