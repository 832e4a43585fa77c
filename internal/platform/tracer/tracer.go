// Package tracer provides a small tracing abstraction so services can emit
// spans without importing OpenTelemetry directly.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span; pass the returned context to child operations.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanCredentialIssue,
	//       tracer.String(tracer.AttrTokenID, id.String()),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanCredentialIssue  = "credential.issue"
	SpanCredentialRevoke = "credential.revoke"
	SpanCredentialBurn   = "credential.burn"
	SpanGateIncrement    = "gate.increment"
)

// Attribute keys.
const (
	AttrTokenID = "token_id"
	AttrCaller  = "caller"
	AttrOwner   = "owner"
	AttrOutcome = "outcome"
	AttrCount   = "count"
)
