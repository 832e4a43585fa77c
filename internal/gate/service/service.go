// Package service implements the KYC access gate: a counter that only
// credential holders may increment.
package service

import (
	"context"
	"log/slog"

	"sbt/internal/audit"
	"sbt/internal/gate/metrics"
	"sbt/internal/gate/ports"
	"sbt/internal/platform/tracer"
	"sbt/pkg/domain"
	dErrors "sbt/pkg/domain-errors"
	"sbt/pkg/requestcontext"
)

// Counter persists the gate's counter.
type Counter interface {
	Increment(ctx context.Context) (uint64, error)
	Value(ctx context.Context) (uint64, error)
}

// AuditPublisher records increment attempts.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Gate)

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(g *Gate) {
		if t != nil {
			g.tracer = t
		}
	}
}

func WithAuditor(a AuditPublisher) Option {
	return func(g *Gate) {
		g.auditor = a
	}
}

// Gate owns the KYC counter. The credential port is fixed at construction.
type Gate struct {
	credentials ports.CredentialPort
	counter     Counter
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
	logger      *slog.Logger
}

func New(credentials ports.CredentialPort, counter Counter, logger *slog.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{
		credentials: credentials,
		counter:     counter,
		tracer:      tracer.NewNoop(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Increment adds one to the counter when caller holds a credential and
// returns the new value. The holding check and the write are not one
// transaction: an increment that passed the check is counted even if the
// credential is destroyed before the write lands.
func (g *Gate) Increment(ctx context.Context, caller domain.Account) (_ uint64, err error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanGateIncrement,
		tracer.String(tracer.AttrCaller, caller.String()),
	)
	defer func() { span.End(err) }()

	held, err := g.credentials.HoldsCredential(ctx, caller)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check credential")
	}
	if !held {
		g.record(ctx, caller, audit.OutcomeDenied, string(dErrors.CodeNoCredential))
		g.logger.WarnContext(ctx, "kyc increment denied",
			"request_id", requestcontext.RequestID(ctx),
			"caller", caller.String(),
		)
		return 0, dErrors.New(dErrors.CodeNoCredential, "caller holds no credential")
	}

	value, err := g.counter.Increment(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to increment counter")
	}

	if g.metrics != nil {
		g.metrics.SetCount(value)
	}
	g.record(ctx, caller, audit.OutcomeSuccess, "")
	span.SetAttributes(tracer.Int64(tracer.AttrCount, int64(value)))
	g.logger.InfoContext(ctx, "kyc counter incremented",
		"request_id", requestcontext.RequestID(ctx),
		"caller", caller.String(),
		"count", value,
	)
	return value, nil
}

// Count returns the current counter value.
func (g *Gate) Count(ctx context.Context) (uint64, error) {
	v, err := g.counter.Value(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read counter")
	}
	return v, nil
}

func (g *Gate) record(ctx context.Context, caller domain.Account, outcome audit.Outcome, reason string) {
	if g.metrics != nil {
		g.metrics.IncrementOutcome(string(outcome))
	}
	if g.auditor == nil {
		return
	}
	err := g.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionKYCIncremented,
		Actor:   caller,
		Outcome: outcome,
		Reason:  reason,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
