// Package service implements the soulbound credential registry.
//
// Each credential is bound to one owner for life. Only the registry issuer
// issues and revokes; burning follows the credential's burn policy. Every
// transfer and approval is rejected.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sbt/internal/audit"
	"sbt/internal/credential/metrics"
	"sbt/internal/credential/models"
	"sbt/internal/platform/tracer"
	"sbt/pkg/domain"
	dErrors "sbt/pkg/domain-errors"
	"sbt/pkg/platform/sentinel"
	"sbt/pkg/requestcontext"
)

// Store defines the persistence interface for credentials.
// Error Contract:
// - Insert returns sentinel.ErrOwnerTaken before sentinel.ErrIDTaken
// - FindByID, FindByOwner and Delete return sentinel.ErrNotFound when no credential exists
// - Other failures are wrapped infrastructure errors
type Store interface {
	Insert(ctx context.Context, credential *models.Credential) error
	FindByID(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	FindByOwner(ctx context.Context, owner domain.Account) (*models.Credential, error)
	Delete(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	Count(ctx context.Context) (int, error)
}

// AuditPublisher records security-relevant registry events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Registry)

// WithMetrics sets the metrics instance for the registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used around mutations.
func WithTracer(t tracer.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithAuditor sets the audit publisher.
func WithAuditor(a AuditPublisher) Option {
	return func(r *Registry) {
		r.auditor = a
	}
}

// Registry is a soulbound credential registry with a fixed issuer.
type Registry struct {
	store   Store
	meta    models.Metadata
	auditor AuditPublisher
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
}

// New creates a Registry. meta.Issuer is the only account allowed to issue and revoke.
func New(store Store, meta models.Metadata, logger *slog.Logger, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if err := validAccount(meta.Issuer); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid registry issuer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		store:  store,
		meta:   meta,
		tracer: tracer.NewNoop(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) Name() string           { return r.meta.Name }
func (r *Registry) Symbol() string         { return r.meta.Symbol }
func (r *Registry) Issuer() domain.Account { return r.meta.Issuer }
func (r *Registry) BaseURI() string        { return r.meta.BaseURI }
func (r *Registry) KYCLevel() uint8        { return r.meta.KYCLevel }

// Issue binds a new credential with id to owner. Only the issuer may call it.
// Checks run in order: caller, owner already holding, id already issued.
func (r *Registry) Issue(ctx context.Context, caller, owner domain.Account, id domain.CredentialID) (_ *models.Credential, err error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanCredentialIssue,
		tracer.String(tracer.AttrTokenID, id.String()),
		tracer.String(tracer.AttrCaller, caller.String()),
		tracer.String(tracer.AttrOwner, owner.String()),
	)
	defer func() { span.End(err) }()

	if caller != r.meta.Issuer {
		r.reject(ctx, "issue", audit.ActionCredentialIssued, caller, owner, &id, dErrors.CodeUnauthorized)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the issuer can issue credentials")
	}
	if err := validAccount(owner); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid owner")
	}

	credential, err := models.NewCredential(id, owner, r.meta.Issuer, models.DefaultBurnAuth, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = r.store.Insert(ctx, credential)
	r.observeStore("insert", start)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrOwnerTaken):
			r.reject(ctx, "issue", audit.ActionCredentialIssued, caller, owner, &id, dErrors.CodeDuplicateOwner)
			return nil, dErrors.New(dErrors.CodeDuplicateOwner, "owner already holds a credential")
		case errors.Is(err, sentinel.ErrIDTaken):
			r.reject(ctx, "issue", audit.ActionCredentialIssued, caller, owner, &id, dErrors.CodeDuplicateID)
			return nil, dErrors.New(dErrors.CodeDuplicateID, "credential id already issued")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue credential")
		}
	}

	if r.metrics != nil {
		r.metrics.IncrementIssued()
	}
	r.refreshLiveGauge(ctx)
	r.emit(ctx, audit.Event{
		Action:  audit.ActionCredentialIssued,
		Actor:   caller,
		Subject: owner,
		TokenID: audit.TokenRef(id),
		Outcome: audit.OutcomeSuccess,
	})
	r.logger.InfoContext(ctx, "credential issued",
		"request_id", requestcontext.RequestID(ctx),
		"token_id", id.String(),
		"owner", owner.String(),
	)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, string(audit.OutcomeSuccess)))
	return credential, nil
}

// Get returns the credential with id.
func (r *Registry) Get(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	start := time.Now()
	credential, err := r.store.FindByID(ctx, id)
	r.observeStore("find_by_id", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	return credential, nil
}

// OwnerOf returns the account holding id.
func (r *Registry) OwnerOf(ctx context.Context, id domain.CredentialID) (domain.Account, error) {
	credential, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return credential.Owner, nil
}

// BalanceOf returns 1 when account holds a credential and 0 otherwise.
func (r *Registry) BalanceOf(ctx context.Context, account domain.Account) (int, error) {
	start := time.Now()
	_, err := r.store.FindByOwner(ctx, account)
	r.observeStore("find_by_owner", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, nil
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
	}
	return 1, nil
}

// Locked reports whether id is locked. Every existing credential is.
func (r *Registry) Locked(ctx context.Context, id domain.CredentialID) (bool, error) {
	credential, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return credential.Locked(), nil
}

// BurnAuth returns the burn policy of id.
func (r *Registry) BurnAuth(ctx context.Context, id domain.CredentialID) (models.BurnAuth, error) {
	credential, err := r.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return credential.BurnAuth, nil
}

// TokenURI returns the base URI followed by the decimal id.
func (r *Registry) TokenURI(ctx context.Context, id domain.CredentialID) (string, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return "", err
	}
	return models.URI(r.meta.BaseURI, id), nil
}

// SupportsInterface reports whether tag is the locking capability tag.
func (r *Registry) SupportsInterface(tag string) bool {
	return models.SupportsInterface(tag)
}

// TotalSupply returns the number of live credentials.
func (r *Registry) TotalSupply(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.store.Count(ctx)
	r.observeStore("count", start)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count credentials")
	}
	return n, nil
}

// Transfer always fails. A missing id reports NotFound, an existing one Locked.
func (r *Registry) Transfer(ctx context.Context, caller, from, to domain.Account, id domain.CredentialID) error {
	return r.rejectMove(ctx, "transfer", caller, to, id)
}

// SafeTransfer is Transfer with a receiver payload. It fails the same way.
func (r *Registry) SafeTransfer(ctx context.Context, caller, from, to domain.Account, id domain.CredentialID, _ []byte) error {
	return r.rejectMove(ctx, "safe_transfer", caller, to, id)
}

// Approve always fails: no one but the owner can ever hold a credential.
func (r *Registry) Approve(ctx context.Context, caller, approved domain.Account, id domain.CredentialID) error {
	return r.rejectMove(ctx, "approve", caller, approved, id)
}

// SetApprovalForAll always fails with Locked.
func (r *Registry) SetApprovalForAll(ctx context.Context, caller, operator domain.Account, _ bool) error {
	r.reject(ctx, "set_approval_for_all", audit.ActionTransferRejected, caller, operator, nil, dErrors.CodeLocked)
	return dErrors.New(dErrors.CodeLocked, "credentials are soulbound and cannot be delegated")
}

func (r *Registry) rejectMove(ctx context.Context, operation string, caller, to domain.Account, id domain.CredentialID) error {
	if _, err := r.Get(ctx, id); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementRejected(operation, string(dErrors.CodeOf(err)))
		}
		return err
	}
	r.reject(ctx, operation, audit.ActionTransferRejected, caller, to, &id, dErrors.CodeLocked)
	return dErrors.New(dErrors.CodeLocked, "credential is soulbound and cannot be transferred")
}

// Revoke destroys id. Only the issuer may call it; the id is never issued again.
func (r *Registry) Revoke(ctx context.Context, caller domain.Account, id domain.CredentialID) (err error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanCredentialRevoke,
		tracer.String(tracer.AttrTokenID, id.String()),
		tracer.String(tracer.AttrCaller, caller.String()),
	)
	defer func() { span.End(err) }()

	if caller != r.meta.Issuer {
		r.reject(ctx, "revoke", audit.ActionCredentialRevoked, caller, "", &id, dErrors.CodeUnauthorized)
		return dErrors.New(dErrors.CodeUnauthorized, "only the issuer can revoke credentials")
	}
	return r.destroy(ctx, "revoke", audit.ActionCredentialRevoked, caller, id)
}

// Burn destroys id when the credential's burn policy admits caller.
func (r *Registry) Burn(ctx context.Context, caller domain.Account, id domain.CredentialID) (err error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanCredentialBurn,
		tracer.String(tracer.AttrTokenID, id.String()),
		tracer.String(tracer.AttrCaller, caller.String()),
	)
	defer func() { span.End(err) }()

	credential, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	// Owner and policy never change, so the decision holds until Delete.
	if !credential.CanBurn(caller) {
		r.reject(ctx, "burn", audit.ActionCredentialBurned, caller, credential.Owner, &id, dErrors.CodeUnauthorized)
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not allowed to burn this credential")
	}
	return r.destroy(ctx, "burn", audit.ActionCredentialBurned, caller, id)
}

func (r *Registry) destroy(ctx context.Context, via string, action audit.Action, caller domain.Account, id domain.CredentialID) error {
	start := time.Now()
	deleted, err := r.store.Delete(ctx, id)
	r.observeStore("delete", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to destroy credential")
	}

	if r.metrics != nil {
		r.metrics.IncrementDestroyed(via)
	}
	r.refreshLiveGauge(ctx)
	r.emit(ctx, audit.Event{
		Action:  action,
		Actor:   caller,
		Subject: deleted.Owner,
		TokenID: audit.TokenRef(id),
		Outcome: audit.OutcomeSuccess,
	})
	r.logger.InfoContext(ctx, "credential destroyed",
		"request_id", requestcontext.RequestID(ctx),
		"token_id", id.String(),
		"owner", deleted.Owner.String(),
		"via", via,
	)
	return nil
}

func (r *Registry) reject(ctx context.Context, operation string, action audit.Action, caller, subject domain.Account, id *domain.CredentialID, code dErrors.Code) {
	if r.metrics != nil {
		r.metrics.IncrementRejected(operation, string(code))
	}
	event := audit.Event{
		Action:  action,
		Actor:   caller,
		Subject: subject,
		Outcome: audit.OutcomeDenied,
		Reason:  string(code),
	}
	if id != nil {
		event.TokenID = audit.TokenRef(*id)
	}
	r.emit(ctx, event)
	r.logger.WarnContext(ctx, "registry operation rejected",
		"request_id", requestcontext.RequestID(ctx),
		"operation", operation,
		"caller", caller.String(),
		"reason", string(code),
	)
}

// validAccount accepts only an account already in canonical form. ParseAccount
// trims, so a padded value would otherwise be stored as a distinct key.
func validAccount(a domain.Account) error {
	parsed, err := domain.ParseAccount(a.String())
	if err != nil {
		return err
	}
	if parsed != a {
		return dErrors.New(dErrors.CodeInvalidInput, "account must not contain surrounding whitespace")
	}
	return nil
}

func (r *Registry) emit(ctx context.Context, event audit.Event) {
	if r.auditor == nil {
		return
	}
	if err := r.auditor.Emit(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(event.Action),
			"error", err,
		)
	}
}

func (r *Registry) observeStore(operation string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveStoreOperationLatency(operation, time.Since(start).Seconds())
	}
}

func (r *Registry) refreshLiveGauge(ctx context.Context) {
	if r.metrics == nil {
		return
	}
	if n, err := r.store.Count(ctx); err == nil {
		r.metrics.SetLiveCredentials(n)
	}
}
