package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sbt/internal/credential/models"
	"sbt/pkg/domain"
	dErrors "sbt/pkg/domain-errors"
	"sbt/pkg/platform/httputil"
	"sbt/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	Issue(ctx context.Context, caller, owner domain.Account, id domain.CredentialID) (*models.Credential, error)
	Get(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	OwnerOf(ctx context.Context, id domain.CredentialID) (domain.Account, error)
	BalanceOf(ctx context.Context, account domain.Account) (int, error)
	Locked(ctx context.Context, id domain.CredentialID) (bool, error)
	BurnAuth(ctx context.Context, id domain.CredentialID) (models.BurnAuth, error)
	TokenURI(ctx context.Context, id domain.CredentialID) (string, error)
	SupportsInterface(tag string) bool
	TotalSupply(ctx context.Context) (int, error)
	Transfer(ctx context.Context, caller, from, to domain.Account, id domain.CredentialID) error
	SafeTransfer(ctx context.Context, caller, from, to domain.Account, id domain.CredentialID, data []byte) error
	Revoke(ctx context.Context, caller domain.Account, id domain.CredentialID) error
	Burn(ctx context.Context, caller domain.Account, id domain.CredentialID) error
	Name() string
	Symbol() string
	Issuer() domain.Account
	BaseURI() string
	KYCLevel() uint8
}

// Handler serves the credential registry endpoints.
type Handler struct {
	registry Service
	logger   *slog.Logger
}

func New(registry Service, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// Register registers the public read routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/sbt", h.HandleRegistry)
	r.Get("/sbt/credentials/{id}", h.HandleGetCredential)
	r.Get("/sbt/credentials/{id}/owner", h.HandleOwnerOf)
	r.Get("/sbt/credentials/{id}/uri", h.HandleTokenURI)
	r.Get("/sbt/credentials/{id}/locked", h.HandleLocked)
	r.Get("/sbt/credentials/{id}/burn-auth", h.HandleBurnAuth)
	r.Get("/sbt/accounts/{account}/balance", h.HandleBalanceOf)
	r.Get("/sbt/interfaces/{tag}", h.HandleSupportsInterface)
}

// RegisterProtected registers routes that act on behalf of the bearer.
// Mount them behind the auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/sbt/credentials", h.HandleIssue)
	r.Post("/sbt/credentials/{id}/transfer", h.HandleTransfer)
	r.Post("/sbt/credentials/{id}/revoke", h.HandleRevoke)
	r.Post("/sbt/credentials/{id}/burn", h.HandleBurn)
}

// HandleRegistry returns registry metadata and the current supply.
func (h *Handler) HandleRegistry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supply, err := h.registry.TotalSupply(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to read total supply", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RegistryResponse{
		Name:        h.registry.Name(),
		Symbol:      h.registry.Symbol(),
		Issuer:      h.registry.Issuer().String(),
		BaseURI:     h.registry.BaseURI(),
		KYCLevel:    h.registry.KYCLevel(),
		TotalSupply: supply,
		Capability:  models.FormatInterfaceTag(models.LockedInterfaceID),
	})
}

// HandleIssue implements POST /sbt/credentials.
//
// Input: { "owner": "0xabc", "token_id": 0 }
// Output: the issued credential.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	owner, id, err := req.Parsed()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	credential, err := h.registry.Issue(ctx, caller, owner, id)
	if err != nil {
		h.fail(ctx, w, "failed to issue credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.NewCredentialResponse(credential, h.registry.BaseURI()))
}

func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	credential, err := h.registry.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewCredentialResponse(credential, h.registry.BaseURI()))
}

func (h *Handler) HandleOwnerOf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	owner, err := h.registry.OwnerOf(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to resolve owner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.OwnerResponse{TokenID: id.String(), Owner: owner.String()})
}

func (h *Handler) HandleTokenURI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	uri, err := h.registry.TokenURI(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to resolve token uri", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.URIResponse{TokenID: id.String(), URI: uri})
}

func (h *Handler) HandleLocked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	locked, err := h.registry.Locked(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to read lock state", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.LockedResponse{TokenID: id.String(), Locked: locked})
}

func (h *Handler) HandleBurnAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	mode, err := h.registry.BurnAuth(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to read burn auth", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.BurnAuthResponse{TokenID: id.String(), BurnAuth: mode, Mode: mode.String()})
}

func (h *Handler) HandleBalanceOf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	balance, err := h.registry.BalanceOf(ctx, account)
	if err != nil {
		h.fail(ctx, w, "failed to read balance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.BalanceResponse{Account: account.String(), Balance: balance})
}

func (h *Handler) HandleSupportsInterface(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	httputil.WriteJSON(w, http.StatusOK, models.InterfaceResponse{
		Tag:       tag,
		Supported: h.registry.SupportsInterface(tag),
	})
}

// HandleTransfer implements POST /sbt/credentials/{id}/transfer. A data
// payload selects the safe variant. Both always fail.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	from, to := domain.Account(req.From), domain.Account(req.To)
	if req.Data != nil {
		data, decodeErr := hex.DecodeString(*req.Data)
		if decodeErr != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "data must be an even-length hex string"))
			return
		}
		err := h.registry.SafeTransfer(ctx, caller, from, to, id, data)
		h.fail(ctx, w, "safe transfer rejected", err)
		return
	}
	err := h.registry.Transfer(ctx, caller, from, to, id)
	h.fail(ctx, w, "transfer rejected", err)
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	if err := h.registry.Revoke(ctx, caller, id); err != nil {
		h.fail(ctx, w, "failed to revoke credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ActionResponse{TokenID: id.String(), Message: "credential revoked"})
}

func (h *Handler) HandleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	if err := h.registry.Burn(ctx, caller, id); err != nil {
		h.fail(ctx, w, "failed to burn credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ActionResponse{TokenID: id.String(), Message: "credential burned"})
}

func (h *Handler) caller(ctx context.Context, w http.ResponseWriter) (domain.Account, bool) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		h.logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return caller, true
}

func (h *Handler) credentialID(w http.ResponseWriter, r *http.Request) (domain.CredentialID, bool) {
	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// fail logs err at a level matching its code and writes the error response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
