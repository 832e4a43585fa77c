package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sbt/internal/gate/models"
	"sbt/pkg/domain"
	dErrors "sbt/pkg/domain-errors"
	"sbt/pkg/platform/httputil"
	"sbt/pkg/requestcontext"
)

// Service defines the gate operations exposed over HTTP.
type Service interface {
	Increment(ctx context.Context, caller domain.Account) (uint64, error)
	Count(ctx context.Context) (uint64, error)
}

type Handler struct {
	gate   Service
	logger *slog.Logger
}

func New(gate Service, logger *slog.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/kyc/count", h.HandleCount)
}

// RegisterProtected registers the increment route; mount it behind the auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/kyc/increment", h.HandleIncrement)
}

func (h *Handler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		h.logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	value, err := h.gate.Increment(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "kyc increment failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.IncrementResponse{Count: value, Message: "kyc counter incremented"})
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	value, err := h.gate.Count(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read kyc counter",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.CountResponse{Count: value})
}
