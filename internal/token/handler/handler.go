package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"accessgate/internal/token/service"
	"accessgate/pkg/platform/httputil"
	"accessgate/pkg/platform/sentinel"
	"accessgate/pkg/requestcontext"
)

// Service defines the interface for token operations.
type Service interface {
	Issue(ctx context.Context, email, pinned string) (string, error)
	Validate(ctx context.Context, email, token string) (*service.Result, error)
	UsageLimit() int
}

// Handler wires token endpoints to the token service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a token handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the public validation endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tokens/validate", h.HandleValidate)
}

// RegisterAdmin mounts issuance on an operator-authenticated router group.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/tokens", h.HandleIssue)
}

// HandleIssue handles POST /admin/tokens requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	token, err := h.service.Issue(ctx, req.Email, req.Token)
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed",
			"request_id", requestID,
			"email", req.Email,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, IssueResponse{
		Email:      req.Email,
		Token:      token,
		UsageLimit: h.service.UsageLimit(),
	})
}

// HandleValidate handles POST /tokens/validate requests. Expected denial
// reasons come back as 200 responses with allowed=false so the UI can show
// actionable messages; only infrastructure failures surface as error statuses.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Validate(ctx, req.Email, req.Token)
	if err != nil {
		if reason, denied := denialReason(err); denied {
			httputil.WriteJSON(w, http.StatusOK, ValidateResponse{
				Allowed: false,
				Reason:  reason,
			})
			return
		}
		h.logger.ErrorContext(ctx, "token validation failed",
			"request_id", requestID,
			"email", req.Email,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token validated",
		"request_id", requestID,
		"email", req.Email,
		"remaining", result.Remaining,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, ValidateResponse{
		Allowed:   true,
		Remaining: result.Remaining,
	})
}

// denialReason maps the closed set of expected denial sentinels to wire-level
// reason tags.
func denialReason(err error) (string, bool) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return service.OutcomeEntryNotFound, true
	case errors.Is(err, sentinel.ErrTokenMismatch):
		return service.OutcomeTokenMismatch, true
	case errors.Is(err, sentinel.ErrQuotaExceeded):
		return service.OutcomeQuotaExceeded, true
	default:
		return "", false
	}
}
