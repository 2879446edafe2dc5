package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"accessgate/internal/audit"
	dErrors "accessgate/pkg/domain-errors"
	"accessgate/pkg/platform/httputil"
	"accessgate/pkg/requestcontext"
)

// defaultRecentWindow is the lookback used when /admin/audit/recent gets no
// window parameter.
const defaultRecentWindow = 24 * time.Hour

// Handler wires audit endpoints to the journal.
type Handler struct {
	journal *audit.Log
	logger  *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(journal *audit.Log, logger *slog.Logger) *Handler {
	return &Handler{
		journal: journal,
		logger:  logger,
	}
}

// Register mounts the event ingest endpoint on the router. The UI layer calls
// it after each privileged action that passed validation.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.HandleLogEvent)
}

// RegisterAdmin mounts the read-side query endpoints on an
// operator-authenticated router group.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit/events", h.HandleListByUser)
	r.Get("/admin/audit/recent", h.HandleRecent)
	r.Get("/admin/audit/search", h.HandleSearch)
	r.Get("/admin/audit/stats", h.HandleStatistics)
	r.Get("/admin/audit/export", h.HandleExport)
}

// HandleLogEvent handles POST /events requests.
func (h *Handler) HandleLogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LogEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event := audit.Event{
		Email:      req.Email,
		ReportName: req.ReportName,
		Action:     req.Action,
		Extra:      req.Extra,
		Timestamp:  requestcontext.Now(ctx),
	}
	if err := h.journal.Append(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "audit append failed",
			"request_id", requestID,
			"email", req.Email,
			"action", req.Action,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not record event"))
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleListByUser handles GET /admin/audit/events?email= requests.
func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "email query parameter is required"))
		return
	}

	events, err := h.journal.ByUser(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not read audit log"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newEventsResponse(events))
}

// HandleRecent handles GET /admin/audit/recent?window= requests. The window
// is a Go duration string, e.g. "24h" or "30m".
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	window := defaultRecentWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "window must be a positive duration, e.g. 24h"))
			return
		}
		window = parsed
	}

	events, err := h.journal.Recent(r.Context(), window)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not read audit log"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newEventsResponse(events))
}

// HandleSearch handles GET /admin/audit/search?q= requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "q query parameter is required"))
		return
	}

	events, err := h.journal.Search(r.Context(), term)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not read audit log"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newEventsResponse(events))
}

// HandleStatistics handles GET /admin/audit/stats requests.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.journal.Statistics(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not read audit log"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleExport handles GET /admin/audit/export requests, streaming the
// decrypted journal as a plain JSON array for offline audits.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.journal.Export(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "audit export failed", "error", err)
	}
}
