// Package httphandler serves the REST API and mounts the streamable MCP
// endpoint when the tool server runs over HTTP.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driving"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	api    driving.PluxeeAPI
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(api driving.PluxeeAPI, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{api: api, logger: logger}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request id, logging and recovery middleware. mcpHandler, when non-nil,
// is mounted at /mcp.
func NewServeMux(h *Handler, mcpHandler http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.Session)
	mux.HandleFunc("POST /api/v1/login", h.Login)
	mux.HandleFunc("GET /api/v1/budget", h.Budget)
	mux.HandleFunc("GET /api/v1/orders", h.Orders)
	mux.HandleFunc("GET /api/v1/restaurants", h.Restaurants)
	mux.HandleFunc("GET /api/v1/restaurants/{id}/menu", h.RestaurantMenu)

	if mcpHandler != nil {
		mux.Handle("/mcp", mcpHandler)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Session reports the session state without triggering a login.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.api.Status(r.Context()))
}

// Login forces an interactive login. It blocks until the login completes.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	cred, err := h.api.Login(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Status:           "ok",
		TokenSource:      string(cred.Source),
		TokenFingerprint: cred.Redacted(),
	})
}

// Budget returns {budget, budget_balance, cycle}.
func (h *Handler) Budget(w http.ResponseWriter, r *http.Request) {
	summary, err := h.api.BudgetSummary(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Orders returns the order history between the from and to query parameters.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to query parameters are required (DD/MM/YYYY)")
		return
	}

	res, err := h.api.OrdersHistory(r.Context(), from, to)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeResult(w, res)
}

// Restaurants lists restaurants near the user's default address.
func (h *Handler) Restaurants(w http.ResponseWriter, r *http.Request) {
	res, err := h.api.NearbyRestaurants(r.Context(), r.URL.Query().Get("lang"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeResult(w, res)
}

// RestaurantMenu returns the menu tree of one restaurant.
func (h *Handler) RestaurantMenu(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	q := r.URL.Query()
	orderType, ok := optionalInt(q.Get("order_type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order_type")
		return
	}
	deep, ok := optionalInt(q.Get("element_type_deep"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid element_type_deep")
		return
	}

	res, err := h.api.RestaurantMenu(r.Context(), model.MenuQuery{
		RestaurantID:    id,
		Lang:            q.Get("lang"),
		OrderType:       orderType,
		ElementTypeDeep: deep,
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeResult(w, res)
}

// writeFailure maps domain errors onto HTTP statuses.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var upErr *model.UpstreamError
	switch {
	case errors.Is(err, model.ErrLoginTimeout):
		writeError(w, http.StatusGatewayTimeout, "login timed out: complete login/OTP in the opened browser and retry")
	case errors.Is(err, model.ErrLoginUnavailable):
		writeError(w, http.StatusServiceUnavailable, "interactive login unavailable")
	case errors.As(err, &upErr):
		writeJSON(w, http.StatusBadGateway, UpstreamErrorResponse{
			Error:          "upstream request failed",
			UpstreamStatus: upErr.StatusCode,
			UpstreamBody:   upErr.BodyExcerpt(),
		})
	case r.Context().Err() != nil:
		// Client went away; nothing useful to write.
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
	h.logger.Error("request failed", "path", r.URL.Path, "error", err)
}

// optionalInt parses s, treating the empty string as zero.
func optionalInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil && n >= 0
}
