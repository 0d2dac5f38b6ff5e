// Package v1handler implements the version 1 HTTP API: manual scan triggers,
// scan reports and the scan history.
package v1handler

import (
	"arbitrage/internal/scanner"
	"arbitrage/pkg/controller"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/serrors"
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Deps are the collaborators of the handlers.
type Deps struct {
	Scanner scanner.Scanner
}

// Handler serves the v1 API.
type Handler struct {
	deps Deps
}

// New creates a Handler.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register mounts the v1 routes on mux. auth wraps every route except the
// health check.
func (h *Handler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	if auth == nil {
		auth = func(next http.Handler) http.Handler { return next }
	}

	mux.Handle("POST /v1/scans", auth(http.HandlerFunc(h.CreateScan)))
	mux.Handle("GET /v1/scans", auth(http.HandlerFunc(h.ListScans)))
	mux.Handle("GET /v1/scans/latest", auth(http.HandlerFunc(h.GetLatestScan)))
	mux.Handle("GET /v1/scans/{id}", auth(http.HandlerFunc(h.GetScan)))
	mux.Handle("GET /v1/deals", auth(http.HandlerFunc(h.ListDeals)))
	mux.HandleFunc("GET /healthz", h.Health)
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is an error mapped to its HTTP representation.
type ErrorResponse struct {
	StatusCode int
	Response   ErrorBody
}

var kindStatus = map[serrors.Kind]int{ //nolint: gochecknoglobals
	serrors.ErrNotFound:      http.StatusNotFound,
	serrors.ErrUnauthorized:  http.StatusUnauthorized,
	serrors.ErrBadRequest:    http.StatusBadRequest,
	serrors.ErrConflict:      http.StatusConflict,
	serrors.ErrTimeout:       http.StatusGatewayTimeout,
	serrors.ErrRateLimited:   http.StatusTooManyRequests,
	serrors.ErrInvalidConfig: http.StatusUnprocessableEntity,
}

var kindMessage = map[serrors.Kind]string{ //nolint: gochecknoglobals
	serrors.ErrNotFound:      "resource not found",
	serrors.ErrUnauthorized:  "unauthorized",
	serrors.ErrBadRequest:    "bad request",
	serrors.ErrConflict:      "conflict",
	serrors.ErrTimeout:       "timeout",
	serrors.ErrRateLimited:   "rate limited",
	serrors.ErrInvalidConfig: "invalid configuration",
}

// NewError maps err to a status code and body. Errors without a known
// semantic kind become internal errors and their details are only logged.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorResponse {
	kind := serrors.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.Error(ctx, "internal error", zap.Error(err))

		return &ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Response:   ErrorBody{Code: serrors.ErrInternal.Error(), Message: "internal error"},
		}
	}

	msg := kindMessage[kind]
	var serr *serrors.Error
	if errors.As(err, &serr) && serr.Message() != "" {
		msg = serr.Message()
	}

	return &ErrorResponse{StatusCode: status, Response: ErrorBody{Code: kind.Error(), Message: msg}}
}

// WriteError answers r with the representation of err.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	controller.WriteJSON(w, r, res.StatusCode, res.Response)
}

// Health reports liveness and whether a scan is running.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	controller.WriteJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"busy":   h.deps.Scanner.Busy(),
	})
}
