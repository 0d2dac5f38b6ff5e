package v1handler

import (
	"arbitrage/internal/scanner"
	"arbitrage/pkg/controller"
	"arbitrage/pkg/domain"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/serrors"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const (
	// DefaultLimit is the page size of ListScans when none is given.
	DefaultLimit = 20
	// MaxLimit caps the page size of ListScans.
	MaxLimit = 100
	// maxBodyBytes caps the CreateScan request body.
	maxBodyBytes = 64 << 10
)

// ScanList is a page of reports.
type ScanList struct {
	Items      []domain.Report `json:"items"`
	NextCursor *string         `json:"nextCursor"`
}

// EnqueueResponse answers an asynchronous scan request.
type EnqueueResponse struct {
	// Enqueued is false when an equal request is already queued.
	Enqueued bool `json:"enqueued"`
}

// CreateScan runs a scan and answers with its report. With ?async=true the
// scan is queued for the background worker instead.
func (h *Handler) CreateScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req scanner.Request
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body"))

		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

			return
		}
	}

	logger.Info(ctx, "scan requested",
		zap.Strings("categories", req.Categories),
		zap.String("subject", SubjectFromContext(ctx)))

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		added, err := h.deps.Scanner.Enqueue(ctx, req)
		if err != nil {
			h.WriteError(w, r, err)

			return
		}
		controller.WriteJSON(w, r, http.StatusAccepted, EnqueueResponse{Enqueued: added})

		return
	}

	res, err := h.deps.Scanner.RunScan(ctx, req)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	controller.WriteJSON(w, r, http.StatusOK, domain.NewReport(res))
}

// GetLatestScan answers with the most recent report.
func (h *Handler) GetLatestScan(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Scanner.LatestResult(r.Context())
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	controller.WriteJSON(w, r, http.StatusOK, domain.NewReport(res))
}

// GetScan answers with the stored report of the given run.
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	var id domain.ScanID
	if err := id.UnmarshalText([]byte(r.PathValue("id"))); err != nil {
		h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid scan ID"))

		return
	}

	res, err := h.deps.Scanner.Result(r.Context(), id)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	controller.WriteJSON(w, r, http.StatusOK, domain.NewReport(res))
}

// ListScans answers with a page of stored reports, newest first.
func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	scans, next, err := h.deps.Scanner.Results(r.Context(), q.Get("cursor"), limit)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	out := ScanList{Items: make([]domain.Report, 0, len(scans))}
	for i := range scans {
		out.Items = append(out.Items, domain.NewReport(&scans[i]))
	}
	if next != "" {
		out.NextCursor = &next
	}

	controller.WriteJSON(w, r, http.StatusOK, out)
}

// parseLimit reads a page size, defaulting to DefaultLimit and capped at MaxLimit.
func parseLimit(raw string) (uint, error) {
	if raw == "" {
		return DefaultLimit, nil
	}

	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, serrors.With(serrors.ErrBadRequest, "limit must be a positive integer")
	}

	return uint(min(n, MaxLimit)), nil
}
