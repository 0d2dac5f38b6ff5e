package v1handler

import (
	"arbitrage/internal/scanner"
	"arbitrage/pkg/controller"
	"arbitrage/pkg/domain"
	"arbitrage/pkg/serrors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DealList is the answer of ListDeals.
type DealList struct {
	Items []domain.ArbitrageDeal `json:"items"`
}

// ListDeals answers with the best deals across runs. Query parameters:
// since (RFC3339), minRoi (percent), category and limit.
func (h *Handler) ListDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := scanner.DealQuery{Category: q.Get("category")}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "since must be an RFC3339 timestamp"))

			return
		}
		query.Since = since
	}
	if raw := q.Get("minRoi"); raw != "" {
		minROI, err := decimal.NewFromString(raw)
		if err != nil {
			h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "minRoi must be a number"))

			return
		}
		query.MinROI = &minROI
	}

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		h.WriteError(w, r, err)

		return
	}
	query.Limit = limit

	deals, err := h.deps.Scanner.Deals(r.Context(), query)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}
	if deals == nil {
		deals = []domain.ArbitrageDeal{}
	}

	controller.WriteJSON(w, r, http.StatusOK, DealList{Items: deals})
}
