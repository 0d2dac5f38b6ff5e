package controller

import (
	"arbitrage/pkg/logger"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// WriteJSON writes v as the JSON body of a response with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(r.Context(), "could not write response", zap.Error(err))
	}
}
