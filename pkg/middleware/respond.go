package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/logger"
)

// writeError answers with the same JSON error shape as the API handlers,
// plus the request ID so a rejected client can quote it.
func writeError(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error":      err.Message,
		"code":       apperrors.Code(err),
		"request_id": logger.RequestID(r.Context()),
	})
}
