package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// StatsSource is implemented by *Aggregator.
type StatsSource interface {
	Stats() AggregatedStats
}

// StatsHandler serves the aggregated query statistics as JSON.
func StatsHandler(src StatsSource) http.HandlerFunc {
	logger := slog.Default().With("component", "analytics-handler")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(src.Stats()); err != nil {
			logger.Error("failed to write analytics response", "error", err)
		}
	}
}
