// Package middleware holds the HTTP middleware chain of the search service.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/metrics"
)

// routes are the paths reported as metric labels verbatim.
var routes = map[string]bool{
	"/api/v1/search":           true,
	"/api/v1/corpus":           true,
	"/api/v1/corpus/rebuild":   true,
	"/api/v1/documents":        true,
	"/api/v1/cache/stats":      true,
	"/api/v1/cache/invalidate": true,
	"/api/v1/analytics":        true,
	"/health":                  true,
	"/health/live":             true,
	"/health/ready":            true,
}

// Instrument records request count, latency and in-flight requests on m
// and writes one access log line per request. m may be nil, in which case
// only the log line is written. Server errors log at warn, health probes
// at debug.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			if m != nil {
				m.HTTPRequestsInFlight.Inc()
				defer m.HTTPRequestsInFlight.Dec()
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)
			path := normalizePath(r.URL.Path)

			if m != nil {
				m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
				m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(elapsed.Seconds())
			}

			level := slog.LevelInfo
			switch {
			case sw.status >= http.StatusInternalServerError:
				level = slog.LevelWarn
			case path == "/health" || path == "/health/live" || path == "/health/ready":
				level = slog.LevelDebug
			}
			logger.FromContext(r.Context()).Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration", elapsed,
			)
		})
	}
}

// statusWriter captures the status code and body size.
type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// normalizePath keeps label cardinality bounded: known routes pass through
// and everything else collapses to "other".
func normalizePath(path string) string {
	if routes[path] {
		return path
	}
	return "other"
}
