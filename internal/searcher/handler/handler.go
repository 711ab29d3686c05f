// Package handler exposes search, corpus management and cache endpoints
// over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/metrics"
)

const maxDocumentBytes = 2 << 20

// SearchExecutor is implemented by *executor.Executor.
type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error)
	Snapshot() *corpus.Snapshot
	Rebuild(ctx context.Context) (*corpus.Snapshot, error)
	Stats() (executor.Stats, bool)
}

// ChangeNotifier is told about every stored document.
type ChangeNotifier interface {
	CorpusChanged(ctx context.Context, doc corpus.Document) error
}

// Options wires the optional collaborators. Nil Cache, Collector, Notifier
// or Metrics disable that feature.
type Options struct {
	Tokenizer    tokenizer.Options
	DefaultLimit int
	MaxResults   int
	Cache        *cache.QueryCache
	Collector    *analytics.Collector
	Notifier     ChangeNotifier
	Metrics      *metrics.Metrics
}

type Handler struct {
	executor SearchExecutor
	store    corpus.Store
	opts     Options
	logger   *slog.Logger
}

func New(exec SearchExecutor, store corpus.Store, opts Options) *Handler {
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = 10
	}
	if opts.MaxResults < opts.DefaultLimit {
		opts.MaxResults = opts.DefaultLimit
	}
	return &Handler{
		executor: exec,
		store:    store,
		opts:     opts,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/corpus", h.Corpus)
	mux.HandleFunc("POST /api/v1/corpus/rebuild", h.Rebuild)
	mux.HandleFunc("POST /api/v1/documents", h.AddDocument)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.opts.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.opts.MaxResults {
			parsed = h.opts.MaxResults
		}
		limit = parsed
	}

	snap := h.executor.Snapshot()
	if snap == nil {
		h.countQuery("error")
		h.writeAppError(w, apperrors.New(apperrors.ErrCorpusUnavailable, http.StatusServiceUnavailable, "no corpus snapshot has been built"))
		return
	}

	plan := parser.Parse(query, h.opts.Tokenizer)
	var result *executor.SearchResult
	var err error
	cacheHit := false
	cacheStatus := "disabled"

	if h.opts.Cache != nil {
		result, cacheHit, err = h.opts.Cache.GetOrCompute(ctx, snap.BuildID, plan, limit, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan, limit)
		})
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	} else {
		result, err = h.executor.Execute(ctx, plan, limit)
	}

	if err != nil {
		h.countQuery("error")
		log.Error("search execution failed", "query", query, "error", err)
		h.writeAppError(w, err)
		return
	}

	elapsed := time.Since(start)
	switch {
	case result.TotalHits == 0:
		h.countQuery("zero_result")
	case cacheHit:
		h.countQuery("hit")
	default:
		h.countQuery("miss")
	}
	if h.opts.Metrics != nil {
		h.opts.Metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	}

	log.Info("search completed",
		"query", query,
		"terms", len(plan.Terms),
		"build_id", result.BuildID,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	if h.opts.Collector != nil {
		h.opts.Collector.Track(searchEvent(ctx, result, cacheHit, elapsed))
	}

	h.writeJSON(w, http.StatusOK, result)
}

func searchEvent(ctx context.Context, result *executor.SearchResult, cacheHit bool, elapsed time.Duration) analytics.SearchEvent {
	eventType := analytics.EventCacheMiss
	switch {
	case result.TotalHits == 0:
		eventType = analytics.EventZeroResult
	case cacheHit:
		eventType = analytics.EventCacheHit
	}
	var top float64
	if len(result.Results) > 0 {
		top = result.Results[0].Score
	}
	return analytics.SearchEvent{
		Type:      eventType,
		Query:     result.Query,
		Terms:     result.Terms,
		BuildID:   result.BuildID,
		TotalHits: result.TotalHits,
		Returned:  len(result.Results),
		TopScore:  top,
		LatencyMs: elapsed.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	}
}

// Corpus describes the active snapshot.
func (h *Handler) Corpus(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.executor.Stats()
	if !ok {
		h.writeAppError(w, apperrors.New(apperrors.ErrCorpusUnavailable, http.StatusServiceUnavailable, "no corpus snapshot has been built"))
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// Rebuild decomposes the store contents again and activates the result.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if _, err := h.executor.Rebuild(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("manual rebuild failed", "error", err)
		h.writeAppError(w, err)
		return
	}
	stats, _ := h.executor.Stats()
	h.writeJSON(w, http.StatusOK, stats)
}

type addDocumentRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type addDocumentResponse struct {
	Document     corpus.Document `json:"document"`
	CorpusUpdate string          `json:"corpus_update"`
}

// AddDocument stores a document and announces the change. The document
// becomes searchable once the next snapshot is built.
func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req addDocumentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid document body: %v", err))
		return
	}
	doc := corpus.Document{ID: req.ID, Title: req.Title, Body: req.Body}
	if err := corpus.ValidateDocument(doc); err != nil {
		var ve *corpus.ValidationError
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": ve.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.store.Add(ctx, doc)
	if err != nil {
		log.Warn("document rejected", "id", doc.ID, "error", err)
		h.writeAppError(w, err)
		return
	}
	if h.opts.Metrics != nil {
		h.opts.Metrics.DocumentsAddedTotal.Inc()
	}

	update := "none"
	if h.opts.Notifier != nil {
		update = "queued"
		if err := h.opts.Notifier.CorpusChanged(ctx, stored); err != nil {
			log.Error("corpus change notification failed", "id", stored.ID, "error", err)
			update = "failed"
		}
	}
	log.Info("document stored", "id", stored.ID, "corpus_update", update)
	h.writeJSON(w, http.StatusCreated, addDocumentResponse{Document: stored, CorpusUpdate: update})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.opts.Cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"circuit":  h.opts.Cache.CircuitState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.opts.Cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) countQuery(resultType string) {
	if h.opts.Metrics != nil {
		h.opts.Metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError reports AppError messages verbatim and hides everything
// else behind the status text.
func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := http.StatusText(status)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Error()
	}
	h.writeJSON(w, status, map[string]string{
		"error": message,
		"code":  apperrors.Code(err),
	})
}
