// Package executor serves queries against the current corpus snapshot and
// swaps in freshly decomposed snapshots on rebuild.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/lsi"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/resilience"
)

type SearchResult struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	BuildID   string             `json:"build_id"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
}

// SnapshotBuilder produces a new snapshot from the document store.
type SnapshotBuilder interface {
	Build(ctx context.Context) (*corpus.Snapshot, error)
}

type Options struct {
	// MinScore drops results scoring at or below it.
	MinScore       float64
	RebuildTimeout time.Duration
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

type Executor struct {
	builder SnapshotBuilder
	opts    Options
	current atomic.Pointer[corpus.Snapshot]
	logger  *slog.Logger

	mu        sync.Mutex
	requested uint64     // generation of the latest Rebuild call
	running   *buildCall // nil when no build is in flight
}

// buildCall is one snapshot build. It serves every Rebuild call whose
// generation is at most gen, i.e. every call made before it started.
type buildCall struct {
	gen  uint64
	done chan struct{}
	snap *corpus.Snapshot
	err  error
}

func New(builder SnapshotBuilder, opts Options) *Executor {
	return &Executor{
		builder: builder,
		opts:    opts,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Snapshot returns the snapshot queries currently run against, or nil
// before the first successful build.
func (e *Executor) Snapshot() *corpus.Snapshot {
	return e.current.Load()
}

// Rebuild builds a new snapshot and makes it current. The snapshot
// returned was built after the call was made, so it includes every
// document stored before Rebuild was called. Calls made while a build is
// running wait for it and then share one follow-up build.
//
// The build does not inherit ctx's cancellation and is bounded by
// RebuildTimeout instead; a cancelled caller stops waiting but the build
// carries on for the others. A failed build leaves the previous snapshot
// serving.
func (e *Executor) Rebuild(ctx context.Context) (*corpus.Snapshot, error) {
	e.mu.Lock()
	e.requested++
	want := e.requested
	for {
		call := e.running
		if call == nil {
			call = &buildCall{gen: e.requested, done: make(chan struct{})}
			e.running = call
			go e.build(context.WithoutCancel(ctx), call)
		}
		e.mu.Unlock()

		select {
		case <-call.done:
		case <-ctx.Done():
			return nil, wrapBuildError(fmt.Errorf("waiting for corpus rebuild: %w", ctx.Err()))
		}
		if call.gen >= want {
			if call.err != nil {
				return nil, wrapBuildError(call.err)
			}
			return call.snap, nil
		}
		// The finished build listed the store before this call was made.
		e.mu.Lock()
	}
}

func (e *Executor) build(ctx context.Context, call *buildCall) {
	defer func() {
		e.mu.Lock()
		e.running = nil
		e.mu.Unlock()
		close(call.done)
	}()

	snap, err := resilience.Call(ctx, e.opts.RebuildTimeout, "corpus-rebuild", e.builder.Build)
	if err != nil {
		e.observeBuild("failure", nil)
		e.logger.Error("corpus rebuild failed", "error", err, "generation", call.gen)
		call.err = err
		return
	}
	prev := e.current.Swap(snap)
	e.observeBuild("success", snap)
	attrs := []any{"build_id", snap.BuildID, "documents", len(snap.Documents), "rank", snap.Corpus.Rank(), "generation", call.gen}
	if prev != nil {
		attrs = append(attrs, "previous_build_id", prev.BuildID)
	}
	e.logger.Info("corpus snapshot activated", attrs...)
	call.snap = snap
}

// Execute scores plan against the current snapshot and returns the top
// limit documents.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, apperrors.New(apperrors.ErrCorpusUnavailable, http.StatusServiceUnavailable, "no corpus snapshot has been built")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scores, err := snap.Corpus.Score(plan.Terms)
	if err != nil {
		return nil, fmt.Errorf("scoring query %q: %w", plan.RawQuery, err)
	}
	ranked := ranker.Rank(snap.IDs(), scores, 0, e.opts.MinScore)
	total := len(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Title = snap.Documents[ranked[i].Index].Title
	}
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"build_id", snap.BuildID,
		"hits", total,
		"results", len(ranked),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		BuildID:   snap.BuildID,
		TotalHits: total,
		Results:   ranked,
	}, nil
}

// Stats describes the active snapshot.
type Stats struct {
	BuildID            string    `json:"build_id"`
	BuiltAt            time.Time `json:"built_at"`
	BuildDuration      string    `json:"build_duration"`
	Documents          int       `json:"documents"`
	Terms              int       `json:"terms"`
	Rank               int       `json:"rank"`
	FullRank           int       `json:"full_rank"`
	Approximation      string    `json:"approximation"`
	ApproximationValue float64   `json:"approximation_value,omitempty"`
	SingularValues     []float64 `json:"singular_values"`
}

// Stats returns the active snapshot's description, or false before the
// first build.
func (e *Executor) Stats() (Stats, bool) {
	snap := e.current.Load()
	if snap == nil {
		return Stats{}, false
	}
	policy := snap.Corpus.Policy()
	return Stats{
		BuildID:            snap.BuildID,
		BuiltAt:            snap.BuiltAt,
		BuildDuration:      snap.Duration.String(),
		Documents:          snap.Corpus.NumDocuments(),
		Terms:              snap.Corpus.Vocabulary().Len(),
		Rank:               snap.Corpus.Rank(),
		FullRank:           snap.Corpus.FullRank(),
		Approximation:      policy.Kind.String(),
		ApproximationValue: policy.Value,
		SingularValues:     snap.Corpus.SingularValues(),
	}, true
}

func (e *Executor) observeBuild(status string, snap *corpus.Snapshot) {
	m := e.opts.Metrics
	if m == nil {
		return
	}
	m.CorpusBuildsTotal.WithLabelValues(status).Inc()
	if snap == nil {
		return
	}
	m.CorpusBuildDuration.Observe(snap.Duration.Seconds())
	m.CorpusDocuments.Set(float64(snap.Corpus.NumDocuments()))
	m.CorpusTerms.Set(float64(snap.Corpus.Vocabulary().Len()))
	m.CorpusRank.Set(float64(snap.Corpus.Rank()))
}

// wrapBuildError maps build failures onto HTTP-aware errors. Configuration
// errors and an empty store are the caller's problem; anything else is ours.
func wrapBuildError(err error) error {
	switch {
	case errors.Is(err, lsi.ErrEmptyVocabulary):
		return apperrors.Wrap(apperrors.ErrCorpusUnavailable, http.StatusConflict, err, "corpus has no terms to decompose: "+err.Error())
	case errors.Is(err, lsi.ErrConfig):
		return apperrors.Wrap(apperrors.ErrInvalidInput, http.StatusBadRequest, err, "invalid corpus settings: "+err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrTimeout, http.StatusServiceUnavailable, err, "corpus rebuild timed out: "+err.Error())
	default:
		return apperrors.Wrap(apperrors.ErrInternal, http.StatusInternalServerError, err, "corpus rebuild failed")
	}
}
