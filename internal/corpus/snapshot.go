package corpus

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/lsi"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/resilience"
)

// Snapshot is an immutable, decomposed view of the store at one point in
// time. Documents[i] is the document scored at index i.
type Snapshot struct {
	Corpus    *lsi.Corpus
	Documents []Document
	BuildID   string
	BuiltAt   time.Time
	Duration  time.Duration
}

// IDs returns the document IDs in corpus order.
func (s *Snapshot) IDs() []string {
	ids := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		ids[i] = d.ID
	}
	return ids
}

// Settings is everything that determines how a snapshot is built.
type Settings struct {
	Tokenizer tokenizer.Options
	Options   []lsi.Option
	// fingerprint identifies the settings inside BuildID.
	fingerprint string
}

// SettingsFromConfig translates configuration into tokenizer options and
// LSI options, rejecting invalid rank or sort settings up front.
func SettingsFromConfig(lc config.LSIConfig, tc config.TokenizerConfig) (Settings, error) {
	sortMode, err := lsi.ParseSortMode(lc.SortTerms)
	if err != nil {
		return Settings{}, fmt.Errorf("lsi.sortTerms %q: %w", lc.SortTerms, err)
	}
	kind, err := lsi.ParseApproximationKind(lc.Approximation)
	if err != nil {
		return Settings{}, fmt.Errorf("lsi.approximation %q: %w", lc.Approximation, err)
	}
	policy := lsi.RankPolicy{Kind: kind, Value: lc.ApproximationValue}
	if err := policy.Validate(); err != nil {
		return Settings{}, err
	}
	scale := lc.DenoiseScale
	if scale == 0 {
		scale = lsi.DefaultDenoiseScale
	}
	tok := tokenizer.Options{
		Lowercase:       !lc.CaseSensitive,
		RemoveStopWords: tc.RemoveStopWords,
		Stem:            tc.Stem,
		MinLength:       tc.MinLength,
	}
	return Settings{
		Tokenizer: tok,
		Options: []lsi.Option{
			lsi.WithCaseSensitive(lc.CaseSensitive),
			lsi.WithSortMode(sortMode),
			lsi.WithRankPolicy(policy),
			lsi.WithDenoiseScale(scale),
		},
		fingerprint: fmt.Sprintf("%+v|%+v|scale=%d|cs=%t|sort=%s", tok, policy, scale, lc.CaseSensitive, sortMode),
	}, nil
}

// Builder loads documents from a Store and decomposes them.
type Builder struct {
	store    Store
	settings Settings
	retry    resilience.RetryConfig
	logger   *slog.Logger
}

// NewBuilder creates a Builder. loadAttempts bounds the retries of the
// store read.
func NewBuilder(store Store, settings Settings, loadAttempts int) *Builder {
	return &Builder{
		store:    store,
		settings: settings,
		retry:    resilience.RetryConfig{MaxAttempts: loadAttempts},
		logger:   slog.Default().With("component", "corpus-builder"),
	}
}

// Build reads every stored document and returns a new Snapshot.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	var docs []Document
	err := resilience.Retry(ctx, "list-documents", b.retry, func(ctx context.Context) error {
		var err error
		docs, err = b.store.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	snap, err := BuildSnapshot(docs, b.settings)
	if err != nil {
		return nil, err
	}
	snap.Duration = time.Since(start)
	b.logger.Info("corpus snapshot built",
		"build_id", snap.BuildID,
		"documents", len(docs),
		"terms", snap.Corpus.Vocabulary().Len(),
		"rank", snap.Corpus.Rank(),
		"full_rank", snap.Corpus.FullRank(),
		"duration", snap.Duration,
	)
	return snap, nil
}

// BuildSnapshot tokenizes docs in the given order and decomposes them.
// Pre-tokenized documents keep their tokens as they are.
func BuildSnapshot(docs []Document, settings Settings) (*Snapshot, error) {
	tokens := make([][]string, len(docs))
	for i, d := range docs {
		tokens[i] = d.Terms(settings.Tokenizer)
	}
	c, err := lsi.New(tokens, settings.Options...)
	if err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}
	return &Snapshot{
		Corpus:    c,
		Documents: docs,
		BuildID:   buildID(docs, settings.fingerprint),
		BuiltAt:   time.Now().UTC(),
	}, nil
}

func buildID(docs []Document, fingerprint string) string {
	h := sha256.New()
	for _, d := range docs {
		fmt.Fprintf(h, "%s:%s\n", d.ID, d.ContentHash())
	}
	h.Write([]byte(fingerprint))
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}
