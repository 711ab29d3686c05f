package lsi

import "log/slog"

type options struct {
	caseSensitive bool
	sortMode      SortMode
	policy        RankPolicy
	denoiseScale  int
	decomposer    Decomposer
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		sortMode:     SortNone,
		policy:       RankPolicy{Kind: ApproximationNone},
		denoiseScale: DefaultDenoiseScale,
		decomposer:   GonumDecomposer{},
	}
}

// Option configures a Corpus at construction time.
type Option func(*options)

// WithCaseSensitive disables case folding of terms.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(o *options) { o.caseSensitive = caseSensitive }
}

// WithSortMode sets the vocabulary order.
func WithSortMode(mode SortMode) Option {
	return func(o *options) { o.sortMode = mode }
}

// WithRankPolicy sets the low-rank approximation policy.
func WithRankPolicy(policy RankPolicy) Option {
	return func(o *options) { o.policy = policy }
}

// WithFixedRank keeps the k leading singular triplets.
func WithFixedRank(k int) Option {
	return WithRankPolicy(RankPolicy{Kind: ApproximationFixedK, Value: float64(k)})
}

// WithPercentage keeps round(fullRank*fraction) singular triplets.
func WithPercentage(fraction float64) Option {
	return WithRankPolicy(RankPolicy{Kind: ApproximationPercentage, Value: fraction})
}

// WithDenoiseScale sets the decimal places of the noise threshold used by
// Cosine.
func WithDenoiseScale(scale int) Option {
	return func(o *options) { o.denoiseScale = scale }
}

// WithDecomposer replaces the gonum SVD.
func WithDecomposer(d Decomposer) Option {
	return func(o *options) {
		if d != nil {
			o.decomposer = d
		}
	}
}

// WithLogger sets the logger used during construction.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
