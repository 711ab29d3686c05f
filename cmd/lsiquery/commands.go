package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/lsi"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/logger"
)

// loaded is a decomposed corpus file.
type loaded struct {
	snap     *corpus.Snapshot
	settings corpus.Settings
}

func load(c *cli.Context) (*loaded, error) {
	log := logger.New(os.Stderr, c.String("log-level"), "text")

	settings, err := corpus.SettingsFromConfig(
		config.LSIConfig{
			CaseSensitive:      c.Bool("case-sensitive"),
			SortTerms:          c.String("sort"),
			Approximation:      c.String("approximation"),
			ApproximationValue: c.Float64("value"),
			DenoiseScale:       c.Int("scale"),
		},
		config.TokenizerConfig{
			RemoveStopWords: c.Bool("stop-words"),
			Stem:            c.Bool("stem"),
			MinLength:       1,
		},
	)
	if err != nil {
		return nil, err
	}
	settings.Options = append(settings.Options, lsi.WithLogger(log))

	f, err := corpus.LoadSeedFile(c.String("corpus"))
	if err != nil {
		return nil, err
	}
	snap, err := corpus.SnapshotFromFile(f, settings)
	if err != nil {
		return nil, err
	}
	log.Info("corpus loaded", "documents", len(snap.Documents), "rank", snap.Corpus.Rank(), "build_id", snap.BuildID)
	return &loaded{snap: snap, settings: settings}, nil
}

func queryPlan(c *cli.Context, l *loaded) (*parser.QueryPlan, error) {
	if c.NArg() < 1 {
		return nil, errors.New("at least one query term is required")
	}
	return parser.Parse(strings.Join(c.Args().Slice(), " "), l.settings.Tokenizer), nil
}

func scoreCommand(c *cli.Context) error {
	l, err := load(c)
	if err != nil {
		return err
	}
	plan, err := queryPlan(c, l)
	if err != nil {
		return err
	}
	scores, err := l.snap.Corpus.Score(plan.Terms)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tID\tSCORE")
	for i, s := range scores {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\n", i, l.snap.Documents[i].ID, s)
	}
	return tw.Flush()
}

func rankCommand(c *cli.Context) error {
	l, err := load(c)
	if err != nil {
		return err
	}
	plan, err := queryPlan(c, l)
	if err != nil {
		return err
	}
	scores, err := l.snap.Corpus.Score(plan.Terms)
	if err != nil {
		return err
	}
	ranked := ranker.Rank(l.snap.IDs(), scores, c.Int("limit"), c.Float64("min-score"))
	if len(ranked) == 0 {
		fmt.Fprintln(c.App.Writer, "no matching documents")
		return nil
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tSCORE\tTITLE")
	for i, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\n", i+1, r.DocID, r.Score, l.snap.Documents[r.Index].Title)
	}
	return tw.Flush()
}

func infoCommand(c *cli.Context) error {
	l, err := load(c)
	if err != nil {
		return err
	}
	lc := l.snap.Corpus
	w := c.App.Writer
	policy := lc.Policy()
	fmt.Fprintf(w, "build:          %s\n", l.snap.BuildID)
	fmt.Fprintf(w, "documents:      %d\n", lc.NumDocuments())
	fmt.Fprintf(w, "terms:          %d\n", lc.Vocabulary().Len())
	fmt.Fprintf(w, "approximation:  %s %g\n", policy.Kind, policy.Value)
	fmt.Fprintf(w, "rank:           %d of %d\n", lc.Rank(), lc.FullRank())
	sv := lc.SingularValues()
	parts := make([]string, len(sv))
	for i, v := range sv {
		parts[i] = fmt.Sprintf("%.4f", v)
		if i == lc.Rank()-1 && i < len(sv)-1 {
			parts[i] += " |"
		}
	}
	fmt.Fprintf(w, "singular values: %s\n", strings.Join(parts, " "))
	if c.Bool("terms") {
		fmt.Fprintf(w, "vocabulary:     %s\n", strings.Join(lc.Vocabulary().Terms(), " "))
	}
	return nil
}
