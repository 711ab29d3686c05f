package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/lsi"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/config"
)

// syntheticCorpus returns numDocs documents of docLen terms drawn from a
// vocabulary of vocabSize words with a fixed seed.
func syntheticCorpus(numDocs, docLen, vocabSize int) [][]string {
	rng := rand.New(rand.NewSource(42))
	docs := make([][]string, numDocs)
	for d := range docs {
		doc := make([]string, docLen)
		for i := range doc {
			doc[i] = fmt.Sprintf("w%04d", rng.Intn(vocabSize))
		}
		docs[d] = doc
	}
	return docs
}

func BenchmarkCorpusBuild(b *testing.B) {
	for _, numDocs := range []int{50, 200, 500} {
		docs := syntheticCorpus(numDocs, 40, 1000)
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := lsi.New(docs, lsi.WithPercentage(0.2)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScore(b *testing.B) {
	query := []string{"w0001", "w0002", "w0003"}
	for _, k := range []int{10, 50, 100} {
		c, err := lsi.New(syntheticCorpus(500, 40, 1000), lsi.WithFixedRank(k))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("k_%d", k), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := c.Score(query); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScoreParallel(b *testing.B) {
	c, err := lsi.New(syntheticCorpus(500, 40, 1000), lsi.WithFixedRank(50))
	if err != nil {
		b.Fatal(err)
	}
	query := []string{"w0010", "w0020"}
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.Score(query); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkQueryParse(b *testing.B) {
	queries := map[string]string{
		"simple": "semantic search",
		"long":   "latent semantic indexing query fold in concept space truncated decomposition ranking",
	}
	opts := tokenizer.DefaultOptions()
	for name, q := range queries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = parser.Parse(q, opts)
			}
		})
	}
}

func BenchmarkRank(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		rng := rand.New(rand.NewSource(7))
		ids := make([]string, n)
		scores := make([]float64, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("doc-%06d", i)
			scores[i] = rng.Float64()*2 - 1
		}
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = ranker.Rank(ids, scores, 10, -1)
			}
		})
	}
}

func BenchmarkExecutor(b *testing.B) {
	store := corpus.NewMemoryStore()
	ctx := context.Background()
	for i, doc := range syntheticCorpus(300, 30, 800) {
		body := ""
		for _, term := range doc {
			body += term + " "
		}
		if _, err := store.Add(ctx, corpus.Document{ID: fmt.Sprintf("doc-%04d", i), Body: body}); err != nil {
			b.Fatal(err)
		}
	}
	settings, err := corpus.SettingsFromConfig(
		config.LSIConfig{Approximation: "fixed-k", ApproximationValue: 40},
		config.TokenizerConfig{MinLength: 1},
	)
	if err != nil {
		b.Fatal(err)
	}
	e := executor.New(corpus.NewBuilder(store, settings, 1), executor.Options{MinScore: -1})
	if _, err := e.Rebuild(ctx); err != nil {
		b.Fatal(err)
	}
	plan := parser.Parse("w0001 w0002 w0003", settings.Tokenizer)

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := e.Execute(ctx, plan, 10); err != nil {
				b.Fatal(err)
			}
		}
	})
}
