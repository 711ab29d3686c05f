package analytics

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/kafka"
)

const (
	maxLatencySamples = 10000
	topQueries        = 10
	recentBuilds      = 5
)

type AggregatedStats struct {
	TotalSearches     int64          `json:"total_searches"`
	CacheHits         int64          `json:"cache_hits"`
	CacheMisses       int64          `json:"cache_misses"`
	ZeroResultCount   int64          `json:"zero_result_count"`
	AvgLatencyMs      float64        `json:"avg_latency_ms"`
	P50LatencyMs      int64          `json:"p50_latency_ms"`
	P95LatencyMs      int64          `json:"p95_latency_ms"`
	P99LatencyMs      int64          `json:"p99_latency_ms"`
	AvgTopScore       float64        `json:"avg_top_score"`
	TopQueries        []QueryCount   `json:"top_queries"`
	ZeroResultQueries []QueryCount   `json:"zero_result_queries"`
	Builds            []BuildSummary `json:"builds"`
	QueriesPerMinute  float64        `json:"queries_per_minute"`
}

// QueryCount counts a query by its normalized terms, so "Silver truck" and
// "truck silver" are the same query.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// BuildSummary is the relevance picture of one corpus snapshot. Comparing
// consecutive builds shows whether a rebuild helped or hurt.
type BuildSummary struct {
	BuildID     string    `json:"build_id"`
	Searches    int64     `json:"searches"`
	ZeroResults int64     `json:"zero_results"`
	AvgTopScore float64   `json:"avg_top_score"`
	LastSeen    time.Time `json:"last_seen"`
}

type buildStats struct {
	searches    int64
	zeroResults int64
	topScoreSum float64
	scored      int64
	lastSeen    time.Time
}

// Aggregator folds SearchEvents into running statistics.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	cacheHits         int64
	zeroResults       int64
	latencies         []int64 // ring buffer
	nextLatency       int
	topScoreSum       float64
	scoredQueries     int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	builds            map[string]*buildStats
	startTime         time.Time
	now               func() time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		builds:            make(map[string]*buildStats),
		startTime:         time.Now(),
		now:               time.Now,
	}
}

// HandleEvent adapts agg to a Kafka consumer. Undecodable messages fail
// permanently and are skipped by the consumer.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			return err
		}
		agg.Record(event)
		return nil
	}
}

// queryKey is the sorted term list, or the raw query when it produced no
// terms at all.
func queryKey(event SearchEvent) string {
	if len(event.Terms) == 0 {
		return strings.TrimSpace(event.Query)
	}
	terms := append([]string(nil), event.Terms...)
	sort.Strings(terms)
	return strings.Join(terms, " ")
}

func (a *Aggregator) Record(event SearchEvent) {
	key := queryKey(event)
	seen := event.Timestamp
	if seen.IsZero() {
		seen = a.now()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSearches++
	if event.CacheHit {
		a.cacheHits++
	}

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.nextLatency] = event.LatencyMs
		a.nextLatency = (a.nextLatency + 1) % maxLatencySamples
	}

	b := a.builds[event.BuildID]
	if b == nil {
		b = &buildStats{}
		a.builds[event.BuildID] = b
	}
	b.searches++
	if seen.After(b.lastSeen) {
		b.lastSeen = seen
	}

	a.queryCounts[key]++
	if event.TotalHits == 0 {
		a.zeroResults++
		a.zeroResultQueries[key]++
		b.zeroResults++
		return
	}
	a.topScoreSum += event.TopScore
	a.scoredQueries++
	b.topScoreSum += event.TopScore
	b.scored++
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.totalSearches - a.cacheHits,
		ZeroResultCount: a.zeroResults,
	}
	if len(a.latencies) > 0 {
		sorted := append([]int64(nil), a.latencies...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if a.scoredQueries > 0 {
		stats.AvgTopScore = a.topScoreSum / float64(a.scoredQueries)
	}
	stats.TopQueries = topN(a.queryCounts, topQueries)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, topQueries)
	stats.Builds = a.recentBuilds()
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

// recentBuilds returns the most recently queried builds, newest first.
func (a *Aggregator) recentBuilds() []BuildSummary {
	out := make([]BuildSummary, 0, len(a.builds))
	for id, b := range a.builds {
		s := BuildSummary{
			BuildID:     id,
			Searches:    b.searches,
			ZeroResults: b.zeroResults,
			LastSeen:    b.lastSeen,
		}
		if b.scored > 0 {
			s.AvgTopScore = b.topScoreSum / float64(b.scored)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].BuildID < out[j].BuildID
	})
	if len(out) > recentBuilds {
		out = out[:recentBuilds]
	}
	return out
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
