package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/kafka"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestCollectorPublishesTrackedEvents(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 16)
	c.Start(context.Background())

	for i := 0; i < 5; i++ {
		c.Track(SearchEvent{Type: EventCacheMiss, Query: "gold", BuildID: "b1"})
	}
	c.Close()

	require.Equal(t, 5, pub.count())
	assert.Zero(t, c.Dropped())
	assert.Equal(t, string(EventCacheMiss), pub.events[0].Type)
	assert.Equal(t, "b1", pub.events[0].Key)
	ev, ok := pub.events[0].Value.(SearchEvent)
	require.True(t, ok)
	assert.Equal(t, "gold", ev.Query)
}

func TestCollectorDrainsOnCancel(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 16)
	for i := 0; i < 3; i++ {
		c.Track(SearchEvent{Query: "silver"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx)
	<-c.done

	assert.Equal(t, 3, pub.count(), "publish errors are logged, not retried")
	assert.Equal(t, int64(3), c.Dropped())
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 1)
	c.Track(SearchEvent{Query: "a"})
	c.Track(SearchEvent{Query: "b"})
	assert.Len(t, c.eventCh, 1)
	assert.Equal(t, int64(1), c.Dropped())

	c.Start(context.Background())
	c.Close()
	assert.Equal(t, 1, pub.count())
}

func TestAggregator(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	events := []SearchEvent{
		{Query: "gold", TotalHits: 3, TopScore: 0.9, LatencyMs: 2, CacheHit: true},
		{Query: "gold", TotalHits: 3, TopScore: 0.7, LatencyMs: 4},
		{Query: "platinum", TotalHits: 0, LatencyMs: 1},
	}
	for _, ev := range events {
		data, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, handle(context.Background(), nil, data))
	}
	assert.ErrorContains(t, handle(context.Background(), nil, []byte("not json")), "decoding")

	st := agg.Stats()
	assert.Equal(t, int64(3), st.TotalSearches)
	assert.Equal(t, int64(1), st.CacheHits)
	assert.Equal(t, int64(2), st.CacheMisses)
	assert.Equal(t, int64(1), st.ZeroResultCount)
	assert.InDelta(t, 0.8, st.AvgTopScore, 1e-9)
	assert.InDelta(t, 7.0/3.0, st.AvgLatencyMs, 1e-9)
	assert.Equal(t, int64(2), st.P50LatencyMs)
	require.NotEmpty(t, st.TopQueries)
	assert.Equal(t, QueryCount{Query: "gold", Count: 2}, st.TopQueries[0])
	assert.Equal(t, []QueryCount{{Query: "platinum", Count: 1}}, st.ZeroResultQueries)
}

func TestAggregatorBoundsLatencySamples(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < maxLatencySamples+10; i++ {
		agg.Record(SearchEvent{Query: "q", TotalHits: 1, LatencyMs: int64(i)})
	}
	assert.Len(t, agg.latencies, maxLatencySamples)
	assert.Equal(t, int64(maxLatencySamples), agg.latencies[0], "oldest sample overwritten first")
	assert.Equal(t, 10, agg.nextLatency)
}

func TestAggregatorNormalizesTermsAndTracksBuilds(t *testing.T) {
	agg := NewAggregator()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	agg.Record(SearchEvent{Query: "Silver truck", Terms: []string{"silver", "truck"}, BuildID: "b1", TotalHits: 3, TopScore: 0.5, Timestamp: t0})
	agg.Record(SearchEvent{Query: "truck silver", Terms: []string{"truck", "silver"}, BuildID: "b2", TotalHits: 3, TopScore: 0.9, Timestamp: t0.Add(time.Minute)})
	agg.Record(SearchEvent{Query: "the", BuildID: "b2", Timestamp: t0.Add(2 * time.Minute)})

	st := agg.Stats()
	assert.Equal(t, []QueryCount{{Query: "silver truck", Count: 2}, {Query: "the", Count: 1}}, st.TopQueries)
	require.Len(t, st.Builds, 2)
	assert.Equal(t, "b2", st.Builds[0].BuildID, "newest build first")
	assert.Equal(t, int64(2), st.Builds[0].Searches)
	assert.Equal(t, int64(1), st.Builds[0].ZeroResults)
	assert.InDelta(t, 0.9, st.Builds[0].AvgTopScore, 1e-9)
	assert.InDelta(t, 0.5, st.Builds[1].AvgTopScore, 1e-9)
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(SearchEvent{Query: "gold", TotalHits: 1, Timestamp: time.Now()})

	rec := httptest.NewRecorder()
	StatsHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var st AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, int64(1), st.TotalSearches)
}
