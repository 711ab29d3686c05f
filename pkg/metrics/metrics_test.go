package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CorpusRank.Set(2)
	m.CacheHitsTotal.Inc()
	m.SearchQueriesTotal.WithLabelValues("miss").Inc()

	if got := testutil.ToFloat64(m.CorpusRank); got != 2 {
		t.Errorf("corpus rank = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("miss")); got != 1 {
		t.Errorf("search queries = %v, want 1", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}

func TestNewMuxServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CorpusDocuments.Set(3)

	srv := httptest.NewServer(NewMux(reg))
	defer srv.Close()

	body := get(t, srv.URL+"/metrics")
	if !strings.Contains(body, "lsi_corpus_documents 3") {
		t.Errorf("scrape output missing corpus gauge:\n%s", body)
	}
	index := get(t, srv.URL+"/")
	if !strings.Contains(index, "<li>lsi_corpus_documents</li>") {
		t.Errorf("index missing metric family:\n%s", index)
	}

	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return string(data)
}
