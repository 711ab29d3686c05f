// Package ranker orders an LSI similarity vector for presentation. The
// vector itself stays in document index order; only this layer sorts.
package ranker

import (
	"math"
	"sort"
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Index int     `json:"index"`
	Title string  `json:"title,omitempty"`
	Score float64 `json:"score"`
}

// Rank pairs ids with scores, drops every score at or below minScore and
// returns the rest sorted by descending score, ties broken by DocID. A limit
// of zero or less returns every survivor. Scores are rounded to four
// decimals before sorting so that float noise cannot reorder ties.
func Rank(ids []string, scores []float64, limit int, minScore float64) []ScoredDoc {
	n := len(ids)
	if len(scores) < n {
		n = len(scores)
	}
	result := make([]ScoredDoc, 0, n)
	for i := 0; i < n; i++ {
		s := scores[i]
		if math.IsNaN(s) || s <= minScore {
			continue
		}
		result = append(result, ScoredDoc{
			DocID: ids[i],
			Index: i,
			Score: math.Round(s*10000) / 10000,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
