// Package parser turns a raw search string into the bag of terms that is
// folded into the LSI concept space.
package parser

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/tokenizer"
)

type QueryPlan struct {
	RawQuery string
	// Terms is never nil. Repeated terms are kept because the query vector
	// counts occurrences.
	Terms []string
}

// Parse tokenizes query with the same options the corpus was built with so
// query terms line up with the vocabulary.
func Parse(query string, opts tokenizer.Options) *QueryPlan {
	plan := &QueryPlan{
		RawQuery: query,
		Terms:    make([]string, 0),
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	plan.Terms = append(plan.Terms, tokenizer.Terms(query, opts)...)
	return plan
}

// Empty reports whether the query produced no terms at all.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Normalized is an order-independent form of the terms. Two plans with the
// same Normalized value fold into the same query vector.
func (p *QueryPlan) Normalized() string {
	terms := make([]string, len(p.Terms))
	copy(terms, p.Terms)
	sort.Strings(terms)
	return strings.Join(terms, " ")
}
