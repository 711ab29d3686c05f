package lsi

import (
	"sort"
	"strings"
)

// SortMode controls the iteration order of a Vocabulary. It never changes
// similarity values.
type SortMode int

const (
	// SortNone keeps terms in the order they are first seen.
	SortNone SortMode = iota
	// SortAscending orders terms lexicographically.
	SortAscending
)

func (m SortMode) String() string {
	switch m {
	case SortNone:
		return "none"
	case SortAscending:
		return "ascending"
	default:
		return "unknown"
	}
}

// ParseSortMode maps a configuration string onto a SortMode.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "asc", "ascending":
		return SortAscending, nil
	default:
		return SortNone, ErrUnknownSortMode
	}
}

// Vocabulary is an ordered set of unique terms. Term order fixes the row
// index of every matrix and query vector built from it. A Vocabulary is
// never modified after extraction.
type Vocabulary struct {
	terms         []string
	index         map[string]int
	caseSensitive bool
}

// ExtractVocabulary collects the distinct terms of documents in first-seen
// order, folding case unless caseSensitive is set, then applies mode.
func ExtractVocabulary(documents [][]string, caseSensitive bool, mode SortMode) (*Vocabulary, error) {
	if documents == nil {
		return nil, ErrNilDocuments
	}
	if mode != SortNone && mode != SortAscending {
		return nil, ErrUnknownSortMode
	}
	v := &Vocabulary{
		terms:         make([]string, 0),
		index:         make(map[string]int),
		caseSensitive: caseSensitive,
	}
	for _, doc := range documents {
		for _, token := range doc {
			term := v.fold(token)
			if _, ok := v.index[term]; ok {
				continue
			}
			v.index[term] = len(v.terms)
			v.terms = append(v.terms, term)
		}
	}
	if mode == SortAscending {
		sort.Strings(v.terms)
		for i, term := range v.terms {
			v.index[term] = i
		}
	}
	return v, nil
}

func (v *Vocabulary) fold(token string) string {
	if v.caseSensitive {
		return token
	}
	return strings.ToLower(token)
}

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Term returns the term stored at row i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Index returns the row of token after case folding.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[v.fold(token)]
	return i, ok
}

// Terms returns a copy of the ordered terms.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// CaseSensitive reports whether terms were extracted without case folding.
func (v *Vocabulary) CaseSensitive() bool {
	return v.caseSensitive
}
