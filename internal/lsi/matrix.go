package lsi

import "gonum.org/v1/gonum/mat"

// BuildTermDocumentMatrix returns the terms × documents matrix of raw term
// counts. An empty document yields an all-zero column. caseSensitive must
// match the setting the vocabulary was extracted with.
func BuildTermDocumentMatrix(vocab *Vocabulary, documents [][]string, caseSensitive bool) (*mat.Dense, error) {
	if documents == nil {
		return nil, ErrNilDocuments
	}
	if caseSensitive != vocab.CaseSensitive() {
		return nil, ErrCaseMismatch
	}
	if vocab.Len() == 0 || len(documents) == 0 {
		return nil, ErrEmptyVocabulary
	}
	a := mat.NewDense(vocab.Len(), len(documents), nil)
	for d, doc := range documents {
		for _, token := range doc {
			if t, ok := vocab.Index(token); ok {
				a.Set(t, d, a.At(t, d)+1)
			}
		}
	}
	return a, nil
}

// BuildQueryVector counts the occurrences of each vocabulary term in query.
// Tokens outside the vocabulary are dropped.
func BuildQueryVector(vocab *Vocabulary, query []string, caseSensitive bool) ([]float64, error) {
	if query == nil {
		return nil, ErrNilQuery
	}
	if caseSensitive != vocab.CaseSensitive() {
		return nil, ErrCaseMismatch
	}
	q := make([]float64, vocab.Len())
	for _, token := range query {
		if t, ok := vocab.Index(token); ok {
			q[t]++
		}
	}
	return q, nil
}
