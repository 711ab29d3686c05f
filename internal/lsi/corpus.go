// Package lsi implements Latent Semantic Indexing over tokenized documents.
// A Corpus builds the term–document matrix, decomposes it once, fixes the
// truncation rank and then scores queries by folding them into the reduced
// space and comparing them with every document through a denoised cosine.
//
// A Corpus is immutable after New and safe for concurrent use.
package lsi

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// Corpus is one decomposed document collection.
type Corpus struct {
	vocab         *Vocabulary
	matrix        *mat.Dense
	caseSensitive bool
	scale         int
	policy        RankPolicy

	fullRank int
	rank     int
	sigma    []float64
	invSigma []float64
	uk       *mat.Dense
	docs     [][]float64
	empty    []bool
}

// New builds a Corpus from documents. Each document is a list of tokens
// produced by an upstream tokenizer.
func New(documents [][]string, opts ...Option) (*Corpus, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default().With("component", "lsi")
	}
	if err := o.policy.Validate(); err != nil {
		return nil, err
	}

	vocab, err := ExtractVocabulary(documents, o.caseSensitive, o.sortMode)
	if err != nil {
		return nil, err
	}
	a, err := BuildTermDocumentMatrix(vocab, documents, o.caseSensitive)
	if err != nil {
		return nil, err
	}
	terms, numDocs := a.Dims()

	dec, err := o.decomposer.Decompose(a)
	if err != nil {
		return nil, err
	}
	if err := dec.validate(terms, numDocs); err != nil {
		return nil, err
	}
	k, err := o.policy.SelectRank(dec.Rank())
	if err != nil {
		return nil, err
	}

	c := &Corpus{
		vocab:         vocab,
		matrix:        a,
		caseSensitive: o.caseSensitive,
		scale:         o.denoiseScale,
		policy:        o.policy,
		fullRank:      dec.Rank(),
		rank:          k,
		sigma:         append([]float64(nil), dec.Sigma...),
		invSigma:      make([]float64, k),
		uk:            mat.DenseCopyOf(dec.U.Slice(0, terms, 0, k)),
		docs:          make([][]float64, numDocs),
		empty:         make([]bool, numDocs),
	}

	// Singular values at or below σ₀·max(m,n)·ε are rounding noise; their
	// axes are dropped from both the fold-in and the document vectors.
	tol := dec.Sigma[0] * float64(max(terms, numDocs)) * epsilon
	for j, s := range c.sigma[:k] {
		if s > tol {
			c.invSigma[j] = 1 / s
		}
	}
	for d := 0; d < numDocs; d++ {
		row := append([]float64(nil), dec.V.RawRowView(d)[:k]...)
		for j := range row {
			if c.invSigma[j] == 0 {
				row[j] = 0
			}
		}
		c.docs[d] = row
		c.empty[d] = len(documents[d]) == 0
	}

	logger.Debug("corpus decomposed",
		"terms", terms,
		"documents", numDocs,
		"full_rank", c.fullRank,
		"rank", c.rank,
		"policy", o.policy.Kind.String(),
	)
	return c, nil
}

const epsilon = 2.220446049250313e-16

// Score returns the similarity of query to every document, in document
// order. Query tokens outside the vocabulary are ignored; a query with no
// known token scores -1 against every document.
func (c *Corpus) Score(query []string) ([]float64, error) {
	q, err := BuildQueryVector(c.vocab, query, c.caseSensitive)
	if err != nil {
		return nil, err
	}
	return c.ScoreVector(q)
}

// ScoreVector scores a raw term-weight vector laid out in vocabulary order.
func (c *Corpus) ScoreVector(q []float64) ([]float64, error) {
	if len(q) != c.vocab.Len() {
		return nil, &ErrDimensionMismatch{Expected: c.vocab.Len(), Actual: len(q)}
	}
	folded := c.FoldIn(q)
	scores := make([]float64, len(c.docs))
	for d, doc := range c.docs {
		if c.empty[d] {
			scores[d] = -1
			continue
		}
		scores[d] = Cosine(folded, doc, c.scale)
	}
	return scores, nil
}

// FoldIn projects a term-weight vector into the reduced space:
// Σk⁻¹ · Ukᵗ · q. q must have the vocabulary's length.
func (c *Corpus) FoldIn(q []float64) []float64 {
	var proj mat.VecDense
	proj.MulVec(c.uk.T(), mat.NewVecDense(len(q), q))
	out := make([]float64, c.rank)
	for j := range out {
		out[j] = proj.AtVec(j) * c.invSigma[j]
	}
	return out
}

// Vocabulary returns the corpus vocabulary.
func (c *Corpus) Vocabulary() *Vocabulary {
	return c.vocab
}

// Rank returns the truncation rank k.
func (c *Corpus) Rank() int {
	return c.rank
}

// FullRank returns the number of singular triplets of the decomposition.
func (c *Corpus) FullRank() int {
	return c.fullRank
}

// Policy returns the approximation policy the rank was selected with.
func (c *Corpus) Policy() RankPolicy {
	return c.policy
}

// NumDocuments returns the number of documents, empty ones included.
func (c *Corpus) NumDocuments() int {
	return len(c.docs)
}

// SingularValues returns a copy of every singular value of the
// decomposition, largest first. The first Rank() of them are retained.
func (c *Corpus) SingularValues() []float64 {
	return append([]float64(nil), c.sigma...)
}

// TermDocumentMatrix returns a copy of the raw count matrix.
func (c *Corpus) TermDocumentMatrix() *mat.Dense {
	return mat.DenseCopyOf(c.matrix)
}

// DocumentVector returns a copy of document d in the reduced space.
func (c *Corpus) DocumentVector(d int) []float64 {
	return append([]float64(nil), c.docs[d]...)
}
