package lsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVocabulary(t *testing.T) {
	docs := [][]string{{"Delivery", "of", "silver"}, {}, {"silver", "truck", "OF"}}

	v, err := ExtractVocabulary(docs, false, SortNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"delivery", "of", "silver", "truck"}, v.Terms())

	v, err = ExtractVocabulary(docs, false, SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"delivery", "of", "silver", "truck"}, v.Terms())
	i, ok := v.Index("TRUCK")
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	v, err = ExtractVocabulary(docs, true, SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"Delivery", "OF", "of", "silver", "truck"}, v.Terms())
	_, ok = v.Index("delivery")
	assert.False(t, ok)
	assert.True(t, v.CaseSensitive())

	_, err = ExtractVocabulary(nil, false, SortNone)
	assert.ErrorIs(t, err, ErrNilDocuments)
}

func TestVocabularyTermsIsACopy(t *testing.T) {
	v, err := ExtractVocabulary([][]string{{"a", "b"}}, false, SortNone)
	require.NoError(t, err)
	terms := v.Terms()
	terms[0] = "z"
	assert.Equal(t, "a", v.Term(0))
	assert.Equal(t, 2, v.Len())
}

func TestBuildTermDocumentMatrix(t *testing.T) {
	docs := [][]string{
		{"shipment", "of", "gold"},
		{},
		{"of", "Silver", "silver", "truck"},
	}
	v, err := ExtractVocabulary(docs, false, SortNone)
	require.NoError(t, err)
	a, err := BuildTermDocumentMatrix(v, docs, false)
	require.NoError(t, err)

	r, c := a.Dims()
	assert.Equal(t, v.Len(), r)
	assert.Equal(t, 3, c)
	row := func(term string) []float64 {
		i, ok := v.Index(term)
		require.True(t, ok, term)
		return []float64{a.At(i, 0), a.At(i, 1), a.At(i, 2)}
	}
	assert.Equal(t, []float64{1, 0, 1}, row("of"))
	assert.Equal(t, []float64{0, 0, 2}, row("silver"))
	assert.Equal(t, []float64{1, 0, 0}, row("gold"))
	for i := 0; i < r; i++ {
		assert.Zero(t, a.At(i, 1))
	}

	_, err = BuildTermDocumentMatrix(v, docs, true)
	assert.ErrorIs(t, err, ErrCaseMismatch)
}

func TestBuildQueryVector(t *testing.T) {
	v, err := ExtractVocabulary([][]string{{"gold", "silver", "truck"}}, false, SortAscending)
	require.NoError(t, err)

	q, err := BuildQueryVector(v, []string{"Silver", "boat", "silver", "GOLD"}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 0}, q)

	_, err = BuildQueryVector(v, []string{"Silver"}, true)
	assert.ErrorIs(t, err, ErrCaseMismatch)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = BuildQueryVector(v, nil, false)
	assert.ErrorIs(t, err, ErrNilQuery)
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("Ascending")
	require.NoError(t, err)
	assert.Equal(t, SortAscending, m)
	m, err = ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, m)
	_, err = ParseSortMode("descending")
	assert.ErrorIs(t, err, ErrUnknownSortMode)
}
