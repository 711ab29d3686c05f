package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldTruckCorpus = `documents:
  - id: d1
    body: Shipment of gold damaged in a fire
  - id: d2
    body: Delivery of silver arrived in a silver truck
  - id: d3
    tokens: [shipment, of, gold, arrived, in, a, truck]
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	return writeFile(t, goldTruckCorpus)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"lsiquery"}, args...))
	return out.String(), err
}

func TestScoreKeepsCorpusOrder(t *testing.T) {
	out, err := run(t, "-c", writeCorpus(t), "-a", "fixed-k", "-k", "2", "score", "gold", "silver", "truck")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "d1")
	assert.Contains(t, lines[1], "-0.054")
	assert.Contains(t, lines[2], "d2")
	assert.Contains(t, lines[2], "0.991")
	assert.Contains(t, lines[3], "d3")
	assert.Contains(t, lines[3], "0.44")
}

func TestRank(t *testing.T) {
	out, err := run(t, "-c", writeCorpus(t), "-a", "fixed-k", "-k", "2", "rank", "-n", "2", "gold silver truck")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "d2")
	assert.Contains(t, lines[2], "d3")

	out, err = run(t, "-c", writeCorpus(t), "rank", "platinum")
	require.NoError(t, err)
	assert.Contains(t, out, "no matching documents")
}

func TestInfo(t *testing.T) {
	out, err := run(t, "-c", writeCorpus(t), "-a", "percentage", "-k", "0.5", "--sort", "ascending", "info", "--terms")
	require.NoError(t, err)
	assert.Contains(t, out, "documents:      3")
	assert.Contains(t, out, "rank:           2 of 3")
	assert.Contains(t, out, "vocabulary:     a arrived damaged delivery fire gold in of shipment silver truck")

	var svLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "singular values:") {
			svLine = line
		}
	}
	fields := strings.Fields(strings.TrimPrefix(svLine, "singular values:"))
	require.Len(t, fields, 4, "all three singular values and the rank marker")
	assert.Equal(t, "|", fields[2])
}

const emptyAndDuplicateCorpus = `documents:
  - tokens: []
  - id: a
    tokens: [gold, silver, of]
  - id: b
    tokens: [gold, silver, of]
  - tokens: []
  - id: c
    tokens: [truck]
`

func scoreRows(t *testing.T, out string) [][]string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")[1:]
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.Fields(line)
		require.Len(t, rows[i], 3, line)
	}
	return rows
}

func TestScoreKeepsEmptyAndDuplicateDocuments(t *testing.T) {
	path := writeFile(t, emptyAndDuplicateCorpus)

	out, err := run(t, "-c", path, "score", "platinum")
	require.NoError(t, err)
	rows := scoreRows(t, out)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"doc-000001", "a", "b", "doc-000004", "c"},
		[]string{rows[0][1], rows[1][1], rows[2][1], rows[3][1], rows[4][1]})
	for _, r := range rows {
		assert.Equal(t, "-1.0000", r[2], r[1])
	}

	out, err = run(t, "-c", path, "score", "gold")
	require.NoError(t, err)
	rows = scoreRows(t, out)
	require.Len(t, rows, 5)
	assert.Equal(t, "-1.0000", rows[0][2])
	assert.Equal(t, "-1.0000", rows[3][2])
	assert.Equal(t, rows[1][2], rows[2][2], "identical documents score the same")
	assert.NotEqual(t, "-1.0000", rows[1][2])
}

func TestTokensBypassTokenizer(t *testing.T) {
	out, err := run(t, "-c", writeFile(t, emptyAndDuplicateCorpus), "--stop-words", "--sort", "ascending", "info", "--terms")
	require.NoError(t, err)
	assert.Contains(t, out, "documents:      5")
	assert.Contains(t, out, "vocabulary:     gold of silver truck")
}

func TestErrors(t *testing.T) {
	path := writeCorpus(t)
	_, err := run(t, "-c", path, "score")
	assert.ErrorContains(t, err, "query term")

	_, err = run(t, "-c", path, "-a", "percentage", "-k", "1.5", "info")
	assert.Error(t, err)

	_, err = run(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "info")
	assert.ErrorContains(t, err, "reading seed file")
}
