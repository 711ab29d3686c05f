// Package corpus stores the documents an LSI corpus is built from and turns
// them into immutable, decomposed snapshots.
package corpus

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/tokenizer"
)

const (
	maxTitleLength = 1024
	maxBodyLength  = 1048576
)

// Document is one stored text. Its position in a Snapshot is fixed by
// CreatedAt and then ID.
//
// A document with non-nil Tokens is already tokenized: Tokens are its
// terms, unchanged and possibly empty, and Title and Body are only shown.
type Document struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body" yaml:"body"`
	Tokens    []string  `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"createdAt"`
}

// Text is the title followed by the body.
func (d Document) Text() string {
	if d.Title == "" {
		return d.Body
	}
	return d.Title + " " + d.Body
}

// Pretokenized reports whether Tokens replace the tokenized text.
func (d Document) Pretokenized() bool {
	return d.Tokens != nil
}

// Terms returns the terms the document contributes to a corpus.
func (d Document) Terms(opts tokenizer.Options) []string {
	if d.Pretokenized() {
		return append([]string{}, d.Tokens...)
	}
	return tokenizer.Terms(d.Text(), opts)
}

// ContentHash identifies a document by what it contributes to a corpus:
// its text, or its token list when it is pre-tokenized.
func (d Document) ContentHash() string {
	if d.Pretokenized() {
		return fmt.Sprintf("%x", sha256.Sum256([]byte("tokens\x00"+strings.Join(d.Tokens, "\x1f"))))
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(d.Text())))
}

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateDocument checks the title and body lengths of a new document.
// A pre-tokenized document may have no text at all.
func ValidateDocument(doc Document) error {
	errs := make(map[string]string)
	if len(doc.Title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	body := strings.TrimSpace(doc.Body)
	if body == "" && strings.TrimSpace(doc.Title) == "" && !doc.Pretokenized() {
		errs["body"] = "title or body is required"
	} else if len(body) > maxBodyLength {
		errs["body"] = fmt.Sprintf("body must be at most %d characters", maxBodyLength)
	}
	if len(doc.ID) > 255 {
		errs["id"] = "id must be at most 255 characters"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func sortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
