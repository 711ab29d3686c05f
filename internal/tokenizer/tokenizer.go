// Package tokenizer turns raw text into the token lists consumed by the LSI
// corpus. It splits on non-alphanumeric boundaries and can lower-case,
// drop stop-words and apply the Porter2 stemmer.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Options controls normalisation. The zero value keeps every word as
// written.
type Options struct {
	Lowercase       bool `yaml:"lowercase"`
	RemoveStopWords bool `yaml:"removeStopWords"`
	Stem            bool `yaml:"stem"`
	MinLength       int  `yaml:"minLength"`
}

// DefaultOptions lower-cases and removes stop-words without stemming.
func DefaultOptions() Options {
	return Options{
		Lowercase:       true,
		RemoveStopWords: true,
		MinLength:       1,
	}
}

// Token is a single term and its position among the kept terms.
type Token struct {
	Term     string
	Position int
}

// Tokenize splits text into Tokens according to opts.
func Tokenize(text string, opts Options) []Token {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if len([]rune(word)) < opts.MinLength {
			continue
		}
		lower := strings.ToLower(word)
		if opts.RemoveStopWords {
			if _, isStop := stopWords[lower]; isStop {
				continue
			}
		}
		term := word
		if opts.Lowercase {
			term = lower
		}
		if opts.Stem {
			term = stem(term)
		}
		if term == "" {
			continue
		}
		tokens = append(tokens, Token{Term: term, Position: pos})
		pos++
	}
	return tokens
}

// Terms returns only the terms of Tokenize(text, opts).
func Terms(text string, opts Options) []string {
	tokens := Tokenize(text, opts)
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return terms
}

// IsStopWord reports whether word is in the stop-word list.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// stem applies Porter2 to lower-case input only so that case-sensitive
// corpora keep their capitalised terms intact.
func stem(word string) string {
	if len(word) < 3 || strings.ToLower(word) != word {
		return word
	}
	return porter2.Stem(word)
}
