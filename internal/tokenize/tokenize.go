// Package tokenize turns a raw query string into the ordered token
// sequence the planner and executor operate on.
//
// Unlike a general-purpose analyzer, this one never removes or rewrites
// a token: exact phrase matching requires every token the caller typed
// to survive unchanged in meaning, so there is no stopword filter and
// no stemming here. The only normalization applied is Unicode case
// folding, so "Quick" and "quick" hit the same posting.
package tokenize

import (
	"errors"
	"unicode"

	"golang.org/x/text/cases"
)

// ErrEmptyQuery is returned when a query string contains no tokens.
var ErrEmptyQuery = errors.New("tokenize: empty query")

// Token is one word-like span of the original query string.
type Token struct {
	Text       string
	Start, End int // byte offsets into the query string
}

var folder = cases.Fold()

// Normalize splits query into tokens on Unicode word boundaries (any
// run of letters or numbers is a token, everything else is a
// separator) and case-folds each token. It returns ErrEmptyQuery if the
// result is empty.
func Normalize(query string) ([]Token, error) {
	var tokens []Token
	runes := []rune(query)
	n := len(runes)

	isWord := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r)
	}

	byteOffset := make([]int, n+1)
	off := 0
	for i, r := range runes {
		byteOffset[i] = off
		off += len(string(r))
	}
	byteOffset[n] = off

	i := 0
	for i < n {
		if !isWord(runes[i]) {
			i++
			continue
		}
		j := i
		for j < n && isWord(runes[j]) {
			j++
		}
		text := folder.String(string(runes[i:j]))
		tokens = append(tokens, Token{
			Text:  text,
			Start: byteOffset[i],
			End:   byteOffset[j],
		})
		i = j
	}

	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}
	return tokens, nil
}

// Texts extracts the Text field of each token, the shape the planner
// operates on.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
