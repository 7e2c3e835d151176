package search

import (
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
)

// Corpus is the text a matcher scans. Text returns false for slots that
// have no content yet (unloaded lazy slots); those never match.
type Corpus interface {
	Len() int
	Text(i int) (string, bool)
}

// Matcher returns the corpus positions matching query, in any order.
type Matcher interface {
	Match(query string, corpus Corpus) []int
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(query string, corpus Corpus) []int

// Match calls f(query, corpus).
func (f MatcherFunc) Match(query string, corpus Corpus) []int {
	return f(query, corpus)
}

// SubstringMatcher matches case-insensitive substrings. It is the default.
type SubstringMatcher struct{}

func (SubstringMatcher) Match(query string, corpus Corpus) []int {
	q := strings.ToLower(query)
	var out []int
	for i := 0; i < corpus.Len(); i++ {
		text, ok := corpus.Text(i)
		if ok && strings.Contains(strings.ToLower(text), q) {
			out = append(out, i)
		}
	}
	return out
}

// lowerSource implements sahilm/fuzzy.Source over a corpus with lowercased text.
type lowerSource struct {
	corpus Corpus
}

func (s lowerSource) String(i int) string {
	text, _ := s.corpus.Text(i)
	return strings.ToLower(text)
}

func (s lowerSource) Len() int { return s.corpus.Len() }

// FuzzyMatcher matches query characters in order, Sublime-style.
type FuzzyMatcher struct{}

func (FuzzyMatcher) Match(query string, corpus Corpus) []int {
	matches := fuzzy.FindFrom(strings.ToLower(query), lowerSource{corpus: corpus})
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}

// FoldMatcher matches query characters in order, ignoring case and diacritics.
type FoldMatcher struct{}

func (FoldMatcher) Match(query string, corpus Corpus) []int {
	var out []int
	for i := 0; i < corpus.Len(); i++ {
		text, ok := corpus.Text(i)
		if ok && lfuzzy.MatchNormalizedFold(query, text) {
			out = append(out, i)
		}
	}
	return out
}

// MatcherNames lists the names MatcherByName understands, default first.
var MatcherNames = []string{"substring", "fuzzy", "fold", "token"}

// MatcherByName maps a config name to a matcher. Unknown names get the default.
func MatcherByName(name string) Matcher {
	switch strings.ToLower(name) {
	case "fuzzy":
		return FuzzyMatcher{}
	case "fold":
		return FoldMatcher{}
	case "token", "words":
		return TokenMatcher{}
	default:
		return SubstringMatcher{}
	}
}
