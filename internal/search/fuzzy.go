package search

import (
	"strings"
	"unicode"
)

// TokenMatcher matches when every query word matches some distinct word of
// the text, in any order. A word matches on equality, prefix, substring or
// within a small edit distance that grows with word length.
type TokenMatcher struct{}

func (TokenMatcher) Match(query string, corpus Corpus) []int {
	words := tokenize(query)
	if len(words) == 0 {
		return nil
	}
	var out []int
	for i := 0; i < corpus.Len(); i++ {
		text, ok := corpus.Text(i)
		if ok && matchWords(words, tokenize(text)) {
			out = append(out, i)
		}
	}
	return out
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchWords assigns each query word to a distinct text word greedily.
func matchWords(query, text []string) bool {
	used := make([]bool, len(text))
	for _, q := range query {
		best, bestScore := -1, -1
		for i, w := range text {
			if used[i] {
				continue
			}
			if s := wordScore(q, w); s >= 0 && (bestScore < 0 || s < bestScore) {
				best, bestScore = i, s
			}
		}
		if best < 0 {
			return false
		}
		used[best] = true
	}
	return true
}

// wordScore ranks how well q matches w. Lower is better, -1 is no match.
func wordScore(q, w string) int {
	switch {
	case q == w:
		return 0
	case strings.HasPrefix(w, q):
		return 10
	case strings.Contains(w, q):
		return 50
	}
	if typos := allowedTypos(len([]rune(q))); typos > 0 {
		if d := levenshtein(q, w); d <= typos {
			return 100 + d*20
		}
	}
	return -1
}

// allowedTypos: 1-3 runes none, 4-6 one, 7+ two.
func allowedTypos(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}

// levenshtein returns the edit distance between a and b using two rows.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(br)]
}
