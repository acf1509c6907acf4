package text

import (
	"regexp"
	"strings"
)

// minTokenRunes filters very short tokens; two-letter words are almost
// always noise in wellness feedback.
const minTokenRunes = 3

// wordRE matches letter runs with optional trailing digits.
var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

// Tokenize lowercases s, strips punctuation, splits on word boundaries, and
// drops stop words and tokens shorter than three runes. Order is preserved
// and duplicates are kept; callers that need counts use WordCounts.
func Tokenize(s string) []string {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < minTokenRunes {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		out = append(out, w)
	}
	return out
}

// WordCounts returns the frequency of each token in tokens.
func WordCounts(tokens []string) map[string]int {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// IsStopword reports whether w (already lowercased) is in the stop list.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}
