package textproc

import (
	"sort"
	"strings"
)

// Keywords is the keyword set extracted from one query. Each token maps to
// its strength: 1.0 for a token written by the user, SynonymStrength for one
// reached through a synonym.
type Keywords map[string]float64

// Has reports whether token was written directly by the user.
func (k Keywords) Has(token string) bool {
	return k[token] >= 1
}

// Strength 返回关键词强度，未出现为 0
func (k Keywords) Strength(token string) float64 {
	return k[token]
}

// Tokens returns the keyword tokens in ascending order.
func (k Keywords) Tokens() []string {
	out := make([]string, 0, len(k))
	for t := range k {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (k Keywords) add(token string, strength float64) {
	if strength > k[token] {
		k[token] = strength
	}
}

// Tokens splits normalized text into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

func stemAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Stem(w)
	}
	return out
}

// PhraseTokens runs a catalog phrase through the query pipeline without
// synonym expansion, so matchers compare like with like.
func PhraseTokens(phrase string) []string {
	words := Tokens(phrase)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if IsStopWord(w) || len(w) < 2 {
			continue
		}
		out = append(out, Stem(w))
	}
	return out
}
