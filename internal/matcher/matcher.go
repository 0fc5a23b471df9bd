// Package matcher scores diseases by keyword overlap with the catalog. Both
// matchers are pure and always return a complete score vector.
package matcher

import (
	"disease-detector/internal/catalog"
	"disease-detector/internal/textproc"
)

// Matcher scores an extracted keyword set against every catalog disease.
type Matcher interface {
	Name() string
	Score(kw textproc.Keywords, cat *catalog.Catalog) catalog.ScoreVector
}

// SimpleMatcher: matched typical symptoms / total typical symptoms. A
// symptom matches when every token of it was written directly by the user.
type SimpleMatcher struct{}

// Name 匹配器名称
func (SimpleMatcher) Name() string { return "simple" }

// Score 计算简单匹配分数
func (SimpleMatcher) Score(kw textproc.Keywords, cat *catalog.Catalog) catalog.ScoreVector {
	out := catalog.NewScoreVector(cat)
	for _, p := range cat.Profiles() {
		matched := 0
		for _, s := range p.TypicalSymptoms {
			if phraseDirect(kw, textproc.PhraseTokens(s)) {
				matched++
			}
		}
		out[p.Name] = clamp01(float64(matched) / float64(len(p.TypicalSymptoms)))
	}
	return out
}

// EnhancedMatcher: importance-weighted overlap over keyword_weights. Each
// keyword earns the mean strength of its tokens, so partial phrases and
// synonyms contribute a fraction of the weight.
type EnhancedMatcher struct{}

// Name 匹配器名称
func (EnhancedMatcher) Name() string { return "enhanced" }

// Score 计算加权关键词匹配分数
func (EnhancedMatcher) Score(kw textproc.Keywords, cat *catalog.Catalog) catalog.ScoreVector {
	out := catalog.NewScoreVector(cat)
	for _, p := range cat.Profiles() {
		var got, total float64
		for _, wk := range p.WeightedKeywords() {
			total += wk.Weight
			got += wk.Weight * phraseCredit(kw, textproc.PhraseTokens(wk.Keyword))
		}
		if total > 0 {
			out[p.Name] = clamp01(got / total)
		}
	}
	return out
}

func phraseDirect(kw textproc.Keywords, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !kw.Has(t) {
			return false
		}
	}
	return true
}

func phraseCredit(kw textproc.Keywords, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tokens {
		sum += kw.Strength(t)
	}
	return sum / float64(len(tokens))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
