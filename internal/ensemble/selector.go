package ensemble

import (
	"fmt"
	"math"
	"sort"

	"disease-detector/internal/catalog"
)

const (
	// DefaultTopK 返回结果数量
	DefaultTopK = 3
	// DefaultViabilityThreshold is the raw score a disease must exceed to be
	// reported.
	DefaultViabilityThreshold = 0.05
)

// Result 单条预测结果
type Result struct {
	Disease         string   `json:"disease"`
	Confidence      float64  `json:"confidence"`
	TypicalSymptoms []string `json:"typical_symptoms"`
	Score           float64  `json:"-"`
}

// Selector ranks boosted scores and rescales the top K into percentages.
type Selector struct {
	TopK      int
	Threshold float64
}

// NewSelector 创建 Top-K 选择器
func NewSelector(topK int, threshold float64) (Selector, error) {
	if topK <= 0 {
		return Selector{}, fmt.Errorf("top-k must be positive, got %d", topK)
	}
	if threshold < 0 || math.IsNaN(threshold) {
		return Selector{}, fmt.Errorf("viability threshold must be >= 0, got %v", threshold)
	}
	return Selector{TopK: topK, Threshold: threshold}, nil
}

type ranked struct {
	name  string
	score float64
}

// Select keeps diseases scoring above the threshold, orders them by score
// descending then name ascending, and returns up to TopK with confidence
// 100*score/max rounded to two decimals and clamped to [0,100].
func (s Selector) Select(v catalog.ScoreVector, cat *catalog.Catalog) []Result {
	candidates := make([]ranked, 0, len(v))
	for name, score := range v {
		if score > s.Threshold && score > 0 {
			candidates = append(candidates, ranked{name: name, score: score})
		}
	}
	if len(candidates) == 0 {
		return []Result{}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > s.TopK {
		candidates = candidates[:s.TopK]
	}

	top := candidates[0].score
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		var symptoms []string
		if p, ok := cat.Get(c.name); ok {
			symptoms = p.Symptoms()
		}
		results = append(results, Result{
			Disease:         c.name,
			Confidence:      confidence(c.score, top),
			TypicalSymptoms: symptoms,
			Score:           c.score,
		})
	}
	return results
}

func confidence(score, top float64) float64 {
	pct := 100 * score / top
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100
}
