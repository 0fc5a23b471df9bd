package ensemble

import (
	"fmt"
	"sort"

	"disease-detector/internal/catalog"
)

// DefaultHistoryBoost is the multiplicative boost for previously diagnosed
// diseases.
const DefaultHistoryBoost = 1.15

// HistoryBooster raises the score of diseases the patient was diagnosed with
// before. Each distinct prior disease is boosted once, however often it
// appears. Results are not clamped here.
type HistoryBooster struct {
	Factor float64
}

// NewHistoryBooster 创建历史加权器，factor 必须 >= 1
func NewHistoryBooster(factor float64) (HistoryBooster, error) {
	if factor < 1 {
		return HistoryBooster{}, fmt.Errorf("history boost must be >= 1, got %v", factor)
	}
	return HistoryBooster{Factor: factor}, nil
}

// Boost returns a boosted copy of v and the sorted list of diseases that
// were boosted. Names not in v are ignored.
func (b HistoryBooster) Boost(v catalog.ScoreVector, prior []string) (catalog.ScoreVector, []string) {
	out := v.Clone()
	if len(prior) == 0 {
		return out, nil
	}

	seen := make(map[string]struct{}, len(prior))
	var applied []string
	for _, name := range prior {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if s, ok := out[name]; ok {
			out[name] = s * b.Factor
			applied = append(applied, name)
		}
	}
	sort.Strings(applied)
	return out, applied
}
