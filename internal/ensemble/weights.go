package ensemble

import (
	"fmt"
	"math"
	"sort"
)

const weightTolerance = 1e-6

// MethodWeights fuse the model ensemble with the two matchers.
type MethodWeights struct {
	Ensemble float64 `json:"ensemble"`
	Simple   float64 `json:"simple"`
	Enhanced float64 `json:"enhanced"`
}

// Weights 集成权重配置（启动时确定，运行期只读）
type Weights struct {
	Models  map[string]float64 `json:"models"`
	Methods MethodWeights      `json:"methods"`
}

// DefaultMethodWeights 50% models, 30% simple match, 20% enhanced match.
func DefaultMethodWeights() MethodWeights {
	return MethodWeights{Ensemble: 0.50, Simple: 0.30, Enhanced: 0.20}
}

// Validate requires positive weights that each sum to 1.0.
func (w Weights) Validate() error {
	if len(w.Models) == 0 {
		return fmt.Errorf("ensemble weights: no model weights")
	}

	names := make([]string, 0, len(w.Models))
	for name := range w.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		v := w.Models[name]
		if v <= 0 || math.IsNaN(v) {
			return fmt.Errorf("ensemble weights: model %q weight must be positive, got %v", name, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("ensemble weights: model weights sum to %v, want 1.0", sum)
	}

	m := w.Methods
	for label, v := range map[string]float64{"ensemble": m.Ensemble, "simple": m.Simple, "enhanced": m.Enhanced} {
		if v <= 0 || math.IsNaN(v) {
			return fmt.Errorf("ensemble weights: method %q weight must be positive, got %v", label, v)
		}
	}
	if s := m.Ensemble + m.Simple + m.Enhanced; math.Abs(s-1) > weightTolerance {
		return fmt.Errorf("ensemble weights: method weights sum to %v, want 1.0", s)
	}
	return nil
}
