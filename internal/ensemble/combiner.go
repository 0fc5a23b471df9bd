package ensemble

import (
	"fmt"

	"disease-detector/internal/catalog"
	"disease-detector/internal/scorer"
)

// Combiner fuses model outcomes and matcher vectors into one score per
// disease.
type Combiner struct {
	weights Weights
}

// NewCombiner validates w before use.
func NewCombiner(w Weights) (*Combiner, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Combiner{weights: w}, nil
}

// Weights returns the combiner's weight set.
func (c *Combiner) Weights() Weights { return c.weights }

// Combine averages the available model vectors with their weights
// renormalized over the available subset, then applies the method weights.
// Outcomes are folded in the order given.
func (c *Combiner) Combine(cat *catalog.Catalog, outcomes []scorer.Outcome, simple, enhanced catalog.ScoreVector) (catalog.ScoreVector, error) {
	models := catalog.NewScoreVector(cat)
	reasons := make(map[string]error)

	var total float64
	for _, o := range outcomes {
		if !o.OK() {
			reasons[o.Model] = o.Reason
			continue
		}
		w, ok := c.weights.Models[o.Model]
		if !ok || w <= 0 {
			reasons[o.Model] = fmt.Errorf("no ensemble weight for model %q", o.Model)
			continue
		}
		for name := range models {
			models[name] += w * o.Vector[name]
		}
		total += w
	}
	if total == 0 {
		return nil, &AllModelsUnavailableError{Reasons: reasons}
	}

	m := c.weights.Methods
	final := catalog.NewScoreVector(cat)
	for name := range final {
		final[name] = m.Ensemble*(models[name]/total) + m.Simple*simple[name] + m.Enhanced*enhanced[name]
	}
	return final, nil
}
