package catalog

// ScoreVector maps a disease name to a score. A complete vector has exactly
// one entry per catalog disease.
type ScoreVector map[string]float64

// NewScoreVector returns a zero-filled vector over the catalog.
func NewScoreVector(c *Catalog) ScoreVector {
	v := make(ScoreVector, c.Len())
	for _, p := range c.profiles {
		v[p.Name] = 0
	}
	return v
}

// Complete returns a copy of v restricted to the catalog, zero-filling
// diseases v does not mention and dropping names the catalog does not know.
func (v ScoreVector) Complete(c *Catalog) ScoreVector {
	out := NewScoreVector(c)
	for name := range out {
		if s, ok := v[name]; ok {
			out[name] = s
		}
	}
	return out
}

// Clone 复制
func (v ScoreVector) Clone() ScoreVector {
	out := make(ScoreVector, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}
