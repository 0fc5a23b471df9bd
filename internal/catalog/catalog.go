// Package catalog holds the administrator-curated disease profiles that every
// scorer and matcher ranks against. A Catalog is built once at start-up and is
// read-only afterwards; replacing it requires a restart.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultKeywordWeight 未显式配置权重的症状默认权重
const DefaultKeywordWeight = 1.0

// DiseaseProfile 疾病画像
type DiseaseProfile struct {
	Name            string             `yaml:"name" json:"name"`
	TypicalSymptoms []string           `yaml:"typical_symptoms" json:"typical_symptoms"`
	KeywordWeights  map[string]float64 `yaml:"keyword_weights,omitempty" json:"keyword_weights,omitempty"`

	weighted []WeightedKeyword
}

// WeightedKeyword is one keyword_weights entry.
type WeightedKeyword struct {
	Keyword string
	Weight  float64
}

// WeightedKeywords returns the profile's weighted keywords sorted by keyword,
// so floating point sums over them are reproducible.
func (p DiseaseProfile) WeightedKeywords() []WeightedKeyword {
	return p.weighted
}

// Symptoms returns a copy of the typical symptoms for display.
func (p DiseaseProfile) Symptoms() []string {
	out := make([]string, len(p.TypicalSymptoms))
	copy(out, p.TypicalSymptoms)
	return out
}

// Description is the text a model scorer embeds for a disease.
func Description(p DiseaseProfile) string {
	return p.Name + ": " + strings.Join(p.TypicalSymptoms, ", ")
}

// Catalog 疾病目录（只读）
type Catalog struct {
	profiles []DiseaseProfile
	index    map[string]int
}

// New validates profiles and builds a Catalog sorted by disease name.
// Profiles without keyword_weights get DefaultKeywordWeight per typical symptom.
func New(profiles []DiseaseProfile) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, errors.New("catalog: no disease profiles")
	}

	c := &Catalog{
		profiles: make([]DiseaseProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
	}
	seen := make(map[string]struct{}, len(profiles))
	for i, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog: profile %d has empty name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("catalog: duplicate disease %q", name)
		}
		seen[name] = struct{}{}

		built, err := buildProfile(name, p)
		if err != nil {
			return nil, err
		}
		c.profiles = append(c.profiles, built)
	}

	sort.Slice(c.profiles, func(i, j int) bool { return c.profiles[i].Name < c.profiles[j].Name })
	for i, p := range c.profiles {
		c.index[p.Name] = i
	}
	return c, nil
}

func buildProfile(name string, p DiseaseProfile) (DiseaseProfile, error) {
	symptoms := make([]string, 0, len(p.TypicalSymptoms))
	for _, s := range p.TypicalSymptoms {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		symptoms = append(symptoms, s)
	}
	if len(symptoms) == 0 {
		return DiseaseProfile{}, fmt.Errorf("catalog: disease %q has no typical symptoms", name)
	}

	weights := make(map[string]float64, len(symptoms))
	if len(p.KeywordWeights) == 0 {
		for _, s := range symptoms {
			weights[s] = DefaultKeywordWeight
		}
	} else {
		for k, w := range p.KeywordWeights {
			k = strings.TrimSpace(k)
			if k == "" {
				return DiseaseProfile{}, fmt.Errorf("catalog: disease %q has an empty keyword", name)
			}
			if w <= 0 {
				return DiseaseProfile{}, fmt.Errorf("catalog: disease %q keyword %q has non-positive weight %v", name, k, w)
			}
			weights[k] = w
		}
	}

	weighted := make([]WeightedKeyword, 0, len(weights))
	for k, w := range weights {
		weighted = append(weighted, WeightedKeyword{Keyword: k, Weight: w})
	}
	sort.Slice(weighted, func(i, j int) bool { return weighted[i].Keyword < weighted[j].Keyword })

	return DiseaseProfile{
		Name:            name,
		TypicalSymptoms: symptoms,
		KeywordWeights:  weights,
		weighted:        weighted,
	}, nil
}

// Profiles returns the profiles in name order. Callers must treat the
// contained slices and maps as read-only.
func (c *Catalog) Profiles() []DiseaseProfile {
	out := make([]DiseaseProfile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Get looks up a profile by exact name.
func (c *Catalog) Get(name string) (DiseaseProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return DiseaseProfile{}, false
	}
	return c.profiles[i], true
}

// Has reports whether name is a catalog disease.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Names returns the disease names in ascending order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.profiles))
	for i, p := range c.profiles {
		names[i] = p.Name
	}
	return names
}

// Len 疾病数量
func (c *Catalog) Len() int {
	return len(c.profiles)
}
