package textproc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Fever,   COUGH!! ", "fever cough"},
		{"I've got a sore-throat", "ive got a sore throat"},
		{"ｆｅｖｅｒ", "fever"},
		{"nausea\tand\nvomiting", "nausea and vomiting"},
		{"it’s bad", "its bad"},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"aches":     "ache",
		"headaches": "headach",
		"headache":  "headach",
		"patches":   "patch",
		"bodies":    "body",
		"sneezing":  "sneez",
		"sneeze":    "sneez",
		"vomited":   "vomit",
		"vomiting":  "vomit",
		"mucus":     "mucus",
		"shortness": "shortness",
		"sinusitis": "sinusitis",
		"eyes":      "eye",
		"cough":     "cough",
	}
	for in, want := range tests {
		assert.Equal(t, want, Stem(in), in)
	}
}

func TestPhraseTokens(t *testing.T) {
	assert.Equal(t, []string{"shortness", "breath"}, PhraseTokens("shortness of breath"))
	assert.Equal(t, []string{"whit", "patch", "tonsil"}, PhraseTokens("white patches on tonsils"))
	assert.Equal(t, []string{"post", "nasal", "drip"}, PhraseTokens("post-nasal drip"))
}

func TestExtract_DirectTokens(t *testing.T) {
	kw, err := NewExtractor().Extract("fever, cough, body aches, fatigue")
	require.NoError(t, err)

	assert.Equal(t, []string{"ache", "body", "cough", "fatigu", "fever"}, kw.Tokens())
	for _, tok := range kw.Tokens() {
		assert.True(t, kw.Has(tok), tok)
	}
}

func TestExtract_Synonyms(t *testing.T) {
	kw, err := NewExtractor().Extract("I'm so tired and keep throwing up")
	require.NoError(t, err)

	assert.Equal(t, SynonymStrength, kw.Strength("fatigu"))
	assert.Equal(t, SynonymStrength, kw.Strength("vomit"))
	assert.False(t, kw.Has("vomit"))
	assert.True(t, kw.Has("tired"))
}

func TestExtract_DirectBeatsSynonym(t *testing.T) {
	kw, err := NewExtractor().Extract("fatigue, tired")
	require.NoError(t, err)
	assert.Equal(t, 1.0, kw.Strength("fatigu"))
}

func TestExtract_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "!!! ...", "and the of"} {
		_, err := NewExtractor().Extract(in)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), in)
		assert.Equal(t, "symptoms", ve.Field)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewExtractor()
	a, err := e.Extract("Severe headache with nausea and sensitivity to light")
	require.NoError(t, err)
	b, err := e.Extract("Severe headache with nausea and sensitivity to light")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
