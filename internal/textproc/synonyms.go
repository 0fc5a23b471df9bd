package textproc

// SynonymStrength is the keyword strength credited for a synonym match.
const SynonymStrength = 0.75

// Colloquial phrase -> catalog phrase. Keys and values are run through the
// same pipeline as queries at init.
var synonymSource = map[string]string{
	"tired":        "fatigue",
	"exhausted":    "fatigue",
	"exhaustion":   "fatigue",
	"weary":        "fatigue",
	"worn out":     "fatigue",
	"phlegm":       "mucus",
	"sputum":       "mucus",
	"throwing up":  "vomiting",
	"threw up":     "vomiting",
	"puking":       "vomiting",
	"stuffy":       "congestion",
	"blocked nose": "nasal congestion",
	"temperature":  "fever",
	"feverish":     "fever",
	"achy":         "body aches",
	"muscle pain":  "body aches",
	"breathless":   "shortness of breath",
	"wheezing":     "shortness of breath",
	"stomach ache": "abdominal pain",
	"stomach pain": "abdominal pain",
	"tummy ache":   "abdominal pain",
	"cramps":       "abdominal pain",
	"loose stool":  "diarrhea",
	"peeing":       "urination",
	"pee":          "urination",
	"queasy":       "nausea",
	"nauseous":     "nausea",
	"nauseated":    "nausea",
	"sniffles":     "runny nose",
	"glands":       "lymph nodes",
	"scratchy":     "sore throat",
	"photophobia":  "sensitivity to light",
}

type synonymTable struct {
	words   map[string][]string
	bigrams map[string][]string
}

var synonyms = buildSynonyms(synonymSource)

func buildSynonyms(src map[string]string) synonymTable {
	t := synonymTable{
		words:   make(map[string][]string),
		bigrams: make(map[string][]string),
	}
	for from, to := range src {
		key := stemAll(Tokens(from))
		target := PhraseTokens(to)
		switch len(key) {
		case 1:
			t.words[key[0]] = target
		case 2:
			t.bigrams[key[0]+" "+key[1]] = target
		}
	}
	return t
}
