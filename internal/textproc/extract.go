package textproc

// ValidationError 请求校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrEmptySymptoms is returned when the symptom text has no usable keyword.
var ErrEmptySymptoms = &ValidationError{Field: "symptoms", Message: "Please provide symptoms"}

// Extractor turns symptom text into Keywords.
type Extractor struct {
	synonyms synonymTable
}

// NewExtractor returns an extractor using the built-in synonym table.
func NewExtractor() *Extractor {
	return &Extractor{synonyms: synonyms}
}

// Extract normalizes text and returns its keyword set. Text that yields no
// keyword is a *ValidationError.
func (e *Extractor) Extract(text string) (Keywords, error) {
	words := Tokens(text)
	stems := stemAll(words)

	kw := make(Keywords, len(words))
	for i, w := range words {
		if i+1 < len(stems) {
			if target, ok := e.synonyms.bigrams[stems[i]+" "+stems[i+1]]; ok {
				for _, t := range target {
					kw.add(t, SynonymStrength)
				}
			}
		}
		if target, ok := e.synonyms.words[stems[i]]; ok {
			for _, t := range target {
				kw.add(t, SynonymStrength)
			}
		}
		if IsStopWord(w) || len(w) < 2 {
			continue
		}
		kw.add(stems[i], 1)
	}

	if len(kw) == 0 {
		return nil, ErrEmptySymptoms
	}
	return kw, nil
}
