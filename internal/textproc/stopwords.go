package textproc

var stopWords = toSet(
	"a", "about", "after", "all", "also", "am", "an", "and", "any", "are", "as", "at",
	"be", "been", "before", "being", "but", "by",
	"can", "could",
	"day", "days", "did", "do", "does", "doing",
	"for", "from",
	"get", "getting", "got",
	"had", "has", "have", "having", "he", "her", "him", "his", "how",
	"i", "im", "ive", "if", "in", "into", "is", "it", "its",
	"just",
	"last", "lately",
	"me", "my", "myself",
	"no", "not", "now",
	"of", "on", "or", "our", "out",
	"past", "please",
	"quite",
	"really",
	"she", "since", "so", "some",
	"than", "that", "the", "their", "them", "then", "there", "these", "they", "this", "those", "to", "too",
	"up",
	"very",
	"was", "we", "week", "weeks", "were", "what", "when", "which", "while", "who", "with", "would",
	"you", "your",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsStopWord reports whether a normalized word carries no symptom meaning.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
