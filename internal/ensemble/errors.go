package ensemble

import (
	"sort"
	"strings"
)

// AllModelsUnavailableError is returned when no model scorer produced a
// vector for the request. Reasons maps model name to its failure.
type AllModelsUnavailableError struct {
	Reasons map[string]error
}

func (e *AllModelsUnavailableError) Error() string {
	if len(e.Reasons) == 0 {
		return "all models unavailable"
	}
	names := make([]string, 0, len(e.Reasons))
	for name := range e.Reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Reasons[name].Error())
	}
	return "all models unavailable (" + strings.Join(parts, "; ") + ")"
}
