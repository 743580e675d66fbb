package safety

import (
	"regexp"
	"strings"

	"slide-rag/internal/models"
)

var nameRe = regexp.MustCompile(models.NameRegex)

// Filter rejects questions containing disallowed terms and extracts
// self-introduced user names.
type Filter struct {
	toxicWords []string
}

func NewFilter(toxicWords []string) *Filter {
	words := make([]string, len(toxicWords))
	for i, w := range toxicWords {
		words[i] = strings.ToLower(w)
	}
	return &Filter{toxicWords: words}
}

// IsToxic reports whether the text contains any disallowed word,
// case-insensitive substring match. A toxic question must never reach
// the router.
func (f *Filter) IsToxic(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range f.toxicWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// DetectName matches "nama [saya|aku] [adalah] <Capitalized>" and returns
// the captured name, or current when there is no match or the candidate
// is itself a disallowed word. The detected name is sticky: a
// non-matching input leaves the previous value untouched.
func (f *Filter) DetectName(text, current string) string {
	m := nameRe.FindStringSubmatch(text)
	if m == nil {
		return current
	}
	candidate := m[1]
	for _, word := range f.toxicWords {
		if strings.ToLower(candidate) == word {
			return current
		}
	}
	return candidate
}
