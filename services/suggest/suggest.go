package suggest

import (
	"strings"

	"golang.org/x/text/cases"
)

const minQueryLength = 2

var defaultVocabulary = []string{
	"Near Me",
	"Colleges",
	"IT Parks",
	"Metro Stations",
	"Hospitals",
	"Shopping Malls",
}

type Engine struct {
	vocabulary []string
}

// New returns an engine over vocabulary, or the default vocabulary when none
// is given.
func New(vocabulary ...string) *Engine {
	if len(vocabulary) == 0 {
		vocabulary = defaultVocabulary
	}
	return &Engine{vocabulary: append([]string(nil), vocabulary...)}
}

// Suggest returns the vocabulary entries containing partialQuery, ignoring case,
// in vocabulary order.
func (e *Engine) Suggest(partialQuery string) []string {
	suggestions := []string{}
	if len([]rune(partialQuery)) < minQueryLength {
		return suggestions
	}

	// A Caser keeps state between calls, so each call gets its own.
	caser := cases.Fold()
	needle := caser.String(partialQuery)
	for _, entry := range e.vocabulary {
		if strings.Contains(caser.String(entry), needle) {
			suggestions = append(suggestions, entry)
		}
	}
	return suggestions
}
