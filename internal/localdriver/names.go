package localdriver

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/driverbdd/internal/concept"
)

// normalizeName NFC-normalizes a database name or type label so visually
// identical names written in different Unicode forms refer to the same thing.
func normalizeName(s string) string {
	return norm.NFC.String(s)
}

// validateName rejects empty names and names containing whitespace.
func validateName(what, s string) error {
	if s == "" {
		return concept.NewDriverError(concept.ErrCodeInvalidName, "%s must not be empty", what)
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return concept.NewDriverError(concept.ErrCodeInvalidName, "%s %q must not contain whitespace", what, s)
	}
	return nil
}

// rootKind returns the kind whose root label equals label.
func rootKind(label string) (concept.Kind, bool) {
	for _, k := range concept.Kinds {
		if k.RootLabel() == label {
			return k, true
		}
	}
	return 0, false
}
