package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName lower-cases a display name and collapses its whitespace so
// "  Cement   Bag " and "cement bag" share a key.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	// Casers keep state between calls and cannot be shared across goroutines.
	return cases.Lower(language.Und).String(strings.Join(fields, " "))
}

// IsCanonicalID reports whether id looks like a numeric catalog id.
func IsCanonicalID(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
