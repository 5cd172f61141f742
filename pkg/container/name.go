package container

import (
	"strings"
	"unicode"
)

// NormalizeName maps a scene object name to the form scene loaders use for
// node names: every whitespace rune becomes '_' and the reserved characters
// '[', ']', '.', ':' and '/' are removed. All other runes are kept.
//
// Painted colors and container primitives are matched on this form, so both
// sides must go through NormalizeName.
func NormalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case strings.ContainsRune("[].:/", r):
			return -1
		}
		return r
	}, name)
}
