// Package sanitizer normalizes external identifiers before validation and
// storage. All functions are idempotent and handle invalid input by returning
// empty values rather than errors.
package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}
	return result.String()
}

// NormalizeTeamName collapses whitespace; team labels are otherwise opaque.
func NormalizeTeamName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeParticipantID trims the id. Participant ids come from the
// presentation layer (Discord user ids and the like) and are case sensitive.
func NormalizeParticipantID(id string) string {
	return strings.TrimSpace(id)
}

// NormalizeSessionKey lowercases the key so "Guild-1" and "guild-1" address
// the same negotiation.
func NormalizeSessionKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// DedupeNonEmpty normalizes each element, drops empties, and removes
// duplicates preserving first-seen order.
func DedupeNonEmpty(values []string, normalize func(string) string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
