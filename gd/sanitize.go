package gd

import (
	"strings"
	"unicode"
)

// fallbackName is used when sanitizing leaves nothing usable
const fallbackName = "activity"

// SanitizeName maps a free-text activity label to a filesystem-safe token:
// lower-cased alphanumerics with every other run of characters collapsed
// into a single "-". Deterministic and idempotent.
func SanitizeName(label string) string {
	var b strings.Builder
	pendingSep := false

	for _, r := range strings.TrimSpace(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		} else {
			pendingSep = true
		}
	}

	if b.Len() == 0 {
		return fallbackName
	}
	return b.String()
}
