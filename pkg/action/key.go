package action

import (
	"regexp"
	"strings"
)

// Action keys are lowercase and restricted to alphanumerics, hyphen, dot
// and colon. Everything else is stripped.
var keyStripRegex = regexp.MustCompile(`[^a-z0-9\-.:]+`)

// NormalizeKey normalizes a raw action key. Two keys that normalize to the
// same string address the same registry entry.
func NormalizeKey(raw string) string {
	return keyStripRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
}
