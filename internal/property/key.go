package property

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KeyPrefix namespaces game snapshots within a space.
const KeyPrefix = "reversi_game_"

// InstanceKey derives the instance namespace from the hosting location.
// The query string and fragment are dropped so every visitor of the same
// page lands in the same game; the result is NFC normalized so visually
// identical locations map to one key.
func InstanceKey(location string) string {
	s := strings.TrimSpace(location)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return norm.NFC.String(s)
}

// PropertyKey returns the property under which instance's game lives.
func PropertyKey(instance string) string {
	return KeyPrefix + instance
}
