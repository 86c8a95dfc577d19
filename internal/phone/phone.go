// Package phone resolves a phone number from an ordered list of candidate
// sources. The tie-break is explicit: the first non-empty trimmed candidate
// wins.
package phone

import "strings"

// Resolve returns the first candidate that is non-empty after trimming.
func Resolve(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}
