//go:build !windows

package collector

import "strings"

// decodeOEMOutput has no code page to consult off Windows; invalid bytes
// become U+FFFD so the result is always valid UTF-8.
func decodeOEMOutput(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
