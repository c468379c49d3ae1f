// Package utils holds shared helpers for vector math and text formatting,
// plus the zap logger constructor.
package utils

// Truncate shortens s to at most maxRunes runes and appends "..." when it
// cuts. Counting runes keeps accented text from being split mid-character.
// A limit of zero or less leaves s unchanged.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
