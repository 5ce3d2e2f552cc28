package recognition

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCommand cleans a command or label read from an external mapping
// source: Unicode NFKC normalization, whitespace trim, control characters
// stripped.
func NormalizeCommand(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return normed
}
