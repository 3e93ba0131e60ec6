package extraction

import (
	"strings"

	"golang.org/x/text/width"
)

// Fold maps full-width digits, commas, colons and latin letters to their
// ASCII forms so that a single grammar covers both scripts.
func Fold(text string) string {
	return width.Fold.String(text)
}

// compact removes every whitespace rune, including ideographic spaces.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
