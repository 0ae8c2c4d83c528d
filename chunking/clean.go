package chunking

import (
	"strings"
	"unicode"
)

// CleanText normalizes raw document text before chunking: line endings
// become \n, control characters are dropped, runs of spaces collapse to
// one, and runs of blank lines collapse to a single paragraph break.
// Paragraph boundaries are preserved because the recursive splitter
// cuts on them.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	newlines, spaces := 0, 0
	wrote := false
	for _, r := range s {
		switch {
		case r == '\n':
			newlines++
		case unicode.IsSpace(r):
			spaces++
		case unicode.IsControl(r):
			// drop
		default:
			if wrote {
				switch {
				case newlines >= 2:
					b.WriteString("\n\n")
				case newlines == 1:
					b.WriteByte('\n')
				case spaces > 0:
					b.WriteByte(' ')
				}
			}
			newlines, spaces = 0, 0
			b.WriteRune(r)
			wrote = true
		}
	}
	return b.String()
}
