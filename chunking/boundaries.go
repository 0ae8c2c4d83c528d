package chunking

import (
	"sort"
	"unicode"

	"github.com/poiesic/docmind/core"
)

// Boundary helpers shared by the splitters. A boundary is a byte offset
// at which a cut may be placed: the segment before the cut keeps its
// trailing separator, the segment after starts at the boundary.

// paragraphBoundaries returns offsets just past each blank-line break.
func paragraphBoundaries(text string) []int {
	var bounds []int
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\n' && text[i+1] == '\n' {
			j := i + 1
			for j < len(text) && text[j] == '\n' {
				j++
			}
			if j < len(text) {
				bounds = append(bounds, j)
			}
			i = j - 1
		}
	}
	return bounds
}

// sentenceBoundaries returns offsets just past sentence-ending
// punctuation and any following whitespace.
func sentenceBoundaries(text string) []int {
	var bounds []int
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
			j++
		}
		if j < len(text) && !unicode.IsSpace(rune(text[j])) {
			i = j - 1
			continue // abbreviation or number, not a sentence end
		}
		for j < len(text) && unicode.IsSpace(rune(text[j])) {
			j++
		}
		if j < len(text) {
			bounds = append(bounds, j)
		}
		i = j - 1
	}
	return bounds
}

// wordBoundaries returns the start offset of every word after the first.
func wordBoundaries(text string) []int {
	var bounds []int
	inSpace := false
	for i := 0; i < len(text); i++ {
		if unicode.IsSpace(rune(text[i])) {
			inSpace = true
			continue
		}
		if inSpace {
			bounds = append(bounds, i)
			inSpace = false
		}
	}
	return bounds
}

// lastBoundaryIn returns the largest boundary b with from < b <= limit,
// or -1 if there is none. bounds must be sorted ascending.
func lastBoundaryIn(bounds []int, from, limit int) int {
	i := sort.SearchInts(bounds, limit+1) - 1
	if i < 0 || bounds[i] <= from {
		return -1
	}
	return bounds[i]
}

// cutsToSpans converts interior cut offsets into spans covering text
// end to end. With overlap > 0 each span after the first is extended
// backwards by up to overlap bytes, clamped at the previous cut.
func cutsToSpans(text string, cuts []int, overlap int) []core.Span {
	bounds := make([]int, 0, len(cuts)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, cuts...)
	bounds = append(bounds, len(text))

	spans := make([]core.Span, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if i > 0 && overlap > 0 {
			ext := bounds[i] - overlap
			if ext < bounds[i-1] {
				ext = bounds[i-1]
			}
			start = ext
		}
		spans = append(spans, core.Span{Text: text[start:end], Start: start, End: end})
	}
	return spans
}
