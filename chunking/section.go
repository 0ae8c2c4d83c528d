package chunking

import (
	"context"
	"regexp"
	"sort"

	"github.com/poiesic/docmind/core"
)

// Structural header patterns, coarsest first. The first pattern with a
// match determines the section boundaries.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*(?:Chapter|Section|Part)\s+\d+`),
	regexp.MustCompile(`(?m)^\s*\d+\.\s+[A-Z]`),
	regexp.MustCompile(`(?m)^[A-Z][A-Z \t]+$`),
	regexp.MustCompile(`(?m)^#{1,6}\s+`),
}

// sectionSplitter cuts at structural headers (chapters, numbered
// sections, ALL CAPS headings, markdown headers). Oversized sections are
// further split recursively; text without recognizable structure falls
// back to the recursive strategy entirely.
type sectionSplitter struct{}

func (sectionSplitter) Name() string { return MethodSection }

func (sectionSplitter) Split(ctx context.Context, text string, params Params) ([]core.Span, error) {
	var cuts []int
	for _, pattern := range sectionPatterns {
		locs := pattern.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		for _, loc := range locs {
			if loc[0] > 0 {
				cuts = append(cuts, loc[0])
			}
		}
		break
	}
	if len(cuts) == 0 {
		return recursiveSplitter{}.Split(ctx, text, params)
	}

	// Split oversized sections with the recursive boundary search.
	bounds := append(append([]int{0}, cuts...), len(text))
	for i := 0; i+1 < len(bounds); i++ {
		cuts = append(cuts, recursiveCuts(text, bounds[i], bounds[i+1], params.ChunkSize)...)
	}
	sort.Ints(cuts)
	return cutsToSpans(text, cuts, params.Overlap), nil
}
