// Package chunking splits document text into ordered spans for embedding
// and retrieval.
//
// The Engine dispatches to interchangeable Splitter strategies:
//   - recursive: splits on paragraph, sentence, then word boundaries
//     until each span fits the target size, with configurable overlap
//   - semantic: breaks where embedding similarity between adjacent
//     sentences drops below a threshold (embeds sentences internally)
//   - section: splits on structural headers, falling back to recursive
//   - custom: a caller-supplied split function under the same contract
//
// All strategies return spans that are literal slices of the input text,
// carrying byte offsets, so that concatenating spans (minus the configured
// overlap) reconstructs the document.
package chunking
