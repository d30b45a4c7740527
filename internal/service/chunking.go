package service

import "unicode"

// Chunking defaults, sized to keep segments within typical embedding-model
// input limits while sharing enough context across a cut for facts that
// span a boundary.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// SplitText splits text into segments of at most chunkSize runes, cutting
// on the largest natural boundary available (paragraph, then sentence,
// then word) and carrying overlap runes of trailing context into the next
// segment. Segments are never trimmed: concatenating all segments after
// stripping the first overlap runes from every segment but the first
// reproduces the input exactly. Empty input yields no segments.
func SplitText(text string, chunkSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/(chunkSize-overlap)+1)
	start := 0
	for {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}

		cut := boundaryCut(runes, start+overlap, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - overlap
	}
}

// boundaryCut picks the cut position in (min, end], preferring a paragraph
// break, then a sentence end, then a whitespace gap, scanning backward so
// the chosen segment stays as large as its boundary allows. With no
// natural boundary in range the cut lands mid-word at end.
func boundaryCut(runes []rune, min, end int) int {
	for i := end; i > min; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}
	for i := end; i > min; i-- {
		if isSentenceEnd(runes[i-1]) && i < len(runes) && unicode.IsSpace(runes[i]) {
			return i
		}
	}
	for i := end; i > min; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
