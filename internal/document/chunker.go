package document

import (
	"strings"
	"unicode"
)

// Default chunking parameters, in runes.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk is one window of source text. Offset is the byte offset of the
// chunk's first rune in the original text, so callers can map a chunk
// back to its source without re-scanning.
type Chunk struct {
	Text   string
	Offset int
}

// Chunker splits text into overlapping windows, preferring to break at
// sentence boundaries.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker returns a Chunker with the given window size and overlap.
// Non-positive values fall back to the defaults; an overlap at or above
// the window size is clamped to half the window so every step advances.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split divides text into chunks of at most the configured size.
// Consecutive chunks share the configured overlap. When a window does
// not end the text, Split looks for the last period or newline inside
// it and breaks there, provided the boundary lies past half the window.
// Chunk text is trimmed of surrounding whitespace and offsets account
// for the trim; empty chunks are dropped.
func (c *Chunker) Split(text string) []Chunk {
	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return nil
	}

	// bytePos[i] is the byte offset of rune i in text.
	bytePos := make([]int, total+1)
	for i, r := range runes {
		bytePos[i+1] = bytePos[i] + len(string(r))
	}

	var chunks []Chunk
	start := 0
	for start < total {
		end := start + c.size
		if end > total {
			end = total
		}

		if end < total {
			if bp := boundary(runes[start:end]); bp > c.size/2 {
				end = start + bp + 1
			}
		}

		window := string(runes[start:end])
		trimmed := strings.TrimSpace(window)
		if trimmed != "" {
			lead := strings.IndexFunc(window, func(r rune) bool { return !unicode.IsSpace(r) })
			chunks = append(chunks, Chunk{
				Text:   trimmed,
				Offset: bytePos[start] + lead,
			})
		}

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// boundary returns the index of the last sentence break in window, or
// -1 when window contains none.
func boundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
