// Package chunker splits text into fixed-size character windows for embedding.
package chunker

// DefaultChunkSize is the window size used when none is configured.
const DefaultChunkSize = 800

// Chunk splits text into consecutive, non-overlapping windows of exactly size
// characters (Unicode code points). The last window may be shorter. Windows
// ignore word and sentence boundaries. Empty text yields an empty slice; a
// non-positive size falls back to DefaultChunkSize.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if text == "" {
		return []string{}
	}

	chunks := make([]string, 0, len(text)/size+1)
	start, count := 0, 0
	for i := range text {
		if count == size {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	chunks = append(chunks, text[start:])

	return chunks
}
