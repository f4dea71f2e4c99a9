package ingest

import (
	"regexp"
	"strings"
)

// paragraphBreak splits document text on runs of two or more newlines.
var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// ChunkDocument splits text on blank-line boundaries into trimmed,
// non-empty chunks. Chunk order follows document order.
func ChunkDocument(text string) []string {
	raw := paragraphBreak.Split(text, -1)
	chunks := make([]string, 0, len(raw))
	for _, chunk := range raw {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
