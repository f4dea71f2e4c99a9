package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkDocument(t *testing.T) {
	t.Run("splits on blank lines", func(t *testing.T) {
		doc := "First paragraph.\n\nSecond paragraph.\n\n\nThird paragraph."
		chunks := ChunkDocument(doc)
		assert.Equal(t, []string{"First paragraph.", "Second paragraph.", "Third paragraph."}, chunks)
	})

	t.Run("trims whitespace per chunk", func(t *testing.T) {
		doc := "  leading and trailing  \n\n\ttabbed\t"
		chunks := ChunkDocument(doc)
		assert.Equal(t, []string{"leading and trailing", "tabbed"}, chunks)
	})

	t.Run("drops empty chunks", func(t *testing.T) {
		doc := "content\n\n   \n\nmore content"
		chunks := ChunkDocument(doc)
		assert.Equal(t, []string{"content", "more content"}, chunks)
	})

	t.Run("single paragraph stays whole", func(t *testing.T) {
		doc := "A single paragraph\nwith a soft line break."
		chunks := ChunkDocument(doc)
		assert.Equal(t, []string{doc}, chunks)
	})

	t.Run("empty document yields nothing", func(t *testing.T) {
		assert.Empty(t, ChunkDocument(""))
		assert.Empty(t, ChunkDocument("   \n\n  "))
	})
}
