package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("debris removal")
		b := IDFromContent("debris removal")
		assert.Equal(t, a, b)
	})

	t.Run("different content different id", func(t *testing.T) {
		a := IDFromContent("debris removal")
		b := IDFromContent("rebuilding permit")
		assert.NotEqual(t, a, b)
	})
}

func TestUserProfileMerge(t *testing.T) {
	t.Run("field-wise union", func(t *testing.T) {
		p := UserProfile{}
		p.Merge(UserProfile{Name: "Jo"})
		p.Merge(UserProfile{County: "LA"})
		assert.Equal(t, UserProfile{Name: "Jo", County: "LA"}, p)
	})

	t.Run("later value overwrites present field only", func(t *testing.T) {
		p := UserProfile{Name: "Jo", County: "LA", Email: "jo@example.com"}
		p.Merge(UserProfile{Name: "Joanna"})
		assert.Equal(t, "Joanna", p.Name)
		assert.Equal(t, "LA", p.County)
		assert.Equal(t, "jo@example.com", p.Email)
	})

	t.Run("empty merge is a no-op", func(t *testing.T) {
		p := UserProfile{Name: "Jo"}
		p.Merge(UserProfile{})
		assert.Equal(t, UserProfile{Name: "Jo"}, p)
	})
}

func TestUserIDFromEmail(t *testing.T) {
	assert.Equal(t, UserIDFromEmail("Jo@Example.com"), UserIDFromEmail(" jo@example.com "))
	assert.NotEqual(t, UserIDFromEmail("jo@example.com"), UserIDFromEmail("bo@example.com"))
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"zero distance", 0, 1.0},
		{"half scale", 1.0, 0.5},
		{"at scale", 2.0, 0},
		{"beyond scale clamps", 4.0, 0},
		{"typical", 0.5, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.distance), 1e-9)
		})
	}
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "rebuild_guide.txt_0", ChunkID("rebuild_guide.txt", 0))
	assert.Equal(t, "faq.md_12", ChunkID("faq.md", 12))
}

func TestMatchKey(t *testing.T) {
	m := Match{Source: "faq.md", ChunkIndex: 3}
	assert.Equal(t, "faq.md_3", m.Key())
}
