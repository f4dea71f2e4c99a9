package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	t.Run("adds /v1 suffix", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434", EmbeddingModel: "all-minilm"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("strips trailing slash before adding", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434/", EmbeddingModel: "all-minilm"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("leaves /v1 alone", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434/v1", EmbeddingModel: "all-minilm"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := &Config{EmbeddingModel: "all-minilm"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434"}
		assert.Error(t, cfg.Validate())
	})
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://embedder:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
	)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://embedder:9100/v1", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
}

type probeEmbedder struct {
	failures int
	calls    int
}

func (p *probeEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("model loading")
	}
	return []float32{1}, nil
}

func (p *probeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func TestWarmup(t *testing.T) {
	t.Run("ready immediately", func(t *testing.T) {
		e := &probeEmbedder{}
		assert.NoError(t, Warmup(context.Background(), e))
		assert.Equal(t, 1, e.calls)
	})

	t.Run("ready after a few probes", func(t *testing.T) {
		e := &probeEmbedder{failures: 3}
		assert.NoError(t, Warmup(context.Background(), e))
		assert.Equal(t, 4, e.calls)
	})

	t.Run("gives up after attempt budget", func(t *testing.T) {
		e := &probeEmbedder{failures: WarmupAttempts + 1}
		err := Warmup(context.Background(), e)
		assert.ErrorIs(t, err, ErrNotReady)
		assert.Equal(t, WarmupAttempts, e.calls)
	})

	t.Run("nil embedder", func(t *testing.T) {
		assert.ErrorIs(t, Warmup(context.Background(), nil), ErrNotReady)
	})
}
