package advisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdvisor(t *testing.T) *Advisor {
	t.Helper()
	a, err := New("", true)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewAdvisor(t *testing.T) {
	a := newTestAdvisor(t)

	assert.NotNil(t, a.VectorIndex())
	assert.NotNil(t, a.UserRepository())
	assert.NotNil(t, a.AnalyticsRepository())
	assert.NotNil(t, a.Embedder())
	assert.NotNil(t, a.Sessions())
	assert.NotNil(t, a.Ranker())

	count, err := a.VectorIndex().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdvisorBuildsEngineAndPipeline(t *testing.T) {
	a := newTestAdvisor(t)

	engine, err := a.NewEngine()
	require.NoError(t, err)
	assert.NotNil(t, engine)

	pipeline, err := a.NewIngestPipeline()
	require.NoError(t, err)
	pipeline.Release()
}

func TestAdvisorBuildsServer(t *testing.T) {
	a := newTestAdvisor(t)

	engine, err := a.NewEngine()
	require.NoError(t, err)

	server, err := a.NewServer(":0", engine)
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())
}

func TestAdvisorClose(t *testing.T) {
	a, err := New("", true)
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}
