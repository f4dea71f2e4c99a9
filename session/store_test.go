package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/aldeia/advisor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTurnBoundsHistory(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		store.AppendTurn("c1", core.Turn{Sender: core.SenderUser, Text: fmt.Sprintf("turn %d", i)})
		snap := store.Snapshot("c1")
		assert.LessOrEqual(t, len(snap.History), MaxHistory)
	}

	snap := store.Snapshot("c1")
	require.Len(t, snap.History, MaxHistory)
	// Oldest evicted first: the last five appends remain, in order.
	assert.Equal(t, "turn 7", snap.History[0].Text)
	assert.Equal(t, "turn 11", snap.History[4].Text)
}

func TestMergeProfile(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	store.MergeProfile("c1", core.UserProfile{Name: "Jo"})
	store.MergeProfile("c1", core.UserProfile{County: "LA"})

	snap := store.Snapshot("c1")
	assert.Equal(t, core.UserProfile{Name: "Jo", County: "LA"}, snap.Profile)
}

func TestSetPageContext(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	store.SetPageContext("c1", "debris removal deadlines")
	assert.Equal(t, "debris removal deadlines", store.Snapshot("c1").PageContext)
}

func TestSnapshotIsACopy(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	store.AppendTurn("c1", core.Turn{Sender: core.SenderUser, Text: "first"})
	snap := store.Snapshot("c1")
	snap.History[0].Text = "mutated"

	assert.Equal(t, "first", store.Snapshot("c1").History[0].Text)
}

func TestConcurrentAppendsNoLostUpdate(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	const writers = 2
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			store.AppendTurn("c1", core.Turn{Sender: core.SenderUser, Text: fmt.Sprintf("writer %d", w)})
		}(w)
	}
	wg.Wait()

	snap := store.Snapshot("c1")
	require.Len(t, snap.History, writers)
	seen := map[string]bool{}
	for _, turn := range snap.History {
		seen[turn.Text] = true
	}
	assert.True(t, seen["writer 0"])
	assert.True(t, seen["writer 1"])
}

func TestConcurrentSessionsStayIndependent(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conv-%d", i)
			for j := 0; j < 10; j++ {
				store.AppendTurn(id, core.Turn{Sender: core.SenderBot, Text: "x"})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, store.Len())
	for i := 0; i < 8; i++ {
		snap := store.Snapshot(fmt.Sprintf("conv-%d", i))
		assert.Len(t, snap.History, MaxHistory)
	}
}

func TestLRUEviction(t *testing.T) {
	store, err := NewStore(WithMaxSessions(2))
	require.NoError(t, err)

	store.AppendTurn("a", core.Turn{Sender: core.SenderUser, Text: "1"})
	store.AppendTurn("b", core.Turn{Sender: core.SenderUser, Text: "1"})
	// Touch "a" so "b" becomes least recently used.
	store.Snapshot("a")
	store.AppendTurn("c", core.Turn{Sender: core.SenderUser, Text: "1"})

	assert.Equal(t, 2, store.Len())
	// "b" was evicted; snapshotting it recreates an empty session.
	assert.Empty(t, store.Snapshot("b").History)
}

func TestWithMaxSessionsFloor(t *testing.T) {
	store, err := NewStore(WithMaxSessions(0))
	require.NoError(t, err)

	store.AppendTurn("a", core.Turn{Sender: core.SenderUser, Text: "1"})
	store.AppendTurn("b", core.Turn{Sender: core.SenderUser, Text: "1"})
	assert.Equal(t, 1, store.Len())
}
