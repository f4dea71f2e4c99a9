package retrieval

import (
	"testing"

	"github.com/aldeia/advisor/core"
	"github.com/stretchr/testify/assert"
)

func TestComposeQuery(t *testing.T) {
	t.Run("no history uses message alone", func(t *testing.T) {
		assert.Equal(t, "what now", ComposeQuery(nil, "what now"))
	})

	t.Run("single turn uses message alone", func(t *testing.T) {
		history := []core.Turn{{Sender: core.SenderUser, Text: "what now"}}
		assert.Equal(t, "what now", ComposeQuery(history, "what now"))
	})

	t.Run("folds recent turns", func(t *testing.T) {
		history := []core.Turn{
			{Sender: core.SenderUser, Text: "how do I remove debris"},
			{Sender: core.SenderBot, Text: "you can opt in to the county program"},
		}
		got := ComposeQuery(history, "what is the deadline")
		assert.Equal(t,
			"user: how do I remove debris | bot: you can opt in to the county program | what is the deadline",
			got)
	})

	t.Run("caps the window at three turns", func(t *testing.T) {
		history := []core.Turn{
			{Sender: core.SenderUser, Text: "one"},
			{Sender: core.SenderBot, Text: "two"},
			{Sender: core.SenderUser, Text: "three"},
			{Sender: core.SenderBot, Text: "four"},
			{Sender: core.SenderUser, Text: "five"},
		}
		got := ComposeQuery(history, "six")
		assert.Equal(t, "user: three | bot: four | user: five | six", got)
	})
}

func TestQueryKeywords(t *testing.T) {
	t.Run("filters short words and lowercases", func(t *testing.T) {
		assert.Equal(t, []string{"where", "debris", "go?"}, queryKeywords("Where do my DEBRIS go?"))
	})

	t.Run("empty message", func(t *testing.T) {
		assert.Empty(t, queryKeywords(""))
	})
}

func TestContainsAllKeywords(t *testing.T) {
	text := "Debris removal permits are issued by the county office."
	assert.True(t, containsAllKeywords(text, []string{"debris", "county"}))
	assert.False(t, containsAllKeywords(text, []string{"debris", "rebuilding"}))
	assert.True(t, containsAllKeywords(text, nil))
}
