package retrieval

import (
	"strings"

	"github.com/aldeia/advisor/core"
)

// composerTurns is how many recent turns are folded into the embedded query.
const composerTurns = 3

// turnSeparator joins history turns and the current message in the composed
// query text.
const turnSeparator = " | "

// ComposeQuery builds the text handed to the embedding step. When the
// session has more than one prior turn, the last three turns are rendered as
// "sender: text" and prepended to the current message; otherwise the message
// stands alone. Bounding the window keeps the embedding payload small while
// still giving short-range conversational disambiguation.
func ComposeQuery(history []core.Turn, message string) string {
	if len(history) <= 1 {
		return message
	}
	recent := history
	if len(recent) > composerTurns {
		recent = recent[len(recent)-composerTurns:]
	}
	parts := make([]string, 0, len(recent)+1)
	for _, turn := range recent {
		parts = append(parts, string(turn.Sender)+": "+turn.Text)
	}
	parts = append(parts, message)
	return strings.Join(parts, turnSeparator)
}
