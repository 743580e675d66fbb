package memory

import (
	"fmt"
	"strings"

	"slide-rag/internal/models"
)

// DefaultWindow bounds how many recent turns are serialized into prompts.
const DefaultWindow = 20

// Buffer is the append-only conversation transcript. Turns are never
// reordered or mutated; Clear drops them wholesale. The full transcript
// is retained, but prompt serialization is limited to the most recent
// window turns to bound prompt growth.
type Buffer struct {
	turns  []models.ConversationTurn
	window int
}

// NewBuffer creates a transcript that serializes at most window turns
// into prompts. window <= 0 selects DefaultWindow.
func NewBuffer(window int) *Buffer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Buffer{window: window}
}

// Append records a completed turn at the end of the transcript.
func (b *Buffer) Append(turn models.ConversationTurn) {
	b.turns = append(b.turns, turn)
}

// Len returns the number of recorded turns.
func (b *Buffer) Len() int { return len(b.turns) }

// Turns returns the full transcript in chronological order.
func (b *Buffer) Turns() []models.ConversationTurn {
	out := make([]models.ConversationTurn, len(b.turns))
	copy(out, b.turns)
	return out
}

// AsPromptText serializes the most recent window turns for prompt
// injection, oldest first.
func (b *Buffer) AsPromptText() string {
	turns := b.turns
	if len(turns) > b.window {
		turns = turns[len(turns)-b.window:]
	}

	var sb strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&sb, "Pengguna: %s\nAsisten: %s\n", t.Question, t.Answer)
	}
	return sb.String()
}

// Clear discards the whole transcript.
func (b *Buffer) Clear() {
	b.turns = nil
}
