// Package conv holds the conversation state: an ordered, append-only log of
// turns forming the context sent to the model on every request.
package conv

import (
	"github.com/deckhandai/deckhand-cli/internal/llm"
)

// Log is the conversation history for a single chat session.
// It is used from one goroutine at a time (the agent loop is sequential).
type Log struct {
	turns []llm.Message
}

// New creates an empty conversation log.
func New() *Log {
	return &Log{}
}

// Append adds a turn to the end of the log.
func (l *Log) Append(m llm.Message) {
	l.turns = append(l.turns, m)
}

// Snapshot returns a copy of the turns for building a model request.
// The copy keeps the log safe from mutation by the transport layer.
func (l *Log) Snapshot() []llm.Message {
	out := make([]llm.Message, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int {
	return len(l.turns)
}

// Reset truncates the log to empty. The only way turns are ever removed.
func (l *Log) Reset() {
	l.turns = nil
}

// EstimateTokens returns a rough token count for the whole log,
// using the usual ~4 characters per token heuristic.
func (l *Log) EstimateTokens() int {
	chars := 0
	for _, m := range l.turns {
		for _, b := range m.Blocks {
			chars += len(b.Text) + len(b.Content) + len(b.Input) + len(b.Name)
		}
	}
	return chars / 4
}
