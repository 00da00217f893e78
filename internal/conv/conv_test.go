package conv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deckhandai/deckhand-cli/internal/llm"
)

func TestAppendAndLen(t *testing.T) {
	log := New()
	require.Zero(t, log.Len())

	log.Append(llm.UserMessage("hello"))
	log.Append(llm.Message{Role: llm.RoleAssistant, Blocks: []llm.ContentBlock{llm.TextBlock("hi")}})
	require.Equal(t, 2, log.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	log := New()
	log.Append(llm.UserMessage("one"))

	snap := log.Snapshot()
	require.Len(t, snap, 1)

	// Mutating the snapshot slice must not touch the log.
	snap[0] = llm.UserMessage("tampered")
	require.Equal(t, "one", log.Snapshot()[0].Blocks[0].Text)
}

func TestReset(t *testing.T) {
	log := New()
	log.Append(llm.UserMessage("hello"))
	log.Reset()
	require.Zero(t, log.Len())
	require.Zero(t, log.EstimateTokens())
	require.Empty(t, log.Snapshot())
}

func TestEstimateTokens(t *testing.T) {
	log := New()
	require.Zero(t, log.EstimateTokens())

	// 40 characters of text is roughly 10 tokens.
	log.Append(llm.UserMessage("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.Equal(t, 10, log.EstimateTokens())

	// Tool blocks count their input payload and name too.
	log.Append(llm.Message{Role: llm.RoleAssistant, Blocks: []llm.ContentBlock{
		{Type: llm.BlockToolUse, Name: "echo", Input: []byte(`{"msg":"hi"}`)},
	}})
	require.Equal(t, (40 + 4 + 12) / 4, log.EstimateTokens())
}
