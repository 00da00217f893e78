package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemBase(t *testing.T) {
	s := System("", "/src/project")
	require.Contains(t, s, "deckhand")
	require.Contains(t, s, "/src/project")
}

func TestSystemCustomInstructions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, InstructionsFile),
		[]byte("Always answer in haiku.\n"), 0644))

	s := System(dir, "/ws")
	require.Contains(t, s, "Always answer in haiku.")

	// Custom instructions sit between base rules and workspace context.
	base := strings.Index(s, "deckhand")
	custom := strings.Index(s, "haiku")
	ws := strings.Index(s, "/ws")
	require.Less(t, base, custom)
	require.Less(t, custom, ws)
}

func TestSystemMissingInstructionsFile(t *testing.T) {
	s := System(t.TempDir(), "/ws")
	require.NotContains(t, s, "haiku")
	require.Contains(t, s, "/ws")
}
