// Package prompt assembles the static system instructions sent with every
// model request.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "embed"
)

//go:embed docs/base.md
var baseDoc string

// InstructionsFile is the optional per-user instructions file, appended to the
// base prompt when present.
const InstructionsFile = "instructions.md"

// System builds the full system instructions: base rules, then the user's
// custom instructions (if any), then workspace context. Assembled once per
// session; the controller treats the result as static.
func System(configDir, workspace string) string {
	parts := []string{strings.TrimSpace(baseDoc)}

	if custom := loadInstructions(configDir); custom != "" {
		parts = append(parts, custom)
	}

	if workspace == "" {
		workspace, _ = os.Getwd()
	}
	if workspace != "" {
		parts = append(parts, fmt.Sprintf("The current workspace directory is %s.", workspace))
	}

	return strings.Join(parts, "\n\n")
}

func loadInstructions(configDir string) string {
	if configDir == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(configDir, InstructionsFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
