package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deckhandai/deckhand-cli/internal/patch"
	"github.com/deckhandai/deckhand-cli/internal/tool"
)

// ApplyPatchTool applies a unified diff to files in the workspace with fuzzy
// hunk matching. Partial success is reported per hunk, not rolled back.
type ApplyPatchTool struct {
	baseDir string
}

// NewApplyPatchTool creates the apply_patch tool rooted at baseDir.
func NewApplyPatchTool(baseDir string) *ApplyPatchTool { return &ApplyPatchTool{baseDir: baseDir} }

func (t *ApplyPatchTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "apply_patch",
		Description: "Apply a unified diff to one or more files. Tolerates small drift in line numbers. Reports exactly which hunks applied and which failed.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"patch":   {Type: "string", Description: "Unified diff text (--- / +++ / @@ format)"},
			"dry_run": {Type: "boolean", Description: "Report the would-be changes without writing files"},
		}, "patch"),
	}
}

type applyPatchArgs struct {
	Patch  string `json:"patch"`
	DryRun bool   `json:"dry_run"`
}

func (t *ApplyPatchTool) Execute(_ context.Context, input json.RawMessage) (*tool.Result, error) {
	var args applyPatchArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	p, err := patch.Parse(args.Patch)
	if err != nil {
		return tool.Errorf("parse patch: %v", err), nil
	}

	report := patch.Apply(p, t.baseDir, patch.Options{DryRun: args.DryRun, Backup: true})
	summary := report.Summary()
	if !report.AllApplied() {
		return &tool.Result{Success: false, Error: summary}, nil
	}
	return tool.Ok(summary), nil
}
