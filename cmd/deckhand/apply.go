package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deckhandai/deckhand-cli/internal/patch"
)

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [patch-file]",
		Short: "Apply a unified diff to the working tree",
		Long:  "Applies a unified diff with fuzzy hunk matching. Reads from the given file, or from stdin when the argument is omitted or '-'.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runApply,
	}
	cmd.Flags().Bool("dry-run", false, "Report what would change without writing files")
	cmd.Flags().Bool("backup", false, "Keep a .orig copy of each modified file")
	cmd.Flags().StringP("dir", "C", "", "Apply relative to this directory")
	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read patch: %w", err)
	}

	p, err := patch.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse patch: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	backup, _ := cmd.Flags().GetBool("backup")
	dir, _ := cmd.Flags().GetString("dir")

	report := patch.Apply(p, dir, patch.Options{DryRun: dryRun, Backup: backup})
	fmt.Print(report.Summary())

	if !report.AllApplied() {
		return fmt.Errorf("some hunks failed to apply")
	}
	return nil
}
