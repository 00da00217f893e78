package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/deckhandai/deckhand-cli/internal/config"
	"github.com/deckhandai/deckhand-cli/internal/updater"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "deckhand",
		Short: "deckhand — AI coding assistant for your terminal",
		Long:  "deckhand is a terminal coding assistant that reads, writes, and patches files, runs commands, and pulls in docs through tool calls to a hosted model.",
	}

	root.AddCommand(initCmd(), chatCmd(), applyCmd(), configCmd(), versionCmd(), updateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// ── init command ──

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file interactively",
		RunE:  runInit,
	}
}

func runInit(_ *cobra.Command, _ []string) error {
	fmt.Printf("Welcome to deckhand!  (v%s)\n", version)

	// Non-blocking remote version check
	type versionResult struct {
		info *updater.VersionInfo
		err  error
	}
	versionCh := make(chan versionResult, 1)
	go func() {
		info, err := updater.CheckUpdate(version)
		versionCh <- versionResult{info, err}
	}()
	select {
	case r := <-versionCh:
		if r.err == nil && r.info != nil {
			fmt.Printf("Update available: v%s → v%s  (run: deckhand update)\n", version, r.info.Version)
		}
	case <-time.After(2 * time.Second):
		// Don't block init flow
	}
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	if _, err := os.Stat(config.Path()); err == nil {
		fmt.Printf("Config already exists at %s\n", config.Path())
		fmt.Print("Overwrite? [y/N]: ")
		scanner.Scan()
		if strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := collectModelConfig(scanner, cfg); err != nil {
		return err
	}
	collectIntegrations(scanner, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\nConfig saved to %s\n", config.Path())
	fmt.Println("Run 'deckhand chat' to start a session.")
	return nil
}

// collectModelConfig prompts the user for model provider settings.
func collectModelConfig(scanner *bufio.Scanner, cfg *config.Config) error {
	fmt.Println("Model provider:")
	fmt.Println("  1. Anthropic (claude-sonnet)    — recommended")
	fmt.Println("  2. OpenAI    (gpt-4o)")
	fmt.Println("  3. Ollama    (local, free)      — requires ollama installed")
	fmt.Println("  4. Custom OpenAI-compatible")
	fmt.Print("Choose [1]: ")
	scanner.Scan()
	choice := strings.TrimSpace(scanner.Text())
	if choice == "" {
		choice = "1"
	}

	// Each provider has a key URL shown after selection.
	var keyURL string

	switch choice {
	case "1": // Anthropic
		cfg.Model.Provider = "anthropic"
		cfg.Model.Model = "claude-sonnet-4-20250514"
		keyURL = "https://console.anthropic.com/settings/keys"
	case "2": // OpenAI
		cfg.Model.Provider = "openai"
		cfg.Model.BaseURL = "https://api.openai.com/v1"
		cfg.Model.Model = "gpt-4o"
		keyURL = "https://platform.openai.com/api-keys"
	case "3": // Ollama
		cfg.Model.Provider = "openai"
		cfg.Model.BaseURL = "http://localhost:11434/v1"
		cfg.Model.Model = "llama3.2"
		fmt.Printf("Ollama model (default: %s): ", cfg.Model.Model)
		scanner.Scan()
		if m := strings.TrimSpace(scanner.Text()); m != "" {
			cfg.Model.Model = m
		}
		return nil // no API key needed
	case "4": // Custom
		cfg.Model.Provider = "openai"
		fmt.Print("API base URL: ")
		scanner.Scan()
		cfg.Model.BaseURL = strings.TrimSpace(scanner.Text())
		if cfg.Model.BaseURL == "" {
			return fmt.Errorf("API base URL is required")
		}
		fmt.Print("Model name: ")
		scanner.Scan()
		cfg.Model.Model = strings.TrimSpace(scanner.Text())
		if cfg.Model.Model == "" {
			return fmt.Errorf("model name is required")
		}
	default:
		return fmt.Errorf("invalid choice: %s", choice)
	}

	if keyURL != "" {
		fmt.Println()
		fmt.Printf("  Get your API key here: %s\n", keyURL)
		fmt.Println()
	}

	fmt.Print("API key: ")
	scanner.Scan()
	cfg.Model.APIKey = strings.TrimSpace(scanner.Text())
	if cfg.Model.APIKey == "" && keyURL != "" {
		return fmt.Errorf("API key is required")
	}

	return nil
}

// collectIntegrations offers the optional integration tools. All of them can
// be configured later by editing the config file, so blanks are fine here.
func collectIntegrations(scanner *bufio.Scanner, cfg *config.Config) {
	fmt.Println()
	fmt.Print("Configure integrations (Notion, Canvas)? [y/N]: ")
	scanner.Scan()
	if strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
		return
	}

	fmt.Print("Notion integration token (blank to skip): ")
	scanner.Scan()
	cfg.Integrations.Notion.Token = strings.TrimSpace(scanner.Text())

	fmt.Print("Canvas base URL, e.g. https://school.instructure.com (blank to skip): ")
	scanner.Scan()
	cfg.Integrations.Canvas.BaseURL = strings.TrimSpace(scanner.Text())
	if cfg.Integrations.Canvas.BaseURL != "" {
		fmt.Print("Canvas access token: ")
		scanner.Scan()
		cfg.Integrations.Canvas.Token = strings.TrimSpace(scanner.Text())
	}
}

// ── config command ──

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current config (API keys redacted)",
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print config file path",
			Run: func(_ *cobra.Command, _ []string) {
				fmt.Println(config.Path())
			},
		},
	)
	return cmd
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	redacted := cfg.Redact()
	return toml.NewEncoder(os.Stdout).Encode(redacted)
}

// ── version command ──

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("deckhand %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// ── update command ──

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update deckhand to the latest version",
		RunE:  runUpdate,
	}
	cmd.Flags().Bool("check", false, "Only check for updates, don't install")
	return cmd
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	checkOnly, _ := cmd.Flags().GetBool("check")

	fmt.Printf("Current version: %s\n", version)
	fmt.Print("Checking for updates... ")

	info, err := updater.CheckUpdate(version)
	if err != nil {
		return err
	}
	if info == nil {
		fmt.Println("already up to date.")
		return nil
	}

	fmt.Printf("v%s available!\n", info.Version)
	if info.Changelog != "" {
		fmt.Printf("Changelog: %s\n", info.Changelog)
	}

	if checkOnly {
		return nil
	}

	fmt.Println()
	return updater.Apply(info)
}
