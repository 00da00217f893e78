package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/deckhandai/deckhand-cli/internal/agent"
	"github.com/deckhandai/deckhand-cli/internal/config"
	"github.com/deckhandai/deckhand-cli/internal/history"
	"github.com/deckhandai/deckhand-cli/internal/llm"
	"github.com/deckhandai/deckhand-cli/internal/logging"
	"github.com/deckhandai/deckhand-cli/internal/prompt"
	"github.com/deckhandai/deckhand-cli/internal/tool/builtin"
)

var (
	toolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE:  runChat,
	}
	cmd.Flags().StringP("workspace", "w", "", "Override the workspace directory")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
		cfg.Agent.Workspace = ws
	}
	logCfg := cfg.Logging
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := llm.NewClient(&cfg.Model)
	if err != nil {
		return err
	}
	registry, err := builtin.NewRegistry(cfg, logger)
	if err != nil {
		return err
	}

	system := prompt.System(config.Dir(), cfg.Agent.Workspace)
	ctrl := agent.New(client, registry, system, agent.Options{
		MaxRounds: cfg.Agent.MaxToolRounds,
		Logger:    logger,
	})

	state := history.LoadState(config.Dir())
	recorder, err := history.NewRecorder(config.Dir(), state)
	if err != nil {
		return err
	}
	defer recorder.Close()

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		renderer = nil // plain text fallback
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted.")
		cancel()
	}()

	fmt.Printf("deckhand %s — %s, %d tools\n", version, client.Name(), registry.Count())
	fmt.Println("Type a message, or /help for commands.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(line, ctrl, registry.Names(), state); quit {
				break
			}
			continue
		}

		recorder.Message()
		for ev := range ctrl.Run(ctx, line) {
			renderEvent(ev, renderer, recorder)
		}
		fmt.Println()

		if ctx.Err() != nil {
			break
		}
	}
	return nil
}

// runSlashCommand handles the REPL's local commands. Returns true to quit.
func runSlashCommand(line string, ctrl *agent.Controller, toolNames []string, state *history.State) bool {
	switch line {
	case "/quit", "/exit":
		return true
	case "/clear":
		ctrl.Reset()
		fmt.Println("Conversation cleared.")
	case "/tools":
		for _, name := range toolNames {
			fmt.Println("  " + name)
		}
	case "/stats":
		log := ctrl.Conversation()
		fmt.Printf("Turns: %d  (~%d tokens)\n", log.Len(), log.EstimateTokens())
		fmt.Printf("All-time: %d sessions, %d messages, %d tool calls (%d failed)\n",
			state.TotalSessions, state.TotalMessages, state.TotalToolCalls, state.TotalToolFailures)
	case "/help":
		fmt.Println("  /clear  — empty the conversation")
		fmt.Println("  /tools  — list available tools")
		fmt.Println("  /stats  — session and all-time statistics")
		fmt.Println("  /quit   — exit")
	default:
		fmt.Printf("Unknown command %s (try /help)\n", line)
	}
	return false
}

func renderEvent(ev agent.Event, renderer *glamour.TermRenderer, recorder *history.Recorder) {
	switch ev.Kind {
	case agent.EventContent:
		if renderer != nil {
			if out, err := renderer.Render(ev.Text); err == nil {
				fmt.Print(out)
				return
			}
		}
		fmt.Println(ev.Text)
	case agent.EventToolUse:
		fmt.Println(toolStyle.Render(fmt.Sprintf("→ %s %s", ev.Tool, compactJSON(ev.Input))))
	case agent.EventToolResult:
		recorder.ToolCall(ev.Tool, !ev.IsError)
		style := resultStyle
		if ev.IsError {
			style = errorStyle
		}
		fmt.Println(style.Render("  " + truncateLine(ev.Text, 120)))
	case agent.EventError:
		fmt.Println(errorStyle.Render("error: " + ev.Text))
	case agent.EventDone:
		if ev.Reason == agent.DoneRoundLimit {
			fmt.Println(noticeStyle.Render("(stopped: tool-call round limit reached)"))
		}
	}
}

func compactJSON(raw []byte) string {
	s := strings.Join(strings.Fields(string(raw)), " ")
	return truncateLine(s, 100)
}

func truncateLine(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n] + "…"
	}
	return s
}
