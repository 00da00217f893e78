package builtin

import (
	"go.uber.org/zap"

	"github.com/deckhandai/deckhand-cli/internal/config"
	"github.com/deckhandai/deckhand-cli/internal/integrations"
	"github.com/deckhandai/deckhand-cli/internal/tool"
)

// NewRegistry builds a registry with every built-in tool the config enables.
// Core tools (files, bash, web, patch) are always present; integration tools
// only when their credentials are configured.
func NewRegistry(cfg *config.Config, logger *zap.Logger) (*tool.Registry, error) {
	baseDir := cfg.Agent.Workspace

	reg := tool.NewRegistry(logger)
	core := []tool.Tool{
		NewReadFileTool(baseDir),
		NewWriteFileTool(baseDir),
		NewListFilesTool(baseDir),
		NewBashTool(baseDir),
		NewHTTPFetchTool(),
		NewWebSearchTool(),
		NewApplyPatchTool(baseDir),
	}
	for _, t := range core {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}

	if url := cfg.Integrations.DeepWiki.BaseURL; url != "" {
		dw := integrations.NewDeepWiki(url)
		if err := reg.Register(NewWikiStructureTool(dw)); err != nil {
			return nil, err
		}
		if err := reg.Register(NewWikiContentsTool(dw)); err != nil {
			return nil, err
		}
	}
	if token := cfg.Integrations.Notion.Token; token != "" {
		if err := reg.Register(NewNotionTool(integrations.NewNotion(token))); err != nil {
			return nil, err
		}
	}
	if c := cfg.Integrations.Canvas; c.Token != "" && c.BaseURL != "" {
		if err := reg.Register(NewCanvasTool(integrations.NewCanvas(c.BaseURL, c.Token))); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
