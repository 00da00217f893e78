// Package config loads and saves the deckhand TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full deckhand configuration, stored at ~/.deckhand/config.toml.
type Config struct {
	Model        ModelConfig        `toml:"model"`
	Agent        AgentConfig        `toml:"agent"`
	Integrations IntegrationsConfig `toml:"integrations"`
	Logging      LoggingConfig      `toml:"logging"`
}

// ModelConfig selects the hosted model endpoint.
type ModelConfig struct {
	Provider  string `toml:"provider"` // "anthropic" or "openai" (any OpenAI-compatible API)
	BaseURL   string `toml:"base_url,omitempty"`
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// AgentConfig controls the agentic loop.
type AgentConfig struct {
	// MaxToolRounds caps model→tool→model cycles per user message.
	MaxToolRounds int `toml:"max_tool_rounds"`
	// Workspace is the base directory for file tools and patch application.
	// Empty means the current working directory.
	Workspace string `toml:"workspace,omitempty"`
}

// IntegrationsConfig holds credentials for third-party tool integrations.
// Each integration is disabled when its key fields are empty.
type IntegrationsConfig struct {
	Notion   NotionConfig   `toml:"notion"`
	Canvas   CanvasConfig   `toml:"canvas"`
	DeepWiki DeepWikiConfig `toml:"deepwiki"`
}

// NotionConfig configures the Notion integration tool.
type NotionConfig struct {
	Token string `toml:"token,omitempty"`
}

// CanvasConfig configures the Canvas LMS integration tool.
type CanvasConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Token   string `toml:"token,omitempty"`
}

// DeepWikiConfig configures the DeepWiki integration tool.
type DeepWikiConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level string `toml:"level"`          // debug, info, warn, error
	File  string `toml:"file,omitempty"` // optional log file; empty logs to stderr only
}

// Dir returns the deckhand config directory (~/.deckhand).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deckhand"
	}
	return filepath.Join(home, ".deckhand")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Agent: AgentConfig{
			MaxToolRounds: 10,
		},
		Integrations: IntegrationsConfig{
			DeepWiki: DeepWikiConfig{BaseURL: "https://api.devin.ai/ada"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config file from disk.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(Path(), cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config not found at %s — run 'deckhand init'", Path())
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk with restrictive permissions (it holds API keys).
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(Path(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
