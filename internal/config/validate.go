package config

import (
	"fmt"
	"strings"
)

// Validate checks that the config has all required fields.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "anthropic":
		if c.Model.APIKey == "" {
			return fmt.Errorf("model.api_key is required — run 'deckhand init'")
		}
	case "openai":
		if c.Model.APIKey == "" && !isLocalURL(c.Model.BaseURL) {
			return fmt.Errorf("model.api_key is required for provider %q", c.Model.Provider)
		}
	default:
		return fmt.Errorf("model.provider must be one of: anthropic, openai")
	}
	if c.Model.Model == "" {
		return fmt.Errorf("model.model is required")
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("model.max_tokens must be positive")
	}
	if c.Agent.MaxToolRounds < 1 || c.Agent.MaxToolRounds > 50 {
		return fmt.Errorf("agent.max_tool_rounds must be between 1 and 50")
	}
	if c.Integrations.Canvas.Token != "" && c.Integrations.Canvas.BaseURL == "" {
		return fmt.Errorf("integrations.canvas.base_url is required when a Canvas token is set")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	return nil
}

// isLocalURL reports whether the base URL points at a local server (e.g. Ollama),
// which needs no API key.
func isLocalURL(u string) bool {
	return strings.Contains(u, "localhost") || strings.Contains(u, "127.0.0.1")
}

// Redact returns a copy of the config with API keys masked for display.
func (c *Config) Redact() *Config {
	copy := *c
	copy.Model.APIKey = redactKey(c.Model.APIKey)
	copy.Integrations.Notion.Token = redactKey(c.Integrations.Notion.Token)
	copy.Integrations.Canvas.Token = redactKey(c.Integrations.Canvas.Token)
	return &copy
}

func redactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
