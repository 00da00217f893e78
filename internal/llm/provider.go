package llm

import (
	"fmt"

	"github.com/deckhandai/deckhand-cli/internal/config"
)

// NewClient creates a model client based on the config.
func NewClient(cfg *config.ModelConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return NewOpenAI(baseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
}
