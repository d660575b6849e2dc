package provider

import (
	"context"
	"fmt"

	"chatterm/internal/config"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for conversational response providers.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// NewFromConfig creates a provider client from configuration.
func NewFromConfig(cfg *config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		gc := DefaultGeminiConfig(cfg.LLM.APIKey)
		if cfg.LLM.Model != "" {
			gc.Model = cfg.LLM.Model
		}
		gc.Timeout = cfg.GetLLMTimeout()
		return NewGeminiClientWithConfig(gc)

	case "openai":
		oc := DefaultOpenAIConfig(cfg.LLM.APIKey)
		if cfg.LLM.Model != "" {
			oc.Model = cfg.LLM.Model
		}
		if cfg.LLM.BaseURL != "" {
			oc.BaseURL = cfg.LLM.BaseURL
		}
		oc.Timeout = cfg.GetLLMTimeout()
		return NewOpenAIClientWithConfig(oc), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (valid: %v)", cfg.LLM.Provider, config.ValidProviders)
	}
}
