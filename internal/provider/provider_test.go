package provider

import (
	"testing"

	"chatterm/internal/config"
)

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "carrier-pigeon"
	cfg.LLM.APIKey = "key"

	if _, err := NewFromConfig(cfg); err == nil {
		t.Fatal("Expected error for unknown provider, got nil")
	}
}

func TestNewFromConfig_OpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "key"
	cfg.LLM.Model = "gpt-4o"
	cfg.LLM.BaseURL = "http://localhost:9999/v1"

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if client.Model() != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %s", client.Model())
	}

	oc, ok := client.(*OpenAIClient)
	if !ok {
		t.Fatalf("Expected *OpenAIClient, got %T", client)
	}
	if oc.baseURL != "http://localhost:9999/v1" {
		t.Errorf("Expected overridden base URL, got %s", oc.baseURL)
	}
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiClient(""); err == nil {
		t.Fatal("Expected error for missing API key, got nil")
	}
}

func TestSplitSystem(t *testing.T) {
	system, contents := splitSystem([]Message{
		{Role: RoleSystem, Content: "Be concise."},
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi there!"},
		{Role: RoleUser, Content: "How are you?"},
	})

	if system != "Be concise." {
		t.Errorf("Expected system prompt, got %q", system)
	}
	if len(contents) != 3 {
		t.Fatalf("Expected 3 conversation turns, got %d", len(contents))
	}
}

func TestSplitSystem_JoinsMultipleSystemMessages(t *testing.T) {
	system, _ := splitSystem([]Message{
		{Role: RoleSystem, Content: "One."},
		{Role: RoleSystem, Content: "Two."},
		{Role: RoleUser, Content: "Hello"},
	})

	if system != "One.\n\nTwo." {
		t.Errorf("Unexpected joined system prompt: %q", system)
	}
}
