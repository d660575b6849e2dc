package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Bot.Name != "TerminalBot" {
		t.Errorf("expected Name=TerminalBot, got %s", cfg.Bot.Name)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("expected Provider=gemini, got %s", cfg.LLM.Provider)
	}
	if cfg.Storage.DatabasePath != "chatterm.sqlite3" {
		t.Errorf("expected DatabasePath=chatterm.sqlite3, got %s", cfg.Storage.DatabasePath)
	}
	if cfg.Bot.DefaultResponse == "" {
		t.Error("expected non-empty default response")
	}
	if cfg.Corpus.Name != "english" {
		t.Errorf("expected Corpus.Name=english, got %s", cfg.Corpus.Name)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CHATTERM_DB", "")
	t.Setenv("CHATTERM_MODEL", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-test"
	cfg.Bot.Name = "Rosie"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %s", loaded.LLM.Provider)
	}
	if loaded.LLM.APIKey != "sk-test" {
		t.Errorf("expected APIKey=sk-test, got %s", loaded.LLM.APIKey)
	}
	if loaded.Bot.Name != "Rosie" {
		t.Errorf("expected Name=Rosie, got %s", loaded.Bot.Name)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CHATTERM_DB", "")
	t.Setenv("CHATTERM_MODEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bot.Name != "TerminalBot" {
		t.Errorf("expected default Name=TerminalBot, got %s", cfg.Bot.Name)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	// Default has no API key
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.LLM.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}

	cfg.LLM.Provider = "invalid-provider"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}

	cfg.LLM.Provider = "gemini"
	cfg.Bot.Name = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty bot name")
	}
}

func TestConfig_GetLLMTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetLLMTimeout() != 120*time.Second {
		t.Errorf("expected default timeout 120s, got %v", cfg.GetLLMTimeout())
	}

	cfg.LLM.Timeout = "5s"
	if cfg.GetLLMTimeout() != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.GetLLMTimeout())
	}

	cfg.LLM.Timeout = "not-a-duration"
	if cfg.GetLLMTimeout() != 120*time.Second {
		t.Errorf("expected fallback 120s, got %v", cfg.GetLLMTimeout())
	}
}
