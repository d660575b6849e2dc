// Package main implements the status command for chatterm.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd shows configuration and storage status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chatterm configuration and storage status",
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("chatterm Status")
	fmt.Println("===============")
	fmt.Printf("Bot:      %s\n", cfg.Bot.Name)
	fmt.Printf("Provider: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Println()

	// Check API key
	if cfg.LLM.APIKey != "" {
		fmt.Println("✓ LLM API key configured")
	} else {
		fmt.Println("✗ LLM API key not configured (set GEMINI_API_KEY or use --api-key)")
	}

	// Check workspace
	fmt.Printf("✓ Workspace: %s\n", resolveWorkspace())

	// Open the store and show what the bot knows
	st, err := openStore(cfg)
	if err != nil {
		fmt.Printf("✗ Store: %v\n", err)
		return nil
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		fmt.Printf("✗ Store stats: %v\n", err)
		return nil
	}
	fmt.Printf("✓ Store: %s\n", st.Path())
	fmt.Printf("  Statements: %d\n", stats["statements"])
	fmt.Printf("  Turns:      %d\n", stats["turns"])

	if cfg.Bot.ReadOnly {
		fmt.Println("  Mode:       read-only")
	}
	return nil
}
