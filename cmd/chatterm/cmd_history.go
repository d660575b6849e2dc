// Package main implements the history command for chatterm.
// This file lists recorded conversation turns.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatterm/internal/store"
)

var (
	historyLimit   int
	historySession string
)

// historyCmd shows recorded conversation turns
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded conversation turns",
	Long: `Lists conversation turns recorded in the local store, newest run last.

Each chat run records under its own session ID unless --read-only was set.
Use --session to replay a single conversation in order.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	var turns []store.Turn
	if historySession != "" {
		turns, err = st.SessionHistory(historySession, historyLimit)
	} else {
		turns, err = st.RecentTurns(historyLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(turns) == 0 {
		fmt.Println("No recorded turns yet. Have a chat first.")
		return nil
	}

	for _, turn := range turns {
		fmt.Printf("[%s] session %s turn %d\n", turn.CreatedAt.Format("2006-01-02 15:04:05"), shortSession(turn.SessionID), turn.TurnNumber)
		fmt.Printf("  You: %s\n", turn.UserInput)
		fmt.Printf("  Bot: %s\n", turn.Response)
	}
	return nil
}

// shortSession trims a UUID to its first group for display.
func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
