// Package main implements the corpora command for chatterm.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatterm/internal/corpus"
)

// corporaCmd lists the bundled corpus categories
var corporaCmd = &cobra.Command{
	Use:   "corpora",
	Short: "List the bundled corpus categories",
	Long: `Lists every category bundled with chatterm and how many exchanges it
holds. Train a single category with "chatterm train english.<category>".`,
	RunE: runCorpora,
}

func runCorpora(cmd *cobra.Command, args []string) error {
	categories, err := corpus.Categories()
	if err != nil {
		return fmt.Errorf("failed to read bundled corpus: %w", err)
	}

	total := 0
	fmt.Println("Bundled English corpus")
	fmt.Println("======================")
	for _, cat := range categories {
		fmt.Printf("%-15s %4d exchanges\n", cat.Name, cat.Pairs)
		total += cat.Pairs
	}
	fmt.Printf("%-15s %4d exchanges\n", "total", total)
	return nil
}
