// Package main implements the train command for chatterm.
// This file handles one-shot corpus training and watch mode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chatterm/internal/bot"
	"chatterm/internal/corpus"
	"chatterm/internal/store"
)

var trainWatch bool

// trainCmd seeds the statement store from a corpus
var trainCmd = &cobra.Command{
	Use:   "train [corpus]",
	Short: "Train the bot from a corpus without starting a chat",
	Long: `Loads a corpus and seeds the statement store with its exchanges.

The corpus can be "english" (everything bundled), "english.<category>" for
one bundled category, or a path to a .yml file or a directory of them.
Training is idempotent; statements the bot already knows are skipped.

With --watch the corpus must be a directory; chatterm retrains whenever a
.yml file in it changes.

Examples:
  chatterm train
  chatterm train english.greetings
  chatterm train ./my-corpus --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := cfg.Corpus.Name
	if len(args) > 0 {
		name = args[0]
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if err := trainOnce(ctx, st, name); err != nil {
		return err
	}

	if !trainWatch {
		return nil
	}

	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("--watch needs a corpus directory, got %q", name)
	}

	watcher, err := corpus.NewWatcher(name, logger, func(ctx context.Context, paths []string) {
		fmt.Printf("Corpus changed (%d files), retraining...\n", len(paths))
		if err := trainOnce(ctx, st, name); err != nil {
			fmt.Fprintf(os.Stderr, "Training warning: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	fmt.Printf("Watching %s for corpus changes. Press Ctrl+C to stop.\n", name)
	<-ctx.Done()
	fmt.Println("\nStopped watching.")
	return nil
}

func trainOnce(ctx context.Context, st *store.Store, name string) error {
	inserted, c, err := bot.Seed(ctx, st, name)
	if err != nil {
		return err
	}
	fmt.Printf("Trained %d new statements from %s (%d pairs, %d categories).\n",
		inserted, c.Name, len(c.Pairs), len(c.Categories))
	return nil
}
