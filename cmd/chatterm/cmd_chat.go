// Package main implements the chat command for chatterm.
// This file wires the engine together and runs the conversation loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chatterm/cmd/chatterm/chat"
	"chatterm/internal/bot"
	"chatterm/internal/provider"
	"chatterm/internal/repl"
)

var (
	chatReadOnly     bool
	chatCorpus       string
	chatSkipTraining bool
	chatTUI          bool
)

// chatCmd starts an interactive conversation
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in your terminal",
	Long: `Starts the interactive conversation loop.

On startup the bot trains itself from the bundled English corpus. Training
is safe to repeat; statements the bot already knows are skipped, and a
training failure only limits its knowledge for the run. Type your message
at the prompt, or "exit" or "quit" to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
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
	cfg.Bot.ReadOnly = cfg.Bot.ReadOnly || chatReadOnly
	if chatCorpus != "" {
		cfg.Corpus.Name = chatCorpus
	}

	// Engine construction is the one fatal path: no provider, no prompt.
	client, err := provider.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	engine, err := bot.New(cfg.Bot, client, st, logger)
	if err != nil {
		st.Close()
		return err
	}
	defer engine.Close()

	if chatTUI {
		return chat.Run(ctx, engine, chat.Options{
			Corpus:       cfg.Corpus.Name,
			SkipTraining: chatSkipTraining,
			ReadOnly:     cfg.Bot.ReadOnly,
			Model:        client.Model(),
		})
	}

	r := repl.New(engine, os.Stdin, os.Stdout, repl.Options{
		Corpus:       cfg.Corpus.Name,
		SkipTraining: chatSkipTraining,
		Logger:       logger,
	})
	return r.Run(ctx)
}
