// Package main implements the chatterm CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chatterm/internal/config"
	"chatterm/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workspace  string
	apiKey     string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chatterm",
	Short: "chatterm - a terminal chatbot with a local memory",
	Long: `chatterm is a terminal chatbot backed by an LLM provider.

It bootstraps its small talk from a bundled English corpus, remembers
conversations in a local SQLite database, and keeps the whole exchange
on stdin and stdout.

Run without arguments to start chatting. Type "exit" or "quit" to leave.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadDotenv()

		// Skip the real logger for the chat surface (it owns the terminal)
		if isChatSurface(cmd) && !verbose {
			logger = zap.NewNop()
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: start the conversation loop
		return runChat(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: <workspace>/chatterm.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "LLM API key (or set GEMINI_API_KEY / OPENAI_API_KEY)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request LLM timeout (default: from config)")

	// Chat flags double on the root command so `chatterm --read-only` works
	for _, cmd := range []*cobra.Command{rootCmd, chatCmd} {
		cmd.Flags().BoolVar(&chatReadOnly, "read-only", false, "Run without writing new statements to storage")
		cmd.Flags().StringVar(&chatCorpus, "corpus", "", "Corpus to train from at startup (default: from config)")
		cmd.Flags().BoolVar(&chatSkipTraining, "skip-training", false, "Skip the startup training pass")
		cmd.Flags().BoolVar(&chatTUI, "tui", false, "Use the full-screen terminal UI")
	}

	// Train flags
	trainCmd.Flags().BoolVar(&trainWatch, "watch", false, "Watch a corpus directory and retrain on changes")

	// History flags
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of turns to show")
	historyCmd.Flags().StringVar(&historySession, "session", "", "Show only this session's turns")

	// Add commands to root
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(corporaCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// isChatSurface reports whether cmd renders the interactive conversation.
func isChatSurface(cmd *cobra.Command) bool {
	return cmd.Name() == "chatterm" || cmd.Name() == "chat"
}

// loadDotenv loads a .env file when one is present. A missing file is the
// normal case and stays silent.
func loadDotenv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
	}
}

// resolveWorkspace returns the workspace directory, defaulting to the
// current directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(resolveWorkspace(), "chatterm.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if timeout > 0 {
		cfg.LLM.Timeout = timeout.String()
	}
	return cfg, nil
}

// openStore opens the SQLite store at the configured path, resolved
// against the workspace when relative.
func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.Storage.DatabasePath
	if path != "" && path != ":memory:" && !filepath.IsAbs(path) {
		path = filepath.Join(resolveWorkspace(), path)
	}
	return store.Open(path, logger)
}
