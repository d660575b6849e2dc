package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatterm/internal/config"
	"chatterm/internal/corpus"
	"chatterm/internal/provider"
	"chatterm/internal/store"
)

// Bot answers user input by delegating to an LLM provider. It keeps a
// bounded in-memory window of the current session for conversational
// context and writes successful exchanges through to the store.
type Bot struct {
	name            string
	defaultResponse string
	readOnly        bool
	historyTurns    int
	exemplarPairs   int

	client provider.Client
	store  *store.Store
	logger *zap.Logger

	sessionID string

	mu      sync.Mutex
	turn    int
	history []exchange
}

// exchange is one completed user/bot round trip.
type exchange struct {
	input string
	reply string
}

var _ Engine = (*Bot)(nil)

// New creates a Bot from the given configuration and dependencies.
// The bot takes ownership of the store and closes it in Close.
func New(cfg config.BotConfig, client provider.Client, st *store.Store, logger *zap.Logger) (*Bot, error) {
	if client == nil {
		return nil, fmt.Errorf("LLM client is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "TerminalBot"
	}
	defaultResponse := strings.TrimSpace(cfg.DefaultResponse)
	if defaultResponse == "" {
		defaultResponse = "I'm not sure I understand. Can you rephrase?"
	}
	historyTurns := cfg.HistoryTurns
	if historyTurns < 0 {
		historyTurns = 0
	}
	exemplarPairs := cfg.ExemplarPairs
	if exemplarPairs < 0 {
		exemplarPairs = 0
	}

	return &Bot{
		name:            name,
		defaultResponse: defaultResponse,
		readOnly:        cfg.ReadOnly,
		historyTurns:    historyTurns,
		exemplarPairs:   exemplarPairs,
		client:          client,
		store:           st,
		logger:          logger,
		sessionID:       uuid.NewString(),
	}, nil
}

// Name returns the bot's display name.
func (b *Bot) Name() string {
	return b.name
}

// SessionID returns the identifier under which this run's turns are recorded.
func (b *Bot) SessionID() string {
	return b.sessionID
}

// Train loads the named corpus and seeds the statement store with its
// exchanges. Re-training with the same corpus inserts nothing new.
func (b *Bot) Train(ctx context.Context, corpusName string) (int, error) {
	inserted, c, err := Seed(ctx, b.store, corpusName)
	if err != nil {
		return 0, err
	}

	b.logger.Info("training complete",
		zap.String("corpus", c.Name),
		zap.Int("pairs", len(c.Pairs)),
		zap.Int("new", inserted))
	return inserted, nil
}

// Seed loads the named corpus into the statement store and reports how many
// statements were new alongside the parsed corpus.
func Seed(ctx context.Context, st *store.Store, corpusName string) (int, *corpus.Corpus, error) {
	c, err := corpus.Load(ctx, corpusName)
	if err != nil {
		return 0, nil, err
	}

	statements := make([]store.Statement, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		statements = append(statements, store.Statement{
			Text:         p.Response,
			InResponseTo: p.Input,
			Category:     p.Category,
			Source:       store.SourceCorpus,
		})
	}

	inserted, err := st.SeedStatements(statements)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to seed statements: %w", err)
	}
	return inserted, c, nil
}

// Respond produces one reply for one user input. The input is whitespace
// cleaned before use; blank input returns the default response without a
// provider call. An empty provider reply also maps to the default response
// so the caller always gets something printable.
func (b *Bot) Respond(ctx context.Context, input string) (string, error) {
	cleaned := CleanWhitespace(input)
	if cleaned == "" {
		return b.defaultResponse, nil
	}

	reply, err := b.client.Chat(ctx, b.buildMessages(cleaned))
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		b.logger.Debug("provider returned empty reply, using default response")
		reply = b.defaultResponse
	}

	b.remember(cleaned, reply)
	return reply, nil
}

// remember appends the exchange to the session window and, unless the bot
// is read-only, persists it as a turn and a learnable statement.
func (b *Bot) remember(input, reply string) {
	b.mu.Lock()
	b.turn++
	turn := b.turn
	b.history = append(b.history, exchange{input: input, reply: reply})
	if b.historyTurns > 0 && len(b.history) > b.historyTurns {
		b.history = b.history[len(b.history)-b.historyTurns:]
	}
	b.mu.Unlock()

	if b.readOnly {
		return
	}
	if err := b.store.RecordTurn(b.sessionID, turn, input, reply); err != nil {
		b.logger.Warn("failed to record turn", zap.Int("turn", turn), zap.Error(err))
	}
	if err := b.store.LearnStatement(store.Statement{
		Text:         reply,
		InResponseTo: input,
		Source:       store.SourceConversation,
	}); err != nil {
		b.logger.Warn("failed to learn statement", zap.Error(err))
	}
}

// recentHistory returns a copy of the session window, oldest first.
func (b *Bot) recentHistory() []exchange {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]exchange, len(b.history))
	copy(out, b.history)
	return out
}

// Close releases the underlying store.
func (b *Bot) Close() error {
	return b.store.Close()
}
