package bot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chatterm/internal/provider"
	"chatterm/internal/store"
)

// buildMessages assembles the provider conversation for one turn: persona
// system prompt, optional exemplar system prompt, the session window as
// alternating user/assistant messages, then the current input.
func (b *Bot) buildMessages(input string) []provider.Message {
	history := b.recentHistory()

	messages := make([]provider.Message, 0, 2*len(history)+3)
	messages = append(messages, provider.Message{
		Role:    provider.RoleSystem,
		Content: b.personaPrompt(),
	})

	if b.exemplarPairs > 0 {
		exemplars, err := b.store.Exemplars(b.exemplarPairs)
		if err != nil {
			b.logger.Warn("failed to load exemplars", zap.Error(err))
		} else if len(exemplars) > 0 {
			messages = append(messages, provider.Message{
				Role:    provider.RoleSystem,
				Content: exemplarPrompt(exemplars),
			})
		}
	}

	for _, ex := range history {
		messages = append(messages,
			provider.Message{Role: provider.RoleUser, Content: ex.input},
			provider.Message{Role: provider.RoleAssistant, Content: ex.reply},
		)
	}

	messages = append(messages, provider.Message{Role: provider.RoleUser, Content: input})
	return messages
}

// personaPrompt is the fixed system instruction describing how the bot
// should speak.
func (b *Bot) personaPrompt() string {
	return fmt.Sprintf("You are %s, a friendly chatbot talking with one person in a terminal. "+
		"Reply with a single short conversational message in plain text, no markdown. "+
		"If you do not understand the message, say so plainly.", b.name)
}

// exemplarPrompt renders trained corpus pairs as a style guide for the model.
func exemplarPrompt(exemplars []store.Statement) string {
	var sb strings.Builder
	sb.WriteString("Here are example exchanges showing the tone to use:\n")
	for _, ex := range exemplars {
		fmt.Fprintf(&sb, "Q: %s\nA: %s\n", ex.InResponseTo, ex.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
