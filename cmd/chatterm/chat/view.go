package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const helpText = `## Commands

| Command | Description |
|---------|-------------|
| /help | Show this help message |
| /clear | Clear the conversation view |
| /status | Show session status |
| /quit, /exit, /q | Leave the chat |

## Tips
- **Enter** sends a message; a plain "exit" or "quit" also leaves
- **Ctrl+C** or **Esc** exits immediately
- Scroll the transcript with the arrow keys or mouse wheel
`

func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	chatView := m.styles.Content.Render(m.viewport.View())

	// Activity indicator
	if m.training {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Preparing and training the bot..."
	} else if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Thinking..."
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m model) renderHeader() string {
	title := m.styles.Header.Render(" 💬 " + m.engine.Name() + " ")
	badge := m.styles.Badge.Render(m.opts.Model)

	var status string
	switch {
	case m.training:
		status = m.styles.Warning.Render("● Training")
	case m.isLoading:
		status = m.styles.Warning.Render("● Thinking")
	default:
		status = m.styles.Success.Render("● Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		badge,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m model) renderFooter() string {
	mode := ""
	if m.opts.ReadOnly {
		mode = "read-only • "
	}
	return m.styles.Footer.Render(fmt.Sprintf("%sEnter: send • /help: commands • Ctrl+C: exit", mode))
}

func (m model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		if msg.role == "user" {
			sb.WriteString(m.styles.UserLabel.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.content))
			sb.WriteString("\n\n")
		} else {
			sb.WriteString(m.styles.BotLabel.Render(m.engine.Name()) + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// statusMarkdown summarizes the session for the /status command.
func (m model) statusMarkdown() string {
	mode := "learning"
	if m.opts.ReadOnly {
		mode = "read-only"
	}
	return fmt.Sprintf(`## Session status

| | |
|---|---|
| Bot | %s |
| Model | %s |
| Mode | %s |
| Turns | %d |
`, m.engine.Name(), m.opts.Model, mode, m.turnCount)
}

// safeRenderMarkdown renders markdown with panic recovery
func (m model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
