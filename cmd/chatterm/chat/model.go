// Package chat implements the full-screen terminal UI for chatterm.
// It drives the same engine as the line REPL, rendered with bubbletea.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"chatterm/cmd/chatterm/ui"
	"chatterm/internal/bot"
)

// Options configures a TUI session.
type Options struct {
	Corpus       string // corpus identifier for startup training
	SkipTraining bool   // start chatting without the training pass
	ReadOnly     bool   // shown in the footer; enforcement lives in the engine
	Model        string // provider model name for the header badge
}

// model is the bubbletea model for the chat UI.
type model struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	history   []chatMessage
	isLoading bool
	training  bool
	width     int
	height    int
	ready     bool
	turnCount int

	// Backend
	engine bot.Engine
	opts   Options
}

type chatMessage struct {
	role    string // "user" or "bot"
	content string
	time    time.Time
}

// Messages for tea updates
type (
	responseMsg string
	errorMsg    error
	trainedMsg  struct {
		inserted int
		err      error
	}
)

// initialModel builds the chat model around an engine.
func initialModel(engine bot.Engine, opts Options) model {
	styles := ui.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Type your message... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return model{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		history:   []chatMessage{},
		training:  !opts.SkipTraining,
		engine:    engine,
		opts:      opts,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.training {
		cmds = append(cmds, m.train())
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.isLoading && !m.training {
				return m.handleSubmit()
			}
		}

		// Handle regular key input
		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 2
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}
		m.textinput.Width = msg.Width - 4

		// Update renderer word wrap
		if m.renderer != nil {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(msg.Width-8),
			)
		}
		m.viewport.SetContent(m.renderHistory())

	case spinner.TickMsg:
		if m.isLoading || m.training {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case trainedMsg:
		m.training = false
		if msg.err != nil {
			m.history = append(m.history, chatMessage{
				role: "bot",
				content: fmt.Sprintf("Training warning: %v\n\nContinuing; the bot may have limited knowledge this run.",
					msg.err),
				time: time.Now(),
			})
		} else if msg.inserted > 0 {
			m.history = append(m.history, chatMessage{
				role:    "bot",
				content: fmt.Sprintf("Learned %d new statements from the corpus.", msg.inserted),
				time:    time.Now(),
			})
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case responseMsg:
		m.isLoading = false
		m.turnCount++
		m.history = append(m.history, chatMessage{
			role:    "bot",
			content: string(msg),
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case errorMsg:
		// Per-turn boundary: report in the transcript and keep going
		m.isLoading = false
		m.history = append(m.history, chatMessage{
			role:    "bot",
			content: fmt.Sprintf("Sorry, I ran into a problem: %v", error(msg)),
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	// Check for special commands
	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	// Bare exit words leave the chat like the line REPL does
	switch strings.ToLower(input) {
	case "exit", "quit":
		return m, tea.Quit
	}

	// Add user message to history
	m.history = append(m.history, chatMessage{
		role:    "user",
		content: input,
		time:    time.Now(),
	})

	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.isLoading = true

	// Process in background
	return m, tea.Batch(
		m.spinner.Tick,
		m.respond(input),
	)
}

func (m model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/clear":
		m.history = []chatMessage{}
		m.viewport.SetContent("")
		m.textinput.Reset()
		return m, nil

	case "/status":
		m.history = append(m.history, chatMessage{
			role:    "bot",
			content: m.statusMarkdown(),
			time:    time.Now(),
		})

	case "/help":
		m.history = append(m.history, chatMessage{
			role:    "bot",
			content: helpText,
			time:    time.Now(),
		})

	default:
		m.history = append(m.history, chatMessage{
			role:    "bot",
			content: fmt.Sprintf("Unknown command %q. Try /help.", cmd),
			time:    time.Now(),
		})
	}

	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	return m, nil
}

// respond asks the engine for a reply in the background.
func (m model) respond(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		reply, err := m.engine.Respond(ctx, input)
		if err != nil {
			return errorMsg(err)
		}
		return responseMsg(reply)
	}
}

// train runs the startup training pass in the background.
func (m model) train() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		inserted, err := m.engine.Train(ctx, m.opts.Corpus)
		return trainedMsg{inserted: inserted, err: err}
	}
}

// Run starts the full-screen chat UI and blocks until the user leaves.
func Run(ctx context.Context, engine bot.Engine, opts Options) error {
	p := tea.NewProgram(
		initialModel(engine, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Killed by signal; the session still ends cleanly
		return nil
	}
	return err
}
